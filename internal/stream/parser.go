// Package stream decodes the chunked progress protocol of the EduGen
// upload endpoint: newline-delimited frames of the form `data: <JSON>`,
// with no alignment between network chunks and frames.
package stream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

const dataPrefix = "data: "

// KeepAlive is the percentage sentinel meaning "no new information";
// consumers must retain their last known percentage.
const KeepAlive = -1

const (
	StageStart      = "start"
	StageUpload     = "upload"
	StageExtract    = "extract"
	StageTranscribe = "transcribe"
	StageFinalize   = "finalize"
	StageComplete   = "complete"
	StageError      = "error"
)

// Event is one decoded progress frame. ContentId and InputType are only
// set on the terminal complete frame.
type Event struct {
	Stage      string
	Message    string
	Percentage int
	ContentId  string
	InputType  string
}

func (e Event) Terminal() bool {
	return e.Stage == StageComplete || e.Stage == StageError
}

// Error is the failure raised by an explicit error-stage frame, carrying
// the server's message.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return "upload stream reported an error"
	}
	return e.Message
}

// wire frame; percentage is a pointer so an absent field maps to the
// keepalive sentinel instead of zero.
type frame struct {
	Stage      string `json:"stage"`
	Message    string `json:"message"`
	Percentage *int   `json:"percentage"`
	ContentId  string `json:"content_id"`
	InputType  string `json:"input_type"`
}

// Parser pulls events off a streamed response body. Frames may span or
// share chunks; splitting on newlines at the byte level keeps multi-byte
// UTF-8 sequences intact across chunk boundaries.
type Parser struct {
	r       io.Reader
	pending []byte
	buf     []byte
	eof     bool
}

func NewParser(r io.Reader) *Parser {
	return &Parser{
		r:   r,
		buf: make([]byte, 4096),
	}
}

// Next returns the next decoded event. It returns io.EOF when the stream
// ends cleanly, and *Error when an error-stage frame is observed. A JSON
// failure on a line that was fully received is fatal; a failure on the
// unterminated trailing line at EOF means the frame was cut off mid-write
// and is swallowed.
func (p *Parser) Next() (Event, error) {
	for {
		if line, ok := p.takeLine(); ok {
			ev, ok, err := p.decodeLine(line, true)
			if err != nil {
				return Event{}, err
			}
			if ok {
				return ev, nil
			}
			continue
		}

		if p.eof {
			// Whatever is left never got its newline; attempt it once
			// and swallow a parse failure as an incomplete frame.
			if len(p.pending) > 0 {
				line := p.pending
				p.pending = nil
				ev, ok, err := p.decodeLine(line, false)
				if err != nil {
					return Event{}, err
				}
				if ok {
					return ev, nil
				}
			}
			return Event{}, io.EOF
		}

		n, err := p.r.Read(p.buf)
		if n > 0 {
			p.pending = append(p.pending, p.buf[:n]...)
		}
		if err == io.EOF {
			p.eof = true
		} else if err != nil {
			return Event{}, fmt.Errorf("read upload stream: %w", err)
		}
	}
}

func (p *Parser) takeLine() ([]byte, bool) {
	idx := bytes.IndexByte(p.pending, '\n')
	if idx < 0 {
		return nil, false
	}
	line := p.pending[:idx]
	p.pending = p.pending[idx+1:]
	return line, true
}

func (p *Parser) decodeLine(line []byte, complete bool) (Event, bool, error) {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	if !bytes.HasPrefix(line, []byte(dataPrefix)) {
		return Event{}, false, nil
	}

	var f frame
	if err := json.Unmarshal(line[len(dataPrefix):], &f); err != nil {
		if !complete {
			return Event{}, false, nil
		}
		return Event{}, false, fmt.Errorf("malformed progress frame: %w", err)
	}

	ev := Event{
		Stage:      f.Stage,
		Message:    f.Message,
		Percentage: KeepAlive,
		ContentId:  f.ContentId,
		InputType:  f.InputType,
	}
	if f.Percentage != nil {
		ev.Percentage = *f.Percentage
	}

	if ev.Stage == StageError {
		return Event{}, false, &Error{Message: ev.Message}
	}
	return ev, true, nil
}
