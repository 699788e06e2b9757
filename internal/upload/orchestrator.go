// Package upload drives one content upload through its staged progress
// stream and resolves it to a content id.
package upload

import (
	"context"
	"errors"
	"io"

	"edugen-client/internal/api"
	"edugen-client/internal/pkg/logger"
	"edugen-client/internal/stream"
)

// ErrNoContentId is the terminal-without-result case: the stream ended
// without an error frame but also without a usable content id.
var ErrNoContentId = errors.New("upload completed but no content ID received")

// Progress is the observable state of an in-flight upload. Percentage is
// monotonic under keepalives: a -1 frame never regresses it.
type Progress struct {
	Stage      string
	Message    string
	Percentage int
	InputType  InputType
}

// Result identifies the content session established by a finished upload.
type Result struct {
	ContentId string
	InputType string
}

type Orchestrator struct {
	client *api.Client
	logger logger.ILogger
}

func NewOrchestrator(client *api.Client, log logger.ILogger) *Orchestrator {
	return &Orchestrator{client: client, logger: log}
}

// Run performs one upload. onProgress, when non-nil, observes every stage
// update and is always invoked in event order. The returned result carries
// a non-empty content id or the call fails.
func (o *Orchestrator) Run(ctx context.Context, payload api.UploadPayload, onProgress func(Progress)) (*Result, error) {
	inputType := Classify(payload)

	progress := Progress{
		Stage:      stream.StageStart,
		Message:    "Starting...",
		Percentage: 0,
		InputType:  inputType,
	}
	if onProgress != nil {
		onProgress(progress)
	}

	o.logger.Info("upload", "upload started", map[string]interface{}{"input_type": string(inputType)})

	body, err := o.client.OpenUploadStream(ctx, payload)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	parser := stream.NewParser(body)
	var result Result
	for {
		ev, err := parser.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			o.logger.Error("upload", "upload stream failed", map[string]interface{}{"error": err.Error()})
			return nil, err
		}

		progress.Stage = ev.Stage
		progress.Message = ev.Message
		if ev.Percentage != stream.KeepAlive {
			progress.Percentage = ev.Percentage
		}
		if onProgress != nil {
			onProgress(progress)
		}

		if ev.Stage == stream.StageComplete {
			result.ContentId = ev.ContentId
			result.InputType = ev.InputType
		}
	}

	if result.ContentId == "" {
		return nil, ErrNoContentId
	}
	if result.InputType == "" {
		result.InputType = "unknown"
	}

	o.logger.Info("upload", "upload complete", map[string]interface{}{
		"content_id": result.ContentId,
		"input_type": result.InputType,
	})
	return &result, nil
}
