package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadPayload carries exactly one source: inline text, a YouTube URL, or
// a file. Which field is set decides the multipart form field used.
type UploadPayload struct {
	Text       string
	YouTubeURL string
	FileName   string
	File       io.Reader
}

func (p UploadPayload) Empty() bool {
	return p.Text == "" && p.YouTubeURL == "" && p.File == nil
}

// OpenUploadStream posts the payload to the streaming upload endpoint and
// returns the raw chunked body for the progress parser. The caller owns
// closing it and bounding the read loop with a context deadline.
func (c *Client) OpenUploadStream(ctx context.Context, payload UploadPayload) (io.ReadCloser, error) {
	if payload.Empty() {
		return nil, fmt.Errorf("upload payload is empty")
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	switch {
	case payload.YouTubeURL != "":
		if err := form.WriteField("youtube_url", payload.YouTubeURL); err != nil {
			return nil, fmt.Errorf("write form field: %w", err)
		}
	case payload.Text != "":
		if err := form.WriteField("text", payload.Text); err != nil {
			return nil, fmt.Errorf("write form field: %w", err)
		}
	default:
		part, err := form.CreateFormFile("file", payload.FileName)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, payload.File); err != nil {
			return nil, fmt.Errorf("copy file into form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	req, err := c.authRequest(ctx, http.MethodPost, "/content/upload-stream", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, c.checkFailure(resp, "Upload failed")
	}
	return resp.Body, nil
}
