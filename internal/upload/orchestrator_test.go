package upload

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"edugen-client/internal/api"
	"edugen-client/internal/pkg/logger"
)

type memStore struct {
	token   string
	cleared bool
}

func (s *memStore) Token() (string, error) { return s.token, nil }
func (s *memStore) Save(token string) error {
	s.token = token
	return nil
}
func (s *memStore) Clear() error {
	s.cleared = true
	s.token = ""
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*api.Client, *memStore, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	store := &memStore{token: "test-token"}
	client := api.NewClient(srv.URL, store, logger.NopLogger{}, 0)
	return client, store, srv.Close
}

func streamHandler(t *testing.T, frames []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/content/upload-stream" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		flusher := w.(http.Flusher)
		w.WriteHeader(http.StatusOK)
		for _, f := range frames {
			fmt.Fprintf(w, "data: %s\n", f)
			flusher.Flush()
		}
	}
}

func TestRunHappyPath(t *testing.T) {
	client, _, done := newTestClient(t, streamHandler(t, []string{
		`{"stage": "upload", "message": "Uploading", "percentage": 20}`,
		`{"stage": "extract", "message": "Extracting", "percentage": 60}`,
		`{"stage": "complete", "message": "Done", "percentage": 100, "content_id": "c42", "input_type": "pdf"}`,
	}))
	defer done()

	var stages []string
	result, err := NewOrchestrator(client, logger.NopLogger{}).Run(
		context.Background(),
		api.UploadPayload{Text: "hello"},
		func(p Progress) { stages = append(stages, p.Stage) },
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ContentId != "c42" || result.InputType != "pdf" {
		t.Errorf("result = %+v", result)
	}
	want := []string{"start", "upload", "extract", "complete"}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stages[%d] = %s, want %s", i, stages[i], want[i])
		}
	}
}

func TestRunKeepAliveDoesNotRegressPercentage(t *testing.T) {
	client, _, done := newTestClient(t, streamHandler(t, []string{
		`{"stage": "transcribe", "message": "Transcribing", "percentage": 55}`,
		`{"stage": "transcribe", "message": "Still transcribing", "percentage": -1}`,
		`{"stage": "transcribe", "message": "Still going"}`,
		`{"stage": "complete", "percentage": 100, "content_id": "c1", "input_type": "video"}`,
	}))
	defer done()

	var percentages []int
	_, err := NewOrchestrator(client, logger.NopLogger{}).Run(
		context.Background(),
		api.UploadPayload{FileName: "talk.mp4", File: strings.NewReader("x")},
		func(p Progress) { percentages = append(percentages, p.Percentage) },
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []int{0, 55, 55, 55, 100}
	if len(percentages) != len(want) {
		t.Fatalf("percentages = %v, want %v", percentages, want)
	}
	for i := range want {
		if percentages[i] != want[i] {
			t.Errorf("percentages[%d] = %d, want %d", i, percentages[i], want[i])
		}
	}
}

func TestRunErrorFrame(t *testing.T) {
	client, _, done := newTestClient(t, streamHandler(t, []string{
		`{"stage": "upload", "percentage": 10}`,
		`{"stage": "error", "message": "unsupported file"}`,
	}))
	defer done()

	_, err := NewOrchestrator(client, logger.NopLogger{}).Run(
		context.Background(), api.UploadPayload{Text: "x"}, nil)
	if err == nil || err.Error() != "unsupported file" {
		t.Fatalf("got %v, want server error message", err)
	}
}

func TestRunEndsWithoutContentId(t *testing.T) {
	client, _, done := newTestClient(t, streamHandler(t, []string{
		`{"stage": "upload", "percentage": 10}`,
	}))
	defer done()

	_, err := NewOrchestrator(client, logger.NopLogger{}).Run(
		context.Background(), api.UploadPayload{Text: "x"}, nil)
	if !errors.Is(err, ErrNoContentId) {
		t.Fatalf("got %v, want ErrNoContentId", err)
	}
}

func TestRunSessionExpired(t *testing.T) {
	client, store, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Not authenticated"}`, http.StatusUnauthorized)
	})
	defer done()

	_, err := NewOrchestrator(client, logger.NopLogger{}).Run(
		context.Background(), api.UploadPayload{Text: "x"}, nil)
	if !errors.Is(err, api.ErrSessionExpired) {
		t.Fatalf("got %v, want ErrSessionExpired", err)
	}
	if !store.cleared {
		t.Error("credentials not cleared on 401")
	}
}

func TestRunMissingInputTypeFallsBack(t *testing.T) {
	client, _, done := newTestClient(t, streamHandler(t, []string{
		`{"stage": "complete", "percentage": 100, "content_id": "c7"}`,
	}))
	defer done()

	result, err := NewOrchestrator(client, logger.NopLogger{}).Run(
		context.Background(), api.UploadPayload{Text: "x"}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.InputType != "unknown" {
		t.Errorf("input type = %q, want unknown", result.InputType)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		payload api.UploadPayload
		want    InputType
	}{
		{"youtube", api.UploadPayload{YouTubeURL: "https://youtu.be/x"}, InputYouTube},
		{"url wins over text", api.UploadPayload{YouTubeURL: "https://youtu.be/x", Text: "t"}, InputYouTube},
		{"text", api.UploadPayload{Text: "notes"}, InputText},
		{"text wins over file", api.UploadPayload{Text: "notes", FileName: "a.pdf"}, InputText},
		{"pdf", api.UploadPayload{FileName: "lecture.PDF"}, InputPDF},
		{"word doc", api.UploadPayload{FileName: "paper.docx"}, InputWord},
		{"video", api.UploadPayload{FileName: "talk.mkv"}, InputVideo},
		{"other file", api.UploadPayload{FileName: "data.csv"}, InputFile},
		{"no extension", api.UploadPayload{FileName: "README"}, InputFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.payload); got != tt.want {
				t.Errorf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}
