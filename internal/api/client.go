// Package api is the HTTP client for the EduGen backend. Every
// authenticated call attaches the stored bearer token, surfaces the
// server's detail message on failure, and converts a 401 into the shared
// session-expired path (credentials cleared, ErrSessionExpired returned).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"edugen-client/internal/dto"
	"edugen-client/internal/pkg/authstore"
	"edugen-client/internal/pkg/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Client struct {
	baseURL string
	tokens  authstore.Store
	logger  logger.ILogger
	tracer  trace.Tracer

	client *http.Client
	// Streamed uploads run without a client timeout; the caller bounds
	// them with a context deadline instead.
	streamClient *http.Client
}

func NewClient(baseURL string, tokens authstore.Store, log logger.ILogger, requestTimeout time.Duration) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		tokens:       tokens,
		logger:       log,
		tracer:       otel.Tracer("edugen-client/api"),
		client:       &http.Client{Timeout: requestTimeout},
		streamClient: &http.Client{},
	}
}

// Login exchanges credentials for a bearer token and persists it.
func (c *Client) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal login request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.responseError(resp, "Login failed")
	}

	var out dto.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no token")
	}
	if err := c.tokens.Save(out.AccessToken); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	return &out, nil
}

// History lists the user's past content sessions.
func (c *Client) History(ctx context.Context) ([]dto.HistoryEntry, error) {
	var out dto.HistoryResponse
	if err := c.getJSON(ctx, "/content/history", "Failed to fetch history", &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// Outputs lists the stored generation outputs of one content session.
func (c *Client) Outputs(ctx context.Context, contentId string) ([]dto.OutputEntry, error) {
	var out dto.OutputsResponse
	path := "/content/" + url.PathEscape(contentId) + "/outputs"
	if err := c.getJSON(ctx, path, "Failed to fetch outputs", &out); err != nil {
		return nil, err
	}
	return out.Outputs, nil
}

// Output fetches one stored output in its raw (wrapped) shape.
func (c *Client) Output(ctx context.Context, outputId string) (map[string]interface{}, error) {
	var out map[string]interface{}
	path := "/content/output/" + url.PathEscape(outputId)
	if err := c.getJSON(ctx, path, "Failed to fetch output", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Generate runs one generation action and returns the fresh payload.
func (c *Client) Generate(ctx context.Context, opts dto.GenerationOptions) (map[string]interface{}, error) {
	ctx, span := c.tracer.Start(ctx, "generate",
		trace.WithAttributes(attribute.String("edugen.action", opts.Endpoint())))
	defer span.End()

	var out map[string]interface{}
	err := c.postForm(ctx, "/content/"+opts.Endpoint(), opts.Form(), "Generation failed", &out)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

// Chat sends one grounded chatbot question with the prior transcript.
func (c *Client) Chat(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error) {
	form := url.Values{
		"content_id": {req.ContentId},
		"question":   {req.Question},
	}
	if len(req.ChatHistory) > 0 {
		encoded, err := json.Marshal(req.ChatHistory)
		if err != nil {
			return nil, fmt.Errorf("marshal chat history: %w", err)
		}
		form.Set("chat_history", string(encoded))
	}

	var out dto.ChatResponse
	if err := c.postForm(ctx, "/content/chat", form, "Failed to get response", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveScore persists one quiz attempt's score. UserAnswers rides along for
// test-mode attempts only.
func (c *Client) SaveScore(ctx context.Context, outputId string, req dto.ScoreRequest) error {
	form := url.Values{
		"score":      {fmt.Sprintf("%d", req.Score)},
		"total":      {fmt.Sprintf("%d", req.Total)},
		"percentage": {fmt.Sprintf("%d", req.Percentage)},
	}
	if req.UserAnswers != nil {
		encoded, err := json.Marshal(req.UserAnswers)
		if err != nil {
			return fmt.Errorf("marshal user answers: %w", err)
		}
		form.Set("user_answers", string(encoded))
	}

	path := "/content/output/" + url.PathEscape(outputId) + "/score"
	return c.postForm(ctx, path, form, "Failed to save score", nil)
}

// DeleteOutput removes one stored output.
func (c *Client) DeleteOutput(ctx context.Context, outputId string) error {
	return c.doSimple(ctx, http.MethodDelete, "/content/output/"+url.PathEscape(outputId), nil, "Failed to delete output")
}

// DeleteContent removes one content session and everything under it.
func (c *Client) DeleteContent(ctx context.Context, contentId string) error {
	return c.doSimple(ctx, http.MethodDelete, "/content/"+url.PathEscape(contentId), nil, "Failed to delete content")
}

// RenameContent updates the display title of a content session.
func (c *Client) RenameContent(ctx context.Context, contentId, title string) error {
	payload, err := json.Marshal(dto.RenameContentRequest{Title: title})
	if err != nil {
		return fmt.Errorf("marshal rename request: %w", err)
	}
	return c.doSimple(ctx, http.MethodPatch, "/content/"+url.PathEscape(contentId)+"/rename", payload, "Failed to rename content")
}

// --- internals ---

func (c *Client) authRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

func (c *Client) getJSON(ctx context.Context, path, fallback string, out interface{}) error {
	ctx, span := c.tracer.Start(ctx, "GET "+path)
	defer span.End()

	req, err := c.authRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.checkFailure(resp, fallback)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, fallback string, out interface{}) error {
	req, err := c.authRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.checkFailure(resp, fallback)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doSimple(ctx context.Context, method, path string, jsonBody []byte, fallback string) error {
	var body io.Reader
	if jsonBody != nil {
		body = bytes.NewReader(jsonBody)
	}
	req, err := c.authRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if jsonBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.checkFailure(resp, fallback)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// checkFailure turns a non-2xx response into the right error. 401 runs the
// shared session-expired path: stored credentials are cleared so the next
// operation lands on the unauthenticated flow.
func (c *Client) checkFailure(resp *http.Response, fallback string) error {
	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.tokens.Clear(); err != nil {
			c.logger.Warn("api", "failed to clear credentials", map[string]interface{}{"error": err.Error()})
		}
		c.logger.Info("api", "session expired, credentials cleared", nil)
		return ErrSessionExpired
	}
	return c.responseError(resp, fallback)
}

func (c *Client) responseError(resp *http.Response, fallback string) error {
	detail := fallback
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Detail != "" {
		detail = body.Detail
	}
	return &Error{Status: resp.StatusCode, Detail: detail}
}
