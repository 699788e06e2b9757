// Package session is the single source of truth for the client's active
// content, active action, current result, and operation errors. It
// enforces the strict single-active-action flow: at most one generation
// result is held at any time, tagged with the action that produced it,
// and every state-clearing operation runs before anything new is adopted.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"edugen-client/internal/api"
	"edugen-client/internal/chat"
	"edugen-client/internal/dto"
	"edugen-client/internal/flashcards"
	"edugen-client/internal/normalize"
	"edugen-client/internal/pkg/logger"
	"edugen-client/internal/quiz"
	"edugen-client/internal/upload"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrNoActiveContent = errors.New("no active content session")
	ErrBusy            = errors.New("another operation is in progress")
)

type Status string

const (
	StatusReady      Status = "ready"
	StatusProcessing Status = "processing"
	StatusFailed     Status = "failed"
)

// Content identifies the active ingested source.
type Content struct {
	ContentId string
	InputType string
	Status    Status
}

// Result is the single held generation result, tagged with its action.
type Result struct {
	Action dto.Action
	Data   map[string]interface{}
}

// OutputId returns the persistence id, present once the server stored the
// output.
func (r *Result) OutputId() string {
	if r == nil {
		return ""
	}
	id, _ := r.Data["output_id"].(string)
	return id
}

type Controller struct {
	mu sync.Mutex

	client   *api.Client
	uploader *upload.Orchestrator
	chat     *chat.Controller
	repo     *HistoryRepository
	validate *validator.Validate
	logger   logger.ILogger

	uploadTimeout  time.Duration
	requestTimeout time.Duration

	content      *Content
	activeAction dto.Action
	result       *Result
	quizEngine   *quiz.Engine
	deck         *flashcards.Deck
	busy         bool
	// genToken identifies the generation request whose response is still
	// welcome. Every state-clearing operation rotates it, so a response
	// arriving for an abandoned request is dropped.
	genToken uuid.UUID

	uploadErr   string
	generateErr string
}

type Option func(*Controller)

func WithUploadTimeout(d time.Duration) Option {
	return func(c *Controller) { c.uploadTimeout = d }
}

func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) { c.requestTimeout = d }
}

func NewController(client *api.Client, chatCtl *chat.Controller, log logger.ILogger, opts ...Option) *Controller {
	c := &Controller{
		client:         client,
		uploader:       upload.NewOrchestrator(client, log),
		chat:           chatCtl,
		repo:           NewHistoryRepository(),
		validate:       validator.New(),
		logger:         log,
		uploadTimeout:  10 * time.Minute,
		requestTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- observers ---

func (c *Controller) Content() *Content {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.content == nil {
		return nil
	}
	cp := *c.content
	return &cp
}

func (c *Controller) ActiveAction() dto.Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeAction
}

func (c *Controller) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

func (c *Controller) Quiz() *quiz.Engine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quizEngine
}

func (c *Controller) Deck() *flashcards.Deck {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deck
}

func (c *Controller) Chat() *chat.Controller { return c.chat }

func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Controller) UploadError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uploadErr
}

func (c *Controller) GenerateError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generateErr
}

// --- operations ---

// Upload ingests one source and adopts the resulting content session.
func (c *Controller) Upload(ctx context.Context, payload api.UploadPayload, onProgress func(upload.Progress)) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	c.uploadErr = ""
	c.generateErr = ""
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.uploadTimeout)
	defer cancel()

	result, err := c.uploader.Run(ctx, payload, onProgress)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			return err
		}
		c.uploadErr = err.Error()
		return err
	}

	c.content = &Content{
		ContentId: result.ContentId,
		InputType: result.InputType,
		Status:    StatusReady,
	}
	c.chat.Reset(result.ContentId)
	c.repo.InvalidateHistory()
	c.logger.Info("session", "content session established", map[string]interface{}{
		"content_id": result.ContentId,
	})
	return nil
}

// StartGeneration runs one generation action against the active content.
// The fixed ordering matters: the previous result and errors are cleared
// before the action is adopted, so no observer ever sees a stale result
// under the new action label.
func (c *Controller) StartGeneration(ctx context.Context, action dto.Action, opts dto.GenerationOptions) error {
	if err := c.validate.Struct(opts); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	c.mu.Lock()
	if c.content == nil {
		c.mu.Unlock()
		return ErrNoActiveContent
	}
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}

	// (1) clear result, (2) clear errors, (3) adopt action and mark busy.
	c.result = nil
	c.quizEngine = nil
	c.deck = nil
	c.uploadErr = ""
	c.generateErr = ""
	c.activeAction = action
	c.busy = true
	c.content.Status = StatusProcessing
	token := uuid.New()
	c.genToken = token
	contentId := c.content.ContentId
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	data, err := c.client.Generate(ctx, opts)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.genToken != token {
		// A newer request owns the state now.
		c.logger.Warn("session", "discarding stale generation response", map[string]interface{}{
			"action": string(action),
		})
		return nil
	}
	c.busy = false

	if err != nil {
		c.activeAction = ""
		c.content.Status = StatusFailed
		if errors.Is(err, api.ErrSessionExpired) {
			return err
		}
		c.generateErr = err.Error()
		c.logger.Error("session", "generation failed", map[string]interface{}{
			"action": string(action),
			"error":  err.Error(),
		})
		return err
	}

	c.content.Status = StatusReady
	c.storeResultLocked(action, normalize.Result(action, data))
	c.repo.InvalidateHistory()
	c.repo.InvalidateOutputs(contentId)
	c.logger.Info("session", "generation complete", map[string]interface{}{
		"action":    string(action),
		"output_id": c.result.OutputId(),
	})
	return nil
}

// SwitchContent adopts a content session from history. Action, result and
// errors are cleared unconditionally first so nothing from the previous
// content leaks into the new one.
func (c *Controller) SwitchContent(contentId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeAction = ""
	c.result = nil
	c.quizEngine = nil
	c.deck = nil
	c.uploadErr = ""
	c.generateErr = ""
	c.busy = false
	// Any in-flight generation belongs to the previous content; its
	// response must not land here.
	c.genToken = uuid.New()
	c.content = &Content{ContentId: contentId, Status: StatusReady}
	c.chat.Reset(contentId)
	c.logger.Info("session", "switched content", map[string]interface{}{"content_id": contentId})
}

// NewSession resets everything, returning to the upload screen. Cached
// lists are dropped too; after a re-login they may belong to a different
// account.
func (c *Controller) NewSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repo.Flush()
	c.content = nil
	c.activeAction = ""
	c.result = nil
	c.quizEngine = nil
	c.deck = nil
	c.uploadErr = ""
	c.generateErr = ""
	c.busy = false
	c.genToken = uuid.New()
	c.chat.Reset("")
}

// CloseResult drops the current result and action so another action can
// be picked; the content session stays.
func (c *Controller) CloseResult() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = nil
	c.quizEngine = nil
	c.deck = nil
	c.activeAction = ""
	c.generateErr = ""
	c.genToken = uuid.New()
	if c.content != nil {
		c.content.Status = StatusReady
	}
}

// OpenOutput loads a stored output as the current result. Chatbot outputs
// bypass normalization: the transcript is rebuilt by the chat controller
// after an explicit reset, so a conversation from another content can
// never remain visible.
func (c *Controller) OpenOutput(ctx context.Context, outputId string, feature dto.Action) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	data, err := c.client.Output(ctx, outputId)
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			return err
		}
		c.mu.Lock()
		c.generateErr = err.Error()
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if feature == dto.ActionChatbot {
		contentId := ""
		if c.content != nil {
			contentId = c.content.ContentId
		}
		c.chat.Reset(contentId)
		c.chat.SeedFromPayload(data)
		c.result = &Result{Action: feature, Data: data}
		c.activeAction = feature
		c.generateErr = ""
		return nil
	}

	c.storeResultLocked(feature, normalize.Result(feature, data))
	return nil
}

// DeleteOutput removes one stored output; if it is the currently open
// result, the result closes with it.
func (c *Controller) DeleteOutput(ctx context.Context, outputId string) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if err := c.client.DeleteOutput(ctx, outputId); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.content != nil {
		c.repo.InvalidateOutputs(c.content.ContentId)
	}
	if c.result.OutputId() == outputId {
		c.result = nil
		c.quizEngine = nil
		c.deck = nil
		c.activeAction = ""
	}
	return nil
}

// DeleteContent removes a content session. Deleting the active one resets
// the whole session state.
func (c *Controller) DeleteContent(ctx context.Context, contentId string) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if err := c.client.DeleteContent(ctx, contentId); err != nil {
		return err
	}

	c.mu.Lock()
	active := c.content != nil && c.content.ContentId == contentId
	c.repo.InvalidateHistory()
	c.repo.InvalidateOutputs(contentId)
	c.mu.Unlock()

	if active {
		c.NewSession()
	}
	return nil
}

// RenameContent updates the history title of a content session.
func (c *Controller) RenameContent(ctx context.Context, contentId, title string) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	if err := c.client.RenameContent(ctx, contentId, title); err != nil {
		return err
	}
	c.repo.InvalidateHistory()
	return nil
}

// History returns the user's content sessions, served from cache unless
// forced.
func (c *Controller) History(ctx context.Context, force bool) ([]dto.HistoryEntry, error) {
	if !force {
		if entries, ok := c.repo.History(); ok {
			return entries, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	entries, err := c.client.History(ctx)
	if err != nil {
		return nil, err
	}
	c.repo.SaveHistory(entries)
	return entries, nil
}

// Outputs lists the stored outputs of the active content.
func (c *Controller) Outputs(ctx context.Context, force bool) ([]dto.OutputEntry, error) {
	c.mu.Lock()
	if c.content == nil {
		c.mu.Unlock()
		return nil, ErrNoActiveContent
	}
	contentId := c.content.ContentId
	c.mu.Unlock()

	if !force {
		if outputs, ok := c.repo.Outputs(contentId); ok {
			return outputs, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	outputs, err := c.client.Outputs(ctx, contentId)
	if err != nil {
		return nil, err
	}
	c.repo.SaveOutputs(contentId, outputs)
	return outputs, nil
}

// storeResultLocked adopts a normalized payload as the single held result
// and builds the interaction state it needs: a quiz engine or a flashcard
// deck. Any prior generation error is cleared by the adoption.
func (c *Controller) storeResultLocked(action dto.Action, data map[string]interface{}) {
	c.result = &Result{Action: action, Data: data}
	c.activeAction = action
	c.quizEngine = nil
	c.deck = nil
	c.generateErr = ""

	switch action {
	case dto.ActionQuiz:
		questions, err := dto.DecodeQuestions(data)
		if err != nil {
			c.dropUnusableResultLocked(err)
			return
		}
		mode, _ := data["mode"].(string)
		c.quizEngine = quiz.NewEngine(quiz.Config{
			Questions:    questions,
			Mode:         mode,
			OutputId:     c.result.OutputId(),
			SavedAnswers: dto.DecodeUserAnswers(data),
			Saver:        c.client,
			Logger:       c.logger,
		})
	case dto.ActionFlashcards:
		cards, err := dto.DecodeFlashcards(data)
		if err != nil {
			c.dropUnusableResultLocked(err)
			return
		}
		c.deck = flashcards.NewDeck(cards)
	}
}

func (c *Controller) dropUnusableResultLocked(err error) {
	c.generateErr = err.Error()
	c.result = nil
	c.activeAction = ""
	c.logger.Error("session", "result payload unusable", map[string]interface{}{"error": err.Error()})
}
