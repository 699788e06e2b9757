// Package quiz holds the per-attempt interaction state machine for one
// quiz result. Test mode collects answers and scores on submit; practice
// mode is a read-only study guide with answers shown up front.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"edugen-client/internal/dto"
	"edugen-client/internal/pkg/logger"
)

var (
	ErrPracticeMode     = errors.New("practice mode has no submission")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	ErrIncomplete       = errors.New("all questions must be answered before submitting")
	ErrUnknownQuestion  = errors.New("unknown question id")
)

// ScoreSaver persists the attempt. Satisfied by *api.Client.
type ScoreSaver interface {
	SaveScore(ctx context.Context, outputId string, req dto.ScoreRequest) error
}

type Score struct {
	Correct    int
	Total      int
	Percentage int
}

// Grade maps the percentage to the letter band shown next to a finished
// test.
func (s Score) Grade() string {
	switch {
	case s.Percentage >= 90:
		return "A"
	case s.Percentage >= 80:
		return "B"
	case s.Percentage >= 70:
		return "C"
	case s.Percentage >= 60:
		return "D"
	}
	return "F"
}

// Engine is the state machine for one attempt. Answering -> Submitted,
// re-entered through Retake. scoreSaved guards persistence: a remount that
// submits again must not write a second score row.
type Engine struct {
	questions []dto.QuizQuestion
	testMode  bool
	outputId  string

	answers    map[string]string
	submitted  bool
	scoreSaved bool

	saver  ScoreSaver
	logger logger.ILogger
}

// Config seeds an engine. SavedAnswers, when present (a historical test
// attempt), starts the engine submitted with persistence already done.
type Config struct {
	Questions    []dto.QuizQuestion
	Mode         string
	OutputId     string
	SavedAnswers map[string]string
	Saver        ScoreSaver
	Logger       logger.ILogger
}

func NewEngine(cfg Config) *Engine {
	e := &Engine{
		questions: cfg.Questions,
		testMode:  strings.EqualFold(cfg.Mode, "test"),
		outputId:  cfg.OutputId,
		answers:   make(map[string]string),
		saver:     cfg.Saver,
		logger:    cfg.Logger,
	}
	if e.logger == nil {
		e.logger = logger.NopLogger{}
	}
	if e.testMode && len(cfg.SavedAnswers) > 0 {
		for id, key := range cfg.SavedAnswers {
			e.answers[id] = key
		}
		e.submitted = true
		e.scoreSaved = true
	}
	return e
}

func (e *Engine) TestMode() bool                { return e.testMode }
func (e *Engine) Submitted() bool               { return e.submitted }
func (e *Engine) Questions() []dto.QuizQuestion { return e.questions }

func (e *Engine) Answers() map[string]string {
	out := make(map[string]string, len(e.answers))
	for id, key := range e.answers {
		out[id] = key
	}
	return out
}

// Complete reports whether every question has an answer; Submit refuses
// until it does and callers disable the submit affordance off it.
func (e *Engine) Complete() bool {
	return len(e.answers) == len(e.questions)
}

// SelectAnswer records the option for one question, overwriting any prior
// selection. Rejected after submission and in practice mode.
func (e *Engine) SelectAnswer(questionId, optionKey string) error {
	if !e.testMode {
		return ErrPracticeMode
	}
	if e.submitted {
		return ErrAlreadySubmitted
	}
	q := e.question(questionId)
	if q == nil {
		return ErrUnknownQuestion
	}
	if _, ok := q.Options[optionKey]; !ok {
		return fmt.Errorf("question %s has no option %q", questionId, optionKey)
	}
	e.answers[questionId] = optionKey
	return nil
}

// Submit scores the attempt and persists it exactly once. Calling it again
// (a remount re-submitting) returns the same score without a second save.
// A failed save is logged and left retryable; the score itself stands.
func (e *Engine) Submit(ctx context.Context) (Score, error) {
	if !e.testMode {
		return Score{}, ErrPracticeMode
	}
	if !e.submitted && !e.Complete() {
		return Score{}, ErrIncomplete
	}
	e.submitted = true

	score := e.score()
	if !e.scoreSaved && e.outputId != "" && e.saver != nil {
		req := dto.ScoreRequest{
			Score:       score.Correct,
			Total:       score.Total,
			Percentage:  score.Percentage,
			UserAnswers: e.Answers(),
		}
		if err := e.saver.SaveScore(ctx, e.outputId, req); err != nil {
			e.logger.Warn("quiz", "failed to save score", map[string]interface{}{
				"output_id": e.outputId,
				"error":     err.Error(),
			})
		} else {
			e.scoreSaved = true
			e.logger.Info("quiz", "score saved", map[string]interface{}{
				"output_id":  e.outputId,
				"percentage": score.Percentage,
			})
		}
	}
	return score, nil
}

// Retake discards the attempt, including the visibility of any stored one;
// the next submission overwrites the saved score.
func (e *Engine) Retake() {
	e.answers = make(map[string]string)
	e.submitted = false
	e.scoreSaved = false
}

func (e *Engine) score() Score {
	correct := 0
	for _, q := range e.questions {
		if e.answers[q.Id] == q.CorrectAnswer {
			correct++
		}
	}
	total := len(e.questions)
	pct := 0
	if total > 0 {
		pct = int(math.Round(100 * float64(correct) / float64(total)))
	}
	return Score{Correct: correct, Total: total, Percentage: pct}
}

func (e *Engine) question(id string) *dto.QuizQuestion {
	for i := range e.questions {
		if e.questions[i].Id == id {
			return &e.questions[i]
		}
	}
	return nil
}
