package main

import (
	"strings"
	"testing"

	"edugen-client/internal/dto"
	"edugen-client/internal/flashcards"
	"edugen-client/internal/quiz"
)

func oneQuestionEngine(mode string) *quiz.Engine {
	return quiz.NewEngine(quiz.Config{
		Questions: []dto.QuizQuestion{{
			Id:            "q1",
			Question:      "What organelle produces ATP?",
			Options:       map[string]string{"a": "Mitochondria"},
			CorrectAnswer: "a",
			Explanation:   "Cellular respiration happens there.",
		}},
		Mode: mode,
	})
}

func TestRenderQuizPracticeShowsAnswers(t *testing.T) {
	var buf strings.Builder
	renderQuiz(&buf, oneQuestionEngine("Practice"))
	out := buf.String()

	if !strings.Contains(out, "Answer: a") {
		t.Errorf("practice output missing answer:\n%s", out)
	}
	if !strings.Contains(out, "Cellular respiration happens there.") {
		t.Errorf("practice output missing explanation:\n%s", out)
	}
	if strings.Contains(out, "Test mode") {
		t.Errorf("practice output carries test-mode prompt:\n%s", out)
	}
}

func TestRenderQuizTestHidesAnswers(t *testing.T) {
	var buf strings.Builder
	renderQuiz(&buf, oneQuestionEngine("Test"))
	out := buf.String()

	if strings.Contains(out, "Answer:") {
		t.Errorf("test output reveals the answer:\n%s", out)
	}
	if !strings.Contains(out, "Test mode") {
		t.Errorf("test output missing submit prompt:\n%s", out)
	}
}

func TestRenderCard(t *testing.T) {
	deck := flashcards.NewDeck([]dto.Flashcard{
		{Front: "Osmosis", Back: "Diffusion of water across a membrane"},
		{Front: "Enzyme", Back: "Biological catalyst"},
	})

	var buf strings.Builder
	renderCard(&buf, deck)
	if out := buf.String(); !strings.Contains(out, "Card 1/2 (front): Osmosis") {
		t.Errorf("front render = %q", out)
	}

	deck.Flip()
	buf.Reset()
	renderCard(&buf, deck)
	if out := buf.String(); !strings.Contains(out, "Card 1/2 (back): Diffusion of water across a membrane") {
		t.Errorf("back render = %q", out)
	}

	buf.Reset()
	renderCard(&buf, flashcards.NewDeck(nil))
	if out := buf.String(); !strings.Contains(out, "deck is empty") {
		t.Errorf("empty render = %q", out)
	}
}
