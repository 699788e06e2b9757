package dto

import (
	"encoding/json"
	"fmt"
)

// QuizQuestion is one question of a generated quiz. Options are keyed by
// letter ("A".."D"); CorrectAnswer holds the key of the right option.
type QuizQuestion struct {
	Id            string            `json:"id"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation,omitempty"`
}

// Flashcard is one front/back card of a generated deck.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type ScoreRequest struct {
	Score       int               `json:"score"`
	Total       int               `json:"total"`
	Percentage  int               `json:"percentage"`
	UserAnswers map[string]string `json:"user_answers,omitempty"`
}

// DecodeQuestions extracts the question list out of a result payload. The
// generator sometimes nests the list one level deeper ({"quiz": {"quiz":
// [...]}}), so both shapes are accepted. A payload carrying raw_response
// instead of a list is a failed generation and reported as such.
func DecodeQuestions(payload map[string]interface{}) ([]QuizQuestion, error) {
	raw, ok := payload["quiz"]
	if !ok {
		return nil, fmt.Errorf("payload has no quiz field")
	}

	if nested, ok := raw.(map[string]interface{}); ok {
		if rr, ok := nested["raw_response"]; ok {
			return nil, fmt.Errorf("quiz generation failed: %v", rr)
		}
		raw = nested["quiz"]
	}

	var questions []QuizQuestion
	if err := reencode(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode quiz questions: %w", err)
	}
	return questions, nil
}

// DecodeFlashcards extracts the card list, accepting the same direct and
// nested shapes as DecodeQuestions.
func DecodeFlashcards(payload map[string]interface{}) ([]Flashcard, error) {
	raw, ok := payload["flashcards"]
	if !ok {
		return nil, fmt.Errorf("payload has no flashcards field")
	}

	if nested, ok := raw.(map[string]interface{}); ok {
		if rr, ok := nested["raw_response"]; ok {
			return nil, fmt.Errorf("flashcard generation failed: %v", rr)
		}
		raw = nested["flashcards"]
	}

	var cards []Flashcard
	if err := reencode(raw, &cards); err != nil {
		return nil, fmt.Errorf("decode flashcards: %w", err)
	}
	return cards, nil
}

// DecodeUserAnswers reads a saved answers map off a historical quiz payload.
// Returns nil when the attempt was never submitted.
func DecodeUserAnswers(payload map[string]interface{}) map[string]string {
	raw, ok := payload["user_answers"]
	if !ok || raw == nil {
		return nil
	}
	answers := make(map[string]string)
	if err := reencode(raw, &answers); err != nil || len(answers) == 0 {
		return nil
	}
	return answers
}

func reencode(from interface{}, to interface{}) error {
	if from == nil {
		return fmt.Errorf("missing value")
	}
	b, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, to)
}
