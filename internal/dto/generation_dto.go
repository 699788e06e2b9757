package dto

import (
	"net/url"
	"strconv"
)

// Action is one generation feature of the platform.
type Action string

const (
	ActionSummary    Action = "summary"
	ActionFlashcards Action = "flashcards"
	ActionQuiz       Action = "quiz"
	ActionPPT        Action = "presentation"
	ActionChatbot    Action = "chatbot"
)

func (a Action) Valid() bool {
	switch a {
	case ActionSummary, ActionFlashcards, ActionQuiz, ActionPPT, ActionChatbot:
		return true
	}
	return false
}

// GenerationOptions is the action-specific form payload of a generation
// request. Endpoint returns the path segment under /content.
type GenerationOptions interface {
	Endpoint() string
	Form() url.Values
}

type SummaryOptions struct {
	ContentId   string `validate:"required"`
	SummaryType string `validate:"required,oneof=brief detailed bullet_points"`
}

func (o SummaryOptions) Endpoint() string { return "summary" }

func (o SummaryOptions) Form() url.Values {
	return url.Values{
		"content_id":   {o.ContentId},
		"summary_type": {o.SummaryType},
	}
}

type FlashcardsOptions struct {
	ContentId     string `validate:"required"`
	FlashcardType string `validate:"required"`
	NumberOfCards int    `validate:"min=1,max=50"`
}

func (o FlashcardsOptions) Endpoint() string { return "flashcards" }

func (o FlashcardsOptions) Form() url.Values {
	return url.Values{
		"content_id":      {o.ContentId},
		"flashcard_type":  {o.FlashcardType},
		"number_of_cards": {strconv.Itoa(o.NumberOfCards)},
	}
}

type QuizOptions struct {
	ContentId         string `validate:"required"`
	NumberOfQuestions int    `validate:"min=1,max=20"`
	Difficulty        string `validate:"required,oneof=easy medium hard"`
	Mode              string `validate:"required,oneof=Practice Test practice test"`
}

func (o QuizOptions) Endpoint() string { return "quiz" }

func (o QuizOptions) Form() url.Values {
	return url.Values{
		"content_id":          {o.ContentId},
		"number_of_questions": {strconv.Itoa(o.NumberOfQuestions)},
		"difficulty":          {o.Difficulty},
		"mode":                {o.Mode},
	}
}

type PPTOptions struct {
	ContentId     string `validate:"required"`
	SlideCount    int    `validate:"min=1,max=30"`
	Theme         string `validate:"required"`
	IncludeImages bool
}

func (o PPTOptions) Endpoint() string { return "presentation" }

func (o PPTOptions) Form() url.Values {
	return url.Values{
		"content_id":     {o.ContentId},
		"slide_count":    {strconv.Itoa(o.SlideCount)},
		"theme":          {o.Theme},
		"include_images": {strconv.FormatBool(o.IncludeImages)},
	}
}
