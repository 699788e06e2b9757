package dto

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	ContentId   string        `validate:"required"`
	Question    string        `validate:"required"`
	ChatHistory []ChatMessage `validate:"dive"`
}

type ChatResponse struct {
	ContentId string `json:"content_id"`
	Answer    string `json:"answer"`
	OutputId  string `json:"output_id"`
}
