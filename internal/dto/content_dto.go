package dto

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Email       string `json:"email"`
}

type HistoryEntry struct {
	ContentId string `json:"content_id"`
	InputType string `json:"input_type"`
	CreatedAt string `json:"created_at"`
	Preview   string `json:"preview"`
	Title     string `json:"title,omitempty"`
}

type HistoryResponse struct {
	History []HistoryEntry `json:"history"`
}

// OutputEntry is one stored generation output as listed per content.
// Output carries the raw stored payload; the chatbot loader reads the
// conversation out of it, everything else goes through normalization
// only when the full output is fetched.
type OutputEntry struct {
	OutputId  string                 `json:"output_id"`
	Feature   string                 `json:"feature"`
	Options   map[string]interface{} `json:"options"`
	CreatedAt string                 `json:"created_at"`
	Score     map[string]interface{} `json:"score,omitempty"`
	Output    map[string]interface{} `json:"output,omitempty"`
}

type OutputsResponse struct {
	ContentId string        `json:"content_id"`
	Outputs   []OutputEntry `json:"outputs"`
}

type RenameContentRequest struct {
	Title string `json:"title" validate:"required"`
}
