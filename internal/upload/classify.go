package upload

import (
	"path/filepath"
	"strings"

	"edugen-client/internal/api"
)

// InputType labels the source material for progress display. Purely
// advisory; the server does its own detection.
type InputType string

const (
	InputText    InputType = "text"
	InputYouTube InputType = "youtube"
	InputVideo   InputType = "video"
	InputPDF     InputType = "pdf"
	InputWord    InputType = "word"
	InputFile    InputType = "file"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mov": true,
	".mkv": true, ".flv": true, ".wmv": true,
}

// Classify inspects the payload: a URL wins over inline text, inline text
// over a file, and files are labeled by extension.
func Classify(p api.UploadPayload) InputType {
	switch {
	case p.YouTubeURL != "":
		return InputYouTube
	case p.Text != "":
		return InputText
	}

	ext := strings.ToLower(filepath.Ext(p.FileName))
	switch {
	case videoExtensions[ext]:
		return InputVideo
	case ext == ".pdf":
		return InputPDF
	case ext == ".doc" || ext == ".docx":
		return InputWord
	}
	return InputFile
}
