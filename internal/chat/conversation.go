// Package chat owns the grounded-chatbot conversation for the active
// content. Conversation state never leaks across content switches: the
// controller is explicitly Reset with the new content id instead of
// relying on the surrounding view being torn down.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edugen-client/internal/api"
	"edugen-client/internal/dto"
	"edugen-client/internal/pkg/logger"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Id        uuid.UUID
	Role      string
	Content   string
	IsError   bool
	Timestamp time.Time
}

type Controller struct {
	client *api.Client
	logger logger.ILogger

	contentId string
	messages  []Message
}

func NewController(client *api.Client, log logger.ILogger) *Controller {
	return &Controller{client: client, logger: log}
}

func (c *Controller) ContentId() string { return c.contentId }

func (c *Controller) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Reset clears the transcript and keys the controller to a new content.
func (c *Controller) Reset(contentId string) {
	c.contentId = contentId
	c.messages = nil
}

// LoadConversation seeds the transcript from the stored chatbot output of
// the current content, if one exists. Returns whether anything was loaded.
func (c *Controller) LoadConversation(ctx context.Context) (bool, error) {
	if c.contentId == "" {
		return false, nil
	}

	outputs, err := c.client.Outputs(ctx, c.contentId)
	if err != nil {
		return false, err
	}

	for _, out := range outputs {
		if out.Feature != string(dto.ActionChatbot) || out.Output == nil {
			continue
		}
		return c.seedFromOutput(out.Output), nil
	}
	return false, nil
}

// SeedFromPayload loads the transcript out of an already-fetched chatbot
// output payload (the wrapped historical shape).
func (c *Controller) SeedFromPayload(payload map[string]interface{}) bool {
	output, ok := payload["output"].(map[string]interface{})
	if !ok {
		return false
	}
	return c.seedFromOutput(output)
}

func (c *Controller) seedFromOutput(output map[string]interface{}) bool {
	conversation, ok := output["conversation"].([]interface{})
	if !ok || len(conversation) == 0 {
		return false
	}

	var loaded []Message
	for _, raw := range conversation {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		role, _ := entry["role"].(string)
		content, _ := entry["content"].(string)
		if content == "" || (role != RoleUser && role != RoleAssistant) {
			continue
		}
		loaded = append(loaded, Message{
			Id:        uuid.New(),
			Role:      role,
			Content:   content,
			Timestamp: time.Now(),
		})
	}
	if len(loaded) == 0 {
		return false
	}

	c.messages = loaded
	c.logger.Info("chat", "conversation restored", map[string]interface{}{
		"content_id": c.contentId,
		"messages":   len(loaded),
	})
	return true
}

// Send posts one question with the prior transcript as history. The user
// message is recorded before the call; a failure appends an error message
// to the transcript (mirroring the inline error bubble) and is returned.
func (c *Controller) Send(ctx context.Context, question string) (*Message, error) {
	if c.contentId == "" {
		return nil, fmt.Errorf("no active content")
	}
	if question == "" {
		return nil, fmt.Errorf("question is empty")
	}

	history := make([]dto.ChatMessage, 0, len(c.messages))
	for _, m := range c.messages {
		if m.IsError {
			continue
		}
		history = append(history, dto.ChatMessage{Role: m.Role, Content: m.Content})
	}

	c.messages = append(c.messages, Message{
		Id:        uuid.New(),
		Role:      RoleUser,
		Content:   question,
		Timestamp: time.Now(),
	})

	resp, err := c.client.Chat(ctx, dto.ChatRequest{
		ContentId:   c.contentId,
		Question:    question,
		ChatHistory: history,
	})
	if err != nil {
		if errors.Is(err, api.ErrSessionExpired) {
			return nil, err
		}
		c.messages = append(c.messages, Message{
			Id:        uuid.New(),
			Role:      RoleAssistant,
			Content:   fmt.Sprintf("Error: %s", err.Error()),
			IsError:   true,
			Timestamp: time.Now(),
		})
		return nil, err
	}

	reply := Message{
		Id:        uuid.New(),
		Role:      RoleAssistant,
		Content:   resp.Answer,
		Timestamp: time.Now(),
	}
	c.messages = append(c.messages, reply)
	return &reply, nil
}
