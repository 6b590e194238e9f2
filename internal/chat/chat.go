// Package chat holds a conversation about extracted content with an
// OpenAI-compatible chat model.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Client is the subset of *openai.Client used by Conversation.
type Client interface {
	CreateChatCompletionStream(ctx context.Context, request openai.ChatCompletionRequest) (*openai.ChatCompletionStream, error)
}

// Config selects the endpoint. The model is chosen per conversation.
type Config struct {
	BaseURL string
	APIKey  string
}

// NewClient builds a go-openai client for cfg.
func NewClient(cfg Config) *openai.Client {
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(c)
}

// Turn is one message of the conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation keeps the history for one piece of content. The prompt built
// from the content is sent as the system message of every request.
type Conversation struct {
	client Client
	model  string
	system string
	turns  []Turn
	logger zerolog.Logger
}

func NewConversation(client Client, model, systemPrompt string, logger zerolog.Logger) *Conversation {
	return &Conversation{
		client: client,
		model:  model,
		system: systemPrompt,
		logger: logger.With().Str("component", "chat").Logger(),
	}
}

// Ask sends question and streams the reply into w. Both the question and the
// reply are appended to the history once the stream completes.
func (c *Conversation) Ask(ctx context.Context, question string, w io.Writer) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("empty question")
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: c.messages(question),
		Stream:   true,
	}
	c.logger.Debug().Str("model", c.model).Int("turns", len(c.turns)).Msg("sending question")

	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("start completion: %w", err)
	}
	defer stream.Close()

	var reply strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return reply.String(), fmt.Errorf("read completion: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		reply.WriteString(delta)
		if _, err := io.WriteString(w, delta); err != nil {
			return reply.String(), fmt.Errorf("write reply: %w", err)
		}
	}

	c.turns = append(c.turns,
		Turn{Role: openai.ChatMessageRoleUser, Content: question},
		Turn{Role: openai.ChatMessageRoleAssistant, Content: reply.String()},
	)
	return reply.String(), nil
}

// Turns returns a copy of the history, oldest first.
func (c *Conversation) Turns() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) messages(question string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(c.turns)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.system})
	for _, t := range c.turns {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: question})
}
