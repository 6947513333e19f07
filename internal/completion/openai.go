package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/danielpatrickdp/emotion-geometry/internal/prompt"
	"github.com/danielpatrickdp/emotion-geometry/internal/textsignal"
)

// #region client

// OpenAIClient implements Completer over the chat completions API.
type OpenAIClient struct {
	client openai.Client
	config Config
}

// NewOpenAIClient creates a client. Retries are handled here, so the SDK's
// own retry loop is disabled.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{client: openai.NewClient(opts...), config: cfg}, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

// #endregion

// #region complete

// Complete sends the system prompt plus the last prompt.ContextWindow
// messages and returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	params := c.params(req)
	resp, err := withRetry(ctx, c.config, func(ctx context.Context) (*openai.ChatCompletion, error) {
		return c.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// #endregion

// #region stream

// Stream is Complete with incremental delivery. Failures before the first
// delta are retried; after that the partial text is returned with the error.
func (c *OpenAIClient) Stream(ctx context.Context, req Request, onDelta func(string) error) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	params := c.params(req)
	return withRetry(ctx, c.config, func(ctx context.Context) (string, error) {
		stream := c.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		var b strings.Builder
		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			b.WriteString(delta)
			if onDelta != nil {
				if err := onDelta(delta); err != nil {
					return b.String(), permanent(fmt.Errorf("stream consumer: %w", err))
				}
			}
		}
		if err := stream.Err(); err != nil {
			if b.Len() > 0 {
				return b.String(), permanent(fmt.Errorf("stream interrupted: %w", err))
			}
			return "", err
		}
		if b.Len() == 0 {
			return "", ErrNoChoices
		}
		return b.String(), nil
	})
}

// #endregion

// #region params

func (c *OpenAIClient) params(req Request) openai.ChatCompletionNewParams {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = prompt.MaxTokens
	}
	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.config.Model),
		Messages:    toMessages(req.System, req.Messages),
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
	}
}

func toMessages(system string, messages []textsignal.Message) []openai.ChatCompletionMessageParamUnion {
	window := prompt.Window(messages)
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(window)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, m := range window {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		switch m.Role {
		case textsignal.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		case textsignal.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// #endregion
