// Package anthropic adapts github.com/anthropics/anthropic-sdk-go to
// collaborators.Inference. It is the only package in this module that
// imports the Anthropic SDK directly — the core depends on the Inference
// interface, never on this adapter's concrete type.
package anthropic

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ndk/internal/collaborators"
)

// Config configures the Claude-backed Inference collaborator.
type Config struct {
	APIKey         string
	Model          string
	Timeout        time.Duration
	MaxTokens      int
	Temperature    float32
	RetryDelaySecs []int
}

// Service implements collaborators.Inference against the Anthropic Messages
// API. It has no embedding capability of its own: Embedding always returns
// (nil, nil), per §6.3's "Option<[f32;768]>" — a collaborator is free to
// report "no embedding available" rather than erroring.
type Service struct {
	config Config
	logger arbor.ILogger
	client *anthropic.Client
}

// NewService builds a Service, defaulting Model/MaxTokens/Timeout the way
// the teacher's ClaudeService constructor does.
func NewService(config Config, logger arbor.ILogger) (*Service, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if config.Model == "" {
		config.Model = "claude-sonnet-4-20250514"
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 8192
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if len(config.RetryDelaySecs) == 0 {
		config.RetryDelaySecs = []int{2, 30, 60}
	}

	client := anthropic.NewClient(option.WithAPIKey(config.APIKey))

	return &Service{config: config, logger: logger, client: &client}, nil
}

var _ collaborators.Inference = (*Service)(nil)

// CompletionJSON sends prompt as a single user message (text parts joined,
// blob parts attached as image blocks), instructs the model via the system
// prompt to answer with JSON matching responseSchema, and retries on any
// error per the configured RetryDelaySecs schedule.
func (s *Service) CompletionJSON(ctx context.Context, system string, responseSchema []byte, prompt []collaborators.PromptPart) (string, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(prompt))
	for _, part := range prompt {
		switch part.Kind {
		case collaborators.PromptText:
			blocks = append(blocks, anthropic.NewTextBlock(part.Text))
		case collaborators.PromptBlob:
			blocks = append(blocks, anthropic.NewImageBlockBase64(part.MimeType, encodeBase64(part.Blob)))
		}
	}

	sysText := buildSystemPrompt(system, responseSchema)

	var result string
	err := collaborators.RetrySchedule(ctx, s.config.RetryDelaySecs, func() error {
		timeoutCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()

		resp, err := s.client.Messages.New(timeoutCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(s.config.Model),
			MaxTokens: int64(s.config.MaxTokens),
			System:    []anthropic.TextBlockParam{{Text: sysText}},
			Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		})
		if err != nil {
			return err
		}

		var out strings.Builder
		for _, block := range resp.Content {
			if block.Type == anthropic.ContentBlockTypeText {
				out.WriteString(block.Text)
			}
		}
		if out.Len() == 0 {
			return fmt.Errorf("anthropic: empty completion response")
		}
		result = out.String()
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("anthropic completion_json failed after retries")
		return "", err
	}
	return result, nil
}

// Embedding reports that this collaborator has no embedding capability.
func (s *Service) Embedding(ctx context.Context, content string) ([]float32, error) {
	return nil, nil
}

func buildSystemPrompt(system string, responseSchema []byte) string {
	var b strings.Builder
	if system != "" {
		b.WriteString(system)
		b.WriteString("\n\n")
	}
	b.WriteString("Respond with a single JSON value matching this JSON Schema exactly, with no surrounding prose:\n")
	b.Write(responseSchema)
	return b.String()
}

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
