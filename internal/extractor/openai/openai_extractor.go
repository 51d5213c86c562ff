package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"invoflow/internal/config"
	"invoflow/internal/extractor"
	"invoflow/internal/port"
)

func init() {
	extractor.RegisterProvider("openai", func(cfg *config.ExtractorConfig) (port.StructuredExtractor, error) {
		return NewExtractor(cfg), nil
	})
}

// Extractor implements port.StructuredExtractor using the OpenAI chat API.
type Extractor struct {
	client *openai.Client
	model  string
}

// NewExtractor creates an OpenAI-based structured extractor.
func NewExtractor(cfg *config.ExtractorConfig) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = openai.GPT4o
	}
	return &Extractor{
		client: openai.NewClient(cfg.APIKey),
		model:  model,
	}
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	text := extractor.BuildRequestText(input.PromptText, input.DocumentText, input.DocumentType)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}

	data, confidence, err := extractor.DecodeModelOutput(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &port.ExtractOutput{
		Data:       data,
		Confidence: confidence,
		ModelUsed:  resp.Model,
	}, nil
}
