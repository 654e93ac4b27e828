package openai

import (
	"TemanCerita/pkg/nlp"
	"context"
	"errors"
	"os"

	"github.com/sashabaranov/go-openai"
)

type IChatGPT interface {
	nlp.IClassifier
}

type chatGPTService struct {
	client *openai.Client
	model  string
	tags   []string
}

// NewChatGPT classifies utterances into one of tags with an OpenAI chat
// model. OPENAI_BASE_URL points it at a compatible server.
func NewChatGPT(tags []string) (IChatGPT, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return NewWithClient(openai.NewClientWithConfig(cfg), os.Getenv("OPENAI_CHAT_MODEL"), tags), nil
}

func NewWithClient(client *openai.Client, model string, tags []string) IChatGPT {
	if model == "" {
		model = openai.GPT4oMini
	}

	return &chatGPTService{
		client: client,
		model:  model,
		tags:   tags,
	}
}

func (c *chatGPTService) Classify(ctx context.Context, text string) (*nlp.Classification, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: nlp.IntentInstruction(c.tags)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI API")
	}

	return nlp.ParsePrediction(resp.Choices[0].Message.Content)
}
