package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ITranscriber turns a recorded voice note into text.
type ITranscriber interface {
	Transcribe(ctx context.Context, fileName string, audio []byte) (string, error)
}

type transcriptionService struct {
	client   *openai.Client
	language string
}

// NewTranscriptionService uses Whisper through OPENAI_API_KEY and, when set,
// OPENAI_BASE_URL.
func NewTranscriptionService() (ITranscriber, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("openai API key is required for transcription")
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return NewWithClient(openai.NewClientWithConfig(cfg)), nil
}

func NewWithClient(client *openai.Client) ITranscriber {
	return &transcriptionService{
		client:   client,
		language: "id", // Indonesian language
	}
}

func (t *transcriptionService) Transcribe(ctx context.Context, fileName string, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("empty audio")
	}

	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: fileName,
		Reader:   bytes.NewReader(audio),
		Language: t.language,
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}
