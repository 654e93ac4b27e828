package gemini

import (
	"TemanCerita/pkg/nlp"
	"context"
	"errors"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type IGemini interface {
	nlp.IClassifier
	Close()
}

type geminiClient struct {
	apiKey    string
	modelName string
	client    *genai.Client
	tags      []string
}

// NewGeminiClient classifies utterances into one of tags with a Gemini model.
func NewGeminiClient(tags []string) (IGemini, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")

	modelName := os.Getenv("GEMINI_MODEL_NAME")
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiClient{
		apiKey:    apiKey,
		modelName: modelName,
		client:    client,
		tags:      tags,
	}, nil
}

func (g *geminiClient) Classify(ctx context.Context, text string) (*nlp.Classification, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = genai.NewUserContent(genai.Text(nlp.IntentInstruction(g.tags)))
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0)

	res, err := model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("no response from Gemini API")
	}

	response := res.Candidates[0].Content.Parts[0]
	out, ok := response.(genai.Text)
	if !ok {
		return nil, errors.New("unexpected response format from Gemini API")
	}

	return nlp.ParsePrediction(string(out))
}

func (g *geminiClient) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
