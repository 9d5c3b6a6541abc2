package imagegen

import (
	"context"

	"github.com/ChaseRain/logomotion/internal/infra/genaiclient"
	"google.golang.org/genai"
)

type mockConnector struct {
	gen *mockGenerator
	err error
}

func (m *mockConnector) Connect(ctx context.Context) (*genaiclient.Conn, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &genaiclient.Conn{Generator: m.gen, APIKey: "test-key"}, nil
}

type mockGenerator struct {
	calls        int
	lastModel    string
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig

	generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls++
	m.lastModel = model
	m.lastContents = contents
	m.lastConfig = config
	if m.generateFunc != nil {
		return m.generateFunc(ctx, model, contents, config)
	}
	return nil, nil
}

func (m *mockGenerator) GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	return nil, nil
}

func (m *mockGenerator) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation, config *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error) {
	return nil, nil
}

func responseWithParts(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: parts}},
		},
	}
}
