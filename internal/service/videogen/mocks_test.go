package videogen

import (
	"context"
	"time"

	"github.com/ChaseRain/logomotion/internal/infra/genaiclient"
	"google.golang.org/genai"
)

const testKey = "secret-key"

type mockConnector struct {
	gen *mockGenerator
	err error
}

func (m *mockConnector) Connect(ctx context.Context) (*genaiclient.Conn, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &genaiclient.Conn{Generator: m.gen, APIKey: testKey}, nil
}

// mockGenerator replays a scripted sequence of operation states.
type mockGenerator struct {
	submitted   *genai.GenerateVideosOperation
	submitErr   error
	states      []*genai.GenerateVideosOperation
	pollErrAt   int
	pollErr     error
	pollCalls   int
	lastModel   string
	lastPrompt  string
	lastImage   *genai.Image
	lastVConfig *genai.GenerateVideosConfig
}

func (m *mockGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return nil, nil
}

func (m *mockGenerator) GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	m.lastModel = model
	m.lastPrompt = prompt
	m.lastImage = image
	m.lastVConfig = config
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if m.submitted != nil {
		return m.submitted, nil
	}
	return &genai.GenerateVideosOperation{Name: "operations/test"}, nil
}

func (m *mockGenerator) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation, config *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error) {
	m.pollCalls++
	if m.pollErr != nil && m.pollCalls == m.pollErrAt {
		return nil, m.pollErr
	}
	if len(m.states) == 0 {
		return &genai.GenerateVideosOperation{Name: op.Name}, nil
	}
	next := m.states[0]
	m.states = m.states[1:]
	return next, nil
}

func pending() *genai.GenerateVideosOperation {
	return &genai.GenerateVideosOperation{Name: "operations/test"}
}

func doneWithURI(uri string) *genai.GenerateVideosOperation {
	return &genai.GenerateVideosOperation{
		Name: "operations/test",
		Done: true,
		Response: &genai.GenerateVideosResponse{
			GeneratedVideos: []*genai.GeneratedVideo{{Video: &genai.Video{URI: uri}}},
		},
	}
}

// countingWait records intervals without sleeping.
type countingWait struct {
	calls     int
	durations []time.Duration
}

func (w *countingWait) wait(ctx context.Context, d time.Duration) error {
	w.calls++
	w.durations = append(w.durations, d)
	return ctx.Err()
}
