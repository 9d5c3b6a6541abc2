// Package genaiclient builds Gemini API connections from the current credential.
package genaiclient

import (
	"context"
	"net/http"

	"github.com/ChaseRain/logomotion/pkg/errors"
	"google.golang.org/genai"
)

// Generator is the subset of the genai SDK the generation services call.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation, config *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error)
}

// Conn pairs a Generator with the key it was built from.
type Conn struct {
	Generator
	APIKey string
}

type Connector interface {
	Connect(ctx context.Context) (*Conn, error)
}

// CredentialSource is read on every Connect, never cached.
type CredentialSource interface {
	APIKey() string
}

type Factory struct {
	creds      CredentialSource
	httpClient *http.Client
}

func NewFactory(creds CredentialSource, httpClient *http.Client) *Factory {
	return &Factory{
		creds:      creds,
		httpClient: httpClient,
	}
}

func (f *Factory) Connect(ctx context.Context) (*Conn, error) {
	key := ""
	if f.creds != nil {
		key = f.creds.APIKey()
	}
	if key == "" {
		return nil, errors.New(errors.ErrCodeCredentialMissing, "API key not found, select a key first")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: f.httpClient,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRemoteCall, "failed to create genai client")
	}

	return &Conn{Generator: &sdkGenerator{client: client}, APIKey: key}, nil
}

type sdkGenerator struct {
	client *genai.Client
}

func (g *sdkGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.client.Models.GenerateContent(ctx, model, contents, config)
}

func (g *sdkGenerator) GenerateVideos(ctx context.Context, model, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	return g.client.Models.GenerateVideos(ctx, model, prompt, image, config)
}

func (g *sdkGenerator) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation, config *genai.GetOperationConfig) (*genai.GenerateVideosOperation, error) {
	return g.client.Operations.GetVideosOperation(ctx, op, config)
}
