package orchestrator

import (
	"context"
	"sync"

	"github.com/ChaseRain/logomotion/internal/infra/limiter"
	"github.com/ChaseRain/logomotion/internal/infra/logger"
	"github.com/ChaseRain/logomotion/internal/service/imagegen"
	"github.com/ChaseRain/logomotion/internal/service/videogen"
)

type mockImages struct {
	mu         sync.Mutex
	calls      int
	lastPrompt string
	lastSize   string
	generate   func(ctx context.Context, prompt, size string) (*imagegen.GeneratedImage, error)
}

func (m *mockImages) GenerateLogo(ctx context.Context, prompt, imageSize string) (*imagegen.GeneratedImage, error) {
	m.mu.Lock()
	m.calls++
	m.lastPrompt = prompt
	m.lastSize = imageSize
	m.mu.Unlock()
	if m.generate != nil {
		return m.generate(ctx, prompt, imageSize)
	}
	return imagegen.NewGeneratedImage([]byte{0, 0, 0}, "image/png"), nil
}

func (m *mockImages) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockVideos struct {
	mu      sync.Mutex
	calls   int
	lastReq videogen.Request
	animate func(ctx context.Context, req videogen.Request) (*videogen.GeneratedVideo, error)
}

func (m *mockVideos) Animate(ctx context.Context, req videogen.Request) (*videogen.GeneratedVideo, error) {
	m.mu.Lock()
	m.calls++
	m.lastReq = req
	m.mu.Unlock()
	if m.animate != nil {
		return m.animate(ctx, req)
	}
	return &videogen.GeneratedVideo{URI: "https://example.com/v.mp4?key=k", MIMEType: videogen.VideoMIMEType}, nil
}

func (m *mockVideos) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newTestOrchestrator(images *mockImages, videos *mockVideos) *Orchestrator {
	return New(images, videos, limiter.New(4, 100), logger.Nop())
}
