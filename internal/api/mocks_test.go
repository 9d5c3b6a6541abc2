package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/ChaseRain/logomotion/internal/infra/limiter"
	"github.com/ChaseRain/logomotion/internal/infra/logger"
	"github.com/ChaseRain/logomotion/internal/service/imagegen"
	"github.com/ChaseRain/logomotion/internal/service/orchestrator"
	"github.com/ChaseRain/logomotion/internal/service/videogen"
	"github.com/gin-gonic/gin"
)

type mockGate struct {
	mu            sync.Mutex
	unlocked      bool
	hasCredential bool
	connects      int
}

func (g *mockGate) Verify(ctx context.Context) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.hasCredential {
		g.unlocked = true
	}
	return g.unlocked
}

func (g *mockGate) Connect(ctx context.Context) bool {
	g.mu.Lock()
	g.connects++
	g.mu.Unlock()
	return g.Verify(ctx)
}

func (g *mockGate) Unlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlocked
}

type mockKeys struct {
	gate     *mockGate
	selected string
}

func (k *mockKeys) Select(key string) {
	k.selected = key
	k.gate.mu.Lock()
	k.gate.hasCredential = key != ""
	k.gate.mu.Unlock()
}

type mockDownloader struct {
	mu      sync.Mutex
	lastURL string
	body    string
	err     error
}

func (d *mockDownloader) Get(ctx context.Context, url string) (*http.Response, error) {
	d.mu.Lock()
	d.lastURL = url
	d.mu.Unlock()
	if d.err != nil {
		return nil, d.err
	}
	return &http.Response{
		StatusCode:    http.StatusOK,
		Header:        http.Header{"Content-Type": []string{"video/mp4"}},
		Body:          io.NopCloser(strings.NewReader(d.body)),
		ContentLength: int64(len(d.body)),
	}, nil
}

type mockImages struct {
	mu       sync.Mutex
	calls    int
	lastSize string
	err      error
}

func (m *mockImages) GenerateLogo(ctx context.Context, prompt, imageSize string) (*imagegen.GeneratedImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastSize = imageSize
	if m.err != nil {
		return nil, m.err
	}
	return imagegen.NewGeneratedImage([]byte{0, 0, 0}, "image/png"), nil
}

type mockVideos struct {
	err error
}

func (m *mockVideos) Animate(ctx context.Context, req videogen.Request) (*videogen.GeneratedVideo, error) {
	if req.OnPoll != nil {
		req.OnPoll(1)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &videogen.GeneratedVideo{URI: "https://files.example.com/v.mp4?alt=media&key=secret", MIMEType: videogen.VideoMIMEType}, nil
}

type testEnv struct {
	router     *gin.Engine
	gate       *mockGate
	keys       *mockKeys
	downloader *mockDownloader
	images     *mockImages
	videos     *mockVideos
	lim        *limiter.Limiter
	orch       *orchestrator.Orchestrator
}

func newTestEnv(unlocked bool) *testEnv {
	env := &testEnv{
		gate:       &mockGate{unlocked: unlocked},
		downloader: &mockDownloader{body: "mp4data"},
		images:     &mockImages{},
		videos:     &mockVideos{},
	}
	env.keys = &mockKeys{gate: env.gate}
	env.lim = limiter.New(4, 100)
	env.orch = orchestrator.New(env.images, env.videos, env.lim, logger.Nop())
	env.router = NewRouter(env.orch, env.gate, env.keys, env.downloader, logger.Nop())
	return env
}
