package gate

import (
	"context"
	"fmt"
	"sync"

	"github.com/ChaseRain/logomotion/internal/infra/logger"
	"github.com/ChaseRain/logomotion/pkg/errors"
)

// Host is the environment capability that knows whether a credential is selected
// and can run an interactive selection flow.
type Host interface {
	HasSelectedCredential(ctx context.Context) (bool, error)
	OpenCredentialSelection(ctx context.Context) error
}

// Gate unlocks the workspace once a usable credential is confirmed.
// Once unlocked it stays unlocked for the session.
type Gate struct {
	host   Host
	logger *logger.Logger

	mu       sync.RWMutex
	unlocked bool
}

// New accepts a nil host; the gate then never unlocks.
func New(host Host, log *logger.Logger) *Gate {
	return &Gate{
		host:   host,
		logger: log,
	}
}

// HasCredential never fails: a missing host or any host failure counts as "not verified".
func (g *Gate) HasCredential(ctx context.Context) (ok bool) {
	if g.host == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("error checking API key", "error", errors.New(errors.ErrCodeGateCheck, fmt.Sprint(r)))
			ok = false
		}
	}()

	has, err := g.host.HasSelectedCredential(ctx)
	if err != nil {
		g.logger.Error("error checking API key", "error", errors.Wrap(err, errors.ErrCodeGateCheck, "host check failed"))
		return false
	}
	return has
}

// RequestCredentialSelection runs the host flow. It does not verify the outcome.
func (g *Gate) RequestCredentialSelection(ctx context.Context) {
	if g.host == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("failed to select key", "error", fmt.Sprint(r))
		}
	}()

	if err := g.host.OpenCredentialSelection(ctx); err != nil {
		g.logger.Error("failed to select key", "error", err)
	}
}

// Verify is the mount check: it unlocks when a credential is already active.
func (g *Gate) Verify(ctx context.Context) bool {
	if g.Unlocked() {
		return true
	}
	if !g.HasCredential(ctx) {
		return false
	}
	g.mu.Lock()
	g.unlocked = true
	g.mu.Unlock()
	g.logger.Info("credential verified, workspace unlocked")
	return true
}

// Connect is the user action: select, then re-check.
func (g *Gate) Connect(ctx context.Context) bool {
	g.RequestCredentialSelection(ctx)
	return g.Verify(ctx)
}

func (g *Gate) Unlocked() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.unlocked
}
