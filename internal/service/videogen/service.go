package videogen

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/ChaseRain/logomotion/internal/infra/genaiclient"
	"github.com/ChaseRain/logomotion/internal/infra/logger"
	"github.com/ChaseRain/logomotion/pkg/errors"
	"google.golang.org/genai"
)

const (
	DefaultPrompt   = "Animate this logo cinematically"
	VideoMIMEType   = "video/mp4"
	sourceImageMIME = "image/png"
)

type GeneratedVideo struct {
	// URI is credential-qualified and fetchable on its own.
	URI      string
	MIMEType string
}

type Request struct {
	ImageData     []byte
	ImageMIMEType string
	Prompt        string
	AspectRatio   string
	// OnPoll, if set, is called before each status check with the 1-based attempt.
	OnPoll func(attempt int)
}

type Options struct {
	Model        string
	Resolution   string
	PollInterval time.Duration
	MaxPolls     int
	// MaxDuration of zero leaves only the MaxPolls bound.
	MaxDuration time.Duration
}

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

type Service struct {
	connector genaiclient.Connector
	opts      Options
	wait      WaitFunc
	now       func() time.Time
	logger    *logger.Logger
}

func New(connector genaiclient.Connector, opts Options, log *logger.Logger) *Service {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.MaxPolls <= 0 {
		opts.MaxPolls = 120
	}
	if opts.Resolution == "" {
		opts.Resolution = "720p"
	}
	return &Service{
		connector: connector,
		opts:      opts,
		wait:      sleep,
		now:       time.Now,
		logger:    log,
	}
}

// WithWait replaces the poll wait, mainly for tests.
func (s *Service) WithWait(wait WaitFunc) *Service {
	s.wait = wait
	return s
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Animate submits one image-to-video job and polls it until done.
func (s *Service) Animate(ctx context.Context, req Request) (*GeneratedVideo, error) {
	conn, err := s.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	prompt := req.Prompt
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}
	mimeType := req.ImageMIMEType
	if mimeType == "" {
		mimeType = sourceImageMIME
	}

	op, err := conn.GenerateVideos(ctx, s.opts.Model, prompt,
		&genai.Image{ImageBytes: req.ImageData, MIMEType: mimeType},
		&genai.GenerateVideosConfig{
			NumberOfVideos: 1,
			AspectRatio:    req.AspectRatio,
			Resolution:     s.opts.Resolution,
		})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRemoteCall, "video generation submit failed")
	}
	if op == nil {
		return nil, errors.New(errors.ErrCodeRemoteCall, "video generation returned no operation")
	}

	s.logger.Info("video job submitted", "operation", op.Name, "aspect_ratio", req.AspectRatio)

	op, err = s.poll(ctx, conn, op, req.OnPoll)
	if err != nil {
		return nil, err
	}

	uri, err := videoURI(op)
	if err != nil {
		return nil, err
	}

	qualified, err := QualifyURI(uri, conn.APIKey)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNoVideoURI, "video reference is not a valid URI")
	}
	return &GeneratedVideo{URI: qualified, MIMEType: VideoMIMEType}, nil
}

func (s *Service) poll(ctx context.Context, conn *genaiclient.Conn, op *genai.GenerateVideosOperation, onPoll func(int)) (*genai.GenerateVideosOperation, error) {
	var deadline time.Time
	if s.opts.MaxDuration > 0 {
		deadline = s.now().Add(s.opts.MaxDuration)
	}

	for attempt := 1; !op.Done; attempt++ {
		if attempt > s.opts.MaxPolls {
			return nil, errors.New(errors.ErrCodeTimeout, "video job did not finish within the poll limit")
		}
		if !deadline.IsZero() && s.now().Add(s.opts.PollInterval).After(deadline) {
			return nil, errors.New(errors.ErrCodeTimeout, "video job did not finish within the time limit")
		}

		if err := s.wait(ctx, s.opts.PollInterval); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeRemoteCall, "video polling interrupted")
		}
		if onPoll != nil {
			onPoll(attempt)
		}

		next, err := conn.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeRemoteCall, "video status check failed")
		}
		if next == nil {
			return nil, errors.New(errors.ErrCodeRemoteCall, "video status check returned no operation")
		}
		op = next
		s.logger.Debug("video job polled", "operation", op.Name, "attempt", attempt, "done", op.Done)
	}

	if len(op.Error) > 0 {
		return nil, errors.New(errors.ErrCodeRemoteCall, "video job failed: "+operationErrorMessage(op.Error))
	}
	return op, nil
}

func videoURI(op *genai.GenerateVideosOperation) (string, error) {
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return "", errors.New(errors.ErrCodeNoVideoURI, "video generation failed or returned no URI")
	}
	v := op.Response.GeneratedVideos[0]
	if v == nil || v.Video == nil || v.Video.URI == "" {
		return "", errors.New(errors.ErrCodeNoVideoURI, "video generation failed or returned no URI")
	}
	return v.Video.URI, nil
}

// QualifyURI appends key as a query parameter, keeping any existing query intact.
func QualifyURI(raw, key string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	param := "key=" + url.QueryEscape(key)
	if u.RawQuery == "" {
		u.RawQuery = param
	} else {
		u.RawQuery += "&" + param
	}
	return u.String(), nil
}

func operationErrorMessage(e map[string]any) string {
	if msg, ok := e["message"].(string); ok && msg != "" {
		return msg
	}
	return "unknown error"
}
