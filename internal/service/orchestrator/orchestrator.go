package orchestrator

import (
	"context"
	"strings"
	"sync"

	"github.com/ChaseRain/logomotion/internal/infra/limiter"
	"github.com/ChaseRain/logomotion/internal/infra/logger"
	"github.com/ChaseRain/logomotion/internal/service/imagegen"
	"github.com/ChaseRain/logomotion/internal/service/videogen"
	"github.com/ChaseRain/logomotion/pkg/errors"
	"github.com/google/uuid"
)

const (
	msgLogoFailed       = "Failed to generate logo. Please try again."
	msgAnimationFailed  = "Failed to animate logo. It might take a while or verify your quota."
	msgAnimationTimeout = "Animation timed out. Please try again."
)

type ImageGenerator interface {
	GenerateLogo(ctx context.Context, prompt, imageSize string) (*imagegen.GeneratedImage, error)
}

type VideoGenerator interface {
	Animate(ctx context.Context, req videogen.Request) (*videogen.GeneratedVideo, error)
}

// Orchestrator owns the workspace state and sequences logo then animation.
// Each slot allows one request in flight. Every logo request bumps a generation
// token; animation results carrying an older token are dropped.
type Orchestrator struct {
	images  ImageGenerator
	videos  VideoGenerator
	limiter *limiter.Limiter
	logger  *logger.Logger

	mu          sync.Mutex
	logoPrompt  string
	imageSize   ImageSize
	animPrompt  string
	aspectRatio AspectRatio
	image       ImageSlot
	video       VideoSlot
	generation  uint64
	cancelVideo context.CancelFunc
}

func New(images ImageGenerator, videos VideoGenerator, lim *limiter.Limiter, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		images:      images,
		videos:      videos,
		limiter:     lim,
		logger:      log,
		imageSize:   ImageSize1K,
		aspectRatio: AspectLandscape,
		image:       ImageSlot{State: StateIdle},
		video:       VideoSlot{State: StateIdle},
	}
}

// GenerateLogo runs one image request. Starting it always discards the
// current image and any animation, including one still polling.
// It does not queue: with no free generation slot it answers RATE_LIMITED
// and leaves the workspace as it was.
func (o *Orchestrator) GenerateLogo(ctx context.Context, req LogoRequest) (*imagegen.GeneratedImage, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New(errors.ErrCodeInvalidReq, "logo prompt is required")
	}
	if req.Size == "" {
		req.Size = ImageSize1K
	}

	release, ok := o.limiter.TryAcquire()
	if !ok {
		return nil, errors.New(errors.ErrCodeRateLimited, "too many generation requests, try again shortly")
	}
	defer release()

	o.mu.Lock()
	if o.image.State.busy() {
		o.mu.Unlock()
		return nil, errors.New(errors.ErrCodeBusy, "a logo is already being generated")
	}
	o.logoPrompt = req.Prompt
	o.imageSize = req.Size
	o.image = ImageSlot{State: StateRequesting}
	o.resetVideoLocked()
	o.generation++
	generation := o.generation
	o.mu.Unlock()

	o.logger.Info("starting logo generation", "generation", generation, "image_size", req.Size)

	img, err := o.images.GenerateLogo(ctx, req.Prompt, string(req.Size))

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.logger.Error("failed to generate logo", "generation", generation, "error", err)
		o.image = ImageSlot{State: StateFailed, Error: msgLogoFailed}
		// the outer message is the one stored in the slot; the code stays the cause's
		return nil, errors.Wrap(err, errors.CodeOf(err), msgLogoFailed)
	}
	o.image = ImageSlot{State: StateReady, Image: img}
	o.logger.Info("logo generated", "generation", generation, "mime_type", img.MIMEType, "size_bytes", len(img.Data))
	return img, nil
}

func (o *Orchestrator) resetVideoLocked() {
	if o.cancelVideo != nil {
		o.cancelVideo()
		o.cancelVideo = nil
	}
	o.video = VideoSlot{State: StateIdle}
}

// AnimationJob is an accepted animation request waiting to be run.
type AnimationJob struct {
	ID         string
	o          *Orchestrator
	req        AnimationRequest
	image      *imagegen.GeneratedImage
	generation uint64
	ctx        context.Context
}

// BeginAnimation moves the video slot to requesting. It refuses when no logo is
// ready or another animation is in flight.
func (o *Orchestrator) BeginAnimation(req AnimationRequest) (*AnimationJob, error) {
	if req.AspectRatio == "" {
		req.AspectRatio = AspectLandscape
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.image.State != StateReady || o.image.Image == nil {
		return nil, errors.New(errors.ErrCodeNoImage, "generate a logo before animating it")
	}
	if o.video.State.busy() {
		return nil, errors.New(errors.ErrCodeBusy, "an animation is already in progress")
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	job := &AnimationJob{
		ID:         uuid.New().String(),
		o:          o,
		req:        req,
		image:      o.image.Image,
		generation: o.generation,
		ctx:        jobCtx,
	}

	o.animPrompt = req.Prompt
	o.aspectRatio = req.AspectRatio
	o.video = VideoSlot{State: StateRequesting, JobID: job.ID}
	o.cancelVideo = cancel
	return job, nil
}

// Run submits the job and polls it to completion. It stops early when ctx is
// done or a newer logo replaces the source image.
func (j *AnimationJob) Run(ctx context.Context, onProgress ProgressCallback) (*videogen.GeneratedVideo, error) {
	o := j.o
	emit := func(stage, message string, attempt int, data interface{}) {
		if onProgress != nil {
			onProgress(ProgressEvent{
				Stage:   stage,
				Message: message,
				Attempt: attempt,
				Data:    data,
			})
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(j.ctx, cancel)
	defer stop()

	log := o.logger.With("job_id", j.ID, "generation", j.generation)
	log.Info("starting logo animation", "aspect_ratio", j.req.AspectRatio)
	emit(StageSubmitting, "Submitting animation job...", 0, nil)

	video, err := j.animate(runCtx, func(attempt int) {
		o.markPolling(j)
		emit(StagePolling, "Waiting for the video to render...", attempt, nil)
	})

	video, msg, err := o.finishAnimation(j, video, err)
	switch {
	case errors.Is(err, errors.ErrCodeStale):
		log.Warn("discarded stale animation result")
		emit(StageError, "Logo changed while the animation was running.", 0, nil)
	case err != nil:
		log.Error("failed to animate logo", "error", err)
		emit(StageError, msg, 0, nil)
	default:
		log.Info("logo animation completed")
		emit(StageComplete, "Animation ready", 0, video)
	}
	return video, err
}

// finishAnimation records a job outcome unless the job is no longer current.
// The returned message is the one shown to the user on failure.
func (o *Orchestrator) finishAnimation(j *AnimationJob, video *videogen.GeneratedVideo, err error) (*videogen.GeneratedVideo, string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.generation != j.generation || o.video.JobID != j.ID {
		return nil, "", errors.Wrap(err, errors.ErrCodeStale, "logo changed while the animation was running")
	}
	if o.cancelVideo != nil {
		o.cancelVideo()
		o.cancelVideo = nil
	}

	if err != nil {
		msg := msgAnimationFailed
		if errors.Is(err, errors.ErrCodeTimeout) {
			msg = msgAnimationTimeout
		}
		o.video = VideoSlot{State: StateFailed, Error: msg, JobID: j.ID}
		return nil, msg, err
	}
	o.video = VideoSlot{State: StateReady, Video: video, JobID: j.ID}
	return video, "", nil
}

func (j *AnimationJob) animate(ctx context.Context, onPoll func(int)) (*videogen.GeneratedVideo, error) {
	release, err := j.o.limiter.Acquire(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRateLimited, "rate limit exceeded")
	}
	defer release()

	return j.o.videos.Animate(ctx, videogen.Request{
		ImageData:     j.image.Data,
		ImageMIMEType: j.image.MIMEType,
		Prompt:        j.req.Prompt,
		AspectRatio:   string(j.req.AspectRatio),
		OnPoll:        onPoll,
	})
}

func (o *Orchestrator) markPolling(j *AnimationJob) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.video.JobID == j.ID && o.video.State == StateRequesting {
		o.video.State = StatePolling
	}
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{
		LogoPrompt:      o.logoPrompt,
		ImageSize:       o.imageSize,
		AnimationPrompt: o.animPrompt,
		AspectRatio:     o.aspectRatio,
		Image:           o.image,
		Video:           o.video,
		Generation:      o.generation,
	}
}
