package orchestrator

import (
	"strings"

	"github.com/ChaseRain/logomotion/internal/service/imagegen"
	"github.com/ChaseRain/logomotion/internal/service/videogen"
	"github.com/ChaseRain/logomotion/pkg/errors"
)

// ImageSize is the logo resolution tier.
type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
	ImageSize4K ImageSize = "4K"
)

// ParseImageSize accepts a size tier or a low/medium/high tag. Empty means 1K.
func ParseImageSize(s string) (ImageSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "1k", "low":
		return ImageSize1K, nil
	case "2k", "medium":
		return ImageSize2K, nil
	case "4k", "high":
		return ImageSize4K, nil
	}
	return "", errors.New(errors.ErrCodeInvalidReq, "unsupported image size: "+s)
}

// AspectRatio is the video frame shape.
type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
)

// ParseAspectRatio accepts 16:9, 9:16 or their names. Empty means landscape.
func ParseAspectRatio(s string) (AspectRatio, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "16:9", "landscape":
		return AspectLandscape, nil
	case "9:16", "portrait":
		return AspectPortrait, nil
	}
	return "", errors.New(errors.ErrCodeInvalidReq, "unsupported aspect ratio: "+s)
}

// SlotState is one step of a generation slot's lifecycle.
type SlotState string

const (
	StateIdle       SlotState = "idle"
	StateRequesting SlotState = "requesting"
	StatePolling    SlotState = "polling"
	StateReady      SlotState = "ready"
	StateFailed     SlotState = "failed"
)

func (s SlotState) busy() bool {
	return s == StateRequesting || s == StatePolling
}

type LogoRequest struct {
	Prompt string
	Size   ImageSize
}

type AnimationRequest struct {
	Prompt      string
	AspectRatio AspectRatio
}

// ProgressEvent reports animation job progress.
type ProgressEvent struct {
	Stage   string
	Message string
	Attempt int
	Data    interface{}
}

const (
	StageSubmitting = "submitting"
	StagePolling    = "polling"
	StageComplete   = "complete"
	StageError      = "error"
)

type ProgressCallback func(event ProgressEvent)

type ImageSlot struct {
	State SlotState
	Error string
	Image *imagegen.GeneratedImage
}

type VideoSlot struct {
	State SlotState
	Error string
	Video *videogen.GeneratedVideo
	JobID string
}

// Snapshot is a point-in-time copy of the workspace state.
type Snapshot struct {
	LogoPrompt      string
	ImageSize       ImageSize
	AnimationPrompt string
	AspectRatio     AspectRatio
	Image           ImageSlot
	Video           VideoSlot
	Generation      uint64
}
