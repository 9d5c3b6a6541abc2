package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ChaseRain/logomotion/internal/infra/logger"
	"github.com/ChaseRain/logomotion/internal/service/imagegen"
	"github.com/ChaseRain/logomotion/internal/service/orchestrator"
	"github.com/ChaseRain/logomotion/internal/service/videogen"
	"github.com/ChaseRain/logomotion/pkg/errors"
	"github.com/ChaseRain/logomotion/pkg/util"
	"github.com/gin-gonic/gin"
)

const msgStillNotConnected = "still not connected"

// SessionGate is the part of the gate the HTTP layer drives.
type SessionGate interface {
	Verify(ctx context.Context) bool
	Connect(ctx context.Context) bool
	Unlocked() bool
}

// KeyStager accepts a credential typed into the browser.
type KeyStager interface {
	Select(key string)
}

type Downloader interface {
	Get(ctx context.Context, url string) (*http.Response, error)
}

type Handler struct {
	orchestrator *orchestrator.Orchestrator
	gate         SessionGate
	keys         KeyStager
	downloader   Downloader
	logger       *logger.Logger
}

func NewHandler(orch *orchestrator.Orchestrator, gate SessionGate, keys KeyStager, downloader Downloader, log *logger.Logger) *Handler {
	return &Handler{
		orchestrator: orch,
		gate:         gate,
		keys:         keys,
		downloader:   downloader,
		logger:       log,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, SessionResponse{Connected: h.gate.Verify(c.Request.Context())})
}

func (h *Handler) Connect(c *gin.Context) {
	var req ConnectRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.handleError(c, errors.Wrap(err, errors.ErrCodeInvalidReq, "invalid request body"))
		return
	}
	if req.APIKey != "" && h.keys != nil {
		h.keys.Select(req.APIKey)
	}

	connected := h.gate.Connect(c.Request.Context())
	resp := SessionResponse{Connected: connected, Message: "connected"}
	if !connected {
		resp.Message = msgStillNotConnected
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Workspace(c *gin.Context) {
	c.JSON(http.StatusOK, workspaceDTO(h.orchestrator.Snapshot()))
}

func (h *Handler) GenerateLogo(c *gin.Context) {
	var req GenerateLogoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, errors.Wrap(err, errors.ErrCodeInvalidReq, "prompt is required"))
		return
	}

	sizeTag := req.Size
	if sizeTag == "" {
		sizeTag = req.Resolution
	}
	size, err := orchestrator.ParseImageSize(sizeTag)
	if err != nil {
		h.handleError(c, err)
		return
	}

	img, err := h.orchestrator.GenerateLogo(c.Request.Context(), orchestrator.LogoRequest{
		Prompt: req.Prompt,
		Size:   size,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateLogoResponse{
		RequestID: requestID(c),
		Status:    StatusSucceeded,
		Image:     imageDTO(img),
	})
}

func (h *Handler) AnimateLogo(c *gin.Context) {
	var req AnimateLogoRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.handleError(c, errors.Wrap(err, errors.ErrCodeInvalidReq, "invalid request body"))
		return
	}
	aspect, err := orchestrator.ParseAspectRatio(req.AspectRatio)
	if err != nil {
		h.handleError(c, err)
		return
	}

	job, err := h.orchestrator.BeginAnimation(orchestrator.AnimationRequest{
		Prompt:      req.Prompt,
		AspectRatio: aspect,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	if req.Stream {
		h.handleStreamingResponse(c, job)
		return
	}

	// The job outlives this request; a newer logo still cancels it.
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		_, _ = job.Run(ctx, nil)
	}()

	c.JSON(http.StatusAccepted, AnimateLogoResponse{
		RequestID: requestID(c),
		JobID:     job.ID,
		Status:    StatusPending,
	})
}

func (h *Handler) handleStreamingResponse(c *gin.Context, job *orchestrator.AnimationJob) {
	reqID := requestID(c)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	sendEvent := func(eventType string, data interface{}) {
		event := StreamEvent{
			Event:     eventType,
			Data:      data,
			RequestID: reqID,
		}
		jsonData, _ := json.Marshal(event)
		fmt.Fprintf(c.Writer, "event: %s\n", eventType)
		fmt.Fprintf(c.Writer, "data: %s\n\n", jsonData)
		c.Writer.Flush()
	}

	sendEvent(EventTypeStart, EventStart{
		Message:   "Animation accepted",
		JobID:     job.ID,
		Timestamp: time.Now().Unix(),
	})

	var failure string
	onProgress := func(event orchestrator.ProgressEvent) {
		switch event.Stage {
		case orchestrator.StageSubmitting:
			sendEvent(EventTypeSubmitting, EventProgress{Message: event.Message})
		case orchestrator.StagePolling:
			sendEvent(EventTypePolling, EventProgress{Message: event.Message, Attempt: event.Attempt})
		case orchestrator.StageComplete:
			video, _ := event.Data.(*videogen.GeneratedVideo)
			sendEvent(EventTypeComplete, EventComplete{Message: event.Message, Video: videoDTO(video)})
		case orchestrator.StageError:
			failure = event.Message
		}
	}

	if _, err := job.Run(c.Request.Context(), onProgress); err != nil {
		if failure == "" {
			failure = userMessage(err)
		}
		sendEvent(EventTypeError, EventError{
			Code:    errors.CodeOf(err),
			Message: failure,
		})
	}
}

func (h *Handler) DownloadLogo(c *gin.Context) {
	slot := h.orchestrator.Snapshot().Image
	if slot.State != orchestrator.StateReady || slot.Image == nil {
		h.handleError(c, errors.New(errors.ErrCodeNotFound, "no logo to download"))
		return
	}

	img := slot.Image
	c.Header("Content-Disposition", attachment("logo", img.MIMEType))
	c.Data(http.StatusOK, img.MIMEType, img.Data)
}

func (h *Handler) DownloadAnimation(c *gin.Context) {
	slot := h.orchestrator.Snapshot().Video
	if slot.State != orchestrator.StateReady || slot.Video == nil {
		h.handleError(c, errors.New(errors.ErrCodeNotFound, "no animation to download"))
		return
	}

	video := slot.Video
	resp, err := h.downloader.Get(c.Request.Context(), video.URI)
	if err != nil {
		h.handleError(c, errors.Wrap(redactURL(err), errors.ErrCodeRemoteCall, "failed to fetch animation"))
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = video.MIMEType
	}
	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, map[string]string{
		"Content-Disposition": attachment("logo-animation", video.MIMEType),
	})
}

// handleError answers with the outermost AppError's code and message.
func (h *Handler) handleError(c *gin.Context, err error) {
	reqID := requestID(c)
	code := errors.CodeOf(err)
	status := statusFor(code)

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err, "code", code, "request_id", reqID)
	} else {
		h.logger.Warn("request rejected", "error", err, "code", code, "request_id", reqID)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: reqID,
		Status:    StatusFailed,
		Error: &ErrorBody{
			Code:    code,
			Message: userMessage(err),
		},
	})
}

func statusFor(code string) int {
	switch code {
	case errors.ErrCodeInvalidReq:
		return http.StatusBadRequest
	case errors.ErrCodeCredentialMissing:
		return http.StatusUnauthorized
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNoImage, errors.ErrCodeBusy, errors.ErrCodeStale:
		return http.StatusConflict
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeRemoteCall, errors.ErrCodeNoImageData, errors.ErrCodeNoVideoURI:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func userMessage(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

// redactURL drops the request address from transport errors. Video URIs carry the credential.
func redactURL(err error) error {
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// bindOptionalJSON binds a JSON body but tolerates an empty one.
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !stderrors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func attachment(base, mimeType string) string {
	return fmt.Sprintf(`attachment; filename="%s-%s%s"`, base, util.RandomString(8), util.FileExtension(mimeType))
}

func imageDTO(img *imagegen.GeneratedImage) *ImageDTO {
	if img == nil {
		return nil
	}
	return &ImageDTO{
		MIMEType:  img.MIMEType,
		URL:       img.URL,
		SizeBytes: len(img.Data),
	}
}

func videoDTO(video *videogen.GeneratedVideo) *VideoDTO {
	if video == nil {
		return nil
	}
	return &VideoDTO{
		MIMEType:    video.MIMEType,
		DownloadURL: animationDownloadPath,
	}
}

func workspaceDTO(s orchestrator.Snapshot) WorkspaceResponse {
	return WorkspaceResponse{
		LogoPrompt:      s.LogoPrompt,
		ImageSize:       string(s.ImageSize),
		AnimationPrompt: s.AnimationPrompt,
		AspectRatio:     string(s.AspectRatio),
		Generation:      s.Generation,
		Image: ImageSlotDTO{
			State: string(s.Image.State),
			Error: s.Image.Error,
			Image: imageDTO(s.Image.Image),
		},
		Video: VideoSlotDTO{
			State: string(s.Video.State),
			Error: s.Video.Error,
			JobID: s.Video.JobID,
			Video: videoDTO(s.Video.Video),
		},
	}
}
