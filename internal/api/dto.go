package api

type ConnectRequest struct {
	// APIKey is optional; without it the server re-reads its own sources.
	APIKey string `json:"api_key"`
}

type SessionResponse struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message,omitempty"`
}

type GenerateLogoRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	// Size is 1K, 2K or 4K. Resolution (low|medium|high) is accepted as an alias.
	Size       string `json:"size"`
	Resolution string `json:"resolution"`
}

type AnimateLogoRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
	Stream      bool   `json:"stream"`
}

type ImageDTO struct {
	MIMEType  string `json:"mime_type"`
	URL       string `json:"url"`
	SizeBytes int    `json:"size_bytes"`
}

type VideoDTO struct {
	MIMEType    string `json:"mime_type"`
	DownloadURL string `json:"download_url"`
}

type ImageSlotDTO struct {
	State string    `json:"state"`
	Error string    `json:"error,omitempty"`
	Image *ImageDTO `json:"image,omitempty"`
}

type VideoSlotDTO struct {
	State string    `json:"state"`
	Error string    `json:"error,omitempty"`
	JobID string    `json:"job_id,omitempty"`
	Video *VideoDTO `json:"video,omitempty"`
}

type WorkspaceResponse struct {
	LogoPrompt      string       `json:"logo_prompt"`
	ImageSize       string       `json:"image_size"`
	AnimationPrompt string       `json:"animation_prompt"`
	AspectRatio     string       `json:"aspect_ratio"`
	Generation      uint64       `json:"generation"`
	Image           ImageSlotDTO `json:"image"`
	Video           VideoSlotDTO `json:"video"`
}

type GenerateLogoResponse struct {
	RequestID string    `json:"request_id"`
	Status    string    `json:"status"`
	Image     *ImageDTO `json:"image,omitempty"`
}

type AnimateLogoResponse struct {
	RequestID string    `json:"request_id"`
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Video     *VideoDTO `json:"video,omitempty"`
}

type ErrorResponse struct {
	RequestID string     `json:"request_id,omitempty"`
	Status    string     `json:"status"`
	Error     *ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// SSE event envelope
type StreamEvent struct {
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id"`
}

type EventStart struct {
	Message   string `json:"message"`
	JobID     string `json:"job_id"`
	Timestamp int64  `json:"timestamp"`
}

type EventProgress struct {
	Message string `json:"message"`
	Attempt int    `json:"attempt,omitempty"`
}

type EventComplete struct {
	Message string    `json:"message"`
	Video   *VideoDTO `json:"video"`
}

type EventError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	StatusPending   = "PENDING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"

	EventTypeStart      = "start"
	EventTypeSubmitting = "submitting"
	EventTypePolling    = "polling"
	EventTypeComplete   = "complete"
	EventTypeError      = "error"

	ErrCodeCredentialRequired = "CREDENTIAL_REQUIRED"

	animationDownloadPath = "/v1/animation/download"
)
