package imagegen

import (
	"context"
	"encoding/base64"

	"github.com/ChaseRain/logomotion/internal/infra/genaiclient"
	"github.com/ChaseRain/logomotion/internal/infra/logger"
	"github.com/ChaseRain/logomotion/pkg/errors"
	"github.com/ChaseRain/logomotion/pkg/util"
	"google.golang.org/genai"
)

const (
	// LogoAspectRatio is fixed; logos are square.
	LogoAspectRatio = "1:1"
	DefaultMIMEType = "image/png"
)

type GeneratedImage struct {
	Data     []byte
	Base64   string
	MIMEType string
	// URL is a data: reference ready for display.
	URL string
}

func NewGeneratedImage(data []byte, mimeType string) *GeneratedImage {
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	b64 := base64.StdEncoding.EncodeToString(data)
	return &GeneratedImage{
		Data:     data,
		Base64:   b64,
		MIMEType: mimeType,
		URL:      util.DataURL(mimeType, b64),
	}
}

type Service struct {
	connector genaiclient.Connector
	model     string
	logger    *logger.Logger
}

func New(connector genaiclient.Connector, model string, log *logger.Logger) *Service {
	return &Service{
		connector: connector,
		model:     model,
		logger:    log,
	}
}

// GenerateLogo asks the image model for one square logo at the given size tier.
// The prompt must already be validated as non-blank.
func (s *Service) GenerateLogo(ctx context.Context, prompt, imageSize string) (*GeneratedImage, error) {
	conn, err := s.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage), string(genai.ModalityText)},
		ImageConfig: &genai.ImageConfig{
			AspectRatio: LogoAspectRatio,
			ImageSize:   imageSize,
		},
	}

	s.logger.Debug("requesting logo image", "model", s.model, "image_size", imageSize)

	resp, err := conn.GenerateContent(ctx, s.model, genai.Text(prompt), config)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRemoteCall, "image generation API request failed")
	}

	return s.parseResponse(resp)
}

func (s *Service) parseResponse(resp *genai.GenerateContentResponse) (*GeneratedImage, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, errors.New(errors.ErrCodeNoImageData, "empty response from image generation")
	}

	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			return NewGeneratedImage(part.InlineData.Data, part.InlineData.MIMEType), nil
		}
	}

	if candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		s.logger.Warn("image generation stopped early", "finish_reason", candidate.FinishReason)
	}
	return nil, errors.New(errors.ErrCodeNoImageData, "no image data received from the model")
}
