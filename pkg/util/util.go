package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime"
	"strings"
)

func RandomString(n int) string {
	bytes := make([]byte, (n+1)/2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:n]
}

// DataURL composes a data: reference from a content type and base64 payload.
func DataURL(mimeType, b64 string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, b64)
}

// FileExtension picks a download extension for a content type.
func FileExtension(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	}
	if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
