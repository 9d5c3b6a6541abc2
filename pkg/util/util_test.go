package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AAAA", DataURL("image/png", "AAAA"))
}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{"image/png", ".png"},
		{"IMAGE/JPEG", ".jpg"},
		{"video/mp4", ".mp4"},
		{"application/x-unknown-thing", ".bin"},
	}
	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.want, FileExtension(tt.mime))
		})
	}
}

func TestRandomString(t *testing.T) {
	for _, n := range []int{1, 7, 16} {
		assert.Len(t, RandomString(n), n)
	}
}
