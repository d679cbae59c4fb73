package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxhall/tavus-relay/internal/config"
	"github.com/voxhall/tavus-relay/internal/logging"
)

func testUploader(cfg config.RecordingConfig) *Uploader {
	return NewUploader(cfg, logging.New(nil, "silent", "json"))
}

func TestEnabled(t *testing.T) {
	assert.False(t, testUploader(config.RecordingConfig{}).Enabled())
	assert.True(t, testUploader(config.RecordingConfig{Bucket: "b", Region: "us-east-1"}).Enabled())
}

func TestUploadRecording_Disabled(t *testing.T) {
	u := testUploader(config.RecordingConfig{})

	_, err := u.UploadRecording(context.Background(), "c1", "https://example.com/rec.mp4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestObjectKey(t *testing.T) {
	u := testUploader(config.RecordingConfig{Bucket: "b", Region: "r", Prefix: "recordings"})

	tests := []struct {
		name   string
		srcURL string
		want   string
	}{
		{
			name:   "filename from url",
			srcURL: "https://cdn.example.com/rooms/abc/session.mp4?token=x",
			want:   "recordings/c1/session.mp4",
		},
		{
			name:   "nested path",
			srcURL: "https://cdn.example.com/a/b/c/final.webm",
			want:   "recordings/c1/final.webm",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, u.objectKey("c1", tt.srcURL))
		})
	}
}

func TestObjectKey_NoFilename(t *testing.T) {
	u := testUploader(config.RecordingConfig{Bucket: "b", Region: "r"})

	key := u.objectKey("c1", "https://cdn.example.com/")
	assert.True(t, strings.HasPrefix(key, "c1/"))
	assert.True(t, strings.HasSuffix(key, ".mp4"))
}
