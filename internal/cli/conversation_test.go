package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voxhall/tavus-relay/internal/config"
)

func TestMeetingContext(t *testing.T) {
	got := meetingContext("brainstorm", "divergent-convergent", "Q4 roadmap", "", 30, 5)

	assert.Contains(t, got, "30-minute brainstorm")
	assert.Contains(t, got, "divergent-convergent framework")
	assert.Contains(t, got, "Topic: “Q4 roadmap”")
	assert.Contains(t, got, "Participants: 5.")
	assert.NotContains(t, got, "Host comment")
}

func TestMeetingContextWithComment(t *testing.T) {
	got := meetingContext("retro", "start-stop-continue", "Sprint 12", "keep it light.", 45, 8)

	assert.Contains(t, got, "45-minute retro")
	assert.Contains(t, got, "Host comment: keep it light.")
	// Trailing period from the comment is not doubled.
	assert.NotContains(t, got, "keep it light..")
}

func TestRecordingProperties(t *testing.T) {
	props := recordingProperties(config.RecordingConfig{
		Bucket:  "relay-recordings",
		Region:  "us-west-2",
		RoleARN: "arn:aws:iam::123456789012:role/recorder",
	})

	assert.Equal(t, map[string]any{
		"enable_recording":           true,
		"aws_assume_role_arn":        "arn:aws:iam::123456789012:role/recorder",
		"recording_s3_bucket_region": "us-west-2",
		"recording_s3_bucket_name":   "relay-recordings",
	}, props)
}

func TestRecordingPropertiesUnconfigured(t *testing.T) {
	assert.Nil(t, recordingProperties(config.RecordingConfig{}))
}
