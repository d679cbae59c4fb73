// Package storage uploads conversation recordings to S3. The upload is a
// collaborator side effect: callers fire it in the background and a failure
// never reaches the webhook caller.
package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/voxhall/tavus-relay/internal/config"
	"github.com/voxhall/tavus-relay/internal/logging"
)

// uploadTimeout bounds one full download-and-upload cycle.
const uploadTimeout = 5 * time.Minute

// Uploader streams recordings from a platform-provided URL into S3.
type Uploader struct {
	bucket string
	region string
	prefix string
	client *http.Client
	log    *logging.Logger
}

// NewUploader creates a recording uploader from config. An empty bucket
// leaves the uploader disabled.
func NewUploader(cfg config.RecordingConfig, log *logging.Logger) *Uploader {
	return &Uploader{
		bucket: cfg.Bucket,
		region: cfg.Region,
		prefix: cfg.Prefix,
		client: &http.Client{Timeout: uploadTimeout},
		log:    log.Sub("storage"),
	}
}

// Enabled reports whether a destination bucket is configured.
func (u *Uploader) Enabled() bool {
	return u.bucket != ""
}

// UploadRecording downloads the recording at srcURL and streams it to S3.
// Returns the object key written.
func (u *Uploader) UploadRecording(ctx context.Context, conversationID, srcURL string) (string, error) {
	if !u.Enabled() {
		return "", fmt.Errorf("recording upload not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", srcURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading recording: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading recording: status %d", resp.StatusCode)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(u.region))
	if err != nil {
		return "", fmt.Errorf("loading AWS config: %w", err)
	}

	key := u.objectKey(conversationID, srcURL)
	uploader := manager.NewUploader(s3.NewFromConfig(awsCfg))
	_, err = uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        resp.Body,
		ContentType: aws.String(contentType(resp)),
	})
	if err != nil {
		return "", fmt.Errorf("uploading recording: %w", err)
	}

	u.log.Info().Str("conversationId", conversationID).Str("key", key).Msg("recording uploaded")
	return key, nil
}

// objectKey derives the destination key from the source URL's filename,
// falling back to a timestamped name when the URL has none.
func (u *Uploader) objectKey(conversationID, srcURL string) string {
	name := ""
	if parsed, err := url.Parse(srcURL); err == nil {
		name = path.Base(parsed.Path)
	}
	if name == "" || name == "." || name == "/" {
		name = time.Now().UTC().Format("20060102-150405") + ".mp4"
	}
	return path.Join(u.prefix, conversationID, name)
}

func contentType(resp *http.Response) string {
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "text/html") {
		return ct
	}
	return "video/mp4"
}
