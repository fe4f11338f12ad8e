package profile

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3PresignImageUpload(t *testing.T) {
	sess, err := NewS3Session("eu-west-1", "AKIDEXAMPLE", "secret-example")
	require.NoError(t, err)
	uploader := NewS3ImageUploader(sess, "fitbuddy-media", "https://cdn.example.com/", 10*time.Minute)

	upload, err := uploader.PresignImageUpload(context.Background(), "u1", "image/png")
	require.NoError(t, err)

	assert.Equal(t, "PUT", upload.Method)
	assert.Equal(t, "image/png", upload.Headers["Content-Type"])
	assert.True(t, strings.HasPrefix(upload.ImageURL, "https://cdn.example.com/profiles/u1/"))
	assert.True(t, strings.HasSuffix(upload.ImageURL, ".png"))
	assert.True(t, uploader.OwnsURL(upload.ImageURL))

	signed, err := url.Parse(upload.UploadURL)
	require.NoError(t, err)
	assert.Contains(t, signed.Host, "fitbuddy-media")
	assert.NotEmpty(t, signed.Query().Get("X-Amz-Signature"))

	_, err = uploader.PresignImageUpload(context.Background(), "u1", "image/gif")
	assert.ErrorIs(t, err, ErrInvalidImageFormat)

	assert.False(t, uploader.OwnsURL("https://cdn.example.com/other/x.png"))
}
