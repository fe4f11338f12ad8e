// internal/profile/upload.go

package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// UploadURL tells the client where to PUT an image and how it will be served
type UploadURL struct {
	UploadURL string            `json:"uploadUrl"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	ImageURL  string            `json:"imageUrl"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// ImageUploader issues direct-to-storage upload URLs for profile images
type ImageUploader interface {
	PresignImageUpload(ctx context.Context, userID, contentType string) (*UploadURL, error)
	OwnsURL(url string) bool
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// S3ImageUploader presigns PutObject requests against a bucket
type S3ImageUploader struct {
	client        *s3.S3
	bucket        string
	publicBaseURL string
	expiry        time.Duration
}

// NewS3ImageUploader creates an uploader from an AWS session
func NewS3ImageUploader(sess *session.Session, bucket, publicBaseURL string, expiry time.Duration) *S3ImageUploader {
	return &S3ImageUploader{
		client:        s3.New(sess),
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		expiry:        expiry,
	}
}

// NewS3Session creates an AWS session for the given region. Empty keys fall
// back to the default credential chain.
func NewS3Session(region, accessKeyID, secretAccessKey string) (*session.Session, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if accessKeyID != "" && secretAccessKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKeyID, secretAccessKey, "")
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return sess, nil
}

// PresignImageUpload returns a presigned PUT URL under profiles/<userID>/
func (u *S3ImageUploader) PresignImageUpload(ctx context.Context, userID, contentType string) (*UploadURL, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrInvalidImageFormat
	}

	key := fmt.Sprintf("profiles/%s/%s%s", userID, uuid.NewString(), ext)

	req, _ := u.client.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	req.SetContext(ctx)

	signed, err := req.Presign(u.expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &UploadURL{
		UploadURL: signed,
		Method:    "PUT",
		Headers:   map[string]string{"Content-Type": contentType},
		ImageURL:  u.publicBaseURL + "/" + key,
		ExpiresAt: time.Now().Add(u.expiry),
	}, nil
}

// OwnsURL reports whether url points into this uploader's public space
func (u *S3ImageUploader) OwnsURL(url string) bool {
	return strings.HasPrefix(url, u.publicBaseURL+"/profiles/")
}
