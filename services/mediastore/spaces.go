package mediastore

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// SpacesClient stores media files (course previews, lesson previews,
// avatars) in an S3-compatible DigitalOcean Spaces bucket.
type SpacesClient struct {
	s3Client *s3.S3
	bucket   string
	endpoint string
}

// SpacesConfig holds configuration for the Spaces client
type SpacesConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Endpoint  string
}

// NewSpacesClient creates a new Spaces client
func NewSpacesClient(config SpacesConfig) (*SpacesClient, error) {
	sess, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			config.AccessKey,
			config.SecretKey,
			"",
		),
		Endpoint:         aws.String(config.Endpoint),
		Region:           aws.String(config.Region),
		S3ForcePathStyle: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Spaces session: %w", err)
	}

	return &SpacesClient{
		s3Client: s3.New(sess),
		bucket:   config.Bucket,
		endpoint: config.Endpoint,
	}, nil
}

// UploadMedia uploads a media file under the given folder and returns
// its public URL. Object keys are generated, never taken from user
// input, so uploads cannot collide or escape the folder.
func (s *SpacesClient) UploadMedia(ctx context.Context, folder, filename string, data io.Reader, contentType string) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("%s/%d-%s%s", folder, time.Now().Unix(), uuid.New().String(), ext)

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        aws.ReadSeekCloser(data),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return s.FileURL(key), nil
}

// DeleteFile deletes a file from Spaces
func (s *SpacesClient) DeleteFile(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// FileURL returns the public URL for a stored object
func (s *SpacesClient) FileURL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", s.bucket, s.endpoint, key)
}

// ObjectKey is the inverse of FileURL: it reports the object key for a
// URL that points into this bucket, and false for any other URL.
func (s *SpacesClient) ObjectKey(url string) (string, bool) {
	prefix := fmt.Sprintf("https://%s.%s/", s.bucket, s.endpoint)
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := url[len(prefix):]
	if key == "" {
		return "", false
	}
	return key, true
}
