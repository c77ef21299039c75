// Package storage signs direct browser uploads of course cover images to S3
// compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/course-marketplace/internal/config"
)

const UploadURLTTL = 15 * time.Minute

var ErrUnsupportedContentType = errors.New("unsupported image content type")

var imageExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

type Upload struct {
	UploadURL string
	ImageURL  string
	ExpiresAt time.Time
}

type ImageSigner interface {
	PresignCourseImage(ctx context.Context, contentType string) (*Upload, error)
}

type S3Signer struct {
	presign *s3.PresignClient
	bucket  string
	baseURL string
	now     func() time.Time
}

func NewS3Signer(ctx context.Context, cfg config.S3Config) (*S3Signer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("storage: S3_BUCKET is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Signer{
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		baseURL: publicBaseURL(cfg),
		now:     time.Now,
	}, nil
}

func publicBaseURL(cfg config.S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// PresignCourseImage returns a PUT URL for a new object under courses/ and the
// URL the image will be served from once uploaded.
func (s *S3Signer) PresignCourseImage(ctx context.Context, contentType string) (*Upload, error) {
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedContentType
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("storage: failed to generate object key: %w", err)
	}
	key := fmt.Sprintf("courses/%s.%s", id, ext)

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(UploadURLTTL))
	if err != nil {
		log.Error().Err(err).Str("object_key", key).Msg("storage: failed to presign PUT URL")
		return nil, fmt.Errorf("storage: failed to presign upload: %w", err)
	}

	return &Upload{
		UploadURL: req.URL,
		ImageURL:  s.baseURL + "/" + key,
		ExpiresAt: s.now().Add(UploadURLTTL),
	}, nil
}
