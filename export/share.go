package export

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	awssession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/google/uuid"
)

const (
	ShareTitle = "견적서"
	ShareText  = "견적서 이미지 파일"
)

// Sharer hands an artifact to a share target and returns where it landed.
type Sharer interface {
	CanShare(a Artifact) bool
	Share(ctx context.Context, a Artifact, title, text string) (string, error)
}

// S3Sharer uploads artifacts to an S3 bucket.
type S3Sharer struct {
	uploader s3manageriface.UploaderAPI
	bucket   string
	prefix   string
	now      func() time.Time
}

func NewS3Sharer(region, bucket, prefix string) (*S3Sharer, error) {
	sess, err := awssession.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("creating aws session: %w", err)
	}
	return NewS3SharerWithUploader(s3manager.NewUploader(sess), bucket, prefix), nil
}

func NewS3SharerWithUploader(uploader s3manageriface.UploaderAPI, bucket, prefix string) *S3Sharer {
	return &S3Sharer{
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
		now:      time.Now,
	}
}

// CanShare accepts non-empty PNG and PDF files.
func (s *S3Sharer) CanShare(a Artifact) bool {
	if s == nil || s.bucket == "" || len(a.Data) == 0 {
		return false
	}
	switch a.ContentType {
	case "image/png", "application/pdf":
		return true
	}
	return false
}

func (s *S3Sharer) Share(ctx context.Context, a Artifact, title, text string) (string, error) {
	key := path.Join(s.prefix, s.now().UTC().Format("2006/01/02"), uuid.NewString(), a.Name)
	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               a.Reader(),
		ContentType:        aws.String(a.ContentType),
		ContentDisposition: aws.String(mime.FormatMediaType("inline", map[string]string{"filename": a.Name})),
		// S3 metadata values must be ASCII
		Metadata: map[string]*string{
			"title": aws.String(url.QueryEscape(title)),
			"text":  aws.String(url.QueryEscape(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return out.Location, nil
}
