package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"StockResearch/internal/config"
	"StockResearch/internal/domain"
	"StockResearch/internal/ports"
)

// ObjectAPI is the slice of the S3 client the store needs.
type ObjectAPI interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
	ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error
}

// S3Store archives callbacks as objects under a bucket prefix.
type S3Store struct {
	api    ObjectAPI
	bucket string
	prefix string
}

var _ ports.CallbackStore = (*S3Store)(nil)

// NewS3Client opens a session in the configured region using the default credential chain.
func NewS3Client(cfg config.S3Config) (*s3.S3, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return s3.New(sess), nil
}

// NewS3Store wires the client and bucket location.
func NewS3Store(api ObjectAPI, cfg config.S3Config) *S3Store {
	return &S3Store{api: api, bucket: cfg.Bucket, prefix: cfg.Prefix}
}

// Save uploads the record and returns its filename (without prefix).
func (s *S3Store) Save(ctx context.Context, record domain.CallbackRecord) (string, error) {
	payload, err := encodeRecord(record)
	if err != nil {
		return "", err
	}

	name := record.Filename()
	_, err = s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + name),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", name, err)
	}
	return name, nil
}

// List walks every object under the prefix, newest first.
func (s *S3Store) List(ctx context.Context) ([]domain.CallbackFile, error) {
	var files []domain.CallbackFile
	err := s.api.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.StringValue(obj.Key), s.prefix)
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			files = append(files, domain.CallbackFile{
				Filename: name,
				Size:     aws.Int64Value(obj.Size),
				Modified: aws.TimeValue(obj.LastModified),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	sortNewestFirst(files)
	return files, nil
}

// Location is the s3:// URL of the archive prefix.
func (s *S3Store) Location() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.prefix)
}
