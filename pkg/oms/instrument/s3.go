package instrument

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joripage/superorder/pkg/oms/model"
)

type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads a copy of the scrip master from a bucket. Keys ending in
// .gz are decompressed.
type S3Source struct {
	client s3API
	bucket string
	key    string
}

func NewS3Source(cfg aws.Config, bucket, key string) *S3Source {
	return &S3Source{client: s3.NewFromConfig(cfg), bucket: bucket, key: key}
}

// NewS3SourceFromDefaultConfig uses the SDK's default credential chain.
func NewS3SourceFromDefaultConfig(ctx context.Context, region, bucket, key string) (*S3Source, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Source(cfg, bucket, key), nil
}

func (s *S3Source) Name() string { return "s3" }

func (s *S3Source) Fetch(ctx context.Context) ([]model.Instrument, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	var body io.Reader = out.Body
	if strings.HasSuffix(s.key, ".gz") {
		gz, err := gzip.NewReader(out.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		body = gz
	}
	return ParseDhanCSV(body)
}
