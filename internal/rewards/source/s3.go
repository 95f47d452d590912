package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the subset of the S3 client used to fetch the catalog object.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 reads the catalog document from an S3 object.
type S3 struct {
	api    s3API
	bucket string
	key    string
}

// NewS3 creates a catalog source for the given bucket and key.
func NewS3(api s3API, bucket, key string) (*S3, error) {
	if api == nil {
		return nil, errors.New("s3 client is required")
	}
	if bucket == "" || key == "" {
		return nil, errors.New("bucket and key are required")
	}
	return &S3{api: api, bucket: bucket, key: key}, nil
}

// NewS3FromEnv initialises an S3 catalog source from environment variables.
//
// Required environment variables:
//   - SHARDCORE_CATALOG_S3_BUCKET and SHARDCORE_CATALOG_S3_KEY.
//
// Optional environment variables:
//   - SHARDCORE_S3_ENDPOINT: custom endpoint (host:port or full URL).
//   - SHARDCORE_S3_ACCESS_KEY / SHARDCORE_S3_SECRET_KEY: static credentials;
//     when unset, the default credential chain applies.
//   - SHARDCORE_S3_REGION (default "us-east-1").
func NewS3FromEnv(ctx context.Context) (*S3, error) {
	bucket := strings.TrimSpace(os.Getenv("SHARDCORE_CATALOG_S3_BUCKET"))
	key := strings.TrimSpace(os.Getenv("SHARDCORE_CATALOG_S3_KEY"))
	if bucket == "" || key == "" {
		return nil, errors.New("SHARDCORE_CATALOG_S3_BUCKET and SHARDCORE_CATALOG_S3_KEY are required")
	}

	region := os.Getenv("SHARDCORE_S3_REGION")
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	}
	accessKey := os.Getenv("SHARDCORE_S3_ACCESS_KEY")
	secretKey := os.Getenv("SHARDCORE_S3_SECRET_KEY")
	if accessKey != "" && secretKey != "" {
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		)
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSpace(os.Getenv("SHARDCORE_S3_ENDPOINT"))
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return NewS3(client, bucket, key)
}

// Fetch downloads the catalog object.
func (s *S3) Fetch(ctx context.Context) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &s.key,
	})
	if err != nil {
		return nil, fmt.Errorf("get catalog object s3://%s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog object body: %w", err)
	}
	return data, nil
}
