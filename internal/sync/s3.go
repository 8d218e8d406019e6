package sync

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Destination uploads exports to an S3-compatible bucket.
type S3Destination struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Destination creates an S3 destination. key may contain "{date}",
// replaced by the export's UTC date, to keep one object per day. A
// non-empty endpoint enables path-style addressing (MinIO and similar).
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Destination{client: client, bucket: bucket, key: key}, nil
}

func (d *S3Destination) Name() string { return "s3://" + d.bucket + "/" + d.key }

// objectKey expands the key template for exp.
func (d *S3Destination) objectKey(exp *Export) string {
	return strings.ReplaceAll(d.key, "{date}", exp.CreatedAt.Format("2006-01-02"))
}

// Write uploads exp tagged with its export ID.
func (d *S3Destination) Write(ctx context.Context, exp *Export) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.objectKey(exp)),
		Body:        bytes.NewReader(exp.Data),
		ContentType: aws.String("application/x-ndjson"),
		Metadata: map[string]string{
			"export-id": exp.ID,
			"entries":   fmt.Sprintf("%d", exp.Entries),
		},
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}
