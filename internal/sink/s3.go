package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/agoralab/agora/backend/internal/util"
	"github.com/agoralab/agora/backend/pkg/logger"
)

// S3Sink stores failures in an object bucket, for deployments where the
// worker's local disk is ephemeral. Objects land under
// dlq/failed_<type>s/.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Sink builds the S3 client from the usual AWS_* environment
// variables. Returns an error when the bucket is not configured.
func NewS3Sink(ctx context.Context) (*S3Sink, error) {
	bucket := util.GetEnv("AWS_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("sink: AWS_BUCKET not configured")
	}

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(util.GetEnv("AWS_REGION")),
		config.WithBaseEndpoint(util.GetEnv("AWS_ENDPOINT")),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			util.GetEnv("AWS_ACCESS_KEY"),
			util.GetEnv("AWS_SECRET_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("sink: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: "dlq",
	}, nil
}

func (s *S3Sink) Save(ctx context.Context, itemType string, itemID string, item any, reason string) error {
	payload, err := json.Marshal(FailedItem{Reason: reason, ItemData: item})
	if err != nil {
		return fmt.Errorf("sink: marshal failed item: %w", err)
	}

	key := fmt.Sprintf("%s/failed_%ss/%s", s.prefix, itemType, failureKey(itemType, itemID, time.Now()))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("sink: upload failed item: %w", err)
	}

	logger.Warn("[Sink] item routed to dead letter store", "type", itemType, "id", itemID, "key", key)
	return nil
}
