package patient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/carepulse/intake-platform/pkg/logging"
)

type s3API interface {
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// DocumentStore uploads patient identification documents to object storage
// and returns the stored key.
type DocumentStore struct {
	client s3API
	bucket string
	logger *logging.Logger
}

// NewDocumentStore builds a document store over the provided S3 client.
// Returns nil when no bucket is configured, which disables uploads.
func NewDocumentStore(client s3API, bucket string, logger *logging.Logger) *DocumentStore {
	if client == nil || bucket == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DocumentStore{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// Upload stores an identification document under a per-patient key.
func (d *DocumentStore) Upload(ctx context.Context, patientID, filename, contentType string, body io.Reader) (string, error) {
	if d == nil {
		return "", errors.New("patient: document storage not configured")
	}
	if patientID == "" {
		return "", errors.New("patient: id cannot be empty")
	}

	key := fmt.Sprintf("identification/%s/%s%s", patientID, uuid.NewString(), path.Ext(filename))

	input := &s3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := d.client.PutObject(ctx, input); err != nil {
		d.logger.Error("identification document upload failed", "error", err, "patient_id", patientID)
		return "", fmt.Errorf("patient: failed to store document: %w", err)
	}

	d.logger.Info("identification document stored", "patient_id", patientID, "key", key)
	return key, nil
}
