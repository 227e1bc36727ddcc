package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/tastebud/tastebud-api/pkg/logger"
	"github.com/tastebud/tastebud-api/pkg/metrics"
	"github.com/tastebud/tastebud-api/pkg/retry"
	"go.uber.org/zap"
)

// PhotoClient represents an S3-compatible object storage client used for
// dish and restaurant photos.
type PhotoClient struct {
	s3Client   *s3.Client
	bucketName string
	endpoint   string
}

// NewPhotoClient creates a new photo storage client using the S3 SDK
func NewPhotoClient(accessKeyID, secretAccessKey, bucketName, endpoint, region string) (*PhotoClient, error) {
	if endpoint == "" {
		endpoint = "https://storage.yandexcloud.net"
	}
	if region == "" {
		region = "ru-central1"
	}

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials: credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"", // session token not needed
		),
	})

	logger.Info("Photo storage client initialized",
		zap.String("bucket", bucketName),
		zap.String("endpoint", endpoint),
		zap.String("region", region),
	)

	return &PhotoClient{
		s3Client:   s3Client,
		bucketName: bucketName,
		endpoint:   endpoint,
	}, nil
}

// UploadPhoto uploads a base64-encoded photo and returns its public URL.
// Accepts both raw base64 and data URI payloads (data:image/png;base64,...).
func (s *PhotoClient) UploadPhoto(ctx context.Context, photoData, key, contentType string) (string, error) {
	start := time.Now()
	operation := "uploadPhoto"

	photoBytes, err := decodeBase64Payload(photoData)
	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(metrics.MeasureDuration(start))
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		return "", fmt.Errorf("failed to decode base64 photo: %w", err)
	}

	// Transient storage errors are retried with backoff
	err = retry.Do(ctx, retry.StorageConfig(), operation, func() error {
		_, putErr := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucketName),
			Key:         aws.String(key),
			Body:        bytes.NewReader(photoBytes),
			ContentType: aws.String(contentType),
		})
		return putErr
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.StorageRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.StorageRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall("photo_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	metrics.StorageRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.StorageRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall("photo_storage", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(photoBytes)),
	)

	// Format: {endpoint}/{bucket}/{key}
	photoURL := fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucketName, key)

	return photoURL, nil
}

// ValidatePhotoType validates the photo content type
func (s *PhotoClient) ValidatePhotoType(contentType string) error {
	validTypes := map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/webp": true,
	}

	if !validTypes[strings.ToLower(contentType)] {
		return fmt.Errorf("invalid file type: %s. Allowed types: jpeg, jpg, png, webp", contentType)
	}

	return nil
}

// ValidatePhotoSize validates the photo size (max 10MB)
func (s *PhotoClient) ValidatePhotoSize(photoData string) error {
	const maxSize = 10 * 1024 * 1024 // 10MB

	photoBytes, err := decodeBase64Payload(photoData)
	if err != nil {
		return fmt.Errorf("failed to decode photo for size validation: %w", err)
	}

	if len(photoBytes) > maxSize {
		return fmt.Errorf("file too large: %d bytes (max %d bytes)", len(photoBytes), maxSize)
	}

	return nil
}

func decodeBase64Payload(data string) ([]byte, error) {
	if strings.HasPrefix(data, "data:") {
		parts := strings.SplitN(data, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid data URI format")
		}
		return base64.StdEncoding.DecodeString(parts[1])
	}
	return base64.StdEncoding.DecodeString(data)
}
