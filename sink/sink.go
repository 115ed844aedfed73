// Package sink uploads encoded CSV documents to S3.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/go-data-exporter/csvexport"
)

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Sink stores documents under bucket/prefix, keyed by their output filename.
type Sink struct {
	client s3API
	logger *slog.Logger

	bucket string
	prefix string
}

func New(client s3API, bucket, prefix string) *Sink {
	if client == nil {
		panic("s3 client is required")
	}
	if strings.TrimSpace(bucket) == "" {
		panic("bucket is required")
	}
	return &Sink{
		client: client,
		logger: slog.Default(),
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// WithLogger sets the logger used for upload events.
func (s *Sink) WithLogger(logger *slog.Logger) *Sink {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Key returns the object key a document named filename is stored under.
// The filename is not cleaned, matching S3 key semantics.
func (s *Sink) Key(filename string) string {
	key := strings.TrimLeft(filename, "/")
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	return key
}

// Upload encodes enc and puts it as an object with the same content type,
// disposition and length an HTTP download would carry.
func (s *Sink) Upload(ctx context.Context, enc *csvexport.Encoder) (string, error) {
	if enc.OutputFilename() == "" {
		return "", errors.New("empty output filename")
	}
	data, err := enc.Encode()
	if err != nil {
		return "", err
	}

	key := s.Key(enc.OutputFilename())
	input := s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(data),
		ContentLength:      aws.Int64(int64(len(data))),
		ContentType:        aws.String("text/csv; charset=" + enc.OutputCharset()),
		ContentDisposition: aws.String(`attachment; filename="` + enc.OutputFilename() + `"`),
	}
	if _, err := s.client.PutObject(ctx, &input); err != nil {
		return "", fmt.Errorf("put s3 object key=%q: %w", key, err)
	}
	s.logger.DebugContext(ctx, "csv document uploaded",
		slog.String("bucket", s.bucket),
		slog.String("key", key),
		slog.Int("bytes", len(data)),
	)
	return key, nil
}
