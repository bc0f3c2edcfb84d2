// Package archive writes ingested document records to S3 as JSON. Archival
// is optional and best-effort; ingestion never depends on it.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"newsgraph/store"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config contains minimal settings for the S3 archiver. Values fall back to
// the standard AWS config/credential chain when empty.
type Config struct {
	Bucket       string
	Region       string
	Profile      string
	Prefix       string
	UsePathStyle bool
}

// Archiver uploads document JSON records to one bucket/prefix.
type Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an Archiver using the default AWS configuration chain with
// optional overrides from cfg.
func New(ctx context.Context, cfg Config) (*Archiver, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &Archiver{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

// ArchiveDocument uploads one document record under documents/<id>.json.
func (a *Archiver) ArchiveDocument(ctx context.Context, doc *store.Document, entities []string) error {
	payload := map[string]interface{}{
		"id":       doc.ID.String(),
		"url":      doc.URL,
		"title":    doc.Title,
		"source":   doc.Source,
		"text":     doc.Text,
		"entities": entities,
	}
	if doc.PublishedAt != nil {
		payload["published_at"] = doc.PublishedAt.UTC().Format(time.RFC3339)
	}

	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}

	key := a.prefix + "documents/" + doc.ID.String() + ".json"
	return a.put(ctx, key, bytes.NewReader(b), "application/json")
}

func (a *Archiver) put(ctx context.Context, key string, body io.Reader, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	_, err := a.client.PutObject(ctx, in)
	return err
}
