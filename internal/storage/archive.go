// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage archives generated drafts in S3-compatible object
// storage. It wraps the AWS SDK v2 and is configured for path-style access
// (required by CEPH/Hetzner and MinIO).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// MarkdownType is the content type of archived drafts.
const MarkdownType = "text/markdown; charset=utf-8"

// Config locates the archive bucket.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

// Enabled reports whether enough is set to reach a bucket.
func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != "" && c.Bucket != ""
}

// Archive stores draft sources in one bucket.
type Archive struct {
	s3     *s3.Client
	bucket string
}

// New creates an archive client with path-style addressing. Returns
// (nil, nil) if the config is incomplete, allowing the app to start
// without an archive.
func New(cfg Config) (*Archive, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("storage: region is required")
	}

	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(strings.TrimRight(cfg.Endpoint, "/")),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	})
	return &Archive{s3: client, bucket: cfg.Bucket}, nil
}

// PostKey is the object key of a post's draft:
// sites/<site>/pillars/<pillar>/<slug>.md, with "batches/<batch>" or
// "posts" in place of the pillar segment when the post has no pillar.
func PostKey(p *models.Post) string {
	owner := "posts"
	switch {
	case p.PillarID != nil:
		owner = path.Join("pillars", p.PillarID.String())
	case p.BatchID != nil:
		owner = path.Join("batches", p.BatchID.String())
	}
	return path.Join("sites", p.SiteID.String(), owner, p.Slug+".md")
}

// Put stores an object, replacing any previous version.
func (a *Archive) Put(ctx context.Context, key, contentType string, body []byte) error {
	_, err := a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s/%s: %w", a.bucket, key, err)
	}
	return nil
}

// Get returns the contents of an object.
func (a *Archive) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := a.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s/%s: %w", a.bucket, key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read body %s/%s: %w", a.bucket, key, err)
	}
	return data, nil
}

// Delete removes an object.
func (a *Archive) Delete(ctx context.Context, key string) error {
	_, err := a.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", a.bucket, key, err)
	}
	return nil
}
