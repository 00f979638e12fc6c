// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage is the media sink. Uploaded files go to a remote object
// store (S3 via the AWS SDK v2, or MinIO) and fall back to the local disk
// when the remote store is missing or failing.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 stores objects in one public-read bucket of an S3-compatible service.
type S3 struct {
	s3        *s3.Client
	bucket    string
	endpoint  string
	publicURL string // optional CDN/direct URL
}

// NewS3 creates an S3 backend with path-style addressing. Returns
// (nil, nil) if endpoint or credentials are empty, so the sink runs on
// local disk alone.
func NewS3(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*S3, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	endpoint = strings.TrimRight(endpoint, "/")

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &S3{
		s3:        client,
		bucket:    bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Name implements Backend.
func (c *S3) Name() string { return BackendS3 }

// Put uploads an object with public-read ACL and returns its public URL.
func (c *S3) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s/%s: %w", c.bucket, key, err)
	}
	return c.FileURL(key), nil
}

// Delete removes an object. S3 reports success for missing keys.
func (c *S3) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, key, err)
	}
	return nil
}

// FileURL returns the public URL for a key. Uses the configured public
// URL if set, otherwise builds a path-style URL.
func (c *S3) FileURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return c.endpoint + "/" + c.bucket + "/" + key
}

// KeyFromURL extracts the object key from a URL produced by FileURL.
func (c *S3) KeyFromURL(rawURL string) (string, bool) {
	return keyFromURL(rawURL, c.publicURL, c.endpoint+"/"+c.bucket)
}

// keyFromURL strips the first matching base from rawURL.
func keyFromURL(rawURL string, bases ...string) (string, bool) {
	for _, base := range bases {
		if base == "" {
			continue
		}
		prefix := base + "/"
		if strings.HasPrefix(rawURL, prefix) && len(rawURL) > len(prefix) {
			return rawURL[len(prefix):], true
		}
	}
	return "", false
}
