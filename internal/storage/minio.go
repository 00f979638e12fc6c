// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIO stores objects in one bucket of a MinIO server.
type MinIO struct {
	client    *minio.Client
	bucket    string
	baseURL   string
	publicURL string
}

// NewMinIO creates a MinIO backend. The endpoint may carry a scheme,
// which is stripped since minio-go takes host:port. Returns (nil, nil)
// when the endpoint or credentials are empty.
func NewMinIO(endpoint, accessKey, secretKey, bucket, publicURL string, useSSL bool) (*MinIO, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("minio: bucket is required")
	}

	host := strings.TrimRight(endpoint, "/")
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	protocol := "http"
	if useSSL {
		protocol = "https"
	}

	return &MinIO{
		client:    client,
		bucket:    bucket,
		baseURL:   fmt.Sprintf("%s://%s/%s", protocol, host, bucket),
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Name implements Backend.
func (m *MinIO) Name() string { return BackendMinIO }

// Put uploads an object and returns its public URL.
func (m *MinIO) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("minio upload %s/%s: %w", m.bucket, key, err)
	}
	return m.FileURL(key), nil
}

// Delete removes an object. MinIO reports success for missing keys.
func (m *MinIO) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio delete %s/%s: %w", m.bucket, key, err)
	}
	return nil
}

// FileURL returns the public URL for a key.
func (m *MinIO) FileURL(key string) string {
	if m.publicURL != "" {
		return m.publicURL + "/" + key
	}
	return m.baseURL + "/" + key
}

// KeyFromURL extracts the object key from a URL produced by FileURL.
func (m *MinIO) KeyFromURL(rawURL string) (string, bool) {
	return keyFromURL(rawURL, m.publicURL, m.baseURL)
}
