// Package storage uploads project source files to an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/stwalsh4118/estatedesk/internal/config"
	"github.com/stwalsh4118/estatedesk/internal/logger"
)

// ErrUploadFailed wraps every failed upload.
var ErrUploadFailed = errors.New("storage upload failed")

// StoredObject identifies an uploaded file.
type StoredObject struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// Uploader stores file contents under an object path.
type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, data []byte) (*StoredObject, error)
}

type uploadResponse struct {
	ID  string `json:"Id"`
	Key string `json:"Key"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Client talks to the object store's HTTP API.
type Client struct {
	http   *resty.Client
	bucket string
	log    *logger.Logger
}

// NewClient creates a storage client from configuration.
func NewClient(cfg config.StorageConfig, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetAuthToken(cfg.APIKey)
	}

	return &Client{
		http:   httpClient,
		bucket: cfg.Bucket,
		log:    log,
	}
}

// Upload stores data at objectPath inside the configured bucket, replacing
// any existing object. The returned ID is the store's object id when it
// reports one, else the object key.
func (c *Client) Upload(ctx context.Context, objectPath, contentType string, data []byte) (*StoredObject, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	endpoint := "/object/" + url.PathEscape(c.bucket) + "/" + escapePath(objectPath)

	c.log.Debug("Uploading object", map[string]interface{}{
		"bucket": c.bucket,
		"path":   objectPath,
		"bytes":  len(data),
	})

	var result uploadResponse
	var failure errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		SetResult(&result).
		SetError(&failure).
		Post(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if resp.IsError() {
		msg := failure.Message
		if msg == "" {
			msg = failure.Error
		}
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return nil, fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode(), msg)
	}

	obj := &StoredObject{Key: result.Key, ID: result.ID}
	if obj.Key == "" {
		obj.Key = path.Join(c.bucket, objectPath)
	}
	if obj.ID == "" {
		obj.ID = obj.Key
	}

	c.log.Info("Object uploaded", map[string]interface{}{
		"bucket":    c.bucket,
		"object_id": obj.ID,
		"bytes":     len(data),
	})
	return obj, nil
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ObjectPath builds a collision-free object path for an uploaded project file.
func ObjectPath(organizationID, projectID, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.Trim(unsafeNameChars.ReplaceAllString(base, "_"), "_.")
	if base == "" {
		base = "file"
	}
	return path.Join(organizationID, projectID, uuid.NewString()+"-"+base)
}

func escapePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
