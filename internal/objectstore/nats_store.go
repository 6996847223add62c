// Package objectstore provides a NATS-based implementation of the
// core.ObjectStore interface, used to move audio artifacts between the
// client surface and the worker.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	contentTypeHeader  = "Content-Type"
	defaultContentType = "application/octet-stream"
)

// artifactContentTypes maps audio artifact key extensions to the content
// type recorded on the stored object. Synthesized renders are MP3; uploads
// keep their original container format.
var artifactContentTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
}

// NatsObjectStore implements core.ObjectStore using a NATS JetStream object
// store bucket. Audio travels through the bucket as opaque bytes; the
// content type of each artifact is recorded as object metadata.
type NatsObjectStore struct {
	bucket string
	store  nats.ObjectStore
}

// New creates a NatsObjectStore over the named audio bucket, creating the
// bucket on first use and binding to it when it already exists.
func New(jetstreamContext nats.JetStreamContext, bucketName string) (*NatsObjectStore, error) {
	store, err := jetstreamContext.CreateObjectStore(&nats.ObjectStoreConfig{
		Bucket:      bucketName,
		Description: fmt.Sprintf("Audio artifacts in transit for the %s bucket.", bucketName),
		TTL:         0,
		MaxBytes:    0,
		Storage:     nats.FileStorage,
		Replicas:    1,
		Placement:   nil,
		Metadata:    nil,
		Compression: false,
	})
	if err != nil {
		if !errors.Is(err, jetstream.ErrBucketExists) {
			return nil, fmt.Errorf("failed to create object store bucket '%s': %w", bucketName, err)
		}

		store, err = jetstreamContext.ObjectStore(bucketName)
		if err != nil {
			return nil, fmt.Errorf("failed to bind to existing object store bucket '%s': %w", bucketName, err)
		}
	}

	return &NatsObjectStore{
		bucket: bucketName,
		store:  store,
	}, nil
}

// Download retrieves an audio artifact from the bucket.
func (n *NatsObjectStore) Download(_ context.Context, key string) ([]byte, error) {
	obj, err := n.store.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio artifact '%s' from bucket '%s': %w", key, n.bucket, err)
	}

	data, readErr := io.ReadAll(obj)
	closeErr := obj.Close()

	if readErr != nil {
		return nil, fmt.Errorf("failed to read audio artifact '%s': %w", key, readErr)
	}

	if closeErr != nil {
		return data, fmt.Errorf("failed to close audio artifact '%s': %w", key, closeErr)
	}

	return data, nil
}

// Upload saves an audio artifact to the bucket, recording the content type
// derived from the key's extension as object metadata.
func (n *NatsObjectStore) Upload(_ context.Context, key string, data []byte) error {
	headers := nats.Header{}
	headers.Set(contentTypeHeader, ContentTypeForKey(key))

	_, err := n.store.Put(&nats.ObjectMeta{
		Name:        key,
		Description: fmt.Sprintf("Audio artifact (%d bytes).", len(data)),
		Headers:     headers,
		Metadata:    nil,
		Opts:        nil,
	}, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to put audio artifact '%s' to bucket '%s': %w", key, n.bucket, err)
	}

	return nil
}

// ContentTypeForKey returns the content type recorded for an artifact key,
// falling back to an opaque binary type for unknown extensions.
func ContentTypeForKey(key string) string {
	contentType, ok := artifactContentTypes[strings.ToLower(filepath.Ext(key))]
	if !ok {
		return defaultContentType
	}

	return contentType
}
