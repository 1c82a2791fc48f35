package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/lexkendra/lexkendra/internal/platform/s3"
)

// ObjectAPI is the subset of the S3 client used by ObjectStore.
type ObjectAPI interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	DeleteObject(ctx context.Context, bucket, key string) error
}

// ObjectStore keeps each value as a small JSON document in a bucket.
type ObjectStore struct {
	api    ObjectAPI
	bucket string
	prefix string
}

type objectValue struct {
	Value string `json:"value"`
}

// NewObjectStore returns a Store backed by S3 objects "<prefix>/<key>.json".
func NewObjectStore(api ObjectAPI, bucket, prefix string) *ObjectStore {
	return &ObjectStore{api: api, bucket: bucket, prefix: prefix}
}

func (o *ObjectStore) objectKey(key string) string {
	return path.Join(o.prefix, key) + ".json"
}

// Get implements Store.
func (o *ObjectStore) Get(ctx context.Context, key string) (string, error) {
	data, err := o.api.GetObject(ctx, o.bucket, o.objectKey(key))
	if err != nil {
		if errors.Is(err, s3.ErrObjectNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	var v objectValue
	if err := json.Unmarshal(data, &v); err != nil {
		return "", fmt.Errorf("failed to decode state object %s: %w", o.objectKey(key), err)
	}
	return v.Value, nil
}

// Put implements Store.
func (o *ObjectStore) Put(ctx context.Context, key, value string) error {
	data, err := json.Marshal(objectValue{Value: value})
	if err != nil {
		return fmt.Errorf("failed to encode state object: %w", err)
	}
	return o.api.PutObject(ctx, o.bucket, o.objectKey(key), data)
}

// Delete implements Store.
func (o *ObjectStore) Delete(ctx context.Context, key string) error {
	return o.api.DeleteObject(ctx, o.bucket, o.objectKey(key))
}
