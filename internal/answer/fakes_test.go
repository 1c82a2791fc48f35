package answer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/kendra"
)

type presignCall struct {
	bucket  string
	key     string
	expires time.Duration
}

type fakePresigner struct {
	mu    sync.Mutex
	calls []presignCall
	err   error
}

func (f *fakePresigner) PresignGetObject(_ context.Context, bucket, key string, expires time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, presignCall{bucket, key, expires})
	if f.err != nil {
		return "", f.err
	}
	return "https://" + bucket + ".example/" + key + "?signed", nil
}

type fakeSearcher struct {
	QueryFunc func(ctx context.Context, in *kendra.QueryInput) (*kendra.QueryOutput, error)
	inputs    []*kendra.QueryInput
}

func (f *fakeSearcher) Query(ctx context.Context, in *kendra.QueryInput, _ ...func(*kendra.Options)) (*kendra.QueryOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.QueryFunc != nil {
		return f.QueryFunc(ctx, in)
	}
	return nil, errors.New("QueryFunc not set")
}
