package index

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kendra"
	kendratypes "github.com/aws/aws-sdk-go-v2/service/kendra/types"
)

// fakeKendra implements KendraAPI with overridable func fields and records
// the name of every call.
type fakeKendra struct {
	CreateIndexFunc      func(in *kendra.CreateIndexInput) (*kendra.CreateIndexOutput, error)
	DescribeIndexFunc    func(in *kendra.DescribeIndexInput) (*kendra.DescribeIndexOutput, error)
	DeleteIndexFunc      func(in *kendra.DeleteIndexInput) (*kendra.DeleteIndexOutput, error)
	CreateDataSourceFunc func(in *kendra.CreateDataSourceInput) (*kendra.CreateDataSourceOutput, error)
	DeleteDataSourceFunc func(in *kendra.DeleteDataSourceInput) (*kendra.DeleteDataSourceOutput, error)
	StartSyncFunc        func(in *kendra.StartDataSourceSyncJobInput) (*kendra.StartDataSourceSyncJobOutput, error)
	CreateFaqFunc        func(in *kendra.CreateFaqInput) (*kendra.CreateFaqOutput, error)
	DeleteFaqFunc        func(in *kendra.DeleteFaqInput) (*kendra.DeleteFaqOutput, error)

	mu    sync.Mutex
	calls []string
}

func (f *fakeKendra) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeKendra) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeKendra) CreateIndex(_ context.Context, in *kendra.CreateIndexInput, _ ...func(*kendra.Options)) (*kendra.CreateIndexOutput, error) {
	f.record("CreateIndex")
	if f.CreateIndexFunc != nil {
		return f.CreateIndexFunc(in)
	}
	return &kendra.CreateIndexOutput{Id: aws.String("idx-1")}, nil
}

func (f *fakeKendra) DescribeIndex(_ context.Context, in *kendra.DescribeIndexInput, _ ...func(*kendra.Options)) (*kendra.DescribeIndexOutput, error) {
	f.record("DescribeIndex")
	if f.DescribeIndexFunc != nil {
		return f.DescribeIndexFunc(in)
	}
	return &kendra.DescribeIndexOutput{Id: in.Id, Status: kendratypes.IndexStatusActive}, nil
}

func (f *fakeKendra) DeleteIndex(_ context.Context, in *kendra.DeleteIndexInput, _ ...func(*kendra.Options)) (*kendra.DeleteIndexOutput, error) {
	f.record("DeleteIndex")
	if f.DeleteIndexFunc != nil {
		return f.DeleteIndexFunc(in)
	}
	return &kendra.DeleteIndexOutput{}, nil
}

func (f *fakeKendra) CreateDataSource(_ context.Context, in *kendra.CreateDataSourceInput, _ ...func(*kendra.Options)) (*kendra.CreateDataSourceOutput, error) {
	f.record("CreateDataSource")
	if f.CreateDataSourceFunc != nil {
		return f.CreateDataSourceFunc(in)
	}
	return &kendra.CreateDataSourceOutput{Id: aws.String("ds-1")}, nil
}

func (f *fakeKendra) DeleteDataSource(_ context.Context, in *kendra.DeleteDataSourceInput, _ ...func(*kendra.Options)) (*kendra.DeleteDataSourceOutput, error) {
	f.record("DeleteDataSource")
	if f.DeleteDataSourceFunc != nil {
		return f.DeleteDataSourceFunc(in)
	}
	return &kendra.DeleteDataSourceOutput{}, nil
}

func (f *fakeKendra) StartDataSourceSyncJob(_ context.Context, in *kendra.StartDataSourceSyncJobInput, _ ...func(*kendra.Options)) (*kendra.StartDataSourceSyncJobOutput, error) {
	f.record("StartDataSourceSyncJob")
	if f.StartSyncFunc != nil {
		return f.StartSyncFunc(in)
	}
	return &kendra.StartDataSourceSyncJobOutput{ExecutionId: aws.String("exec-1")}, nil
}

func (f *fakeKendra) CreateFaq(_ context.Context, in *kendra.CreateFaqInput, _ ...func(*kendra.Options)) (*kendra.CreateFaqOutput, error) {
	f.record("CreateFaq")
	if f.CreateFaqFunc != nil {
		return f.CreateFaqFunc(in)
	}
	return &kendra.CreateFaqOutput{Id: aws.String("faq-1")}, nil
}

func (f *fakeKendra) DeleteFaq(_ context.Context, in *kendra.DeleteFaqInput, _ ...func(*kendra.Options)) (*kendra.DeleteFaqOutput, error) {
	f.record("DeleteFaq")
	if f.DeleteFaqFunc != nil {
		return f.DeleteFaqFunc(in)
	}
	return &kendra.DeleteFaqOutput{}, nil
}
