package index

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/kendra"
)

// KendraAPI is the subset of the Kendra client used by the provisioner.
type KendraAPI interface {
	CreateIndex(ctx context.Context, in *kendra.CreateIndexInput, optFns ...func(*kendra.Options)) (*kendra.CreateIndexOutput, error)
	DescribeIndex(ctx context.Context, in *kendra.DescribeIndexInput, optFns ...func(*kendra.Options)) (*kendra.DescribeIndexOutput, error)
	DeleteIndex(ctx context.Context, in *kendra.DeleteIndexInput, optFns ...func(*kendra.Options)) (*kendra.DeleteIndexOutput, error)
	CreateDataSource(ctx context.Context, in *kendra.CreateDataSourceInput, optFns ...func(*kendra.Options)) (*kendra.CreateDataSourceOutput, error)
	DeleteDataSource(ctx context.Context, in *kendra.DeleteDataSourceInput, optFns ...func(*kendra.Options)) (*kendra.DeleteDataSourceOutput, error)
	StartDataSourceSyncJob(ctx context.Context, in *kendra.StartDataSourceSyncJobInput, optFns ...func(*kendra.Options)) (*kendra.StartDataSourceSyncJobOutput, error)
	CreateFaq(ctx context.Context, in *kendra.CreateFaqInput, optFns ...func(*kendra.Options)) (*kendra.CreateFaqOutput, error)
	DeleteFaq(ctx context.Context, in *kendra.DeleteFaqInput, optFns ...func(*kendra.Options)) (*kendra.DeleteFaqOutput, error)
}
