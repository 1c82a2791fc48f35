package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kendra"
	kendratypes "github.com/aws/aws-sdk-go-v2/service/kendra/types"
	"github.com/go-logr/logr"

	"github.com/lexkendra/lexkendra/internal/lifecycle"
	"github.com/lexkendra/lexkendra/internal/platform/awsclient"
	"github.com/lexkendra/lexkendra/internal/statestore"
	"github.com/lexkendra/lexkendra/internal/util/retry"
)

// Response data keys.
const (
	DataIndexID         = "KendraIndexId"
	DataDataSourceID    = "DataSourceId"
	DataSyncExecutionID = "SyncExecutionId"
	DataFAQID           = "FAQId"
)

// DefaultDataSourceRetryDelay is the pause before the single data source
// retry. Kendra may reject data sources right after the index turns ACTIVE.
const DefaultDataSourceRetryDelay = 15 * time.Second

// Provisioner implements lifecycle.Provisioner for the index graph.
type Provisioner struct {
	kendra     KendraAPI
	store      statestore.Store
	guard      *lifecycle.UpdateGuard
	retryDelay time.Duration
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithDataSourceRetryDelay sets the pause before retrying data source creation.
func WithDataSourceRetryDelay(d time.Duration) Option {
	return func(p *Provisioner) {
		p.retryDelay = d
	}
}

// NewProvisioner returns an index provisioner.
func NewProvisioner(api KendraAPI, store statestore.Store, guard *lifecycle.UpdateGuard, opts ...Option) *Provisioner {
	p := &Provisioner{
		kendra:     api,
		store:      store,
		guard:      guard,
		retryDelay: DefaultDataSourceRetryDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ lifecycle.Provisioner = (*Provisioner)(nil)

// Create validates the properties and issues the CreateIndex call.
func (p *Provisioner) Create(ctx context.Context, req *lifecycle.Request) (lifecycle.PollData, error) {
	logger := logr.FromContextOrDiscard(ctx)

	s, err := parseProperties(req.Properties())
	if err != nil {
		return lifecycle.PollData{}, err
	}

	out, err := p.kendra.CreateIndex(ctx, &kendra.CreateIndexInput{
		Name:        aws.String(s.Name),
		Edition:     s.Edition,
		RoleArn:     aws.String(s.RoleArn),
		Description: aws.String(s.Description),
		Tags:        s.Tags,
		ClientToken: aws.String(req.RequestID),
	})
	if err != nil {
		return lifecycle.PollData{}, fmt.Errorf("failed to create Kendra index %s: %w", s.Name, err)
	}
	id := aws.ToString(out.Id)
	logger.Info("Created Kendra index", "indexId", id, "name", s.Name)

	if err := p.store.Put(ctx, statestore.IndexIDKey(req.Scope()), id); err != nil {
		logger.Error(err, "Failed to store index id", "indexId", id)
	}

	return lifecycle.PollData{
		PhysicalID: id,
		Values:     map[string]string{DataIndexID: id},
	}, nil
}

// PollCreate checks the index status and, once it is ACTIVE, creates the
// dependent resources.
func (p *Provisioner) PollCreate(ctx context.Context, req *lifecycle.Request, data lifecycle.PollData) (lifecycle.Progress, error) {
	id := data.PhysicalID
	if id == "" {
		id = data.Values[DataIndexID]
	}
	if id == "" {
		return lifecycle.Progress{}, errors.New("poll data carries no Kendra index id")
	}

	active, err := p.indexActive(ctx, id)
	if err != nil || !active {
		return lifecycle.Progress{}, err
	}

	s, err := parseProperties(req.Properties())
	if err != nil {
		return lifecycle.Progress{}, err
	}
	result := map[string]string{DataIndexID: id}
	if s.Dependents != nil {
		if err := p.createDependents(ctx, req, id, s.Dependents, result); err != nil {
			return lifecycle.Progress{}, err
		}
	}
	return lifecycle.Completed(id, result), nil
}

// indexActive reports whether the index is ready. States that cannot lead
// to ACTIVE are returned as errors.
func (p *Provisioner) indexActive(ctx context.Context, id string) (bool, error) {
	out, err := p.kendra.DescribeIndex(ctx, &kendra.DescribeIndexInput{Id: aws.String(id)})
	if err != nil {
		return false, fmt.Errorf("failed to describe Kendra index %s: %w", id, err)
	}
	logr.FromContextOrDiscard(ctx).Info("Kendra index status", "indexId", id, "status", out.Status)

	switch out.Status {
	case kendratypes.IndexStatusActive:
		return true, nil
	case kendratypes.IndexStatusDeleting:
		return false, &lifecycle.RemoteStateError{Resource: "Kendra index", ID: id, State: string(out.Status)}
	case kendratypes.IndexStatusFailed:
		return false, &lifecycle.RemoteStateError{
			Resource: "Kendra index",
			ID:       id,
			State:    string(out.Status),
			Message:  aws.ToString(out.ErrorMessage),
		}
	default:
		return false, nil
	}
}

func (p *Provisioner) createDependents(ctx context.Context, req *lifecycle.Request, indexID string, d *dependents, result map[string]string) error {
	logger := logr.FromContextOrDiscard(ctx)

	var dataSourceID string
	err := retry.Do(ctx, func(ctx context.Context) error {
		out, err := p.kendra.CreateDataSource(ctx, &kendra.CreateDataSourceInput{
			IndexId:     aws.String(indexID),
			Name:        aws.String(d.DataSourceName),
			Description: aws.String(d.DataSourceDescription),
			Type:        kendratypes.DataSourceTypeS3,
			RoleArn:     aws.String(d.DataSourceRoleArn),
			Configuration: &kendratypes.DataSourceConfiguration{
				S3Configuration: &kendratypes.S3DataSourceConfiguration{
					BucketName:        aws.String(d.Bucket),
					ExclusionPatterns: faqExclusionPatterns,
				},
			},
			ClientToken: aws.String(req.RequestID + "-datasource"),
		})
		if err != nil {
			logger.Info("Data source creation rejected", "error", err.Error())
			return err
		}
		dataSourceID = aws.ToString(out.Id)
		return nil
	}, retry.Once(p.retryDelay))
	if err != nil {
		return fmt.Errorf("failed to create data source %s: %w", d.DataSourceName, err)
	}
	logger.Info("Created data source", "dataSourceId", dataSourceID)
	result[DataDataSourceID] = dataSourceID
	p.remember(ctx, statestore.DataSourceIDKey(req.Scope()), dataSourceID)

	sync, err := p.kendra.StartDataSourceSyncJob(ctx, &kendra.StartDataSourceSyncJobInput{
		Id:      aws.String(dataSourceID),
		IndexId: aws.String(indexID),
	})
	if err != nil {
		return fmt.Errorf("failed to start sync of data source %s: %w", dataSourceID, err)
	}
	result[DataSyncExecutionID] = aws.ToString(sync.ExecutionId)
	logger.Info("Started data source sync", "executionId", aws.ToString(sync.ExecutionId))

	faq, err := p.kendra.CreateFaq(ctx, &kendra.CreateFaqInput{
		IndexId:     aws.String(indexID),
		Name:        aws.String(d.FAQName),
		Description: aws.String(d.FAQDescription),
		RoleArn:     aws.String(d.FAQRoleArn),
		S3Path: &kendratypes.S3Path{
			Bucket: aws.String(d.Bucket),
			Key:    aws.String(d.FAQFileKey),
		},
		ClientToken: aws.String(req.RequestID + "-faq"),
	})
	if err != nil {
		return fmt.Errorf("failed to create FAQ %s: %w", d.FAQName, err)
	}
	faqID := aws.ToString(faq.Id)
	logger.Info("Created FAQ", "faqId", faqID)
	result[DataFAQID] = faqID
	p.remember(ctx, statestore.FAQIDKey(req.Scope()), faqID)

	return nil
}

// remember stores an id for the delete phase. The physical id alone is
// enough to delete the index, so a failed write is only logged.
func (p *Provisioner) remember(ctx context.Context, key, value string) {
	if err := p.store.Put(ctx, key, value); err != nil {
		logr.FromContextOrDiscard(ctx).Error(err, "Failed to store id", "key", key)
	}
}

// Update rejects updates while the stack is updating.
func (p *Provisioner) Update(ctx context.Context, req *lifecycle.Request) (string, error) {
	return p.guard.Check(ctx, req)
}

// Delete removes the FAQ, the data source and the index. It never fails:
// missing resources are already gone and other errors are logged.
func (p *Provisioner) Delete(ctx context.Context, req *lifecycle.Request) {
	logger := logr.FromContextOrDiscard(ctx)
	scope := req.Scope()

	indexID := req.PhysicalResourceID
	if indexID == "" {
		indexID = p.lookup(ctx, statestore.IndexIDKey(scope))
	}
	if indexID == "" {
		logger.Info("No Kendra index recorded, nothing to delete")
		return
	}

	if faqID := p.lookup(ctx, statestore.FAQIDKey(scope)); faqID != "" {
		_, err := p.kendra.DeleteFaq(ctx, &kendra.DeleteFaqInput{Id: aws.String(faqID), IndexId: aws.String(indexID)})
		logDeleteResult(logger, "FAQ", faqID, err)
	}
	if dsID := p.lookup(ctx, statestore.DataSourceIDKey(scope)); dsID != "" {
		_, err := p.kendra.DeleteDataSource(ctx, &kendra.DeleteDataSourceInput{Id: aws.String(dsID), IndexId: aws.String(indexID)})
		logDeleteResult(logger, "data source", dsID, err)
	}

	_, err := p.kendra.DeleteIndex(ctx, &kendra.DeleteIndexInput{Id: aws.String(indexID)})
	logDeleteResult(logger, "Kendra index", indexID, err)

	for _, key := range []string{
		statestore.IndexIDKey(scope),
		statestore.DataSourceIDKey(scope),
		statestore.FAQIDKey(scope),
	} {
		if err := p.store.Delete(ctx, key); err != nil {
			logger.Error(err, "Failed to remove stored id", "key", key)
		}
	}
}

func (p *Provisioner) lookup(ctx context.Context, key string) string {
	v, err := p.store.Get(ctx, key)
	if err != nil && !errors.Is(err, statestore.ErrNotFound) {
		logr.FromContextOrDiscard(ctx).Error(err, "Failed to read stored id", "key", key)
	}
	return v
}

func logDeleteResult(logger logr.Logger, kind, id string, err error) {
	switch {
	case err == nil:
		logger.Info("Deleted "+kind, "id", id)
	case awsclient.IsNotFound(err):
		logger.Info("Already deleted: "+kind, "id", id)
	default:
		logger.Error(err, "Failed to delete "+kind, "id", id)
	}
}
