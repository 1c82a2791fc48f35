package statestore

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/lexkendra/lexkendra/internal/platform/awsclient"
)

// SSMAPI is the subset of the SSM client used by ParameterStore.
type SSMAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, in *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	DeleteParameter(ctx context.Context, in *ssm.DeleteParameterInput, optFns ...func(*ssm.Options)) (*ssm.DeleteParameterOutput, error)
}

// ParameterStore keeps values as String parameters below a name prefix.
type ParameterStore struct {
	api    SSMAPI
	prefix string
}

// NewParameterStore returns a Store backed by SSM Parameter Store.
// Keys are stored as "<prefix>/<key>"; the prefix must start with a slash.
func NewParameterStore(api SSMAPI, prefix string) *ParameterStore {
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return &ParameterStore{api: api, prefix: strings.TrimSuffix(prefix, "/")}
}

func (p *ParameterStore) name(key string) string {
	return path.Join(p.prefix, key)
}

// Get implements Store.
func (p *ParameterStore) Get(ctx context.Context, key string) (string, error) {
	out, err := p.api.GetParameter(ctx, &ssm.GetParameterInput{Name: aws.String(p.name(key))})
	if err != nil {
		if awsclient.IsNotFound(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read parameter %s: %w", p.name(key), err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", ErrNotFound
	}
	return *out.Parameter.Value, nil
}

// Put implements Store.
func (p *ParameterStore) Put(ctx context.Context, key, value string) error {
	_, err := p.api.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(p.name(key)),
		Value:     aws.String(value),
		Type:      ssmtypes.ParameterTypeString,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to write parameter %s: %w", p.name(key), err)
	}
	return nil
}

// Delete implements Store.
func (p *ParameterStore) Delete(ctx context.Context, key string) error {
	_, err := p.api.DeleteParameter(ctx, &ssm.DeleteParameterInput{Name: aws.String(p.name(key))})
	if err != nil && !awsclient.IsNotFound(err) {
		return fmt.Errorf("failed to delete parameter %s: %w", p.name(key), err)
	}
	return nil
}
