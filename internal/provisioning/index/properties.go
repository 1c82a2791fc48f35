package index

import (
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	kendratypes "github.com/aws/aws-sdk-go-v2/service/kendra/types"

	"github.com/lexkendra/lexkendra/internal/lifecycle"
)

// Property names accepted on the custom resource.
const (
	PropIndexName        = "IndexName"
	PropName             = "Name"
	PropEdition          = "Edition"
	PropIndexRoleArn     = "IndexRoleArn"
	PropRoleArn          = "RoleArn"
	PropIndexDescription = "IndexDescription"
	PropTags             = "Tags"

	PropDataSourceName    = "DataSourceName"
	PropKendraS3Bucket    = "KendraS3Bucket"
	PropDataSourceRoleArn = "DataSourceRoleArn"
	PropFAQName           = "FAQName"
	PropFAQFileKey        = "FAQFileKey"
	PropFAQRoleArn        = "FAQRoleArn"
	PropFAQDescription    = "FAQDescription"
)

const (
	defaultIndexDescription      = "Kendra Index for Chat bot created using Lex"
	defaultDataSourceDescription = "Lex-Kendra-bot Data Source"
	defaultFAQDescription        = "FAQs for the Lex-Kendra bot"
)

// dependentProperties must be given together or not at all.
var dependentProperties = []string{
	PropDataSourceName,
	PropKendraS3Bucket,
	PropDataSourceRoleArn,
	PropFAQName,
	PropFAQFileKey,
	PropFAQRoleArn,
}

// faqExclusionPatterns keep the FAQ file out of the document data source.
var faqExclusionPatterns = []string{"*faq*", "*FAQ*"}

// indexSettings is the validated form of the resource properties.
type indexSettings struct {
	Name        string
	Edition     kendratypes.IndexEdition
	RoleArn     string
	Description string
	Tags        []kendratypes.Tag

	// Dependents is nil for index-only requests.
	Dependents *dependents
}

type dependents struct {
	DataSourceName        string
	DataSourceDescription string
	Bucket                string
	DataSourceRoleArn     string
	FAQName               string
	FAQDescription        string
	FAQFileKey            string
	FAQRoleArn            string
}

// parseProperties validates every property before any remote call is made.
func parseProperties(props lifecycle.Properties) (*indexSettings, error) {
	name, err := props.RequireOneOf(PropIndexName, PropName)
	if err != nil {
		return nil, err
	}
	if err := props.Require(PropEdition); err != nil {
		return nil, err
	}
	roleArn, err := props.RequireOneOf(PropIndexRoleArn, PropRoleArn)
	if err != nil {
		return nil, err
	}

	edition := kendratypes.IndexEdition(props.String(PropEdition))
	if !slices.Contains(edition.Values(), edition) {
		return nil, &lifecycle.ValidationError{
			Property: PropEdition,
			Message:  fmt.Sprintf("has unsupported value %q", edition),
		}
	}

	s := &indexSettings{
		Name:        name,
		Edition:     edition,
		RoleArn:     roleArn,
		Description: props.Default(PropIndexDescription, defaultIndexDescription),
	}

	for _, tag := range props.Maps(PropTags) {
		key, _ := tag["Key"].(string)
		value, _ := tag["Value"].(string)
		if key == "" {
			return nil, &lifecycle.ValidationError{Property: PropTags, Message: "entries must have a Key"}
		}
		s.Tags = append(s.Tags, kendratypes.Tag{Key: aws.String(key), Value: aws.String(value)})
	}

	present, err := props.Group(dependentProperties...)
	if err != nil {
		return nil, err
	}
	if present {
		s.Dependents = &dependents{
			DataSourceName:        props.String(PropDataSourceName),
			DataSourceDescription: props.Default(PropIndexDescription, defaultDataSourceDescription),
			Bucket:                props.String(PropKendraS3Bucket),
			DataSourceRoleArn:     props.String(PropDataSourceRoleArn),
			FAQName:               props.String(PropFAQName),
			FAQDescription:        props.Default(PropFAQDescription, defaultFAQDescription),
			FAQFileKey:            props.String(PropFAQFileKey),
			FAQRoleArn:            props.String(PropFAQRoleArn),
		}
	}
	return s, nil
}
