package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperties_String(t *testing.T) {
	t.Parallel()

	p := Properties{
		"s":    "value",
		"n":    float64(42),
		"b":    true,
		"list": []any{"a", "b"},
	}
	assert.Equal(t, "value", p.String("s"))
	assert.Equal(t, "42", p.String("n"))
	assert.Equal(t, "true", p.String("b"))
	assert.Equal(t, "", p.String("list"))
	assert.Equal(t, "", p.String("missing"))
	assert.Equal(t, []string{"a", "b"}, p.List("list"))
	assert.True(t, p.Has("list"))
	assert.Equal(t, "fallback", p.Default("missing", "fallback"))
}

func TestProperties_Require(t *testing.T) {
	t.Parallel()

	p := Properties{"IndexName": "faq-idx", "Edition": ""}

	require.NoError(t, p.Require("IndexName"))

	err := p.Require("IndexName", "Edition", "RoleArn")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Edition is a required property", err.Error())
}

func TestProperties_RequireOneOf(t *testing.T) {
	t.Parallel()

	v, err := Properties{"Name": "faq-idx"}.RequireOneOf("IndexName", "Name")
	require.NoError(t, err)
	assert.Equal(t, "faq-idx", v)

	_, err = Properties{}.RequireOneOf("IndexName", "Name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IndexName")
}

func TestProperties_Group(t *testing.T) {
	t.Parallel()

	keys := []string{"DataSourceName", "KendraS3Bucket", "FAQName"}

	tests := []struct {
		name        string
		props       Properties
		wantPresent bool
		wantMissing string
	}{
		{name: "absent", props: Properties{}},
		{name: "complete", props: Properties{"DataSourceName": "ds", "KendraS3Bucket": "b", "FAQName": "f"}, wantPresent: true},
		{name: "partial", props: Properties{"DataSourceName": "ds"}, wantMissing: "KendraS3Bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			present, err := tt.props.Group(keys...)
			if tt.wantMissing != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantMissing)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPresent, present)
		})
	}
}
