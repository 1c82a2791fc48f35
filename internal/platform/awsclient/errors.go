package awsclient

import (
	"errors"

	"github.com/aws/smithy-go"
)

var notFoundCodes = map[string]bool{
	"NotFoundException":         true,
	"ResourceNotFoundException": true,
	"ParameterNotFound":         true,
	"NoSuchKey":                 true,
	"NoSuchBucket":              true,
	"NotFound":                  true,
}

var conflictCodes = map[string]bool{
	"ConflictException":         true,
	"ResourceConflictException": true,
	"ResourceInUseException":    true,
}

// ErrorCode returns the remote API error code, or "" for non-API errors.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// IsNotFound reports whether the remote service said the resource does not exist.
func IsNotFound(err error) bool {
	return err != nil && notFoundCodes[ErrorCode(err)]
}

// IsConflict reports whether the remote service rejected the call because
// the resource is being modified concurrently.
func IsConflict(err error) bool {
	return err != nil && conflictCodes[ErrorCode(err)]
}
