package errors

import (
	"context"
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCauseInspectable(t *testing.T) {
	err := Wrap(context.Canceled, ErrUpstreamFetch.Code, ErrUpstreamFetch.Status, "list enrollments")

	assert.True(t, stdErrors.Is(err, context.Canceled))
	assert.True(t, stdErrors.Is(err, ErrUpstreamFetch))
	assert.False(t, stdErrors.Is(err, ErrConfiguration))
	assert.Equal(t, "list enrollments: context canceled", err.Error())
}

func TestCloneMatchesOriginalCode(t *testing.T) {
	err := Clone(ErrConfiguration, "custom range requires start and end")

	assert.True(t, stdErrors.Is(err, ErrConfiguration))
	assert.Equal(t, "custom range requires start and end", err.Message)
	assert.Equal(t, "configuration error", ErrConfiguration.Message)
}

func TestFromErrorNormalisesUnknownErrors(t *testing.T) {
	err := FromError(stdErrors.New("boom"))

	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}
