package ocferrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrorTypeInvalidParameter, "fetcher is nil")

	assert.Equal(t, ErrorTypeInvalidParameter, err.Type)
	assert.Equal(t, "invalid_parameter: fetcher is nil", err.Error())
	assert.Nil(t, err.Unwrap())
	assert.NotEmpty(t, err.Stack)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeValidation, "page size %d out of range", 0)
	assert.Equal(t, "validation: page size 0 out of range", err.Error())
}

func TestWrap(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, ErrorTypeInternal, "ignored"))
	})

	t.Run("plain cause", func(t *testing.T) {
		cause := fmt.Errorf("dial tcp: refused")
		err := Wrap(cause, ErrorTypeConnection, "cannot reach server")

		assert.True(t, errors.Is(err, cause))
		assert.Equal(t, "connection: cannot reach server: dial tcp: refused", err.Error())
	})

	t.Run("structured cause keeps stack", func(t *testing.T) {
		inner := New(ErrorTypeConnection, "refused")
		outer := Wrap(inner, ErrorTypePropertyServerAccess, "page fetch failed")

		assert.Equal(t, inner.Stack, outer.Stack)
		var got *Error
		require.True(t, errors.As(outer, &got))
		assert.Equal(t, ErrorTypePropertyServerAccess, got.Type)
	})
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypePropertyServerAccess, "page fetch failed").
		WithDetail("owner_type", "Asset").
		WithDetail("iterator", "InformalTags")

	assert.Equal(t, "property_server_access: page fetch failed [iterator=InformalTags owner_type=Asset]", err.Error())

	v, ok := err.Detail("iterator")
	assert.True(t, ok)
	assert.Equal(t, "InformalTags", v)

	_, ok = err.Detail("missing")
	assert.False(t, ok)
}

func TestTypeChecks(t *testing.T) {
	inner := New(ErrorTypeTimeout, "deadline exceeded")
	outer := Wrap(inner, ErrorTypePropertyServerAccess, "page fetch failed")

	assert.True(t, IsType(outer, ErrorTypePropertyServerAccess))
	assert.False(t, IsType(outer, ErrorTypeTimeout))
	assert.True(t, HasType(outer, ErrorTypeTimeout))
	assert.Equal(t, ErrorTypePropertyServerAccess, TypeOf(outer))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeInternal))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connection", New(ErrorTypeConnection, "x"), true},
		{"timeout", New(ErrorTypeTimeout, "x"), true},
		{"rate limit", New(ErrorTypeRateLimit, "x"), true},
		{"wrapped connection", Wrap(New(ErrorTypeConnection, "x"), ErrorTypePropertyServerAccess, "y"), true},
		{"not found", New(ErrorTypeNotFound, "x"), false},
		{"no more elements", New(ErrorTypeNoMoreElements, "x"), false},
		{"plain", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
