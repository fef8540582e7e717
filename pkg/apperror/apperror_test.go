package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"woms/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestKindMapping(t *testing.T) {
	cases := []struct {
		kind   apperror.Kind
		status int
	}{
		{apperror.Validation, http.StatusBadRequest},
		{apperror.AlreadyProcessed, http.StatusBadRequest},
		{apperror.Unauthorized, http.StatusForbidden},
		{apperror.NotFound, http.StatusNotFound},
		{apperror.PreconditionFailed, http.StatusPreconditionFailed},
		{apperror.Rendering, http.StatusInternalServerError},
		{apperror.Internal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		err := apperror.New(tc.kind, "boom")
		assert.Equal(t, tc.kind, apperror.KindOf(err))
		assert.Equal(t, tc.status, apperror.HTTPStatus(err))
	}
}

func TestWrapPreservesKindThroughChains(t *testing.T) {
	cause := errors.New("disk full")
	err := apperror.Wrap(apperror.Rendering, cause, "failed to persist voucher")
	wrapped := fmt.Errorf("creating request: %w", err)

	assert.Equal(t, apperror.Rendering, apperror.KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, "failed to persist voucher", apperror.Message(wrapped))
}

func TestUntaggedErrorsStayGeneric(t *testing.T) {
	err := errors.New("pq: connection reset, dsn=postgres://user:hunter2@db/woms")
	assert.Equal(t, apperror.Internal, apperror.KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, apperror.HTTPStatus(err))
	// Raw driver detail must not leak to clients.
	assert.Equal(t, "internal server error", apperror.Message(err))
}
