package errorutil

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
	})

	t.Run("domain errors pass through unchanged", func(t *testing.T) {
		original := NewConflict("donation is Donated")

		converted := ToDomainError(original)

		require.NotNil(t, converted)
		assert.Equal(t, "CONFLICT", converted.Code)
		assert.Equal(t, http.StatusConflict, converted.HTTPStatus)
		assert.Equal(t, "donation is Donated", converted.Message)
	})

	t.Run("wrapped domain errors are unwrapped", func(t *testing.T) {
		wrapped := fmt.Errorf("handling request: %w", NewNotFound("donation"))

		converted := ToDomainError(wrapped)

		require.NotNil(t, converted)
		assert.Equal(t, "NOT_FOUND", converted.Code)
		assert.Equal(t, http.StatusNotFound, converted.HTTPStatus)
	})

	t.Run("row miss maps to 404", func(t *testing.T) {
		converted := ToDomainError(fmt.Errorf("load donation: %w", pgx.ErrNoRows))

		require.NotNil(t, converted)
		assert.Equal(t, "NOT_FOUND", converted.Code)
		assert.Equal(t, http.StatusNotFound, converted.HTTPStatus)
	})

	t.Run("anything else is a 500", func(t *testing.T) {
		cause := fmt.Errorf("connection reset")

		converted := ToDomainError(cause)

		require.NotNil(t, converted)
		assert.Equal(t, "INTERNAL_ERROR", converted.Code)
		assert.Equal(t, http.StatusInternalServerError, converted.HTTPStatus)
		assert.ErrorIs(t, converted, cause)
	})
}

func TestDomainErrorMessage(t *testing.T) {
	bare := NewDomainError("INVALID_INPUT", "shelter email is required", http.StatusBadRequest)
	assert.Equal(t, "shelter email is required", bare.Error())

	withCause := NewGeocodingFailed(fmt.Errorf("dial tcp: timeout"))
	assert.Contains(t, withCause.Error(), "unable to resolve coordinates")
	assert.Contains(t, withCause.Error(), "timeout")
}
