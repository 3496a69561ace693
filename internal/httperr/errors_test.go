package httperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"vidtube/internal/httperr"
)

func TestConstructors(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, httperr.BadRequest("x").Status)
	require.Equal(t, http.StatusUnauthorized, httperr.Unauthorized("x").Status)
	require.Equal(t, http.StatusNotFound, httperr.NotFound("x").Status)
	require.Equal(t, http.StatusConflict, httperr.Conflict("x").Status)
	require.Equal(t, http.StatusInternalServerError, httperr.Internal("x").Status)
	require.Equal(t, "x", httperr.BadRequest("x").Error())
}

func TestFromUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handle login: %w", httperr.Unauthorized("invalid user credentials"))

	apiErr := httperr.From(wrapped)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "invalid user credentials", apiErr.Message)
}

func TestFromHidesUnknownErrors(t *testing.T) {
	apiErr := httperr.From(errors.New("pq: connection refused"))
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
	require.Equal(t, "internal server error", apiErr.Message)
}

func TestIsInternal(t *testing.T) {
	require.True(t, httperr.IsInternal(errors.New("boom")))
	require.False(t, httperr.IsInternal(httperr.NotFound("user does not exist")))
}
