package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyon-edu/campus/internal/shared"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, ProblemDetail) {
	t.Helper()
	rec := httptest.NewRecorder()
	RespondError(rec, err)
	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: role r1", shared.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: role Admin", shared.ErrDuplicate), http.StatusConflict},
		{fmt.Errorf("%w: role name required", shared.ErrValidation), http.StatusBadRequest},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec, body := respond(t, tc.err)
		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, tc.status, body.Status)
	}
}

func TestRespondErrorHidesStoreDetails(t *testing.T) {
	err := shared.PersistenceError("roles: list", errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	rec, body := respond(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, body.Detail, "driver errors must not leak to clients")
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestPersistenceErrorKeepsChain(t *testing.T) {
	inner := errors.New("broken pipe")
	err := shared.PersistenceError("assignments: create", inner)

	require.ErrorIs(t, err, shared.ErrPersistence)
	require.ErrorIs(t, err, inner)
}
