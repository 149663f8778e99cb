package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/explore-grabby/booking-backend/internal/pkg/apperror"
)

var errGone = apperror.New(http.StatusNotFound, "thing_not_found", "thing not found")

func render(t *testing.T, err error, details any) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/things/1", nil)

	ErrorWithDetails(c, err, details)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestErrorReportsCode(t *testing.T) {
	status, body := render(t, fmt.Errorf("get: %w", errGone.Wrap(errors.New("no rows"))), nil)

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "thing not found", body["error"])
	assert.Equal(t, "thing_not_found", body["code"])
	assert.NotContains(t, body, "details")
}

func TestErrorHidesInternalFailures(t *testing.T) {
	status, body := render(t, errors.New("connection reset"), []string{"secret"})

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, body, "code")
	assert.NotContains(t, body, "details")
}
