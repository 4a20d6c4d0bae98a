package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchRejectsEmptyScope(t *testing.T) {
	h := NewAlertHandler(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/dispatch", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.Dispatch(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "check_all")
}

func TestDispatchRejectsInvalidBody(t *testing.T) {
	h := NewAlertHandler(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/dispatch", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()

	h.Dispatch(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
