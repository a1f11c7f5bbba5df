package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterup/platform/internal/domain"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusCreated, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "abc", data["id"])
}

func TestRespondErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domain.ErrNotFound("registration", "r1"), http.StatusNotFound, "NOT_FOUND"},
		{"validation", domain.ErrValidation("bad input"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unauthorized", domain.ErrUnauthorized("no session"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"conflict", domain.ErrConflict("version moved"), http.StatusConflict, "CONFLICT"},
		{"token expired", domain.ErrTokenExpired(), http.StatusGone, "TOKEN_EXPIRED"},
		{"registration closed", domain.ErrRegistrationClosed(), http.StatusForbidden, "REGISTRATION_CLOSED"},
		{"not editable", domain.ErrNotEditable(domain.StatusApproved), http.StatusForbidden, "NOT_EDITABLE"},
		{"invalid slot", domain.ErrInvalidSlot("negative index"), http.StatusBadRequest, "INVALID_SLOT"},
		{"unresolvable slot", domain.ErrCannotResolveSlot(), http.StatusBadRequest, "CANNOT_RESOLVE_SLOT"},
		{"internal", domain.ErrInternal("query failed", errors.New("boom")), http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"unknown error becomes 500", errors.New("raw"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotEmpty(t, body["message"])
			assert.NotContains(t, body, "data")
		})
	}
}

func TestRespondErrorNeverLeaksCause(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, domain.ErrInternal("query failed", errors.New("password=hunter2")))
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Rockets"}`))
		var p payload
		require.NoError(t, DecodeJSON(req, &p))
		assert.Equal(t, "Rockets", p.Name)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		var p payload
		require.Error(t, DecodeJSON(req, &p))
	})

	t.Run("oversize body is refused", func(t *testing.T) {
		big := bytes.Repeat([]byte("a"), 1<<20+1)
		body := append([]byte(`{"name":"`), big...)
		body = append(body, []byte(`"}`)...)

		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
		var p payload
		require.Error(t, DecodeJSON(req, &p))
	})
}
