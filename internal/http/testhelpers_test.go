package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/campus-portal/internal/application"
)

var (
	adminPrincipal   = application.Principal{UserID: "admin-1", Role: application.RoleAdmin}
	studentPrincipal = application.Principal{UserID: "student-1", Role: application.RoleStudent}
	advisorPrincipal = application.Principal{UserID: "advisor-1", Role: application.RoleAdvisor}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sessionValidatorStub struct {
	principals map[string]application.Principal
	errs       map[string]error
}

func (s sessionValidatorStub) ValidateSession(_ context.Context, token string) (application.Principal, error) {
	if err, ok := s.errs[token]; ok {
		return application.Principal{}, err
	}
	if principal, ok := s.principals[token]; ok {
		return principal, nil
	}
	return application.Principal{}, application.ErrInvalidCredentials
}

func defaultSessions() sessionValidatorStub {
	return sessionValidatorStub{
		principals: map[string]application.Principal{
			"admin-token":   adminPrincipal,
			"student-token": studentPrincipal,
			"advisor-token": advisorPrincipal,
		},
		errs: map[string]error{
			"expired-token": application.ErrSessionExpired,
			"revoked-token": application.ErrSessionRevoked,
		},
	}
}

func doRequest(t *testing.T, handler http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}
