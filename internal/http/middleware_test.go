package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/campus-portal/internal/application"
)

func TestRequireSession(t *testing.T) {
	t.Parallel()

	var seen application.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireSession(defaultSessions(), discardLogger())(next)

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantCode   string
	}{
		{name: "missing credentials", wantStatus: http.StatusUnauthorized, wantCode: "AUTH_REQUIRED"},
		{name: "non bearer authorization", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: "AUTH_REQUIRED"},
		{name: "unknown token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantCode: "AUTH_INVALID_TOKEN"},
		{name: "expired session", header: "Bearer expired-token", wantStatus: http.StatusUnauthorized, wantCode: "AUTH_SESSION_EXPIRED"},
		{name: "revoked session via cookie", cookie: "revoked-token", wantStatus: http.StatusUnauthorized, wantCode: "AUTH_SESSION_REVOKED"},
		{name: "valid bearer token", header: "Bearer student-token", wantStatus: http.StatusNoContent},
		{name: "valid cookie", cookie: "admin-token", wantStatus: http.StatusNoContent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session_token", Value: tc.cookie})
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantCode != "" {
				require.Equal(t, tc.wantCode, decodeError(t, rec).ErrorCode)
			}
		})
	}

	t.Run("attaches principal", func(t *testing.T) {
		rec := doRequest(t, handler, http.MethodGet, "/protected", "advisor-token", "")
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, advisorPrincipal, seen)
	})
}

func TestRequireSessionUnexpectedError(t *testing.T) {
	t.Parallel()

	sessions := sessionValidatorStub{errs: map[string]error{"boom": errors.New("database down")}}
	handler := RequireSession(sessions, discardLogger())(http.NotFoundHandler())

	rec := doRequest(t, handler, http.MethodGet, "/", "boom", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "database down")
}

func TestRequireCapability(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := RequireSession(defaultSessions(), discardLogger())(
		RequireCapability(discardLogger(), application.CapReviewBookings, application.CapManageUsers)(ok),
	)

	require.Equal(t, http.StatusForbidden, doRequest(t, handler, http.MethodGet, "/", "student-token", "").Code)
	require.Equal(t, http.StatusOK, doRequest(t, handler, http.MethodGet, "/", "advisor-token", "").Code)
	require.Equal(t, http.StatusOK, doRequest(t, handler, http.MethodGet, "/", "admin-token", "").Code)

	withoutSession := RequireCapability(discardLogger(), application.CapReadStats)(ok)
	require.Equal(t, http.StatusUnauthorized, doRequest(t, withoutSession, http.MethodGet, "/", "", "").Code)
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	handler := Recovery(discardLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := doRequest(t, handler, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, statusMessage(http.StatusInternalServerError), decodeError(t, rec).Message)
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	t.Parallel()

	var sawLogger bool
	handler := RequestLogger(discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = handlerLogger(r.Context(), nil, "Test", "op") != nil
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := doRequest(t, handler, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.True(t, sawLogger)
}
