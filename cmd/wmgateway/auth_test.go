package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func authTestHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthToken(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	tests := []struct {
		name       string
		configured string
		provided   string
		wantStatus int
	}{
		{
			name:       "valid token",
			configured: "secret",
			provided:   "secret",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong token",
			configured: "secret",
			provided:   "not-secret",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing token",
			configured: "secret",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no token configured rejects everything",
			provided:   "anything",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no token configured and none provided",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := requireAuthToken(tt.configured, logger)(authTestHandler())

			req := httptest.NewRequest(http.MethodGet, "/keywords", nil)
			if tt.provided != "" {
				req.Header.Set(AuthTokenHeader, tt.provided)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestManagementEndpointsRequireAuth(t *testing.T) {
	server := newTestServer(new(mockProcessor), new(mockStore))

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/keywords"},
		{http.MethodPost, "/keywords"},
		{http.MethodGet, "/keywords/1"},
		{http.MethodPut, "/keywords/1"},
		{http.MethodDelete, "/keywords/1"},
		{http.MethodGet, "/signals"},
		{http.MethodGet, "/metrics"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(p.method, p.path, nil)
			server.router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
