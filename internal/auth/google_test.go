package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"announcehub/pkg/logger"
)

func tokenInfoServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_token") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogleVerifier_Verify(t *testing.T) {
	tests := []struct {
		name     string
		clientID string
		status   int
		body     string
		want     string
		wantErr  error
	}{
		{
			name:   "verified string flag",
			status: http.StatusOK,
			body:   `{"email":"user@example.com","email_verified":"true","aud":"client-1"}`,
			want:   "user@example.com",
		},
		{
			name:     "verified bool flag with audience",
			clientID: "client-1",
			status:   http.StatusOK,
			body:     `{"email":"user@example.com","email_verified":true,"aud":"client-1"}`,
			want:     "user@example.com",
		},
		{
			name:    "unverified email",
			status:  http.StatusOK,
			body:    `{"email":"user@example.com","email_verified":"false"}`,
			wantErr: ErrIdentityRejected,
		},
		{
			name:     "audience mismatch",
			clientID: "client-1",
			status:   http.StatusOK,
			body:     `{"email":"user@example.com","email_verified":"true","aud":"client-2"}`,
			wantErr:  ErrIdentityRejected,
		},
		{
			name:    "invalid token",
			status:  http.StatusBadRequest,
			body:    `{"error":"invalid_token"}`,
			wantErr: ErrIdentityRejected,
		},
		{
			name:    "provider error",
			status:  http.StatusBadGateway,
			wantErr: ErrProviderUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := tokenInfoServer(t, tt.status, tt.body)
			v := NewGoogleVerifier(srv.URL, tt.clientID, srv.Client(), logger.NewNop())

			email, err := v.Verify(context.Background(), "id-token")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, email)
		})
	}
}

func TestGoogleVerifier_RejectionsDoNotTripBreaker(t *testing.T) {
	srv := tokenInfoServer(t, http.StatusBadRequest, `{}`)
	v := NewGoogleVerifier(srv.URL, "", srv.Client(), logger.NewNop())

	for i := 0; i < 10; i++ {
		_, err := v.Verify(context.Background(), "bad")
		assert.True(t, errors.Is(err, ErrIdentityRejected))
	}
}

func TestGoogleVerifier_OutageOpensBreaker(t *testing.T) {
	srv := tokenInfoServer(t, http.StatusServiceUnavailable, "")
	v := NewGoogleVerifier(srv.URL, "", srv.Client(), logger.NewNop())

	for i := 0; i < 6; i++ {
		_, err := v.Verify(context.Background(), "token")
		assert.True(t, errors.Is(err, ErrProviderUnavailable))
	}
}

func TestGoogleVerifier_EmptyToken(t *testing.T) {
	v := NewGoogleVerifier("http://127.0.0.1:1", "", nil, logger.NewNop())
	_, err := v.Verify(context.Background(), "")
	assert.True(t, errors.Is(err, ErrIdentityRejected))
}
