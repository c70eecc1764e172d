package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"habitlink-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	userService := services.NewUserService(nil, "test-secret")
	token, err := userService.GenerateJWT("user-123")
	require.NoError(t, err)

	var gotUserID string
	handler := AuthMiddleware(userService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUserID string
	}{
		{name: "valid bearer token", header: "Bearer " + token, wantStatus: http.StatusOK, wantUserID: "user-123"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "not a bearer scheme", header: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "malformed header", header: "Bearer", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUserID, gotUserID)
		})
	}
}

func TestValidateWebSocketToken(t *testing.T) {
	userService := services.NewUserService(nil, "test-secret")
	token, err := userService.GenerateJWT("user-123")
	require.NoError(t, err)

	userID, err := ValidateWebSocketToken(token, userService)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)

	_, err = ValidateWebSocketToken("", userService)
	assert.Error(t, err)
}
