package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"habitlink-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("user abc: %w", models.ErrNotFound), http.StatusNotFound},
		{models.ErrUnauthorized, http.StatusUnauthorized},
		{models.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("only the creator can delete the community: %w", models.ErrForbidden), http.StatusForbidden},
		{models.ErrAlreadyFriends, http.StatusConflict},
		{models.ErrDuplicateRequest, http.StatusConflict},
		{models.ErrNoPendingRequest, http.StatusConflict},
		{models.ErrAlreadyMember, http.StatusConflict},
		{models.ErrUsernameTaken, http.StatusConflict},
		{errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFromError(tt.err), "error: %v", tt.err)
	}
}
