package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sushihentaime/bloghub/internal/blogservice"
	"github.com/sushihentaime/bloghub/internal/commentservice"
	"github.com/sushihentaime/bloghub/internal/common"
	"github.com/sushihentaime/bloghub/internal/uploadservice"
)

func TestServiceErrorResponse(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "Validation", err: common.ValidationError{Errors: map[string]string{"title": "must be provided"}}, expectedStatus: http.StatusBadRequest},
		{name: "Unauthorized", err: common.ErrUnauthorized, expectedStatus: http.StatusUnauthorized},
		{name: "Forbidden", err: common.ErrForbidden, expectedStatus: http.StatusForbidden},
		{name: "Not Found", err: fmt.Errorf("get blog: %w", common.ErrRecordNotFound), expectedStatus: http.StatusNotFound},
		{name: "Already Reviewed", err: commentservice.ErrAlreadyReviewed, expectedStatus: http.StatusConflict},
		{name: "Slug Conflict", err: blogservice.ErrSlugConflict, expectedStatus: http.StatusConflict},
		{name: "Edit Conflict", err: common.ErrEditConflict, expectedStatus: http.StatusConflict},
		{name: "File Too Large", err: uploadservice.ErrFileTooLarge, expectedStatus: http.StatusBadRequest},
		{name: "Deadline", err: context.DeadlineExceeded, expectedStatus: http.StatusServiceUnavailable},
		{name: "Unknown", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newBareApplication(t, &Config{Environment: "test"})

			res := httptest.NewRecorder()
			app.serviceErrorResponse(res, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			status, _, body := readResponse(t, res.Result())
			assert.Equal(t, tt.expectedStatus, status)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
		})
	}
}
