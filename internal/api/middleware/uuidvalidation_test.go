package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/api/middleware"
	"github.com/marinsarbulescu/portfolio-tracker-backend/internal/testutil"
)

func TestValidateUUIDMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		uuid           string
		expectedStatus int
		expectNext     bool
	}{
		{
			name:           "valid UUID passes through",
			uuid:           "550e8400-e29b-41d4-a716-446655440000",
			expectedStatus: http.StatusOK,
			expectNext:     true,
		},
		{
			name:           "malformed UUID is rejected",
			uuid:           "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
			expectNext:     false,
		},
		{
			name:           "truncated UUID is rejected",
			uuid:           "550e8400-e29b-41d4",
			expectedStatus: http.StatusBadRequest,
			expectNext:     false,
		},
		{
			name:           "missing UUID is rejected",
			uuid:           "",
			expectedStatus: http.StatusBadRequest,
			expectNext:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			mw := middleware.ValidateUUIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			}))

			params := map[string]string{}
			if tt.uuid != "" {
				params["uuid"] = tt.uuid
			}
			req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/asset/"+tt.uuid, params)

			w := httptest.NewRecorder()
			mw.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if nextCalled != tt.expectNext {
				t.Errorf("Handler called = %v, want %v", nextCalled, tt.expectNext)
			}
		})
	}
}
