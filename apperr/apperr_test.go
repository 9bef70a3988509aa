package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("duplicate key")
	err := fmt.Errorf("create task: %w", Persistencef(cause, "failed to create task"))

	assert.Equal(t, Persistence, KindOf(err))
	assert.True(t, Is(err, Persistence))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
	assert.False(t, Is(nil, Validation))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "[ValidationError] workerId is required", Validationf("workerId is required").Error())
	assert.Equal(t, "[PersistenceError] write failed: boom", Persistencef(errors.New("boom"), "write failed").Error())
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantDetail string
	}{
		{"validation", Validationf("taskIds or checklistItemIds required"), http.StatusBadRequest, "taskIds or checklistItemIds required", ""},
		{"persistence", Persistencef(errors.New("connection reset"), "failed to assign"), http.StatusInternalServerError, "failed to assign", "connection reset"},
		{"not found", NotFoundf("task not found"), http.StatusNotFound, "task not found", ""},
		{"unknown", errors.New("raw"), http.StatusInternalServerError, "server error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			Respond(c, tt.err)

			require.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantError, body["error"])
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, body["detail"])
			} else {
				assert.NotContains(t, body, "detail")
			}
			assert.True(t, c.IsAborted())
		})
	}
}
