package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops/internal/adapter/persistence/memory"
	"fieldops/internal/domain/entities"
	"fieldops/internal/infrastructure/config"
	"fieldops/internal/lock"
	"fieldops/internal/usecase"
)

type handlerEnv struct {
	router   *gin.Engine
	captures *memory.CaptureMemoryRepository
	store    *usecase.AssignmentStoreUseCase
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewAssignmentMemoryRepository()
	captures := memory.NewCaptureMemoryRepository()
	locks := lock.NewMutexMap()
	cfg := config.Default()

	store := usecase.NewAssignmentStoreUseCase(repo, captures, cfg, locks, logger)
	machine := usecase.NewStatusMachineUseCase(store, locks, logger)
	handler := NewAssignmentHandler(store, machine)

	router := gin.New()
	router.POST("/assignments", handler.CreateAssignment)
	router.GET("/assignments/:id", handler.GetAssignment)
	router.PATCH("/assignments/:id/accept", handler.AcceptAssignment)
	router.PATCH("/assignments/:id/start", handler.StartAssignment)
	router.PATCH("/assignments/:id/complete", handler.CompleteAssignment)
	router.DELETE("/assignments/:id", handler.DeleteAssignment)

	return &handlerEnv{router: router, captures: captures, store: store}
}

func (e *handlerEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *handlerEnv) seedCapture(id string) {
	e.captures.Seed(entities.Capture{
		ID:             id,
		Status:         entities.CaptureStatusDraft,
		PhotoCount:     3,
		RequiredPhotos: 3,
		CreatedAt:      time.Now().UTC(),
	})
}

func TestCreateAssignment(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.seedCapture("c1")

		rec := env.do(t, http.MethodPost, "/assignments", gin.H{
			"capture_id":  "c1",
			"assigned_to": "tech-1",
			"assigned_by": "dispatcher-1",
			"priority":    "high",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "pending", body["status"])
		assert.NotEmpty(t, body["id"])
	})

	t.Run("malformed payload", func(t *testing.T) {
		env := newHandlerEnv(t)
		rec := env.do(t, http.MethodPost, "/assignments", gin.H{"assigned_to": "tech-1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown capture", func(t *testing.T) {
		env := newHandlerEnv(t)
		rec := env.do(t, http.MethodPost, "/assignments", gin.H{
			"capture_id":  "ghost",
			"assigned_to": "tech-1",
			"priority":    "low",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "CAPTURE_NOT_FOUND")
	})

	t.Run("duplicate for capture", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.seedCapture("c1")
		payload := gin.H{"capture_id": "c1", "assigned_to": "tech-1", "priority": "low"}

		require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/assignments", payload).Code)
		rec := env.do(t, http.MethodPost, "/assignments", payload)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "ASSIGNMENT_ALREADY_EXISTS")
	})
}

func TestTransitionEndpoints(t *testing.T) {
	createPending := func(t *testing.T, env *handlerEnv, captureID, tech string) string {
		env.seedCapture(captureID)
		a, err := env.store.Create(context.Background(), usecase.CreateAssignmentInput{
			CaptureID:  captureID,
			AssignedTo: tech,
			Priority:   entities.PriorityMedium,
		})
		require.NoError(t, err)
		return a.ID
	}

	t.Run("accept", func(t *testing.T) {
		env := newHandlerEnv(t)
		id := createPending(t, env, "c1", "tech-1")

		rec := env.do(t, http.MethodPatch, "/assignments/"+id+"/accept", gin.H{"actor_id": "tech-1"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "accepted", body["status"])
	})

	t.Run("wrong actor is forbidden", func(t *testing.T) {
		env := newHandlerEnv(t)
		id := createPending(t, env, "c1", "tech-1")

		rec := env.do(t, http.MethodPatch, "/assignments/"+id+"/accept", gin.H{"actor_id": "tech-2"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "NOT_AUTHORIZED")
	})

	t.Run("illegal transition conflicts", func(t *testing.T) {
		env := newHandlerEnv(t)
		id := createPending(t, env, "c1", "tech-1")

		rec := env.do(t, http.MethodPatch, "/assignments/"+id+"/complete", gin.H{"actor_id": "tech-1"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "INVALID_TRANSITION")
	})

	t.Run("incomplete capture is unprocessable", func(t *testing.T) {
		env := newHandlerEnv(t)
		env.captures.Seed(entities.Capture{
			ID:             "c1",
			Status:         entities.CaptureStatusDraft,
			PhotoCount:     0,
			RequiredPhotos: 3,
		})
		a, err := env.store.Create(context.Background(), usecase.CreateAssignmentInput{
			CaptureID:  "c1",
			AssignedTo: "tech-1",
			Priority:   entities.PriorityMedium,
		})
		require.NoError(t, err)
		for _, step := range []string{"accept", "start"} {
			rec := env.do(t, http.MethodPatch, fmt.Sprintf("/assignments/%s/%s", a.ID, step), gin.H{"actor_id": "tech-1"})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		}

		rec := env.do(t, http.MethodPatch, "/assignments/"+a.ID+"/complete", gin.H{"actor_id": "tech-1"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
		assert.Contains(t, rec.Body.String(), "missing photos")
	})
}

func TestGetAndDeleteAssignment(t *testing.T) {
	env := newHandlerEnv(t)
	env.seedCapture("c1")
	a, err := env.store.Create(context.Background(), usecase.CreateAssignmentInput{
		CaptureID:  "c1",
		AssignedTo: "tech-1",
		Priority:   entities.PriorityLow,
	})
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/assignments/"+a.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/assignments/"+a.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/assignments/"+a.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
