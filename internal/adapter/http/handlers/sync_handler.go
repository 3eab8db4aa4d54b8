package handlers

import (
	"net/http"

	request "fieldops/internal/adapter/http/dto/request"
	response "fieldops/internal/adapter/http/dto/response"
	"fieldops/internal/domain/entities"
	"fieldops/internal/usecase"

	"github.com/gin-gonic/gin"
)

// SyncHandler exposes the sync engine to the view layer: trigger a batch,
// inspect/clear the queue. Sync failures are background concerns; the view
// renders them as a retryable indicator, so the handler never blocks.

type SyncHandler struct {
	sync usecase.ISyncUseCase
}

func NewSyncHandler(sync usecase.ISyncUseCase) *SyncHandler {
	return &SyncHandler{sync: sync}
}

func (h *SyncHandler) TriggerSync(c *gin.Context) {
	var payload request.SyncRequest
	if err := c.ShouldBindJSON(&payload); err != nil && c.Request.ContentLength > 0 {
		c.JSON(errInvalidAssignmentPayload.HTTPStatus, errInvalidAssignmentPayload.ToHTTPError())
		return
	}

	var result usecase.SyncResult
	var err error
	if len(payload.IDs) > 0 {
		result, err = h.sync.SyncAssignments(c.Request.Context(), payload.IDs)
	} else {
		result, err = h.sync.ProcessSyncQueue(c.Request.Context())
	}
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SyncHandler) ResolveConflict(c *gin.Context) {
	var payload request.ResolveConflictRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidAssignmentPayload.HTTPStatus, errInvalidAssignmentPayload.ToHTTPError())
		return
	}

	resolved, err := h.sync.ResolveConflictByID(
		c.Request.Context(),
		c.Param("id"),
		toRemoteAssignment(payload.Remote),
		usecase.Resolution(payload.Resolution),
		payload.MergeFields,
	)
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromAssignment(resolved))
}

func toRemoteAssignment(s request.AssignmentSnapshot) entities.Assignment {
	return entities.Assignment{
		PoleID: s.PoleID,
		Customer: entities.Customer{
			Name:    s.Customer.Name,
			Address: s.Customer.Address,
			Contact: s.Customer.Contact,
		},
		AssignedTo:    s.AssignedTo,
		AssignedBy:    s.AssignedBy,
		Priority:      entities.Priority(s.Priority),
		Status:        entities.AssignmentStatus(s.Status),
		AssignedAt:    s.AssignedAt,
		AcceptedAt:    s.AcceptedAt,
		StartedAt:     s.StartedAt,
		CompletedAt:   s.CompletedAt,
		ScheduledDate: s.ScheduledDate,
		Notes:         s.Notes,
	}
}

func (h *SyncHandler) GetQueue(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"queued":       h.sync.QueuedIDs(),
		"last_sync_at": h.sync.LastSyncAt(),
	})
}

func (h *SyncHandler) ClearQueue(c *gin.Context) {
	h.sync.ClearSyncQueue()
	c.Status(http.StatusNoContent)
}
