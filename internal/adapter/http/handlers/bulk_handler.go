package handlers

import (
	"net/http"

	request "fieldops/internal/adapter/http/dto/request"
	response "fieldops/internal/adapter/http/dto/response"
	"fieldops/internal/domain/entities"
	"fieldops/internal/usecase"

	"github.com/gin-gonic/gin"
)

// BulkHandler handles batch creation/updates, reassignment and pre-flight
// validation.

type BulkHandler struct {
	bulk usecase.IBulkUseCase
}

func NewBulkHandler(bulk usecase.IBulkUseCase) *BulkHandler {
	return &BulkHandler{bulk: bulk}
}

func (h *BulkHandler) CreateBulk(c *gin.Context) {
	var payload request.BulkCreateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidAssignmentPayload.HTTPStatus, errInvalidAssignmentPayload.ToHTTPError())
		return
	}

	result, err := h.bulk.CreateBulkAssignments(c.Request.Context(), usecase.BulkCreateInput{
		AssignedTo:    payload.AssignedTo,
		AssignedBy:    payload.AssignedBy,
		CaptureIDs:    payload.CaptureIDs,
		Priority:      entities.Priority(payload.Priority),
		ScheduledDate: payload.ScheduledDate,
		Notes:         payload.Notes,
		Customer: entities.Customer{
			Name:    payload.Customer.Name,
			Address: payload.Customer.Address,
			Contact: payload.Customer.Contact,
		},
	})
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusMultiStatus, result)
}

func (h *BulkHandler) UpdateBulk(c *gin.Context) {
	var payload request.BulkUpdateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidAssignmentPayload.HTTPStatus, errInvalidAssignmentPayload.ToHTTPError())
		return
	}

	result, err := h.bulk.UpdateBulkAssignments(c.Request.Context(), payload.IDs, toUpdateInput(payload.Fields))
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusMultiStatus, result)
}

func (h *BulkHandler) Reassign(c *gin.Context) {
	var payload request.ReassignRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidAssignmentPayload.HTTPStatus, errInvalidAssignmentPayload.ToHTTPError())
		return
	}

	a, err := h.bulk.ReassignAssignment(c.Request.Context(), c.Param("id"), payload.NewTechnicianID, payload.ActorID, payload.Reason)
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromAssignment(a))
}

func (h *BulkHandler) Validate(c *gin.Context) {
	var payload request.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidAssignmentPayload.HTTPStatus, errInvalidAssignmentPayload.ToHTTPError())
		return
	}

	report, err := h.bulk.ValidateAssignment(c.Request.Context(), usecase.CreateAssignmentInput{
		CaptureID:     payload.ResolveCaptureID(),
		PoleID:        payload.PoleID,
		AssignedTo:    payload.AssignedTo,
		AssignedBy:    payload.AssignedBy,
		Priority:      entities.Priority(payload.Priority),
		ScheduledDate: payload.ScheduledDate,
		Notes:         payload.Notes,
	})
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, report)
}
