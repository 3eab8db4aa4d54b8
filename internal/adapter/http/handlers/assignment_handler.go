package handlers

import (
	"errors"
	"net/http"

	request "fieldops/internal/adapter/http/dto/request"
	response "fieldops/internal/adapter/http/dto/response"
	"fieldops/internal/domain/entities"
	"fieldops/internal/usecase"
	"fieldops/pkg"

	"github.com/gin-gonic/gin"
)

var errInvalidAssignmentPayload = pkg.NewDomainErrorSimple("INVALID_ASSIGNMENT_INPUT", "Invalid assignment payload", http.StatusBadRequest)

// AssignmentHandler handles HTTP requests for single-assignment CRUD and
// lifecycle transitions.

type AssignmentHandler struct {
	store   usecase.IAssignmentStoreUseCase
	machine usecase.IStatusMachineUseCase
}

func NewAssignmentHandler(store usecase.IAssignmentStoreUseCase, machine usecase.IStatusMachineUseCase) *AssignmentHandler {
	return &AssignmentHandler{store: store, machine: machine}
}

func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var payload request.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidAssignmentPayload.HTTPStatus, errInvalidAssignmentPayload.ToHTTPError())
		return
	}

	created, err := h.store.Create(c.Request.Context(), usecase.CreateAssignmentInput{
		CaptureID:     payload.ResolveCaptureID(),
		PoleID:        payload.PoleID,
		AssignedTo:    payload.AssignedTo,
		AssignedBy:    payload.AssignedBy,
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

	c.JSON(http.StatusCreated, response.FromAssignment(created))
}

func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	a, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromAssignment(a))
}

func (h *AssignmentHandler) GetAssignmentByCapture(c *gin.Context) {
	a, err := h.store.GetByCaptureID(c.Request.Context(), c.Param("capture_id"))
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromAssignment(a))
}

func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	var payload request.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidAssignmentPayload.HTTPStatus, errInvalidAssignmentPayload.ToHTTPError())
		return
	}

	updated, err := h.store.Update(c.Request.Context(), c.Param("id"), toUpdateInput(payload))
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromAssignment(updated))
}

func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AssignmentHandler) AcceptAssignment(c *gin.Context) {
	h.transition(c, func(id string, payload request.TransitionRequest) (entities.Assignment, error) {
		return h.machine.Accept(c.Request.Context(), id, payload.ActorID)
	})
}

func (h *AssignmentHandler) StartAssignment(c *gin.Context) {
	h.transition(c, func(id string, payload request.TransitionRequest) (entities.Assignment, error) {
		return h.machine.Start(c.Request.Context(), id, payload.ActorID)
	})
}

func (h *AssignmentHandler) CompleteAssignment(c *gin.Context) {
	h.transition(c, func(id string, payload request.TransitionRequest) (entities.Assignment, error) {
		return h.machine.Complete(c.Request.Context(), id, payload.ActorID)
	})
}

func (h *AssignmentHandler) CancelAssignment(c *gin.Context) {
	h.transition(c, func(id string, payload request.TransitionRequest) (entities.Assignment, error) {
		return h.machine.Cancel(c.Request.Context(), id, payload.ActorID, payload.Reason)
	})
}

func (h *AssignmentHandler) transition(
	c *gin.Context,
	run func(id string, payload request.TransitionRequest) (entities.Assignment, error),
) {
	var payload request.TransitionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidAssignmentPayload.HTTPStatus, errInvalidAssignmentPayload.ToHTTPError())
		return
	}

	a, err := run(c.Param("id"), payload)
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromAssignment(a))
}

func toUpdateInput(payload request.UpdateAssignmentRequest) usecase.UpdateAssignmentInput {
	in := usecase.UpdateAssignmentInput{
		PoleID:        payload.PoleID,
		ScheduledDate: payload.ScheduledDate,
		Notes:         payload.Notes,
	}
	if payload.Priority != nil {
		p := entities.Priority(*payload.Priority)
		in.Priority = &p
	}
	if payload.Customer != nil {
		in.Customer = &entities.Customer{
			Name:    payload.Customer.Name,
			Address: payload.Customer.Address,
			Contact: payload.Customer.Contact,
		}
	}
	return in
}

// MapAssignmentError translates the domain error taxonomy to HTTP. Shared
// by every handler in this package.
func MapAssignmentError(err error) *pkg.AppError {
	var ve *usecase.ValidationError
	var ce *usecase.CapacityExceededError
	var te *usecase.InvalidTransitionError
	var ae *usecase.AuthorizationError

	switch {
	case errors.Is(err, usecase.ErrInvalidAssignmentID),
		errors.Is(err, usecase.ErrInvalidCaptureID),
		errors.Is(err, usecase.ErrInvalidTechnicianID),
		errors.Is(err, usecase.ErrInvalidPriority),
		errors.Is(err, usecase.ErrInvalidStatus):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrAssignmentNotFound):
		return pkg.NewDomainErrorSimple("ASSIGNMENT_NOT_FOUND", "Assignment not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrCaptureNotFound):
		return pkg.NewDomainErrorSimple("CAPTURE_NOT_FOUND", "Capture record not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrDuplicateForCapture):
		return pkg.NewDomainErrorSimple("ASSIGNMENT_ALREADY_EXISTS", "Assignment already exists for this capture", http.StatusConflict)
	case errors.Is(err, usecase.ErrCompletedImmutable):
		return pkg.NewDomainErrorSimple("ASSIGNMENT_COMPLETED", "Completed assignments cannot be modified", http.StatusConflict)
	case errors.Is(err, usecase.ErrSyncInProgress):
		return pkg.NewDomainErrorSimple("SYNC_IN_PROGRESS", "A sync is already running, retry later", http.StatusConflict)
	case errors.Is(err, usecase.ErrManualResolutionRequired):
		return pkg.NewDomainErrorSimple("MANUAL_RESOLUTION_REQUIRED", "Conflict requires manual resolution", http.StatusConflict)
	case errors.As(err, &ve):
		return pkg.NewDomainErrorSimple("VALIDATION_FAILED", "Capture is incomplete", http.StatusUnprocessableEntity).
			WithDetails(ve.Violations)
	case errors.As(err, &ce):
		return pkg.NewDomainErrorSimple("CAPACITY_EXCEEDED", ce.Error(), http.StatusConflict)
	case errors.As(err, &te):
		return pkg.NewDomainErrorSimple("INVALID_TRANSITION", te.Error(), http.StatusConflict)
	case errors.As(err, &ae):
		return pkg.NewDomainErrorSimple("NOT_AUTHORIZED", ae.Error(), http.StatusForbidden)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
