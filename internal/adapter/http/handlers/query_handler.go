package handlers

import (
	"net/http"
	"strings"
	"time"

	response "fieldops/internal/adapter/http/dto/response"
	"fieldops/internal/domain/entities"
	"fieldops/internal/usecase"

	"github.com/gin-gonic/gin"
)

// QueryHandler serves the read models: filtered listings, text search,
// global statistics and per-technician workload.

type QueryHandler struct {
	filter usecase.IFilterUseCase
	stats  usecase.IStatisticsUseCase
}

func NewQueryHandler(filter usecase.IFilterUseCase, stats usecase.IStatisticsUseCase) *QueryHandler {
	return &QueryHandler{filter: filter, stats: stats}
}

// ListAssignments maps query params onto filter predicates. Multi-value
// params are comma separated.
func (h *QueryHandler) ListAssignments(c *gin.Context) {
	opts := usecase.FilterOptions{
		Technicians:        splitParam(c.Query("assigned_to")),
		Issuers:            splitParam(c.Query("assigned_by")),
		PoleIDs:            splitParam(c.Query("pole_id")),
		Overdue:            c.Query("overdue") == "true",
		HasCustomerContact: c.Query("has_contact") == "true",
	}
	for _, s := range splitParam(c.Query("status")) {
		opts.Statuses = append(opts.Statuses, entities.AssignmentStatus(s))
	}
	for _, p := range splitParam(c.Query("priority")) {
		opts.Priorities = append(opts.Priorities, entities.Priority(p))
	}
	if t, ok := parseTimeParam(c.Query("assigned_after")); ok {
		opts.AssignedAfter = t
	}
	if t, ok := parseTimeParam(c.Query("assigned_before")); ok {
		opts.AssignedBefore = t
	}
	if t, ok := parseTimeParam(c.Query("scheduled_after")); ok {
		opts.ScheduledAfter = t
	}
	if t, ok := parseTimeParam(c.Query("scheduled_before")); ok {
		opts.ScheduledBefore = t
	}

	items, err := h.filter.Filter(c.Request.Context(), opts)
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromAssignments(items))
}

func (h *QueryHandler) SearchAssignments(c *gin.Context) {
	criteria := usecase.SearchCriteria{
		Term:  c.Query("q"),
		Exact: c.Query("exact") == "true",
	}
	for _, f := range splitParam(c.Query("fields")) {
		criteria.Fields = append(criteria.Fields, usecase.SearchField(f))
	}

	items, err := h.filter.Search(c.Request.Context(), criteria)
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, response.FromAssignments(items))
}

func (h *QueryHandler) GetStatistics(c *gin.Context) {
	stats, err := h.stats.GetStatistics(c.Request.Context())
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *QueryHandler) GetTechnicianWorkload(c *gin.Context) {
	snap, err := h.stats.GetTechnicianWorkload(c.Request.Context(), c.Param("technician_id"))
	if err != nil {
		appErr := MapAssignmentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	c.JSON(http.StatusOK, snap)
}

func splitParam(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseTimeParam(v string) (*time.Time, bool) {
	if v == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, false
	}
	return &t, true
}
