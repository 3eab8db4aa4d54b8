package routes

import (
	"fieldops/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathAssignments = "/assignments"
	PathSync        = "/sync"
)

func addAssignmentRoutes(
	rg *gin.RouterGroup,
	assignmentHandler *handlers.AssignmentHandler,
	bulkHandler *handlers.BulkHandler,
	syncHandler *handlers.SyncHandler,
	queryHandler *handlers.QueryHandler,
) {
	assignments := rg.Group(PathAssignments)
	{
		assignments.POST("", assignmentHandler.CreateAssignment)
		assignments.GET("", queryHandler.ListAssignments)
		assignments.GET("/search", queryHandler.SearchAssignments)
		assignments.GET("/:id", assignmentHandler.GetAssignment)
		assignments.PATCH("/:id", assignmentHandler.UpdateAssignment)
		assignments.DELETE("/:id", assignmentHandler.DeleteAssignment)

		// Lifecycle transitions.
		assignments.PATCH("/:id/accept", assignmentHandler.AcceptAssignment)
		assignments.PATCH("/:id/start", assignmentHandler.StartAssignment)
		assignments.PATCH("/:id/complete", assignmentHandler.CompleteAssignment)
		assignments.PATCH("/:id/cancel", assignmentHandler.CancelAssignment)
		assignments.PATCH("/:id/reassign", bulkHandler.Reassign)

		assignments.POST("/bulk", bulkHandler.CreateBulk)
		assignments.PATCH("/bulk", bulkHandler.UpdateBulk)
		assignments.POST("/validate", bulkHandler.Validate)
	}

	rg.GET("/captures/:capture_id/assignment", assignmentHandler.GetAssignmentByCapture)
	rg.GET("/statistics", queryHandler.GetStatistics)
	rg.GET("/technicians/:technician_id/workload", queryHandler.GetTechnicianWorkload)

	sync := rg.Group(PathSync)
	{
		sync.POST("", syncHandler.TriggerSync)
		sync.POST("/conflicts/:id", syncHandler.ResolveConflict)
		sync.GET("/queue", syncHandler.GetQueue)
		sync.DELETE("/queue", syncHandler.ClearQueue)
	}
}
