package assigned

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/middleware"
	"sitecrew/services"
)

func AssignedController(router *gin.Engine, deps *controller.Deps) {
	guard := middleware.Require(access.CanAssignWorkers)

	functions := router.Group("/functions", deps.Auth(guard)...)
	{
		functions.POST("/assign_bulk", func(c *gin.Context) {
			AssignBulk(c, deps)
		})
		functions.POST("/assign_workers_bulk", func(c *gin.Context) {
			AssignWorkersBulk(c, deps)
		})
	}
	router.GET("/tasks/:id/assignees", append(deps.Auth(), func(c *gin.Context) {
		ListAssignees(c, deps)
	})...)
	router.DELETE("/tasks/:id/assignees/:userId", append(deps.Auth(guard), func(c *gin.Context) {
		Unassign(c, deps)
	})...)
}

// AssignBulk makes one worker the primary assignee of a set of tasks and
// checklist items.
func AssignBulk(c *gin.Context, deps *controller.Deps) {
	var req services.AssignBulkRequest
	if !controller.Bind(c, &req) {
		return
	}
	summary, err := deps.Assign.AssignBulk(c, req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "assigned", summary)
}

func AssignWorkersBulk(c *gin.Context, deps *controller.Deps) {
	var req services.AssignWorkersRequest
	if !controller.Bind(c, &req) {
		return
	}
	summary, err := deps.Assign.AssignWorkersBulk(c, req)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "assigned", summary)
}

func ListAssignees(c *gin.Context, deps *controller.Deps) {
	rows, err := deps.Store.ListTaskAssignments(c, c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "assignees", rows)
}

func Unassign(c *gin.Context, deps *controller.Deps) {
	if err := deps.Assign.UnassignTask(c, c.Param("id"), c.Param("userId")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Assignment removed"})
}
