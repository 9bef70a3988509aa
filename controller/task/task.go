package task

import (
	"context"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/dto"
	"sitecrew/middleware"
	"sitecrew/model"
	"sitecrew/store"
)

func TaskController(router *gin.Engine, deps *controller.Deps) {
	router.GET("/projects/:id/tasks", append(deps.Auth(), func(c *gin.Context) {
		ListProjectTasks(c, deps)
	})...)
	router.GET("/me/tasks", append(deps.Auth(), func(c *gin.Context) {
		MyTasks(c, deps)
	})...)

	routes := router.Group("/tasks", deps.Auth()...)
	{
		routes.POST("", middleware.Require(access.CanCreateTask), func(c *gin.Context) {
			CreateTask(c, deps)
		})
		routes.POST("/quick", middleware.Require(access.CanQuickAddTask), func(c *gin.Context) {
			QuickAddTask(c, deps)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetTask(c, deps)
		})
		routes.PUT("/:id", middleware.Require(access.CanCreateTask), func(c *gin.Context) {
			UpdateTask(c, deps)
		})
		routes.PUT("/:id/status", middleware.Require(access.CanUpdateTaskStatus), func(c *gin.Context) {
			SetStatus(c, deps)
		})
	}
}

func ListProjectTasks(c *gin.Context, deps *controller.Deps) {
	status := model.TaskStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		apperr.Respond(c, apperr.Validationf("unknown task status %q", status))
		return
	}
	tasks, err := deps.Store.ListTasks(c, store.TaskFilter{
		ProjectID:  c.Param("id"),
		PhaseID:    c.Query("phase"),
		AssigneeID: c.Query("assignee"),
		Status:     status,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "tasks", tasks)
}

func MyTasks(c *gin.Context, deps *controller.Deps) {
	tasks, err := deps.Store.ListTasks(c, store.TaskFilter{
		AssigneeID: middleware.UserID(c),
		Status:     model.TaskStatus(c.Query("status")),
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "tasks", tasks)
}

func CreateTask(c *gin.Context, deps *controller.Deps) {
	var req dto.CreateTaskRequest
	if !controller.Bind(c, &req) {
		return
	}
	due, err := controller.ParseDate("due_date", req.DueDate)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	t := &model.Task{
		ProjectID:   req.ProjectID,
		PhaseID:     req.PhaseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Priority:    model.TaskPriority(req.Priority),
		DueDate:     due,
		CreatedBy:   middleware.UserID(c),
	}
	if err := deps.Store.CreateTask(c, t); err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusCreated, "task", t)
}

// QuickAddTask creates a bare todo task owned by the caller.
func QuickAddTask(c *gin.Context, deps *controller.Deps) {
	var req dto.QuickAddTaskRequest
	if !controller.Bind(c, &req) {
		return
	}
	t, err := deps.Store.QuickAddTask(c, req.ProjectID, strings.TrimSpace(req.Title), middleware.UserID(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusCreated, "task", t)
}

func GetTask(c *gin.Context, deps *controller.Deps) {
	t, err := deps.Store.GetTask(c, c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	assignees, err := deps.Store.ListTaskAssignments(c, t.ID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": t, "assignees": assignees})
}

func UpdateTask(c *gin.Context, deps *controller.Deps) {
	var req dto.UpdateTaskRequest
	if !controller.Bind(c, &req) {
		return
	}
	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Priority != nil {
		updates["priority"] = model.TaskPriority(*req.Priority)
	}
	if req.PhaseID != nil {
		if *req.PhaseID == "" {
			updates["phase_id"] = nil
		} else {
			updates["phase_id"] = *req.PhaseID
		}
	}
	if req.DueDate != nil {
		due, err := controller.ParseDate("due_date", *req.DueDate)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		updates["due_date"] = due
	}
	if len(updates) == 0 {
		apperr.Respond(c, apperr.Validationf("no fields to update"))
		return
	}

	t, err := deps.Store.UpdateTask(c, c.Param("id"), updates)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "task", t)
}

// SetStatus moves a task through its workflow. Workers may only move tasks
// they are assigned to.
func SetStatus(c *gin.Context, deps *controller.Deps) {
	var req dto.TaskStatusRequest
	if !controller.Bind(c, &req) {
		return
	}
	taskID := c.Param("id")

	if middleware.Role(c) == access.RoleWorker {
		rows, err := deps.Store.ListTaskAssignments(c, taskID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if !assigned(rows, middleware.UserID(c)) {
			apperr.Respond(c, apperr.Forbiddenf("you are not assigned to this task"))
			return
		}
	}

	t, err := deps.Store.SetTaskStatus(c, taskID, model.TaskStatus(req.Status))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	mirrorStatus(c, deps, t)
	controller.OK(c, http.StatusOK, "task", t)
}

func assigned(rows []model.TaskWorkerAssignment, userID string) bool {
	for _, r := range rows {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// mirrorStatus copies the new status onto Tasks/{taskId} for clients
// listening on Firestore. Failures are logged only.
func mirrorStatus(c *gin.Context, deps *controller.Deps, t *model.Task) {
	if deps.Firestore == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c), 5*time.Second)
	defer cancel()
	_, err := deps.Firestore.Collection("Tasks").Doc(t.ID).Set(ctx, map[string]any{
		"status":    string(t.Status),
		"projectId": t.ProjectID,
		"updatedAt": deps.Clock(),
	}, firestore.MergeAll)
	if err != nil {
		deps.Logger.Warn("failed to mirror task status", zap.String("task_id", t.ID), zap.Error(err))
	}
}
