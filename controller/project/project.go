package project

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/dto"
	"sitecrew/middleware"
	"sitecrew/model"
)

func ProjectController(router *gin.Engine, deps *controller.Deps) {
	routes := router.Group("/projects", deps.Auth()...)
	{
		routes.GET("", func(c *gin.Context) {
			ListProjects(c, deps)
		})
		routes.POST("", middleware.Require(access.CanCreateProject), func(c *gin.Context) {
			CreateProject(c, deps)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetProject(c, deps)
		})
		routes.PUT("/:id", middleware.Require(access.CanEditProject), func(c *gin.Context) {
			UpdateProject(c, deps)
		})
		routes.DELETE("/:id", middleware.Require(access.CanDeleteProject), func(c *gin.Context) {
			DeleteProject(c, deps)
		})
		routes.GET("/:id/phases", func(c *gin.Context) {
			ListPhases(c, deps)
		})
		routes.POST("/:id/phases", middleware.Require(access.CanEditPhase), func(c *gin.Context) {
			CreatePhase(c, deps)
		})
	}
	router.PUT("/phases/:id", append(deps.Auth(middleware.Require(access.CanEditPhase)), func(c *gin.Context) {
		UpdatePhase(c, deps)
	})...)
}

func ListProjects(c *gin.Context, deps *controller.Deps) {
	status := model.ProjectStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		apperr.Respond(c, apperr.Validationf("unknown project status %q", status))
		return
	}
	projects, err := deps.Store.ListProjects(c, status)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "projects", projects)
}

func CreateProject(c *gin.Context, deps *controller.Deps) {
	var req dto.CreateProjectRequest
	if !controller.Bind(c, &req) {
		return
	}
	start, err := controller.ParseDate("start_date", req.StartDate)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	end, err := controller.ParseDate("end_date", req.EndDate)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if start != nil && end != nil && end.Before(*start) {
		apperr.Respond(c, apperr.Validationf("end_date must not be before start_date"))
		return
	}

	p := &model.Project{
		Name:        req.Name,
		Address:     req.Address,
		Description: req.Description,
		Status:      model.ProjectStatus(req.Status),
		StartDate:   start,
		EndDate:     end,
		CreatedBy:   middleware.UserID(c),
	}
	if err := deps.Store.CreateProject(c, p); err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusCreated, "project", p)
}

func GetProject(c *gin.Context, deps *controller.Deps) {
	p, err := deps.Store.GetProject(c, c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "project", p)
}

func UpdateProject(c *gin.Context, deps *controller.Deps) {
	var req dto.UpdateProjectRequest
	if !controller.Bind(c, &req) {
		return
	}
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != nil {
		updates["status"] = model.ProjectStatus(*req.Status)
	}
	if err := dateUpdate(updates, "start_date", req.StartDate); err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := dateUpdate(updates, "end_date", req.EndDate); err != nil {
		apperr.Respond(c, err)
		return
	}
	if len(updates) == 0 {
		apperr.Respond(c, apperr.Validationf("no fields to update"))
		return
	}

	p, err := deps.Store.UpdateProject(c, c.Param("id"), updates)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "project", p)
}

func DeleteProject(c *gin.Context, deps *controller.Deps) {
	if err := deps.Store.DeleteProject(c, c.Param("id")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Project deleted"})
}

// dateUpdate adds a date column to updates. An empty string clears it.
func dateUpdate(updates map[string]any, column string, v *string) error {
	if v == nil {
		return nil
	}
	t, err := controller.ParseDate(column, *v)
	if err != nil {
		return err
	}
	updates[column] = t
	return nil
}
