package checklist

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/dto"
	"sitecrew/middleware"
	"sitecrew/model"
)

func ChecklistController(router *gin.Engine, deps *controller.Deps) {
	manage := middleware.Require(access.CanManageChecklists)

	router.GET("/tasks/:id/checklists", append(deps.Auth(), func(c *gin.Context) {
		ListChecklists(c, deps)
	})...)
	router.POST("/tasks/:id/checklists", append(deps.Auth(manage), func(c *gin.Context) {
		CreateChecklist(c, deps)
	})...)
	router.POST("/checklists/:id/items", append(deps.Auth(manage), func(c *gin.Context) {
		AddItem(c, deps)
	})...)

	items := router.Group("/checklist-items", deps.Auth(manage)...)
	{
		items.PUT("/:id", func(c *gin.Context) {
			UpdateItem(c, deps)
		})
		items.PUT("/:id/toggle", func(c *gin.Context) {
			ToggleItem(c, deps)
		})
	}
}

func ListChecklists(c *gin.Context, deps *controller.Deps) {
	lists, err := deps.Store.ListChecklists(c, c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "checklists", lists)
}

func CreateChecklist(c *gin.Context, deps *controller.Deps) {
	var req dto.CreateChecklistRequest
	if !controller.Bind(c, &req) {
		return
	}
	cl := &model.Checklist{TaskID: c.Param("id"), Title: strings.TrimSpace(req.Title)}
	if err := deps.Store.CreateChecklist(c, cl); err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusCreated, "checklist", cl)
}

func AddItem(c *gin.Context, deps *controller.Deps) {
	var req dto.CreateChecklistItemRequest
	if !controller.Bind(c, &req) {
		return
	}
	item := &model.ChecklistItem{
		ChecklistID: c.Param("id"),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
	}
	if err := deps.Store.AddChecklistItem(c, item); err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusCreated, "item", item)
}

func UpdateItem(c *gin.Context, deps *controller.Deps) {
	var req dto.UpdateChecklistItemRequest
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
	if req.IsDone != nil {
		updates["is_done"] = *req.IsDone
	}
	if len(updates) == 0 {
		apperr.Respond(c, apperr.Validationf("no fields to update"))
		return
	}
	item, err := deps.Store.UpdateChecklistItem(c, c.Param("id"), updates)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "item", item)
}

func ToggleItem(c *gin.Context, deps *controller.Deps) {
	item, err := deps.Store.ToggleChecklistItem(c, c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "item", item)
}
