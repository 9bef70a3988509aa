package project

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/dto"
	"sitecrew/model"
)

func ListPhases(c *gin.Context, deps *controller.Deps) {
	phases, err := deps.Store.ListPhases(c, c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "phases", phases)
}

func CreatePhase(c *gin.Context, deps *controller.Deps) {
	var req dto.CreatePhaseRequest
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

	ph := &model.Phase{
		ProjectID: c.Param("id"),
		Name:      req.Name,
		Position:  req.Position,
		StartDate: start,
		EndDate:   end,
	}
	if err := deps.Store.CreatePhase(c, ph); err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusCreated, "phase", ph)
}

func UpdatePhase(c *gin.Context, deps *controller.Deps) {
	var req dto.UpdatePhaseRequest
	if !controller.Bind(c, &req) {
		return
	}
	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.Status != nil {
		updates["status"] = model.PhaseStatus(*req.Status)
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

	ph, err := deps.Store.UpdatePhase(c, c.Param("id"), updates)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "phase", ph)
}
