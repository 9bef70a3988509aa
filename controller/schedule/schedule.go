package schedule

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/middleware"
	"sitecrew/services"
)

func ScheduleController(router *gin.Engine, deps *controller.Deps) {
	router.POST("/functions/import_schedule_bulk", append(deps.Auth(middleware.Require(access.CanImportSchedule)), func(c *gin.Context) {
		ImportScheduleBulk(c, deps)
	})...)
	router.GET("/schedules/:date", append(deps.Auth(), func(c *gin.Context) {
		GetSchedule(c, deps)
	})...)
}

// ImportScheduleBulk answers 200 with the import envelope whenever the
// procedure ran or was attempted, so the caller can always show a message.
// Only a malformed request is rejected with 400.
func ImportScheduleBulk(c *gin.Context, deps *controller.Deps) {
	var req services.ImportRequest
	if !controller.Bind(c, &req) {
		return
	}
	res, err := deps.Importer(middleware.UserID(c)).Import(c, req)
	if res == nil {
		apperr.Respond(c, err)
		return
	}
	if err != nil {
		_ = c.Error(err)
	}
	c.JSON(http.StatusOK, res)
}

func GetSchedule(c *gin.Context, deps *controller.Deps) {
	date := c.Param("date")
	if _, err := controller.ParseDate("date", date); err != nil {
		apperr.Respond(c, err)
		return
	}
	sched, err := deps.Store.GetScheduleByDate(c, date)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "schedule", sched)
}
