package timesheet

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/dto"
	"sitecrew/middleware"
	"sitecrew/model"
	"sitecrew/services"
	"sitecrew/store"
)

func TimesheetController(router *gin.Engine, deps *controller.Deps) {
	routes := router.Group("/time-entries", deps.Auth(middleware.Require(access.CanTrackTime))...)
	{
		routes.POST("", func(c *gin.Context) {
			CreateEntry(c, deps)
		})
		routes.GET("", func(c *gin.Context) {
			ListEntries(c, deps)
		})
		routes.GET("/summary", func(c *gin.Context) {
			WeeklySummary(c, deps)
		})
	}
}

func CreateEntry(c *gin.Context, deps *controller.Deps) {
	var req dto.CreateTimeEntryRequest
	if !controller.Bind(c, &req) {
		return
	}
	minutes, err := services.ClockSpan(req.StartTime, req.EndTime)
	if err != nil {
		apperr.Respond(c, apperr.Validationf("%s", err.Error()))
		return
	}

	e := &model.TimeEntry{
		UserID:    middleware.UserID(c),
		ProjectID: req.ProjectID,
		TaskID:    req.TaskID,
		WorkDate:  req.WorkDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Minutes:   minutes,
		Note:      req.Note,
	}
	if err := deps.Store.CreateTimeEntry(c, e); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "entry": e, "duration": services.FormatMinutes(e.Minutes)})
}

func ListEntries(c *gin.Context, deps *controller.Deps) {
	f, ok := filter(c)
	if !ok {
		return
	}
	f.From, f.To = c.Query("from"), c.Query("to")
	for _, d := range []struct{ name, v string }{{"from", f.From}, {"to", f.To}} {
		if _, err := controller.ParseDate(d.name, d.v); err != nil {
			apperr.Respond(c, err)
			return
		}
	}

	entries, err := deps.Store.ListTimeEntries(c, f)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	total := 0
	for _, e := range entries {
		total += e.Minutes
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries, "total": services.FormatMinutes(total)})
}

type userTotal struct {
	store.UserMinutes
	Formatted string `json:"formatted"`
}

// WeeklySummary totals minutes per user for the Monday-to-Sunday week
// containing ?week (default: today).
func WeeklySummary(c *gin.Context, deps *controller.Deps) {
	f, ok := filter(c)
	if !ok {
		return
	}
	day := deps.Clock()
	if w := c.Query("week"); w != "" {
		t, err := controller.ParseDate("week", w)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		day = *t
	}
	start, end := WeekBounds(day)
	f.From, f.To = start.Format(time.DateOnly), end.Format(time.DateOnly)

	rows, err := deps.Store.MinutesByUser(c, f)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	totals := make([]userTotal, 0, len(rows))
	for _, r := range rows {
		totals = append(totals, userTotal{UserMinutes: r, Formatted: services.FormatMinutes(r.Minutes)})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "from": f.From, "to": f.To, "totals": totals})
}

// WeekBounds returns the Monday and Sunday of the week containing day.
func WeekBounds(day time.Time) (time.Time, time.Time) {
	offset := (int(day.Weekday()) + 6) % 7
	start := time.Date(day.Year(), day.Month(), day.Day()-offset, 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 6)
}

// filter scopes the query to the caller unless their role may see everyone.
func filter(c *gin.Context) (store.TimeEntryFilter, bool) {
	self := middleware.UserID(c)
	user := c.DefaultQuery("user", self)
	if user != self && !access.CanViewAllTimeEntries(middleware.Role(c)) {
		apperr.Respond(c, apperr.Forbiddenf("you may only view your own time entries"))
		return store.TimeEntryFilter{}, false
	}
	if user == "all" {
		user = ""
	}
	return store.TimeEntryFilter{UserID: user}, true
}
