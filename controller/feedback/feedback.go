package feedback

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/dto"
	"sitecrew/middleware"
	"sitecrew/model"
)

func FeedbackController(router *gin.Engine, deps *controller.Deps) {
	view := middleware.Require(access.CanViewFeedback)

	routes := router.Group("/feedback", deps.Auth()...)
	{
		routes.POST("", middleware.Require(access.CanSubmitFeedback), func(c *gin.Context) {
			SendFeedback(c, deps)
		})
		routes.GET("", view, func(c *gin.Context) {
			ListFeedback(c, deps, "")
		})
		routes.GET("/category/:category", view, func(c *gin.Context) {
			id, err := strconv.Atoi(c.Param("category"))
			category, ok := model.FeedbackCategory(id)
			if err != nil || !ok {
				apperr.Respond(c, apperr.Validationf("invalid category id"))
				return
			}
			ListFeedback(c, deps, category)
		})
		routes.DELETE("/:id", view, func(c *gin.Context) {
			DeleteFeedback(c, deps)
		})
	}
}

func SendFeedback(c *gin.Context, deps *controller.Deps) {
	var req dto.FeedbackRequest
	if !controller.Bind(c, &req) {
		return
	}
	category, ok := model.FeedbackCategory(req.CategoryID)
	if !ok {
		apperr.Respond(c, apperr.Validationf("invalid category id"))
		return
	}
	user, err := deps.Store.GetUser(c, middleware.UserID(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	f := &model.Feedback{
		UserID:   user.ID,
		Category: category,
		Message:  strings.TrimSpace(req.Message),
	}
	if err := deps.Store.CreateFeedback(c, f); err != nil {
		apperr.Respond(c, err)
		return
	}
	mirrorFeedback(c, deps, user.Email, f)

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Feedback sent successfully!", "feedback": f})
}

func ListFeedback(c *gin.Context, deps *controller.Deps, category string) {
	rows, err := deps.Store.ListFeedback(c, category)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	list := make([]gin.H, 0, len(rows))
	for _, f := range rows {
		list = append(list, gin.H{
			"id":         f.ID,
			"category":   f.Category,
			"color":      model.FeedbackColor(f.Category),
			"created_at": f.CreatedAt,
			"name":       f.User.Name,
			"email":      f.User.Email,
			"message":    f.Message,
		})
	}
	controller.OK(c, http.StatusOK, "feedback", list)
}

func DeleteFeedback(c *gin.Context, deps *controller.Deps) {
	if err := deps.Store.DeleteFeedback(c, c.Param("id")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Feedback deleted successfully!"})
}

// mirrorFeedback copies the entry to Reports/{email}/{category}/{id} for the
// admin console. Failures are logged only.
func mirrorFeedback(c *gin.Context, deps *controller.Deps, email string, f *model.Feedback) {
	if deps.Firestore == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c), 5*time.Second)
	defer cancel()
	_, err := deps.Firestore.Collection("Reports").Doc(email).Collection(f.Category).Doc(f.ID).Set(ctx, map[string]any{
		"Category":    f.Category,
		"Color":       model.FeedbackColor(f.Category),
		"CreateAt":    f.CreatedAt,
		"Description": f.Message,
	})
	if err != nil {
		deps.Logger.Warn("failed to mirror feedback", zap.String("feedback_id", f.ID), zap.Error(err))
	}
}
