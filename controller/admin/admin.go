package admin

import (
	"context"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/dto"
	"sitecrew/middleware"
)

const defaultInviteTTL = 72 * time.Hour

func AdminController(router *gin.Engine, deps *controller.Deps) {
	routes := router.Group("/admin", deps.Auth()...)
	{
		routes.GET("/users", middleware.AdminMiddleware(), func(c *gin.Context) {
			ListUsers(c, deps)
		})
		routes.PUT("/users/:id/role", middleware.AdminMiddleware(), func(c *gin.Context) {
			SetRole(c, deps)
		})
		routes.PUT("/users/:id/active", middleware.AdminMiddleware(), func(c *gin.Context) {
			SetActive(c, deps)
		})
		routes.GET("/errors", middleware.AdminMiddleware(), func(c *gin.Context) {
			ListErrors(c, deps)
		})
		routes.POST("/invites", middleware.Require(access.CanManageInvites), func(c *gin.Context) {
			CreateInvite(c, deps)
		})
		routes.GET("/invites", middleware.Require(access.CanManageInvites), func(c *gin.Context) {
			ListInvites(c, deps)
		})
	}
}

func ListUsers(c *gin.Context, deps *controller.Deps) {
	users, err := deps.Store.ListUsers(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "users", users)
}

func SetRole(c *gin.Context, deps *controller.Deps) {
	var req dto.SetRoleRequest
	if !controller.Bind(c, &req) {
		return
	}
	id := c.Param("id")
	if id == middleware.UserID(c) {
		apperr.Respond(c, apperr.Validationf("you cannot change your own role"))
		return
	}
	role, err := access.ParseRole(req.Role)
	if err != nil {
		apperr.Respond(c, apperr.Validationf("%s", err.Error()))
		return
	}
	if err := deps.Store.SetUserRole(c, id, role); err != nil {
		apperr.Respond(c, err)
		return
	}
	user, err := deps.Store.GetUser(c, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	syncUser(c, deps, user.Email, map[string]any{"role": string(role)})
	controller.OK(c, http.StatusOK, "user", user)
}

func SetActive(c *gin.Context, deps *controller.Deps) {
	var req dto.SetActiveRequest
	if !controller.Bind(c, &req) {
		return
	}
	id := c.Param("id")
	if id == middleware.UserID(c) && !*req.Active {
		apperr.Respond(c, apperr.Validationf("you cannot disable your own account"))
		return
	}
	if err := deps.Store.SetUserActive(c, id, *req.Active); err != nil {
		apperr.Respond(c, err)
		return
	}
	user, err := deps.Store.GetUser(c, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	syncUser(c, deps, user.Email, map[string]any{"active": user.IsActive})

	message := "User enabled successfully"
	if !user.IsActive {
		message = "User disabled successfully"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "user": user})
}

// CreateInvite issues a one-time sign-up code. Managers may only invite
// workers and viewers.
func CreateInvite(c *gin.Context, deps *controller.Deps) {
	var req dto.CreateInviteRequest
	if !controller.Bind(c, &req) {
		return
	}
	target := access.Role(req.Role)
	if !access.CanGrantRole(middleware.Role(c), target) {
		apperr.Respond(c, apperr.Forbiddenf("you may not invite users with role %s", target))
		return
	}
	ttl := defaultInviteTTL
	if req.TTLHours > 0 {
		ttl = time.Duration(req.TTLHours) * time.Hour
	}
	code, err := deps.Store.CreateInviteCode(c, target, middleware.UserID(c), ttl)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusCreated, "invite", code)
}

func ListInvites(c *gin.Context, deps *controller.Deps) {
	codes, err := deps.Store.ListInviteCodes(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "invites", codes)
}

func ListErrors(c *gin.Context, deps *controller.Deps) {
	logs, err := deps.Store.ListErrorLogs(c, c.Query("fn"), controller.QueryInt(c, "limit", 100))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	controller.OK(c, http.StatusOK, "errors", logs)
}

// syncUser merges fields into usersLogin/{email}. Failures are logged only.
func syncUser(c *gin.Context, deps *controller.Deps, email string, fields map[string]any) {
	if deps.Firestore == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c), 5*time.Second)
	defer cancel()
	if _, err := deps.Firestore.Collection("usersLogin").Doc(email).Set(ctx, fields, firestore.MergeAll); err != nil {
		deps.Logger.Warn("failed to update usersLogin document", zap.String("email", email), zap.Error(err))
	}
}
