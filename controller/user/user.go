package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/dto"
	"sitecrew/middleware"
)

func UserController(router *gin.Engine, deps *controller.Deps) {
	me := router.Group("/me", deps.Auth()...)
	{
		me.GET("", func(c *gin.Context) {
			Profile(c, deps)
		})
		me.PUT("", func(c *gin.Context) {
			UpdateProfile(c, deps)
		})
		me.PUT("/password", func(c *gin.Context) {
			ChangePassword(c, deps)
		})
	}
	router.GET("/users", append(deps.Auth(middleware.Require(access.CanAssignWorkers)), func(c *gin.Context) {
		Directory(c, deps)
	})...)
}

func Profile(c *gin.Context, deps *controller.Deps) {
	user, err := deps.Store.GetUser(c, middleware.UserID(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func UpdateProfile(c *gin.Context, deps *controller.Deps) {
	var req dto.UpdateProfileRequest
	if !controller.Bind(c, &req) {
		return
	}
	user, err := deps.Store.UpdateProfile(c, middleware.UserID(c), req.Name, req.AvatarURL)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func ChangePassword(c *gin.Context, deps *controller.Deps) {
	var req dto.ChangePasswordRequest
	if !controller.Bind(c, &req) {
		return
	}
	id := middleware.UserID(c)
	user, err := deps.Store.GetUser(c, id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		apperr.Respond(c, apperr.New(apperr.Unauthorized, "current password is incorrect", nil))
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		apperr.Respond(c, apperr.New(apperr.Unknown, "failed to hash password", err))
		return
	}
	if err := deps.Store.SetUserPassword(c, id, string(hash)); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed"})
}

type entry struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Role   access.Role `json:"role"`
	Active bool        `json:"is_active"`
}

// Directory lists users for assignment pickers without their e-mails.
func Directory(c *gin.Context, deps *controller.Deps) {
	users, err := deps.Store.ListUsers(c)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	out := make([]entry, 0, len(users))
	for _, u := range users {
		out = append(out, entry{ID: u.ID, Name: u.DisplayName(), Role: u.Role, Active: u.IsActive})
	}
	controller.OK(c, http.StatusOK, "users", out)
}
