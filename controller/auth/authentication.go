package auth

import (
	"context"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sitecrew/access"
	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/dto"
	"sitecrew/middleware"
	"sitecrew/model"
	"sitecrew/store"
)

func AuthController(router *gin.Engine, deps *controller.Deps) {
	routes := router.Group("/auth")
	{
		routes.POST("/signin", func(c *gin.Context) {
			Signin(c, deps)
		})
		routes.POST("/signup", func(c *gin.Context) {
			Signup(c, deps)
		})
		routes.POST("/refresh", middleware.RefreshTokenMiddleware(deps.Tokens), func(c *gin.Context) {
			Refresh(c, deps)
		})
	}
}

func Signin(c *gin.Context, deps *controller.Deps) {
	var req dto.SigninRequest
	if !controller.Bind(c, &req) {
		return
	}

	user, err := deps.Store.GetUserByEmail(c, req.Email)
	if apperr.Is(err, apperr.NotFound) {
		apperr.Respond(c, apperr.New(apperr.Unauthorized, "invalid email or password", nil))
		return
	}
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		apperr.Respond(c, apperr.New(apperr.Unauthorized, "invalid email or password", nil))
		return
	}
	if !user.IsActive {
		apperr.Respond(c, apperr.Forbiddenf("account is disabled"))
		return
	}

	tokens, err := issueTokens(deps, user, true)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	syncLogin(c, deps, user)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login Successfully",
		"token":   tokens,
		"user":    user,
	})
}

func Signup(c *gin.Context, deps *controller.Deps) {
	var req dto.SignupRequest
	if !controller.Bind(c, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apperr.Respond(c, apperr.New(apperr.Unknown, "failed to hash password", err))
		return
	}

	user := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         access.RoleViewer,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	err = deps.Store.WithTx(c, func(tx *store.Store) error {
		if err := tx.CreateUser(c, user); err != nil {
			return err
		}
		code, err := tx.RedeemInviteCode(c, req.InviteCode, user.ID, deps.Clock())
		if err != nil {
			return err
		}
		user.Role = code.Role
		return tx.SetUserRole(c, user.ID, code.Role)
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	tokens, err := issueTokens(deps, user, true)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	syncLogin(c, deps, user)
	deps.Logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"token":   tokens,
		"user":    user,
	})
}

// Refresh trades a refresh token for a new access token carrying the
// user's current role.
func Refresh(c *gin.Context, deps *controller.Deps) {
	user, err := deps.Store.GetUser(c, middleware.UserID(c))
	if err != nil {
		apperr.Respond(c, apperr.New(apperr.Unauthorized, "user no longer exists", err))
		return
	}
	if !user.IsActive {
		apperr.Respond(c, apperr.Forbiddenf("account is disabled"))
		return
	}
	tokens, err := issueTokens(deps, user, false)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokens})
}

func issueTokens(deps *controller.Deps, user *model.User, withRefresh bool) (dto.TokenResponse, error) {
	var out dto.TokenResponse
	accessToken, err := deps.Tokens.CreateAccessToken(user)
	if err != nil {
		return out, apperr.New(apperr.Unknown, "failed to create token", err)
	}
	out.AccessToken = accessToken
	if withRefresh {
		refresh, err := deps.Tokens.CreateRefreshToken(user)
		if err != nil {
			return out, apperr.New(apperr.Unknown, "failed to create token", err)
		}
		out.RefreshToken = refresh
	}
	return out, nil
}

// syncLogin mirrors the login state into usersLogin/{email}, the document
// clients watch and the push notifier reads device tokens from.
func syncLogin(c *gin.Context, deps *controller.Deps, user *model.User) {
	if deps.Firestore == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c), 5*time.Second)
	defer cancel()
	_, err := deps.Firestore.Collection("usersLogin").Doc(user.Email).Set(ctx, map[string]any{
		"email":      user.Email,
		"active":     user.IsActive,
		"login":      1,
		"role":       string(user.Role),
		"updated_at": deps.Clock(),
	}, firestore.MergeAll)
	if err != nil {
		deps.Logger.Warn("failed to update usersLogin document", zap.String("email", user.Email), zap.Error(err))
	}
}
