package notification

import (
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"

	"sitecrew/apperr"
	"sitecrew/controller"
	"sitecrew/dto"
	"sitecrew/middleware"
	"sitecrew/model"
)

func NotificationController(router *gin.Engine, deps *controller.Deps) {
	router.GET("/push/vapid-public-key", func(c *gin.Context) {
		VAPIDPublicKey(c, deps)
	})
	routes := router.Group("/push", deps.Auth()...)
	{
		routes.POST("/subscriptions", func(c *gin.Context) {
			Subscribe(c, deps)
		})
		routes.DELETE("/subscriptions", func(c *gin.Context) {
			Unsubscribe(c, deps)
		})
		routes.POST("/fcm-token", func(c *gin.Context) {
			RegisterFCMToken(c, deps)
		})
	}
}

func VAPIDPublicKey(c *gin.Context, deps *controller.Deps) {
	if !deps.Config.WebPushEnv.Enabled() {
		apperr.Respond(c, apperr.NotFoundf("web push is not configured"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": deps.Config.WebPushEnv.VAPIDPublicKey})
}

func Subscribe(c *gin.Context, deps *controller.Deps) {
	var req dto.PushSubscriptionRequest
	if !controller.Bind(c, &req) {
		return
	}
	sub := &model.PushSubscription{
		UserID:    middleware.UserID(c),
		Endpoint:  req.Endpoint,
		P256dhKey: req.Keys.P256dh,
		AuthKey:   req.Keys.Auth,
	}
	if err := deps.Store.UpsertPushSubscription(c, sub); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Subscribed"})
}

func Unsubscribe(c *gin.Context, deps *controller.Deps) {
	var req dto.DeletePushSubscriptionRequest
	if !controller.Bind(c, &req) {
		return
	}
	if err := deps.Store.DeletePushSubscription(c, req.Endpoint); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Unsubscribed"})
}

// RegisterFCMToken stores the device token on usersLogin/{email}, where the
// push notifier looks it up.
func RegisterFCMToken(c *gin.Context, deps *controller.Deps) {
	var req dto.FCMTokenRequest
	if !controller.Bind(c, &req) {
		return
	}
	if deps.Firestore == nil {
		apperr.Respond(c, apperr.NotFoundf("push notifications are not configured"))
		return
	}
	user, err := deps.Store.GetUser(c, middleware.UserID(c))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	_, err = deps.Firestore.Collection("usersLogin").Doc(user.Email).Set(c, map[string]any{
		"FMCToken": req.Token,
	}, firestore.MergeAll)
	if err != nil {
		apperr.Respond(c, apperr.New(apperr.Network, "failed to store device token", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Device token saved"})
}
