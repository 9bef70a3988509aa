package dto

type PushSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

type DeletePushSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

type FCMTokenRequest struct {
	Token string `json:"token" binding:"required"`
}
