package model

type PushSubscription struct {
	Base
	UserID    string `gorm:"column:user_id;type:varchar(36);not null;index" json:"user_id"`
	Endpoint  string `gorm:"column:endpoint;type:varchar(512);uniqueIndex;not null" json:"endpoint"`
	P256dhKey string `gorm:"column:p256dh_key;type:varchar(255);not null" json:"-"`
	AuthKey   string `gorm:"column:auth_key;type:varchar(255);not null" json:"-"`
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}
