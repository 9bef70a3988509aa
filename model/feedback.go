package model

type Feedback struct {
	Base
	UserID   string `gorm:"column:user_id;type:varchar(36);not null;index" json:"user_id"`
	Category string `gorm:"column:category;type:varchar(64);not null;index" json:"category"`
	Message  string `gorm:"column:message;type:text;not null" json:"message"`

	// Relations
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE" json:"-"`
}

func (Feedback) TableName() string {
	return "feedback"
}

var feedbackCategories = map[int]string{
	1: "Suggestions",
	2: "Incorrect Information",
	3: "Problems or Issues",
	4: "Accessibility Issues",
	5: "Notification Issues",
	6: "Security Issues",
}

// FeedbackCategory resolves the numeric category sent by clients.
func FeedbackCategory(id int) (string, bool) {
	c, ok := feedbackCategories[id]
	return c, ok
}

func FeedbackColor(category string) string {
	switch category {
	case "Suggestions":
		return "#007AFF"
	case "Incorrect Information":
		return "#FF3B30"
	case "Problems or Issues":
		return "#34C759"
	case "Accessibility Issues":
		return "#FF9500"
	case "Notification Issues":
		return "#AF52DE"
	case "Security Issues":
		return "#FF2D55"
	default:
		return "#FFFFFF"
	}
}
