package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to TaskStatus
		want     bool
	}{
		{TaskTodo, TaskInProgress, true},
		{TaskTodo, TaskCompleted, false},
		{TaskInProgress, TaskReview, true},
		{TaskInProgress, TaskTodo, true},
		{TaskReview, TaskCompleted, true},
		{TaskReview, TaskTodo, false},
		{TaskCompleted, TaskInProgress, true},
		{TaskCompleted, TaskTodo, false},
		{TaskReview, TaskReview, true},
		{TaskStatus("blocked"), TaskStatus("blocked"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestEnums(t *testing.T) {
	assert.True(t, PriorityUrgent.Valid())
	assert.False(t, TaskPriority("critical").Valid())
	assert.True(t, ProjectOnHold.Valid())
	assert.False(t, PhaseStatus("paused").Valid())
	assert.True(t, ValidScheduleCategory("roofing"))
	assert.False(t, ValidScheduleCategory("Roofing"))
}

func TestFeedbackCategory(t *testing.T) {
	c, ok := FeedbackCategory(3)
	assert.True(t, ok)
	assert.Equal(t, "Problems or Issues", c)
	assert.Equal(t, "#34C759", FeedbackColor(c))

	_, ok = FeedbackCategory(9)
	assert.False(t, ok)
	assert.Equal(t, "#FFFFFF", FeedbackColor("Other"))
}

func TestInviteCodeUsable(t *testing.T) {
	now := time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)
	code := InviteCode{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, code.Usable(now))
	assert.False(t, code.Usable(now.Add(2*time.Hour)))

	used := "u1"
	code.UsedBy = &used
	assert.False(t, code.Usable(now))
}

func TestUserDisplayName(t *testing.T) {
	assert.Equal(t, "Alice", (&User{Name: "Alice", Email: "a@x.io"}).DisplayName())
	assert.Equal(t, "a@x.io", (&User{Email: "a@x.io"}).DisplayName())
	u := &User{}
	u.ID = "u1"
	assert.Equal(t, "u1", u.DisplayName())
}
