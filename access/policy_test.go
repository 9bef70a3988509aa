package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("manager")
	assert.NoError(t, err)
	assert.Equal(t, RoleManager, r)

	_, err = ParseRole("owner")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		pred Predicate
		want map[Role]bool
	}{
		{"create project", CanCreateProject, map[Role]bool{RoleAdmin: true, RoleManager: true}},
		{"delete project", CanDeleteProject, map[Role]bool{RoleAdmin: true}},
		{"edit phase", CanEditPhase, map[Role]bool{RoleAdmin: true, RoleManager: true}},
		{"quick add task", CanQuickAddTask, map[Role]bool{RoleAdmin: true, RoleManager: true, RoleWorker: true}},
		{"assign workers", CanAssignWorkers, map[Role]bool{RoleAdmin: true, RoleManager: true}},
		{"track time", CanTrackTime, map[Role]bool{RoleAdmin: true, RoleManager: true, RoleWorker: true}},
		{"manage users", CanManageUsers, map[Role]bool{RoleAdmin: true}},
		{"import schedule", CanImportSchedule, map[Role]bool{RoleAdmin: true, RoleManager: true}},
		{"submit feedback", CanSubmitFeedback, map[Role]bool{RoleAdmin: true, RoleManager: true, RoleWorker: true, RoleViewer: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, r := range []Role{RoleAdmin, RoleManager, RoleWorker, RoleViewer, Role("ghost")} {
				assert.Equal(t, tt.want[r], tt.pred(r), "role %s", r)
			}
		})
	}
}

func TestCanGrantRole(t *testing.T) {
	assert.True(t, CanGrantRole(RoleAdmin, RoleAdmin))
	assert.True(t, CanGrantRole(RoleManager, RoleWorker))
	assert.True(t, CanGrantRole(RoleManager, RoleViewer))
	assert.False(t, CanGrantRole(RoleManager, RoleManager))
	assert.False(t, CanGrantRole(RoleWorker, RoleViewer))
	assert.False(t, CanGrantRole(RoleAdmin, Role("ghost")))
}
