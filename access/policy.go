// Package access maps user roles to the operations they may perform.
// Every predicate is pure; unknown roles are denied everything.
package access

import "fmt"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
	RoleViewer  Role = "viewer"
)

var roles = map[Role]struct{}{
	RoleAdmin:   {},
	RoleManager: {},
	RoleWorker:  {},
	RoleViewer:  {},
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roles[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := roles[r]
	return ok
}

// Predicate reports whether a role may perform an operation.
type Predicate func(Role) bool

func oneOf(allowed ...Role) Predicate {
	return func(r Role) bool {
		for _, a := range allowed {
			if r == a {
				return true
			}
		}
		return false
	}
}

var (
	CanCreateProject = oneOf(RoleAdmin, RoleManager)
	CanEditProject   = oneOf(RoleAdmin, RoleManager)
	CanDeleteProject = oneOf(RoleAdmin)
	CanEditPhase     = oneOf(RoleAdmin, RoleManager)

	CanCreateTask       = oneOf(RoleAdmin, RoleManager)
	CanQuickAddTask     = oneOf(RoleAdmin, RoleManager, RoleWorker)
	CanUpdateTaskStatus = oneOf(RoleAdmin, RoleManager, RoleWorker)
	CanAssignWorkers    = oneOf(RoleAdmin, RoleManager)
	CanManageChecklists = oneOf(RoleAdmin, RoleManager, RoleWorker)

	CanTrackTime          = oneOf(RoleAdmin, RoleManager, RoleWorker)
	CanViewAllTimeEntries = oneOf(RoleAdmin, RoleManager)

	CanManageMaterials = oneOf(RoleAdmin, RoleManager)
	CanImportSchedule  = oneOf(RoleAdmin, RoleManager)

	CanManageUsers   = oneOf(RoleAdmin)
	CanManageInvites = oneOf(RoleAdmin, RoleManager)

	CanViewFeedback   = oneOf(RoleAdmin)
	CanSubmitFeedback = oneOf(RoleAdmin, RoleManager, RoleWorker, RoleViewer)
)

// CanGrantRole reports whether granter may hand out target through an invite
// code. Managers may only invite workers and viewers.
func CanGrantRole(granter, target Role) bool {
	if !target.Valid() {
		return false
	}
	switch granter {
	case RoleAdmin:
		return true
	case RoleManager:
		return target == RoleWorker || target == RoleViewer
	default:
		return false
	}
}
