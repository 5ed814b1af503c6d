package application

import "strings"

// Role is the portal role a user acts under.
type Role string

const (
	RoleStudent    Role = "student"
	RoleAdvisor    Role = "advisor"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// ParseRole validates a role name.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	switch role {
	case RoleStudent, RoleAdvisor, RoleInstructor, RoleAdmin:
		return role, true
	}
	return "", false
}

// AutoApprovesBookings reports whether bookings requested under the role start approved.
func (r Role) AutoApprovesBookings() bool {
	return r == RoleAdvisor || r == RoleInstructor
}

// Capability names a permission granted to roles.
type Capability string

const (
	CapManageUsers      Capability = "users:manage"
	CapManageClassrooms Capability = "classrooms:manage"
	CapManageCourses    Capability = "courses:manage"
	CapCreateBookings   Capability = "bookings:create"
	CapReviewBookings   Capability = "bookings:review"
	CapReviewRequests   Capability = "requests:review"
	CapTeachCourses     Capability = "courses:teach"
	CapEnrollCourses    Capability = "courses:enroll"
	CapSubmitWork       Capability = "assignments:submit"
	CapReadStats        Capability = "stats:read"
	CapWriteAttributes  Capability = "attributes:write"
)

var roleCapabilities = map[Role][]Capability{
	RoleStudent: {
		CapCreateBookings,
		CapEnrollCourses,
		CapSubmitWork,
	},
	RoleAdvisor: {
		CapCreateBookings,
		CapReviewBookings,
		CapReviewRequests,
	},
	RoleInstructor: {
		CapCreateBookings,
		CapReviewBookings,
		CapTeachCourses,
	},
	RoleAdmin: {
		CapManageUsers,
		CapManageClassrooms,
		CapManageCourses,
		CapCreateBookings,
		CapReviewBookings,
		CapReviewRequests,
		CapTeachCourses,
		CapReadStats,
		CapWriteAttributes,
	},
}

// Can reports whether the role holds the capability.
func (r Role) Can(capability Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == capability {
			return true
		}
	}
	return false
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Role   Role
}

// Can reports whether the principal holds the capability.
func (p Principal) Can(capability Capability) bool {
	return p.UserID != "" && p.Role.Can(capability)
}

// IsAdmin reports whether the principal acts as an administrator.
func (p Principal) IsAdmin() bool {
	return p.UserID != "" && p.Role == RoleAdmin
}

func authorize(p Principal, capability Capability) error {
	if !p.Can(capability) {
		return ErrUnauthorized
	}
	return nil
}
