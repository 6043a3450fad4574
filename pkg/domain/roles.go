package domain

// Role is the access level carried by an authenticated actor. The workflow
// core checks roles as explicit preconditions, not as ambient middleware state.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleVendor     Role = "vendor"
	RoleQAReviewer Role = "qa_reviewer"
	RoleAuditor    Role = "auditor"
)

// Valid reports whether the role is one of the four known access levels.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleQAReviewer, RoleAuditor:
		return true
	}
	return false
}

// Actor is an already-authenticated caller. Transport extracts it from the
// bearer token; services never see raw credentials.
type Actor struct {
	ID   UserID
	Role Role
}

func (a Actor) Is(role Role) bool { return a.Role == role }

// System reports whether this is the zero actor, used by internal callers
// (workers, seeding) that act without a user identity.
func (a Actor) System() bool { return a.ID.IsNil() && a.Role == "" }
