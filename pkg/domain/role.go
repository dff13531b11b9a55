package domain

// Role is the caller's role as asserted by the auth layer. Authentication
// itself is an external collaborator; the core only consumes identity + role.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// CanVerify reports whether the role may drive the verification pipeline.
func (r Role) CanVerify() bool {
	return r == RoleOrganizer || r == RoleAdmin
}

// CanAdministerCamps reports whether the role may approve or cancel camps.
func (r Role) CanAdministerCamps() bool {
	return r == RoleAdmin
}
