package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleViewer     UserRole = "VIEWER"
)

// WriteRoles may create, edit or delete scheduling records.
var WriteRoles = []UserRole{RoleSuperAdmin, RoleAdmin}

// CanWrite reports whether the role is allowed to modify records.
func (r UserRole) CanWrite() bool {
	for _, role := range WriteRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
