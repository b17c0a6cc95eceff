package entity

import "time"

// UserRole is the back-office role enum.
type UserRole string

const (
	RoleSuperAdmin UserRole = "superadmin"
	RoleAdmin      UserRole = "admin"
	RoleStaff      UserRole = "staff"
)

// ValidUserRoles is a set of valid back-office roles
var ValidUserRoles = map[UserRole]bool{
	RoleSuperAdmin: true,
	RoleAdmin:      true,
	RoleStaff:      true,
}

// AdminUser represents the admin_user table
type AdminUser struct {
	ID           int       `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         UserRole  `db:"role"`
	CreatedAt    time.Time `db:"created_at"`
}
