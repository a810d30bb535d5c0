package models

import (
	"gorm.io/gorm"
)

// Role determines which connection-registry partition an employee's socket
// belongs to and which broadcasts it receives.
type Role string

const (
	RoleReception    Role = "reception"
	RolePractitioner Role = "practitioner"
	RoleAdmin        Role = "admin"
)

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r Role) bool {
	return r == RoleReception || r == RolePractitioner || r == RoleAdmin
}

// Employee represents a back-office user (reception desk, practitioner, admin)
type Employee struct {
	ID       int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	Name     string `json:"name" gorm:"not null"`
	Role     Role   `json:"role" gorm:"not null;default:'reception'"`
	gorm.Model
}

// TableName specifies the table name for the Employee model
func (Employee) TableName() string {
	return "employees"
}
