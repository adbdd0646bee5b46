package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role determines what a user may do in the registry.
type Role string

const (
	// RoleAdmin manages form fields, users, exports and the audit log.
	RoleAdmin Role = "admin"
	// RoleOperator creates and edits comuneros and reads the field schema.
	RoleOperator Role = "operador"
)

// User represents an authenticated actor with role-based access control.
// Accounts are never physically removed; "deleting" one flips Active.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Email        string `json:"email" gorm:"column:email;size:150;not null;uniqueIndex:uq_usuarios_email"`
	Name         string `json:"nombre" gorm:"column:nombre;size:150;not null"`
	PasswordHash string `json:"-" gorm:"column:hashed_password;size:255;not null"`
	Role         Role   `json:"rol" gorm:"column:rol;size:20;not null;default:'operador'"`
	Active       bool   `json:"activo" gorm:"column:activo;not null;default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table shared with the original deployment schema.
func (User) TableName() string { return "usuarios" }

// SetPassword hashes and sets the user's password.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword compares the provided password with the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
