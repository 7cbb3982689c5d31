package identity

import (
	"regexp"
	"strings"

	"github.com/medstore/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+$`)

// User is a store operator account. Only admins exist today; they are seeded
// at startup rather than created through the API.
type User struct {
	shared.BaseEntity
	Username     string `gorm:"type:varchar(80);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(128);not null"`
	IsAdmin      bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewAdmin creates an admin user with a hashed password
func NewAdmin(username, password string) (*User, error) {
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	u := &User{
		BaseEntity: shared.NewBaseEntity(),
		Username:   strings.TrimSpace(username),
		IsAdmin:    true,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword validates and hashes a new password
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.Touch()
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// PromoteToAdmin sets the admin flag
func (u *User) PromoteToAdmin() {
	if !u.IsAdmin {
		u.IsAdmin = true
		u.Touch()
	}
}

func validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) < 3 {
		return shared.NewDomainError("INVALID_USERNAME", "Username must be at least 3 characters")
	}
	if len(username) > 80 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 80 characters")
	}
	if !usernamePattern.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers, underscores, hyphens, and dots")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 6 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}
