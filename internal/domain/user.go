package domain

import (
	"regexp"
	"time"
)

// Role задаёт уровень доступа пользователя.
type Role string

const (
	// RoleUser — обычный покупатель, назначается при регистрации.
	RoleUser Role = "user"
	// RoleAdmin — администратор, имеет доступ к /admin-операциям.
	RoleAdmin Role = "admin"
)

// Valid проверяет, что роль относится к поддерживаемым значениям.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail проверяет формат адреса электронной почты.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// User — учётная запись покупателя или администратора.
type User struct {
	ID           string
	Name         string
	Age          int
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// ValidateRegistration проверяет входные данные регистрации.
// Пароль передаётся отдельно, так как в User хранится только хеш.
func ValidateRegistration(name, email, password string) []error {
	var issues []error
	if name == "" {
		issues = append(issues, ErrUserNameRequired)
	}
	if !emailPattern.MatchString(email) {
		issues = append(issues, ErrEmailInvalid)
	}
	if len(password) < 6 {
		issues = append(issues, ErrPasswordTooShort)
	}
	return issues
}
