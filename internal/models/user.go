package models

import (
	"fmt"
	"strings"
	"time"
)

// Role represents a user's role. Only the two variants below exist.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// ParseRole converts s (case-insensitive) into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

// IsAdmin reports whether the role carries administrative rights.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleUser:
		return false
	}
	return false
}

// User is an account that can log in and take surveys.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserProfile holds personal details captured at registration.
type UserProfile struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"userId"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Occupation string `json:"occupation"`
	Education  string `json:"education"`
	BirthDate  string `json:"birthDate"`
	Gender     string `json:"gender"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID        int64        `json:"id"`
	Username  string       `json:"username"`
	Role      Role         `json:"role"`
	CreatedAt time.Time    `json:"createdAt"`
	Profile   *UserProfile `json:"profile,omitempty"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// UserManagement is the admin view of a user.
type UserManagement struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Role             Role   `json:"role"`
	SurveysCompleted int    `json:"surveysCompleted"`
}

// UserProfileSummary is a profile joined with its user's activity.
type UserProfileSummary struct {
	ID               int64      `json:"id"`
	Username         string     `json:"username"`
	FullName         string     `json:"fullName"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Address          string     `json:"address"`
	Occupation       string     `json:"occupation"`
	Education        string     `json:"education"`
	BirthDate        string     `json:"birthDate"`
	Gender           string     `json:"gender"`
	Role             Role       `json:"role"`
	SurveysCompleted int        `json:"surveysCompleted"`
	LastActive       *time.Time `json:"lastActive"`
}
