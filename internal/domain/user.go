// internal/domain/user.go
package domain

import "time"

// User is a bettor known to the external auth platform.
type User struct {
	ID        int64     `db:"id" json:"id"`                 // Primary key, BIGSERIAL in DB
	Subject   string    `db:"subject" json:"subject"`       // Token subject issued by the auth platform, unique
	Email     string    `db:"email" json:"email"`           // Contact email from the token
	Phone     string    `db:"phone" json:"phone"`           // Default mobile-money number
	CreatedAt time.Time `db:"created_at" json:"created_at"` // Timestamp of creation
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"` // Timestamp of last update
}

// NewUser creates a new User instance.
func NewUser(subject, email, phone string) *User {
	now := time.Now().UTC()
	return &User{
		Subject:   subject,
		Email:     email,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
