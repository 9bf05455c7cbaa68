package entity

import "time"

// User is an account holder. IsAdmin grants the back-office role.
type User struct {
	ID        int64
	Name      string
	Email     string
	Mobile    string
	Password  string
	Address   string
	IsAdmin   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
