package model

import "time"

// Account is a backend-side user record: the public profile plus login secrets.
type Account struct {
	User       User
	SignupCode string
	PINHash    string
	CreatedAt  time.Time
}
