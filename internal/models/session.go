package models

import "time"

// Session is podgate's projection of an authenticated browser: the podcore
// user record, the upstream access token issued at OTP validation, and the
// location context resolved from the entry URL. Everything in it is a
// disposable copy of server-issued values.
type Session struct {
	ID           string
	User         User
	AccessToken  string
	LocationID   string
	LocationName string
	PodName      string
	CreatedAt    time.Time
	LastSeenAt   time.Time
}
