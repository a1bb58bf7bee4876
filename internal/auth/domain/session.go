package domain

import "time"

// Session is an issued bearer token and its lifetime.
type Session struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Delivery records whether a notification was handed off for sending.
type Delivery string

const (
	DeliveryQueued Delivery = "queued"
	DeliveryFailed Delivery = "failed"
)
