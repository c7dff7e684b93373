package model

import "time"

type NotificationChannel string

const (
	ChannelSMS   NotificationChannel = "sms"
	ChannelEmail NotificationChannel = "email"
)

// Notification is an append-only record of a delivered message.
type Notification struct {
	ID        string              `db:"id" json:"id"`
	UserID    string              `db:"user_id" json:"user_id"`
	Channel   NotificationChannel `db:"channel" json:"channel"`
	Message   string              `db:"message" json:"message"`
	CreatedAt time.Time           `db:"created_at" json:"created_at"`
}
