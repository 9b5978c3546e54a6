package types

import (
	"time"
)

type User struct {
	Id           int       `json:"id"`
	Username     string    `json:"username"`
	EmailAddress string    `json:"email_address,omitempty"`
	Password     string    `json:"-"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Group is the membership view consumed by the fan-out engine and the
// API layer. CreatedBy and Members hold email addresses. Members is the
// explicit member list as stored, which may or may not include the
// creator.
type Group struct {
	Id        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Message is the canonical durable record returned by the message
// store. Exactly one of ReceiverId and GroupId is set.
type Message struct {
	Id          int       `json:"id"`
	SenderId    int       `json:"sender_id"`
	ReceiverId  *int      `json:"receiver_id,omitempty"`
	GroupId     *int      `json:"group_id,omitempty"`
	Content     string    `json:"content"`
	FileUrl     *string   `json:"file_url,omitempty"`
	ContentType *string   `json:"content_type,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
