package database

import "time"

type User struct {
	Id           int
	Username     string
	EmailAddress string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Group struct {
	Id           int
	Name         string
	CreatedBy    int
	CreatorEmail string
	// MemberEmails is the explicit member list; it may omit the
	// creator, who is an implicit member regardless.
	MemberEmails []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type GroupMember struct {
	Id         int
	GroupId    int
	UserId     int
	AccessType string
	Days       *int
	CreatedAt  time.Time
}

type Message struct {
	Id          int
	SenderId    int
	ReceiverId  *int
	GroupId     *int
	Content     string
	FileUrl     *string
	ContentType *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ErrorLog struct {
	Id         int
	Message    string
	OccurredAt time.Time
}

type CreateAccountParams struct {
	Username     string
	EmailAddress string
	PasswordHash string
}

type MemberParams struct {
	GroupId    int
	UserId     int
	AccessType string
	Days       *int
}
