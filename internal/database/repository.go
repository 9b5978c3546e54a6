package database

import "time"

type ChatRepository interface {
	Ping() error

	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	ListAccounts(excludeId int) ([]User, error)

	CreateGroup(name string, creatorId int) (Group, error)
	GetGroupWithMembers(groupId int) (*Group, error)
	GroupNameExists(name string, excludeId int) (bool, error)
	UpdateGroupName(groupId int, name string) (Group, error)
	DeleteGroup(groupId int) error
	ListGroupsForUser(userId int) ([]*Group, error)
	AddGroupMember(params MemberParams) error
	RemoveGroupMember(groupId, userId int) error
	UpdateMemberAccess(params MemberParams) error

	CreateDirectMessage(senderId, receiverId int, content string) (Message, error)
	CreateGroupMessage(senderId, groupId int, content string, fileUrl, contentType *string) (Message, error)
	GetMessageById(messageId int) (Message, error)
	UpdateMessageContent(messageId int, content string) (Message, error)
	DeleteMessage(messageId int) error
	GetConversation(userId, otherUserId int, before time.Time, count int, sort string) ([]Message, error)
	GetGroupMessages(groupId int, before time.Time, count int, sort string) ([]Message, error)

	CreateErrorLog(message string, occurredAt time.Time) error
	ListErrorLogs(limit int) ([]ErrorLog, error)
}
