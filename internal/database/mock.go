package database

import (
	"time"

	"github.com/stretchr/testify/mock"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockChatRepository) CreateAccount(params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) GetAccountById(accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) GetAccountByEmail(email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) ListAccounts(excludeId int) ([]User, error) {
	args := m.Called(excludeId)
	return args.Get(0).([]User), args.Error(1)
}
func (m *MockChatRepository) CreateGroup(name string, creatorId int) (Group, error) {
	args := m.Called(name, creatorId)
	return args.Get(0).(Group), args.Error(1)
}
func (m *MockChatRepository) GetGroupWithMembers(groupId int) (*Group, error) {
	args := m.Called(groupId)
	if group, ok := args.Get(0).(*Group); ok {
		return group, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *MockChatRepository) GroupNameExists(name string, excludeId int) (bool, error) {
	args := m.Called(name, excludeId)
	return args.Bool(0), args.Error(1)
}
func (m *MockChatRepository) UpdateGroupName(groupId int, name string) (Group, error) {
	args := m.Called(groupId, name)
	return args.Get(0).(Group), args.Error(1)
}
func (m *MockChatRepository) DeleteGroup(groupId int) error {
	args := m.Called(groupId)
	return args.Error(0)
}
func (m *MockChatRepository) ListGroupsForUser(userId int) ([]*Group, error) {
	args := m.Called(userId)
	return args.Get(0).([]*Group), args.Error(1)
}
func (m *MockChatRepository) AddGroupMember(params MemberParams) error {
	args := m.Called(params)
	return args.Error(0)
}
func (m *MockChatRepository) RemoveGroupMember(groupId, userId int) error {
	args := m.Called(groupId, userId)
	return args.Error(0)
}
func (m *MockChatRepository) UpdateMemberAccess(params MemberParams) error {
	args := m.Called(params)
	return args.Error(0)
}
func (m *MockChatRepository) CreateDirectMessage(senderId, receiverId int, content string) (Message, error) {
	args := m.Called(senderId, receiverId, content)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) CreateGroupMessage(senderId, groupId int, content string, fileUrl, contentType *string) (Message, error) {
	args := m.Called(senderId, groupId, content, fileUrl, contentType)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) GetMessageById(messageId int) (Message, error) {
	args := m.Called(messageId)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) UpdateMessageContent(messageId int, content string) (Message, error) {
	args := m.Called(messageId, content)
	return args.Get(0).(Message), args.Error(1)
}
func (m *MockChatRepository) DeleteMessage(messageId int) error {
	args := m.Called(messageId)
	return args.Error(0)
}
func (m *MockChatRepository) GetConversation(userId, otherUserId int, before time.Time, count int, sort string) ([]Message, error) {
	args := m.Called(userId, otherUserId, before, count, sort)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockChatRepository) GetGroupMessages(groupId int, before time.Time, count int, sort string) ([]Message, error) {
	args := m.Called(groupId, before, count, sort)
	return args.Get(0).([]Message), args.Error(1)
}
func (m *MockChatRepository) CreateErrorLog(message string, occurredAt time.Time) error {
	args := m.Called(message, occurredAt)
	return args.Error(0)
}
func (m *MockChatRepository) ListErrorLogs(limit int) ([]ErrorLog, error) {
	args := m.Called(limit)
	return args.Get(0).([]ErrorLog), args.Error(1)
}
