package chat

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/minchat/minchat/internal/types"
)

type MockIdentityResolver struct {
	mock.Mock
}

func (m *MockIdentityResolver) ResolveNumericId(ctx context.Context, identity string) (int, error) {
	args := m.Called(ctx, identity)
	return args.Int(0), args.Error(1)
}

func (m *MockIdentityResolver) ResolveIdentity(ctx context.Context, numericId int) (string, error) {
	args := m.Called(ctx, numericId)
	return args.String(0), args.Error(1)
}

type MockMembershipOracle struct {
	mock.Mock
}

func (m *MockMembershipOracle) GetEffectiveMembers(ctx context.Context, groupId int) (types.Group, error) {
	args := m.Called(ctx, groupId)
	return args.Get(0).(types.Group), args.Error(1)
}

func (m *MockMembershipOracle) IsMember(ctx context.Context, identity string, groupId int) (bool, error) {
	args := m.Called(ctx, identity, groupId)
	return args.Bool(0), args.Error(1)
}

type MockMessageStore struct {
	mock.Mock
}

func (m *MockMessageStore) SaveDirect(ctx context.Context, senderId, receiverId int, content string) (types.Message, error) {
	args := m.Called(ctx, senderId, receiverId, content)
	return args.Get(0).(types.Message), args.Error(1)
}

func (m *MockMessageStore) SaveGroup(ctx context.Context, senderId, groupId int, content string, fileUrl, contentType *string) (types.Message, error) {
	args := m.Called(ctx, senderId, groupId, content, fileUrl, contentType)
	return args.Get(0).(types.Message), args.Error(1)
}

type MockErrorReporter struct {
	mock.Mock
}

func (m *MockErrorReporter) Report(err error) {
	m.Called(err)
}

type MockSessionPusher struct {
	mock.Mock
}

func (m *MockSessionPusher) PushToSession(ctx context.Context, connectionId, event string, payload any) error {
	args := m.Called(ctx, connectionId, event, payload)
	return args.Error(0)
}
