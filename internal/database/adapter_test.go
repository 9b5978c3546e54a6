package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/minchat/minchat/internal/chat"
)

func TestResolveNumericId(t *testing.T) {
	tcases := []struct {
		name         string
		mockUser     User
		mockErr      error
		expectedId   int
		expectedKind chat.ErrorKind
	}{
		{
			name:       "resolves a known identity",
			mockUser:   User{Id: 2, EmailAddress: "bob@example.com"},
			expectedId: 2,
		},
		{
			name:         "maps missing row to not found",
			mockErr:      sql.ErrNoRows,
			expectedKind: chat.KindNotFound,
		},
		{
			name:         "maps other errors to store",
			mockErr:      errors.New("connection refused"),
			expectedKind: chat.KindStore,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockChatRepository{}
			defer repo.AssertExpectations(t)
			repo.On("GetAccountByEmail", "bob@example.com").Return(tc.mockUser, tc.mockErr).Once()

			adapter := NewChatAdapter(repo)
			id, err := adapter.ResolveNumericId(context.Background(), "bob@example.com")

			if tc.mockErr != nil {
				assert.Equal(t, tc.expectedKind, chat.KindOf(err))
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expectedId, id)
		})
	}
}

func TestGetEffectiveMembers(t *testing.T) {
	t.Run("maps the group row", func(t *testing.T) {
		repo := &MockChatRepository{}
		defer repo.AssertExpectations(t)

		now := time.Now().UTC()
		repo.On("GetGroupWithMembers", 5).Return(&Group{
			Id:           5,
			Name:         "general",
			CreatedBy:    1,
			CreatorEmail: "alice@example.com",
			MemberEmails: []string{"bob@example.com"},
			CreatedAt:    now,
		}, nil).Once()

		adapter := NewChatAdapter(repo)
		group, err := adapter.GetEffectiveMembers(context.Background(), 5)

		assert.NoError(t, err)
		assert.Equal(t, 5, group.Id)
		assert.Equal(t, "alice@example.com", group.CreatedBy)
		assert.Equal(t, []string{"bob@example.com"}, group.Members)
	})

	t.Run("maps missing group to not found", func(t *testing.T) {
		repo := &MockChatRepository{}
		defer repo.AssertExpectations(t)
		repo.On("GetGroupWithMembers", 5).Return((*Group)(nil), sql.ErrNoRows).Once()

		adapter := NewChatAdapter(repo)
		_, err := adapter.GetEffectiveMembers(context.Background(), 5)
		assert.Equal(t, chat.KindNotFound, chat.KindOf(err))
	})
}

func TestIsMember(t *testing.T) {
	group := &Group{
		Id:           5,
		CreatedBy:    1,
		CreatorEmail: "alice@example.com",
		MemberEmails: []string{"bob@example.com"},
	}

	tcases := []struct {
		name     string
		identity string
		expected bool
	}{
		{"explicit member", "bob@example.com", true},
		{"creator without member row", "alice@example.com", true},
		{"outsider", "mallory@example.com", false},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &MockChatRepository{}
			defer repo.AssertExpectations(t)
			repo.On("GetGroupWithMembers", 5).Return(group, nil).Once()

			adapter := NewChatAdapter(repo)
			isMember, err := adapter.IsMember(context.Background(), tc.identity, 5)

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, isMember)
		})
	}
}

func TestSaveDirect(t *testing.T) {
	repo := &MockChatRepository{}
	defer repo.AssertExpectations(t)

	now := time.Now().UTC()
	receiverId := 2
	repo.On("CreateDirectMessage", 1, 2, "hello").Return(Message{
		Id:         9,
		SenderId:   1,
		ReceiverId: &receiverId,
		Content:    "hello",
		CreatedAt:  now,
	}, nil).Once()

	adapter := NewChatAdapter(repo)
	msg, err := adapter.SaveDirect(context.Background(), 1, 2, "hello")

	assert.NoError(t, err)
	assert.Equal(t, 9, msg.Id)
	assert.Equal(t, &receiverId, msg.ReceiverId)
	assert.Equal(t, now, msg.Timestamp)
}
