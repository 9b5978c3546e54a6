package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/minchat/minchat/internal/chat"
	"github.com/minchat/minchat/internal/types"
)

// ChatAdapter implements the realtime subsystem's collaborator
// interfaces (IdentityResolver, MembershipOracle, MessageStore) on top
// of the repository, translating sql.ErrNoRows into the chat error
// taxonomy.
type ChatAdapter struct {
	repo ChatRepository
}

func NewChatAdapter(repo ChatRepository) *ChatAdapter {
	return &ChatAdapter{repo: repo}
}

func (a *ChatAdapter) ResolveNumericId(_ context.Context, identity string) (int, error) {
	user, err := a.repo.GetAccountByEmail(identity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, chat.NewNotFoundError("receiver not found")
		}
		return 0, chat.NewStoreError(err)
	}

	return user.Id, nil
}

func (a *ChatAdapter) ResolveIdentity(_ context.Context, numericId int) (string, error) {
	user, err := a.repo.GetAccountById(numericId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", chat.NewNotFoundError("user not found")
		}
		return "", chat.NewStoreError(err)
	}

	return user.EmailAddress, nil
}

func (a *ChatAdapter) GetEffectiveMembers(_ context.Context, groupId int) (types.Group, error) {
	group, err := a.repo.GetGroupWithMembers(groupId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Group{}, chat.NewNotFoundError("group not found")
		}
		return types.Group{}, chat.NewStoreError(err)
	}

	return types.Group{
		Id:        group.Id,
		Name:      group.Name,
		CreatedBy: group.CreatorEmail,
		Members:   group.MemberEmails,
		CreatedAt: group.CreatedAt,
		UpdatedAt: group.UpdatedAt,
	}, nil
}

func (a *ChatAdapter) IsMember(ctx context.Context, identity string, groupId int) (bool, error) {
	group, err := a.GetEffectiveMembers(ctx, groupId)
	if err != nil {
		return false, err
	}

	if group.CreatedBy == identity {
		return true, nil
	}
	for _, member := range group.Members {
		if member == identity {
			return true, nil
		}
	}

	return false, nil
}

func (a *ChatAdapter) SaveDirect(_ context.Context, senderId, receiverId int, content string) (types.Message, error) {
	msg, err := a.repo.CreateDirectMessage(senderId, receiverId, content)
	if err != nil {
		return types.Message{}, err
	}

	return toTypesMessage(msg), nil
}

func (a *ChatAdapter) SaveGroup(_ context.Context, senderId, groupId int, content string, fileUrl, contentType *string) (types.Message, error) {
	msg, err := a.repo.CreateGroupMessage(senderId, groupId, content, fileUrl, contentType)
	if err != nil {
		return types.Message{}, err
	}

	return toTypesMessage(msg), nil
}

func toTypesMessage(msg Message) types.Message {
	return types.Message{
		Id:          msg.Id,
		SenderId:    msg.SenderId,
		ReceiverId:  msg.ReceiverId,
		GroupId:     msg.GroupId,
		Content:     msg.Content,
		FileUrl:     msg.FileUrl,
		ContentType: msg.ContentType,
		Timestamp:   msg.CreatedAt,
	}
}
