package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/minchat/minchat/internal/database"
	"github.com/minchat/minchat/internal/types"
)

type SendMessageRequest struct {
	Receiver string `json:"receiver" validate:"required,email"`
	Content  string `json:"content" validate:"required"`
}

type EditMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type RenameGroupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type AddMemberRequest struct {
	UserId     int    `json:"user_id" validate:"required"`
	AccessType string `json:"access_type" validate:"omitempty,oneof=all days"`
	Days       *int   `json:"days" validate:"omitempty,min=1"`
}

type UpdateMemberAccessRequest struct {
	AccessType string `json:"access_type" validate:"required,oneof=all days"`
	Days       *int   `json:"days" validate:"omitempty,min=1"`
}

func pathInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(r.PathValue(name))
}

// historyQuery parses the shared before/count/sort paging parameters.
func historyQuery(r *http.Request) (time.Time, int, string, error) {
	q := r.URL.Query()

	before := time.Now().UTC()
	if v := q.Get("before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, 0, "", err
		}
		before = t
	}

	count := 20
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return time.Time{}, 0, "", errors.New("invalid count")
		}
		count = n
	}

	sort := q.Get("sort")
	if sort == "" {
		sort = "desc"
	}
	if sort != "asc" && sort != "desc" {
		return time.Time{}, 0, "", errors.New("invalid sort")
	}

	return before, count, sort, nil
}

// requester loads the authenticated user's account from the request
// context, bridging the numeric token claim to the identity the
// realtime core keys on.
func (s *App) requester(r *http.Request) (database.User, *ApiError) {
	userId, ok := UserId(r.Context())
	if !ok {
		return database.User{}, NewUnauthorizedError()
	}

	user, err := s.db.GetAccountById(userId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return database.User{}, NewUnauthorizedError()
		}
		return database.User{}, NewInternalServerError(err)
	}

	return user, nil
}

func (s *App) listUsers(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	users, err := s.db.ListAccounts(userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	resp := make([]types.User, 0, len(users))
	for _, u := range users {
		resp = append(resp, types.User{
			Id:           u.Id,
			Username:     u.Username,
			EmailAddress: u.EmailAddress,
		})
	}

	s.writeJson(w, http.StatusOK, resp)
}

func (s *App) sendMessage(w http.ResponseWriter, r *http.Request) {
	sender, apiErr := s.requester(r)
	if apiErr != nil {
		s.writeJson(w, apiErr.StatusCode, apiErr)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.validate.Struct(req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	report, err := s.engine.SendDirect(r.Context(), sender.EmailAddress, sender.Id, req.Receiver, req.Content)
	if err != nil {
		errResp := fromChatError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, report)
}

func (s *App) editMessage(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	messageId, err := pathInt(r, "id")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req EditMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msg, err := s.db.GetMessageById(messageId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if msg.SenderId != userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	updated, err := s.db.UpdateMessageContent(messageId, req.Content)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, toMessageView(updated))
}

func (s *App) deleteMessage(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	messageId, err := pathInt(r, "id")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msg, err := s.db.GetMessageById(messageId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if msg.SenderId != userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteMessage(messageId); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, nil)
}

func (s *App) getConversation(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	otherUserId, err := pathInt(r, "userId")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	before, count, sort, err := historyQuery(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages, err := s.db.GetConversation(userId, otherUserId, before, count, sort)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, toMessageViews(messages))
}

func (s *App) createGroup(w http.ResponseWriter, r *http.Request) {
	creator, apiErr := s.requester(r)
	if apiErr != nil {
		s.writeJson(w, apiErr.StatusCode, apiErr)
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	exists, err := s.db.GroupNameExists(req.Name, 0)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if exists {
		s.writeJson(w, http.StatusConflict, &ApiError{
			StatusCode: http.StatusConflict,
			Message:    "group name already exists",
		})
		return
	}

	group, err := s.db.CreateGroup(req.Name, creator.Id)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, types.Group{
		Id:        group.Id,
		Name:      group.Name,
		CreatedBy: creator.EmailAddress,
		Members:   []string{creator.EmailAddress},
		CreatedAt: group.CreatedAt,
	})
}

func (s *App) listGroups(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	groups, err := s.db.ListGroupsForUser(userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	resp := make([]types.Group, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, toGroupView(g))
	}

	s.writeJson(w, http.StatusOK, resp)
}

func (s *App) renameGroup(w http.ResponseWriter, r *http.Request) {
	groupId, err := pathInt(r, "id")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req RenameGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	exists, err := s.db.GroupNameExists(req.Name, groupId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if exists {
		s.writeJson(w, http.StatusConflict, &ApiError{
			StatusCode: http.StatusConflict,
			Message:    "group name already exists",
		})
		return
	}

	group, err := s.db.UpdateGroupName(groupId, req.Name)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]any{
		"id":   group.Id,
		"name": group.Name,
	})
}

func (s *App) deleteGroup(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	groupId, err := pathInt(r, "id")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	group, err := s.db.GetGroupWithMembers(groupId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// only the creator may delete the group
	if group.CreatedBy != userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteGroup(groupId); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, nil)
}

func (s *App) addMember(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	groupId, err := pathInt(r, "id")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	group, err := s.db.GetGroupWithMembers(groupId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if group.CreatedBy != userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	accessType := req.AccessType
	if accessType == "" {
		accessType = "all"
	}

	if err := s.db.AddGroupMember(database.MemberParams{
		GroupId:    groupId,
		UserId:     req.UserId,
		AccessType: accessType,
		Days:       req.Days,
	}); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, nil)
}

func (s *App) removeMember(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	groupId, err := pathInt(r, "id")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	memberId, err := pathInt(r, "userId")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	group, err := s.db.GetGroupWithMembers(groupId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if group.CreatedBy != userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.RemoveGroupMember(groupId, memberId); err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, nil)
}

func (s *App) updateMemberAccess(w http.ResponseWriter, r *http.Request) {
	userId, _ := UserId(r.Context())

	groupId, err := pathInt(r, "id")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	memberId, err := pathInt(r, "userId")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UpdateMemberAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	group, err := s.db.GetGroupWithMembers(groupId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if group.CreatedBy != userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.UpdateMemberAccess(database.MemberParams{
		GroupId:    groupId,
		UserId:     memberId,
		AccessType: req.AccessType,
		Days:       req.Days,
	}); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, nil)
}

func (s *App) sendGroupMessage(w http.ResponseWriter, r *http.Request) {
	sender, apiErr := s.requester(r)
	if apiErr != nil {
		s.writeJson(w, apiErr.StatusCode, apiErr)
		return
	}

	groupId, err := pathInt(r, "id")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	content, fileUrl, contentType, apiErr := s.parseGroupMessageBody(r)
	if apiErr != nil {
		s.writeJson(w, apiErr.StatusCode, apiErr)
		return
	}

	report, err := s.engine.SendGroup(r.Context(), sender.EmailAddress, sender.Id, groupId, content, fileUrl, contentType)
	if err != nil {
		errResp := fromChatError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, report)
}

func (s *App) getGroupMessages(w http.ResponseWriter, r *http.Request) {
	requester, apiErr := s.requester(r)
	if apiErr != nil {
		s.writeJson(w, apiErr.StatusCode, apiErr)
		return
	}

	groupId, err := pathInt(r, "id")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	before, count, sort, err := historyQuery(r)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	isMember, err := s.oracle.IsMember(r.Context(), requester.EmailAddress, groupId)
	if err != nil {
		errResp := fromChatError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	if !isMember {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages, err := s.db.GetGroupMessages(groupId, before, count, sort)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, toMessageViews(messages))
}

func (s *App) listLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		limit = n
	}

	logs, err := s.db.ListErrorLogs(limit)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, logs)
}

func toGroupView(g *database.Group) types.Group {
	return types.Group{
		Id:        g.Id,
		Name:      g.Name,
		CreatedBy: g.CreatorEmail,
		// effective member set: explicit members united with the creator
		Members:   lo.Uniq(append(append([]string{}, g.MemberEmails...), g.CreatorEmail)),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func toMessageView(m database.Message) types.Message {
	return types.Message{
		Id:          m.Id,
		SenderId:    m.SenderId,
		ReceiverId:  m.ReceiverId,
		GroupId:     m.GroupId,
		Content:     m.Content,
		FileUrl:     m.FileUrl,
		ContentType: m.ContentType,
		Timestamp:   m.CreatedAt,
	}
}

func toMessageViews(msgs []database.Message) []types.Message {
	views := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, toMessageView(m))
	}

	return views
}
