package database

import (
	"database/sql"
	"fmt"
	"time"
)

func (db *PgChatRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO accounts (username, email, password_hash, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, username, email",
		params.Username,
		params.EmailAddress,
		params.PasswordHash,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.EmailAddress,
	)

	return u, err
}

func (db *PgChatRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, created_at, updated_at FROM accounts "+
			"WHERE id = $1 LIMIT 1",
		accountId,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	return user, err
}

func (db *PgChatRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, password_hash FROM accounts "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.EmailAddress,
		&user.PasswordHash,
	)

	return user, err
}

func (db *PgChatRepository) ListAccounts(excludeId int) ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT id, username, email FROM accounts WHERE id != $1 ORDER BY username",
		excludeId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users = make([]User, 0)
	for rows.Next() {
		var u User
		if err = rows.Scan(&u.Id, &u.Username, &u.EmailAddress); err != nil {
			break
		}

		users = append(users, u)
	}

	return users, err
}

func (db *PgChatRepository) CreateGroup(name string, creatorId int) (Group, error) {
	res := db.conn.QueryRow(
		"INSERT INTO groups (name, created_by, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $3) RETURNING id, name, created_by, created_at, updated_at",
		name,
		creatorId,
		time.Now().UTC(),
	)

	var g Group
	err := res.Scan(
		&g.Id,
		&g.Name,
		&g.CreatedBy,
		&g.CreatedAt,
		&g.UpdatedAt,
	)

	return g, err
}

// GetGroupWithMembers loads a group, its creator's email, and the
// explicit member emails in one query. The creator may legitimately
// be absent from the member rows.
func (db *PgChatRepository) GetGroupWithMembers(groupId int) (*Group, error) {
	query := `
		SELECT
				g.id,
				g.name,
				g.created_by,
				c.email AS creator_email,
				g.created_at,
				g.updated_at,
				a.email AS member_email
		FROM groups g
		JOIN accounts c ON g.created_by = c.id
		LEFT JOIN group_members m ON g.id = m.group_id
		LEFT JOIN accounts a ON m.user_id = a.id
		WHERE g.id = $1;
`

	rows, err := db.conn.Query(query, groupId)
	if err != nil {
		return nil, fmt.Errorf("fetch group with members: %w", err)
	}
	defer rows.Close()

	var group *Group
	for rows.Next() {
		var (
			id           int
			name         string
			createdBy    int
			creatorEmail string
			createdAt    time.Time
			updatedAt    time.Time
			memberEmail  sql.NullString
		)

		err := rows.Scan(
			&id,
			&name,
			&createdBy,
			&creatorEmail,
			&createdAt,
			&updatedAt,
			&memberEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		if group == nil {
			group = &Group{
				Id:           id,
				Name:         name,
				CreatedBy:    createdBy,
				CreatorEmail: creatorEmail,
				CreatedAt:    createdAt,
				UpdatedAt:    updatedAt,
				MemberEmails: make([]string, 0),
			}
		}

		if memberEmail.Valid {
			group.MemberEmails = append(group.MemberEmails, memberEmail.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if group == nil {
		return nil, sql.ErrNoRows
	}

	return group, nil
}

func (db *PgChatRepository) GroupNameExists(name string, excludeId int) (bool, error) {
	row := db.conn.QueryRow(
		"SELECT id FROM groups WHERE name = $1 AND id != $2 LIMIT 1",
		name,
		excludeId,
	)

	var id int
	err := row.Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}

	return err == nil, err
}

func (db *PgChatRepository) UpdateGroupName(groupId int, name string) (Group, error) {
	res := db.conn.QueryRow(
		"UPDATE groups SET name = $2, updated_at = $3 "+
			"WHERE id = $1 RETURNING id, name, created_by, created_at, updated_at",
		groupId,
		name,
		time.Now().UTC(),
	)

	var g Group
	err := res.Scan(
		&g.Id,
		&g.Name,
		&g.CreatedBy,
		&g.CreatedAt,
		&g.UpdatedAt,
	)

	return g, err
}

func (db *PgChatRepository) DeleteGroup(groupId int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec("DELETE FROM group_members WHERE group_id = $1", groupId)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM messages WHERE group_id = $1", groupId)
	if err != nil {
		return err
	}

	_, err = tx.Exec("DELETE FROM groups WHERE id = $1", groupId)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (db *PgChatRepository) ListGroupsForUser(userId int) ([]*Group, error) {
	rows, err := db.conn.Query(
		"SELECT DISTINCT g.id FROM groups g "+
			"LEFT JOIN group_members m ON g.id = m.group_id "+
			"WHERE g.created_by = $1 OR m.user_id = $1",
		userId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	groups := make([]*Group, 0, len(ids))
	for _, id := range ids {
		group, err := db.GetGroupWithMembers(id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}

	return groups, nil
}

func (db *PgChatRepository) AddGroupMember(params MemberParams) error {
	_, err := db.conn.Exec(
		"INSERT INTO group_members (group_id, user_id, access_type, days, created_at) "+
			"VALUES ($1, $2, $3, $4, $5)",
		params.GroupId,
		params.UserId,
		params.AccessType,
		params.Days,
		time.Now().UTC(),
	)

	return err
}

func (db *PgChatRepository) RemoveGroupMember(groupId, userId int) error {
	_, err := db.conn.Exec(
		"DELETE FROM group_members WHERE group_id = $1 AND user_id = $2",
		groupId,
		userId,
	)

	return err
}

func (db *PgChatRepository) UpdateMemberAccess(params MemberParams) error {
	res, err := db.conn.Exec(
		"UPDATE group_members SET access_type = $3, days = $4 "+
			"WHERE group_id = $1 AND user_id = $2",
		params.GroupId,
		params.UserId,
		params.AccessType,
		params.Days,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (db *PgChatRepository) CreateDirectMessage(senderId, receiverId int, content string) (Message, error) {
	res := db.conn.QueryRow(
		"INSERT INTO messages (sender_id, receiver_id, content, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING id, sender_id, receiver_id, content, created_at",
		senderId,
		receiverId,
		content,
		time.Now().UTC(),
	)

	var msg Message
	err := res.Scan(
		&msg.Id,
		&msg.SenderId,
		&msg.ReceiverId,
		&msg.Content,
		&msg.CreatedAt,
	)

	return msg, err
}

func (db *PgChatRepository) CreateGroupMessage(senderId, groupId int, content string, fileUrl, contentType *string) (Message, error) {
	res := db.conn.QueryRow(
		"INSERT INTO messages (sender_id, group_id, content, file_url, content_type, created_at, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id, sender_id, group_id, content, file_url, content_type, created_at",
		senderId,
		groupId,
		content,
		fileUrl,
		contentType,
		time.Now().UTC(),
	)

	var msg Message
	err := res.Scan(
		&msg.Id,
		&msg.SenderId,
		&msg.GroupId,
		&msg.Content,
		&msg.FileUrl,
		&msg.ContentType,
		&msg.CreatedAt,
	)

	return msg, err
}

func (db *PgChatRepository) GetMessageById(messageId int) (Message, error) {
	row := db.conn.QueryRow(
		"SELECT id, sender_id, receiver_id, group_id, content, file_url, content_type, created_at "+
			"FROM messages WHERE id = $1 LIMIT 1",
		messageId,
	)

	var msg Message
	err := row.Scan(
		&msg.Id,
		&msg.SenderId,
		&msg.ReceiverId,
		&msg.GroupId,
		&msg.Content,
		&msg.FileUrl,
		&msg.ContentType,
		&msg.CreatedAt,
	)

	return msg, err
}

func (db *PgChatRepository) UpdateMessageContent(messageId int, content string) (Message, error) {
	res := db.conn.QueryRow(
		"UPDATE messages SET content = $2, updated_at = $3 "+
			"WHERE id = $1 RETURNING id, sender_id, receiver_id, group_id, content, created_at",
		messageId,
		content,
		time.Now().UTC(),
	)

	var msg Message
	err := res.Scan(
		&msg.Id,
		&msg.SenderId,
		&msg.ReceiverId,
		&msg.GroupId,
		&msg.Content,
		&msg.CreatedAt,
	)

	return msg, err
}

func (db *PgChatRepository) DeleteMessage(messageId int) error {
	_, err := db.conn.Exec("DELETE FROM messages WHERE id = $1", messageId)

	return err
}

func (db *PgChatRepository) GetConversation(userId, otherUserId int, before time.Time, count int, sort string) ([]Message, error) {
	if count <= 0 {
		count = 20
	}

	order := "DESC"
	if sort == "asc" {
		order = "ASC"
	}

	rows, err := db.conn.Query(
		"SELECT id, sender_id, receiver_id, content, created_at FROM messages "+
			"WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)) "+
			"AND created_at < $3 ORDER BY created_at "+order+" LIMIT $4",
		userId,
		otherUserId,
		before,
		count,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages = make([]Message, 0, count)
	for rows.Next() {
		var msg Message
		if err = rows.Scan(&msg.Id, &msg.SenderId, &msg.ReceiverId, &msg.Content, &msg.CreatedAt); err != nil {
			break
		}

		messages = append(messages, msg)
	}

	return messages, err
}

func (db *PgChatRepository) GetGroupMessages(groupId int, before time.Time, count int, sort string) ([]Message, error) {
	if count <= 0 {
		count = 20
	}

	order := "DESC"
	if sort == "asc" {
		order = "ASC"
	}

	rows, err := db.conn.Query(
		"SELECT id, sender_id, group_id, content, file_url, content_type, created_at FROM messages "+
			"WHERE group_id = $1 AND created_at < $2 ORDER BY created_at "+order+" LIMIT $3",
		groupId,
		before,
		count,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages = make([]Message, 0, count)
	for rows.Next() {
		var msg Message
		if err = rows.Scan(&msg.Id, &msg.SenderId, &msg.GroupId, &msg.Content, &msg.FileUrl, &msg.ContentType, &msg.CreatedAt); err != nil {
			break
		}

		messages = append(messages, msg)
	}

	return messages, err
}

func (db *PgChatRepository) CreateErrorLog(message string, occurredAt time.Time) error {
	_, err := db.conn.Exec(
		"INSERT INTO error_logs (message, occurred_at) VALUES ($1, $2)",
		message,
		occurredAt,
	)

	return err
}

func (db *PgChatRepository) ListErrorLogs(limit int) ([]ErrorLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.Query(
		"SELECT id, message, occurred_at FROM error_logs ORDER BY occurred_at DESC LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs = make([]ErrorLog, 0, limit)
	for rows.Next() {
		var l ErrorLog
		if err = rows.Scan(&l.Id, &l.Message, &l.OccurredAt); err != nil {
			break
		}

		logs = append(logs, l)
	}

	return logs, err
}
