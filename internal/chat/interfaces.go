package chat

import (
	"context"

	"github.com/minchat/minchat/internal/types"
)

// IdentityResolver bridges the registry's string-keyed identities
// (email addresses) and the store's numeric foreign keys.
type IdentityResolver interface {
	ResolveNumericId(ctx context.Context, identity string) (int, error)
	ResolveIdentity(ctx context.Context, numericId int) (string, error)
}

// MembershipOracle answers group membership questions. Implementations
// return an error of kind KindNotFound for unknown groups.
type MembershipOracle interface {
	// GetEffectiveMembers returns the group with its explicit member
	// list. Callers are responsible for the creator-union rule.
	GetEffectiveMembers(ctx context.Context, groupId int) (types.Group, error)
	IsMember(ctx context.Context, identity string, groupId int) (bool, error)
}

// MessageStore durably persists messages and returns the canonical
// record with its assigned id and timestamp.
type MessageStore interface {
	SaveDirect(ctx context.Context, senderId, receiverId int, content string) (types.Message, error)
	SaveGroup(ctx context.Context, senderId, groupId int, content string, fileUrl, contentType *string) (types.Message, error)
}

// ErrorReporter records failures out of band. Report is fire-and-forget
// and must never panic or block the caller.
type ErrorReporter interface {
	Report(err error)
}

// SessionPusher delivers an event to a single live transport session.
// A returned error means that one session did not get the event; it is
// never fatal to the operation that triggered the push.
type SessionPusher interface {
	PushToSession(ctx context.Context, connectionId, event string, payload any) error
}
