package chat

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/minchat/minchat/internal/stats"
	"github.com/minchat/minchat/internal/types"
)

// defaultPushTimeout bounds a single push attempt. A slow or wedged
// session is treated the same as an offline one.
const defaultPushTimeout = 5 * time.Second

// DeliveryReport is the result of a successful send: the durable
// record plus, for observability only, how many recipients received a
// live push and how many were offline or unreachable.
type DeliveryReport struct {
	Message   types.Message `json:"message"`
	Delivered int           `json:"delivered"`
	Offline   int           `json:"offline"`
}

// Engine authorizes, persists, and fans out messages. The durable
// write is the source of truth: a send that persists but reaches no
// live session is still a success, and a send that fails to persist
// pushes to no one.
type Engine struct {
	log         *log.Logger
	registry    *Registry
	ids         IdentityResolver
	groups      MembershipOracle
	store       MessageStore
	pusher      SessionPusher
	reporter    ErrorReporter
	stats       stats.StatsProvider
	pushTimeout time.Duration
}

func NewEngine(
	logger *log.Logger,
	registry *Registry,
	ids IdentityResolver,
	groups MembershipOracle,
	store MessageStore,
	pusher SessionPusher,
	reporter ErrorReporter,
	su stats.StatsProvider,
) *Engine {
	for _, name := range []string{StatMessagesSent, StatLivePushes, StatDeliverySkips, StatPushErrors} {
		su.RegisterMetric(name)
	}

	return &Engine{
		log:         logger,
		registry:    registry,
		ids:         ids,
		groups:      groups,
		store:       store,
		pusher:      pusher,
		reporter:    reporter,
		stats:       su,
		pushTimeout: defaultPushTimeout,
	}
}

// SendDirect persists a direct message and pushes it to the receiver's
// live session if one exists. An offline receiver is not an error; the
// message surfaces on their next history fetch.
func (e *Engine) SendDirect(ctx context.Context, senderIdentity string, senderId int, receiverIdentity, content string) (*DeliveryReport, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("message content is required")
	}
	if receiverIdentity == "" {
		return nil, NewValidationError("receiver is required")
	}

	receiverId, err := e.ids.ResolveNumericId(ctx, receiverIdentity)
	if err != nil {
		return nil, err
	}

	msg, err := e.store.SaveDirect(ctx, senderId, receiverId, content)
	if err != nil {
		storeErr := NewStoreError(err)
		e.reporter.Report(storeErr)
		return nil, storeErr
	}
	e.stats.Incr(StatMessagesSent)

	report := &DeliveryReport{Message: msg}
	payload := MessagePayload{
		MessageId: msg.Id,
		From:      senderIdentity,
		To:        receiverIdentity,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}

	if e.pushToIdentity(ctx, receiverIdentity, payload) {
		report.Delivered = 1
	} else {
		report.Offline = 1
	}

	return report, nil
}

// SendGroup persists a group message and fans it out to every live
// member except the sender. The sender must belong to the effective
// member set, which is the explicit member list united with the
// creator. Fan-out is per-recipient: one unreachable member never
// blocks delivery to the rest.
func (e *Engine) SendGroup(ctx context.Context, senderIdentity string, senderId, groupId int, content string, fileUrl, contentType *string) (*DeliveryReport, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("message content is required")
	}
	if groupId <= 0 {
		return nil, NewValidationError("invalid group id")
	}

	group, err := e.groups.GetEffectiveMembers(ctx, groupId)
	if err != nil {
		return nil, err
	}

	members := lo.Uniq(append(append([]string{}, group.Members...), group.CreatedBy))
	if !lo.Contains(members, senderIdentity) {
		return nil, NewAuthorizationError("sender is not a member of the group")
	}

	msg, err := e.store.SaveGroup(ctx, senderId, groupId, content, fileUrl, contentType)
	if err != nil {
		storeErr := NewStoreError(err)
		e.reporter.Report(storeErr)
		return nil, storeErr
	}
	e.stats.Incr(StatMessagesSent)

	payload := MessagePayload{
		MessageId: msg.Id,
		From:      senderIdentity,
		GroupId:   groupId,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}
	if fileUrl != nil {
		payload.FileUrl = *fileUrl
	}
	if contentType != nil {
		payload.ContentType = *contentType
	}

	targets := lo.Without(members, senderIdentity)
	results := make([]bool, len(targets))

	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, identity string) {
			defer wg.Done()
			results[i] = e.pushToIdentity(ctx, identity, payload)
		}(i, target)
	}
	wg.Wait()

	report := &DeliveryReport{
		Message:   msg,
		Delivered: lo.Count(results, true),
		Offline:   lo.Count(results, false),
	}
	e.log.Printf("group %d message %d delivered live to %d of %d members",
		groupId, msg.Id, report.Delivered, len(targets))

	return report, nil
}

// pushToIdentity resolves identity's live session and pushes payload
// to it with a bounded timeout. It reports whether the recipient
// actually received a live push; offline and push failure are both
// delivery skips, never errors.
func (e *Engine) pushToIdentity(ctx context.Context, identity string, payload MessagePayload) bool {
	connectionId, ok := e.registry.Lookup(identity)
	if !ok {
		e.stats.Incr(StatDeliverySkips)
		return false
	}

	pushCtx, cancel := context.WithTimeout(ctx, e.pushTimeout)
	defer cancel()

	if err := e.pusher.PushToSession(pushCtx, connectionId, EventReceiveMessage, payload); err != nil {
		e.log.Printf("push to %q (session %q) failed: %v", identity, connectionId, err)
		e.stats.Incr(StatPushErrors)
		e.stats.Incr(StatDeliverySkips)
		return false
	}

	e.stats.Incr(StatLivePushes)
	return true
}
