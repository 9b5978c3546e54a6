package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/minchat/minchat/internal/testutil"
	"github.com/minchat/minchat/internal/types"
)

func newTestGateway(t *testing.T) *Gateway {
	return NewGateway(testutil.TestLogger(t), nil, &MockErrorReporter{})
}

func TestPushToSession_UnknownConnection(t *testing.T) {
	gateway := newTestGateway(t)

	err := gateway.PushToSession(context.Background(), "nope", EventReceiveMessage, MessagePayload{})
	assert.Error(t, err, "expected push to unknown session to fail")
}

func TestPushToSession_QueuesEvent(t *testing.T) {
	gateway := newTestGateway(t)

	client := newClient(types.User{Id: 1, EmailAddress: "a@x.com"}, "c1", nil, gateway, testutil.TestLogger(t))
	gateway.addClient(client)

	payload := MessagePayload{MessageId: 7, From: "b@x.com", Content: "hi"}
	err := gateway.PushToSession(context.Background(), "c1", EventReceiveMessage, payload)
	assert.NoError(t, err)

	select {
	case ev := <-client.send:
		assert.Equal(t, EventReceiveMessage, ev.Event)
		assert.Equal(t, payload, ev.Data)
	default:
		t.Fatal("expected event on send channel")
	}
}

func TestPushToSession_FullChannelHonorsDeadline(t *testing.T) {
	gateway := newTestGateway(t)

	client := newClient(types.User{Id: 1, EmailAddress: "a@x.com"}, "c1", nil, gateway, testutil.TestLogger(t))
	gateway.addClient(client)

	for i := 0; i < cap(client.send); i++ {
		client.send <- &ServerEvent{Event: EventReceiveMessage}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := gateway.PushToSession(ctx, "c1", EventReceiveMessage, MessagePayload{})
	assert.ErrorIs(t, err, context.DeadlineExceeded, "expected full channel push to time out")
}

func TestPushToSession_StoppedClient(t *testing.T) {
	gateway := newTestGateway(t)

	client := newClient(types.User{Id: 1, EmailAddress: "a@x.com"}, "c1", nil, gateway, testutil.TestLogger(t))
	gateway.addClient(client)

	for i := 0; i < cap(client.send); i++ {
		client.send <- &ServerEvent{Event: EventReceiveMessage}
	}
	client.stopClient()

	err := gateway.PushToSession(context.Background(), "c1", EventReceiveMessage, MessagePayload{})
	assert.Error(t, err, "expected push to a closing session to fail")
}

func TestRemoveClient(t *testing.T) {
	gateway := newTestGateway(t)

	client := newClient(types.User{Id: 1, EmailAddress: "a@x.com"}, "c1", nil, gateway, testutil.TestLogger(t))
	gateway.addClient(client)
	gateway.removeClient(client)

	err := gateway.PushToSession(context.Background(), "c1", EventReceiveMessage, MessagePayload{})
	assert.Error(t, err, "expected removed session to be unreachable")
}
