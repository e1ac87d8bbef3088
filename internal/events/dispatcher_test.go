package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher_Publish(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string

	d.Subscribe(EventLoginSucceeded, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.LoginName)
		return nil
	})
	d.Subscribe(EventLoginSucceeded, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.LoginName)
		return nil
	})
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error {
		t.Fatal("unrelated handler invoked")
		return nil
	})

	event := NewEvent(EventLoginSucceeded, "alice", nil)
	require.NoError(t, d.Publish(context.Background(), event))
	assert.Equal(t, []string{"first:alice", "second:alice"}, got)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestInMemoryDispatcher_JoinsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	calls := 0

	d.Subscribe(EventMemberLoggedOut, func(context.Context, Event) error { calls++; return errA })
	d.Subscribe(EventMemberLoggedOut, func(context.Context, Event) error { calls++; return nil })
	d.Subscribe(EventMemberLoggedOut, func(context.Context, Event) error { calls++; return errB })

	err := d.Publish(context.Background(), NewEvent(EventMemberLoggedOut, "alice", nil))
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, 3, calls)
}

func TestInMemoryDispatcher_NoSubscribers(t *testing.T) {
	assert.NoError(t, NewInMemoryDispatcher().Publish(context.Background(), NewEvent(EventLoginThrottled, "bob", nil)))
}

func TestInMemoryDispatcher_RecoversPanics(t *testing.T) {
	d := NewInMemoryDispatcher()
	delivered := false

	d.Subscribe(EventLoginFailed, func(context.Context, Event) error { panic("audit sink gone") })
	d.Subscribe(EventLoginFailed, func(context.Context, Event) error { delivered = true; return nil })
	d.Subscribe(EventLoginFailed, nil)

	err := d.Publish(context.Background(), NewEvent(EventLoginFailed, "alice", LoginFailedPayload{Reason: "bad_credentials"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit sink gone")
	assert.True(t, delivered)
}
