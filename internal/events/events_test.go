package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEncodesPayload(t *testing.T) {
	e, err := New(RevenueRecorded, "alice", "rev-1", "Kilimani", map[string]string{"amount": "500"})
	require.NoError(t, err)
	assert.Equal(t, RevenueRecorded, e.Type)
	assert.Equal(t, "alice", e.Actor)
	assert.False(t, e.Timestamp.IsZero())
	assert.JSONEq(t, `{"amount":"500"}`, string(e.Payload))

	body, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"type":"revenue.recorded"`)
}

func TestNewWithoutPayload(t *testing.T) {
	e, err := New(ShopCreated, "root", "shop-1", "", nil)
	require.NoError(t, err)
	assert.Nil(t, e.Payload)
}

func TestNewRejectsUnencodablePayload(t *testing.T) {
	_, err := New(ShopCreated, "root", "shop-1", "", make(chan int))
	assert.Error(t, err)
}

func TestRecorderAndNop(t *testing.T) {
	ctx := context.Background()
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(ctx, Event{Type: ShopCreated}))
	assert.NoError(t, p.Close())

	rec := &Recorder{}
	require.NoError(t, rec.Publish(ctx, Event{Type: UserStatusChanged}))
	require.NoError(t, rec.Publish(ctx, Event{Type: UserRoleChanged}))
	assert.Equal(t, []Type{UserStatusChanged, UserRoleChanged}, rec.Types())
	assert.Len(t, rec.Events(), 2)
}
