package hub

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive-dev/taskhive/internal/types"
)

type fakeConn struct {
	mu       sync.Mutex
	payloads []interface{}
	failWith error
	closed   bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}

	f.payloads = append(f.payloads, v)
	return nil
}

func (f *fakeConn) SetWriteDeadline(t time.Time) error {
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return nil
}

func (f *fakeConn) received() []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]interface{}(nil), f.payloads...)
}

func uintPtr(v uint) *uint {
	return &v
}

func TestBroadcastReachesOnlyJoinedRoom(t *testing.T) {
	h := New()

	engConn := &fakeConn{}
	otherConn := &fakeConn{}

	eng := NewConnection(1, engConn)
	other := NewConnection(2, otherConn)

	h.Join(5, eng)
	h.Join(9, other)

	h.NotifyTaskCreated(types.TaskResponse{ID: 77, Title: "Ship", TeamID: uintPtr(5)})

	require.Len(t, engConn.received(), 1)
	assert.Empty(t, otherConn.received())

	payload, ok := engConn.received()[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "task:created", payload["type"])

	task, ok := payload["task"].(types.TaskResponse)
	require.True(t, ok)
	assert.Equal(t, uint(77), task.ID)
}

func TestTeamlessTaskEmitsNothing(t *testing.T) {
	h := New()

	conn := &fakeConn{}
	c := NewConnection(1, conn)
	h.Join(5, c)

	h.NotifyTaskCreated(types.TaskResponse{ID: 1, Title: "Personal"})
	h.NotifyTaskUpdated(types.TaskResponse{ID: 1, Title: "Personal"})
	h.NotifyTaskDeleted(1, nil)

	assert.Empty(t, conn.received())
}

func TestTaskDeletedPayloadCarriesCapturedIDs(t *testing.T) {
	h := New()

	conn := &fakeConn{}
	c := NewConnection(1, conn)
	h.Join(5, c)

	h.NotifyTaskDeleted(42, uintPtr(5))

	require.Len(t, conn.received(), 1)

	payload := conn.received()[0].(map[string]interface{})
	assert.Equal(t, "task:deleted", payload["type"])

	task := payload["task"].(map[string]interface{})
	assert.Equal(t, uint(42), task["id"])
	assert.Equal(t, uint(5), task["team_id"])
}

func TestLeaveStopsDelivery(t *testing.T) {
	h := New()

	conn := &fakeConn{}
	c := NewConnection(1, conn)

	h.Join(5, c)
	h.Leave(5, c)

	h.NotifyTaskUpdated(types.TaskResponse{ID: 1, TeamID: uintPtr(5)})

	assert.Empty(t, conn.received())
	assert.Equal(t, 0, h.RoomSize(5))
}

func TestDisconnectRemovesFromAllRooms(t *testing.T) {
	h := New()

	conn := &fakeConn{}
	c := NewConnection(1, conn)

	h.Join(5, c)
	h.Join(9, c)

	h.Disconnect(c)

	assert.Equal(t, 0, h.RoomSize(5))
	assert.Equal(t, 0, h.RoomSize(9))
}

func TestBroadcastPrunesFailedConnections(t *testing.T) {
	h := New()

	healthy := &fakeConn{}
	broken := &fakeConn{failWith: errors.New("write: broken pipe")}

	h.Join(5, NewConnection(1, healthy))
	h.Join(5, NewConnection(2, broken))

	h.Broadcast(5, map[string]string{"type": "task:updated"})

	assert.Len(t, healthy.received(), 1)
	assert.Equal(t, 1, h.RoomSize(5))
	assert.True(t, broken.closed)
}

func TestConnectionIDsAreUnique(t *testing.T) {
	a := NewConnection(1, &fakeConn{})
	b := NewConnection(1, &fakeConn{})

	assert.NotEqual(t, a.ID, b.ID)
}
