package service

import (
	"testing"
	"time"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	shortGrace = 20 * time.Millisecond
	waitFor    = time.Second
	tick       = 5 * time.Millisecond
)

func newGraceFixture(t *testing.T) (*RoomRegistry, *GracePeriodManager, *entity.Room) {
	t.Helper()

	registry := NewRoomRegistry(newTestLogger())
	manager := NewGracePeriodManager(newTestLogger(), registry)
	t.Cleanup(manager.Stop)

	room, err := registry.Create("p1")
	require.NoError(t, err)

	return registry, manager, room
}

func TestGracePeriodManager_Expiry(t *testing.T) {
	// Given: a room with an armed timer and an expiry hook
	registry, manager, room := newGraceFixture(t)

	expired := make(chan string, 1)
	manager.OnExpire(func(room *entity.Room) { expired <- room.ID })

	// When: the grace period runs out
	manager.Schedule(room.ID, shortGrace)

	// Then: the room is removed and closed, the hook runs and the timer entry is gone
	select {
	case id := <-expired:
		assert.Equal(t, room.ID, id)
	case <-time.After(waitFor):
		t.Fatal("room was not expired")
	}

	_, err := registry.Get(room.ID)
	require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	assert.Equal(t, 0, manager.Pending())

	room.Mu.Lock()
	assert.True(t, room.IsClosed())
	room.Mu.Unlock()
}

func TestGracePeriodManager_Cancel(t *testing.T) {
	t.Run("Cancelled timer never deletes the room", func(t *testing.T) {
		registry, manager, room := newGraceFixture(t)

		manager.Schedule(room.ID, shortGrace)
		assert.True(t, manager.Cancel(room.ID))

		time.Sleep(3 * shortGrace)

		_, err := registry.Get(room.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, manager.Pending())
	})

	t.Run("Cancel without a timer is a no-op", func(t *testing.T) {
		_, manager, room := newGraceFixture(t)

		assert.False(t, manager.Cancel(room.ID))
	})

	t.Run("Cancel under the room lock wins over a due timer", func(t *testing.T) {
		// Given: the timer fires while the room lock is held
		registry, manager, room := newGraceFixture(t)

		room.Mu.Lock()
		manager.Schedule(room.ID, time.Millisecond)
		time.Sleep(2 * shortGrace)

		// When: the lock holder cancels before releasing
		cancelled := manager.Cancel(room.ID)
		room.Mu.Unlock()

		// Then: the cancel took effect and the expiry is discarded
		assert.True(t, cancelled)
		time.Sleep(shortGrace)

		_, err := registry.Get(room.ID)
		require.NoError(t, err)
	})
}

func TestGracePeriodManager_ScheduleSupersedes(t *testing.T) {
	// Given: a short timer
	registry, manager, room := newGraceFixture(t)
	manager.Schedule(room.ID, shortGrace)

	// When: it is re-armed with a long period
	manager.Schedule(room.ID, time.Hour)

	// Then: only one timer is pending and the room survives the first deadline
	assert.Equal(t, 1, manager.Pending())
	time.Sleep(3 * shortGrace)

	_, err := registry.Get(room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, manager.Pending())
}

func TestGracePeriodManager_RoomAlreadyGone(t *testing.T) {
	// Given: a room removed before its timer fires
	registry, manager, room := newGraceFixture(t)
	called := false
	manager.OnExpire(func(*entity.Room) { called = true })

	manager.Schedule(room.ID, shortGrace)
	registry.Delete(room.ID)

	// Then: the timer entry is cleaned up without calling the hook

	require.Eventually(t, func() bool { return manager.Pending() == 0 }, waitFor, tick)
	assert.False(t, called)
}

func TestGracePeriodManager_Stop(t *testing.T) {
	registry, manager, room := newGraceFixture(t)
	manager.Schedule(room.ID, shortGrace)

	manager.Stop()
	time.Sleep(3 * shortGrace)

	assert.Equal(t, 0, manager.Pending())
	_, err := registry.Get(room.ID)
	require.NoError(t, err)
}
