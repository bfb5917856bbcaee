package service

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRoomRegistry_Create(t *testing.T) {
	t.Run("Creates a waiting room owned by the creator", func(t *testing.T) {
		registry := NewRoomRegistry(newTestLogger())

		room, err := registry.Create("p1")

		require.NoError(t, err)
		assert.Len(t, room.ID, 6)
		assert.Equal(t, entity.MarkX, room.MarkOf("p1"))
		assert.Equal(t, entity.StatusWaiting, room.Status())
		assert.Equal(t, 1, registry.Count())
	})

	t.Run("Retries on id collision", func(t *testing.T) {
		// Given: a generator that repeats an id already in use
		registry := NewRoomRegistry(newTestLogger())
		ids := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
		registry.generateID = func() (string, error) {
			id := ids[0]
			ids = ids[1:]
			return id, nil
		}

		first, err := registry.Create("p1")
		require.NoError(t, err)

		// When: a second room is created
		second, err := registry.Create("p2")

		// Then: it gets the next free id
		require.NoError(t, err)
		assert.Equal(t, "AAAAAA", first.ID)
		assert.Equal(t, "BBBBBB", second.ID)
	})

	t.Run("Gives up when no free id is found", func(t *testing.T) {
		registry := NewRoomRegistry(newTestLogger(), WithRoomIDGenerator(func() (string, error) {
			return "AAAAAA", nil
		}))

		_, err := registry.Create("p1")
		require.NoError(t, err)

		_, err = registry.Create("p2")
		require.ErrorIs(t, err, apperror.ErrRoomIDSpace)
	})

	t.Run("Propagates generator failures", func(t *testing.T) {
		registry := NewRoomRegistry(newTestLogger())
		registry.generateID = func() (string, error) { return "", errors.New("entropy exhausted") }

		_, err := registry.Create("p1")

		require.Error(t, err)
		assert.Equal(t, 0, registry.Count())
	})
}

func TestRoomRegistry_GetAndDelete(t *testing.T) {
	registry := NewRoomRegistry(newTestLogger())
	room, err := registry.Create("p1")
	require.NoError(t, err)

	found, err := registry.Get(room.ID)
	require.NoError(t, err)
	assert.Same(t, room, found)

	assert.True(t, registry.Delete(room.ID))
	assert.False(t, registry.Delete(room.ID))

	_, err = registry.Get(room.ID)
	require.ErrorIs(t, err, apperror.ErrRoomNotFound)
}

func TestRoomRegistry_FindByPlayer(t *testing.T) {
	registry := NewRoomRegistry(newTestLogger())
	first, err := registry.Create("p1")
	require.NoError(t, err)
	second, err := registry.Create("p2")
	require.NoError(t, err)

	second.Mu.Lock()
	_, err = second.Join("p3")
	second.Mu.Unlock()
	require.NoError(t, err)

	t.Run("Finds the room of each participant", func(t *testing.T) {
		found, err := registry.FindByPlayer("p1")
		require.NoError(t, err)
		assert.Same(t, first, found)

		found, err = registry.FindByPlayer("p3")
		require.NoError(t, err)
		assert.Same(t, second, found)
	})

	t.Run("Unknown players are not found", func(t *testing.T) {
		_, err := registry.FindByPlayer("nobody")
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Closed rooms are skipped", func(t *testing.T) {
		first.Mu.Lock()
		first.Close()
		first.Mu.Unlock()

		_, err := registry.FindByPlayer("p1")
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestRoomRegistry_ConcurrentCreate(t *testing.T) {
	registry := NewRoomRegistry(newTestLogger())

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := registry.Create(string(rune('a' + i%26)))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, registry.Count())
	assert.Len(t, registry.IDs(), 50)
	assert.IsIncreasing(t, registry.IDs())
}
