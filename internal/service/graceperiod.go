package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

// DefaultGracePeriod is how long a room with a single participant is kept for the other one.
const DefaultGracePeriod = 5 * time.Minute

type roomStore interface {
	Get(roomID string) (*entity.Room, error)
	Delete(roomID string) bool
}

type graceTimer struct {
	timer      *time.Timer
	generation uint64
}

// GracePeriodManager deletes abandoned rooms once their grace period runs out.
//
// Expiry takes the room lock before claiming its timer, and Schedule/Cancel are called with the
// room lock held, so for one room a cancel and an expiry never both take effect.
type GracePeriodManager struct {
	logger *slog.Logger
	rooms  roomStore

	mu         sync.Mutex
	timers     map[string]*graceTimer
	generation uint64

	onExpire func(room *entity.Room)
}

func NewGracePeriodManager(logger *slog.Logger, rooms roomStore) *GracePeriodManager {
	return &GracePeriodManager{
		logger: logger.With("component", "grace-period"),
		rooms:  rooms,
		timers: make(map[string]*graceTimer),
	}
}

// OnExpire registers fn to run after a room was deleted by its timer. The room lock is held while
// fn runs.
func (that *GracePeriodManager) OnExpire(fn func(room *entity.Room)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onExpire = fn
}

// Schedule arms the timer for roomID, replacing any timer already armed for it.
func (that *GracePeriodManager) Schedule(roomID string, duration time.Duration) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if pending, ok := that.timers[roomID]; ok {
		pending.timer.Stop()
	}

	that.generation++
	generation := that.generation

	that.timers[roomID] = &graceTimer{
		timer: time.AfterFunc(duration, func() {
			that.expire(roomID, generation)
		}),
		generation: generation,
	}

	that.logger.Debug("grace period armed", "roomID", roomID, "duration", duration)
}

// Cancel disarms the timer for roomID and reports whether one was armed.
func (that *GracePeriodManager) Cancel(roomID string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	pending, ok := that.timers[roomID]
	if !ok {
		return false
	}

	pending.timer.Stop()
	delete(that.timers, roomID)

	that.logger.Debug("grace period cancelled", "roomID", roomID)

	return true
}

func (that *GracePeriodManager) Pending() int {
	that.mu.Lock()
	defer that.mu.Unlock()

	return len(that.timers)
}

// Stop disarms every timer.
func (that *GracePeriodManager) Stop() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for roomID, pending := range that.timers {
		pending.timer.Stop()
		delete(that.timers, roomID)
	}
}

func (that *GracePeriodManager) expire(roomID string, generation uint64) {
	log := that.logger.With("method", "expire", "roomID", roomID)

	room, err := that.rooms.Get(roomID)
	if err != nil {
		that.claim(roomID, generation)
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if !that.claim(roomID, generation) {
		log.Debug("timer was cancelled or superseded")
		return
	}

	if room.IsClosed() {
		return
	}

	that.rooms.Delete(roomID)
	room.Close()

	log.Info("room deleted after grace period")

	that.mu.Lock()
	onExpire := that.onExpire
	that.mu.Unlock()

	if onExpire != nil {
		onExpire(room)
	}
}

// claim removes the timer entry if it still belongs to generation.
func (that *GracePeriodManager) claim(roomID string, generation uint64) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	pending, ok := that.timers[roomID]
	if !ok || pending.generation != generation {
		return false
	}

	delete(that.timers, roomID)

	return true
}
