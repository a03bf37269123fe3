package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"support-chat-be/internal/entity"
)

// RoomCache is a short-TTL read cache for subscribe permission checks, so
// a burst of subscribes does not hammer the store. The service invalidates
// entries on every mutation; the TTL only bounds staleness across process
// restarts of collaborating tooling.
type RoomCache struct {
	cache *cache.Cache
}

func NewRoomCache() *RoomCache {
	c := cache.New(1*time.Minute, 5*time.Minute)
	return &RoomCache{cache: c}
}

func (r *RoomCache) Set(room *entity.ChatRoom) {
	r.cache.Set(room.Id.String(), room, cache.DefaultExpiration)
}

func (r *RoomCache) Get(roomId uuid.UUID) (*entity.ChatRoom, bool) {
	if x, found := r.cache.Get(roomId.String()); found {
		return x.(*entity.ChatRoom), true
	}
	return nil, false
}

func (r *RoomCache) Invalidate(roomId uuid.UUID) {
	r.cache.Delete(roomId.String())
}
