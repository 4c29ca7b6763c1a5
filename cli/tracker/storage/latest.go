package storage

import (
	"hash/fnv"
	"sync"

	"github.com/daniil11ru/tracker/cli/tracker/telemetry"
)

const latestShardCount = 32

type latestShard struct {
	mu sync.RWMutex
	m  map[string]telemetry.Fix
}

// LatestStore хранит последнее наблюдение каждого устройства.
// Карта сегментирована, чтобы устройства не конкурировали за один мьютекс.
type LatestStore struct {
	shards [latestShardCount]*latestShard
}

func NewLatestStore() *LatestStore {
	s := &LatestStore{}
	for i := range s.shards {
		s.shards[i] = &latestShard{m: make(map[string]telemetry.Fix)}
	}
	return s
}

func shardIndex(key string, count uint32) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % count
}

func (s *LatestStore) shard(deviceID string) *latestShard {
	return s.shards[shardIndex(deviceID, latestShardCount)]
}

// Upsert безусловно заменяет последнее наблюдение устройства.
// Сравнение меток времени не выполняется: запоздавшее наблюдение
// перезапишет более новое, внешние потребители полагаются на эту семантику.
func (s *LatestStore) Upsert(f telemetry.Fix) {
	sh := s.shard(f.DeviceID)
	sh.mu.Lock()
	sh.m[f.DeviceID] = f
	sh.mu.Unlock()
}

func (s *LatestStore) Get(deviceID string) (telemetry.Fix, bool) {
	sh := s.shard(deviceID)
	sh.mu.RLock()
	f, ok := sh.m[deviceID]
	sh.mu.RUnlock()
	return f, ok
}

// All возвращает снимок последних наблюдений всех устройств.
func (s *LatestStore) All() map[string]telemetry.Fix {
	out := make(map[string]telemetry.Fix)
	for _, sh := range s.shards {
		sh.mu.RLock()
		for id, f := range sh.m {
			out[id] = f
		}
		sh.mu.RUnlock()
	}
	return out
}
