package storage

import (
	"sort"
	"sync"

	"github.com/daniil11ru/tracker/cli/tracker/telemetry"
)

const trackShardCount = 32

type trackShard struct {
	mu sync.RWMutex
	m  map[string][]telemetry.Fix
}

// TrackStore — журнал наблюдений, упорядоченный по времени приёма.
// Записи не изменяются и не удаляются, кроме плановой очистки по сроку
// хранения. Вторичный индекс по транспорту хранит те же записи с меткой
// транспорта на момент приёма: смена привязки устройства не переписывает
// уже сохранённые точки.
type TrackStore struct {
	byDevice  [trackShardCount]*trackShard
	byVehicle [trackShardCount]*trackShard
}

func NewTrackStore() *TrackStore {
	s := &TrackStore{}
	for i := range s.byDevice {
		s.byDevice[i] = &trackShard{m: make(map[string][]telemetry.Fix)}
		s.byVehicle[i] = &trackShard{m: make(map[string][]telemetry.Fix)}
	}
	return s
}

// insertOrdered вставляет наблюдение с сохранением порядка по метке времени.
// Обычный случай — добавление в конец; равные метки сохраняют порядок вставки.
func insertOrdered(log []telemetry.Fix, f telemetry.Fix) []telemetry.Fix {
	n := len(log)
	if n == 0 || log[n-1].ReceivedTimestamp <= f.ReceivedTimestamp {
		return append(log, f)
	}
	i := sort.Search(n, func(i int) bool { return log[i].ReceivedTimestamp > f.ReceivedTimestamp })
	log = append(log, telemetry.Fix{})
	copy(log[i+1:], log[i:])
	log[i] = f
	return log
}

func (s *TrackStore) Append(f telemetry.Fix) {
	sh := s.byDevice[shardIndex(f.DeviceID, trackShardCount)]
	sh.mu.Lock()
	sh.m[f.DeviceID] = insertOrdered(sh.m[f.DeviceID], f)
	sh.mu.Unlock()

	if f.VehicleID != "" {
		vh := s.byVehicle[shardIndex(f.VehicleID, trackShardCount)]
		vh.mu.Lock()
		vh.m[f.VehicleID] = insertOrdered(vh.m[f.VehicleID], f)
		vh.mu.Unlock()
	}
}

func queryWindow(log []telemetry.Fix, from, to int64) []telemetry.Fix {
	if from > to || len(log) == 0 {
		return nil
	}
	lo := sort.Search(len(log), func(i int) bool { return log[i].ReceivedTimestamp >= from })
	hi := sort.Search(len(log), func(i int) bool { return log[i].ReceivedTimestamp > to })
	if lo >= hi {
		return nil
	}
	out := make([]telemetry.Fix, hi-lo)
	copy(out, log[lo:hi])
	return out
}

// QueryByDevice возвращает наблюдения устройства с метками времени в
// диапазоне [from, to] включительно по возрастанию. Пустой диапазон
// (from > to) — пустой результат, а не ошибка.
func (s *TrackStore) QueryByDevice(deviceID string, from, to int64) []telemetry.Fix {
	sh := s.byDevice[shardIndex(deviceID, trackShardCount)]
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return queryWindow(sh.m[deviceID], from, to)
}

// QueryByVehicle — то же самое по метке транспорта на момент приёма записи.
func (s *TrackStore) QueryByVehicle(vehicleID string, from, to int64) []telemetry.Fix {
	sh := s.byVehicle[shardIndex(vehicleID, trackShardCount)]
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	return queryWindow(sh.m[vehicleID], from, to)
}

// PruneBefore удаляет записи старше cutoff из обоих индексов и возвращает
// количество удалённых точек основного журнала.
func (s *TrackStore) PruneBefore(cutoff int64) int {
	removed := 0
	for _, sh := range s.byDevice {
		sh.mu.Lock()
		for id, log := range sh.m {
			i := sort.Search(len(log), func(i int) bool { return log[i].ReceivedTimestamp >= cutoff })
			if i == 0 {
				continue
			}
			removed += i
			if i == len(log) {
				delete(sh.m, id)
				continue
			}
			kept := make([]telemetry.Fix, len(log)-i)
			copy(kept, log[i:])
			sh.m[id] = kept
		}
		sh.mu.Unlock()
	}
	for _, sh := range s.byVehicle {
		sh.mu.Lock()
		for id, log := range sh.m {
			i := sort.Search(len(log), func(i int) bool { return log[i].ReceivedTimestamp >= cutoff })
			if i == 0 {
				continue
			}
			if i == len(log) {
				delete(sh.m, id)
				continue
			}
			kept := make([]telemetry.Fix, len(log)-i)
			copy(kept, log[i:])
			sh.m[id] = kept
		}
		sh.mu.Unlock()
	}
	return removed
}
