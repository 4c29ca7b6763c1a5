package devices

import (
	"hash/fnv"
	"sort"
	"sync"
)

const shardCount = 32

// Record — текущее состояние устройства.
type Record struct {
	VehicleID  string `json:"vehicleId"`
	LastSeenTs int64  `json:"lastSeenTs"`
	IP         string `json:"ip"`
}

type shard struct {
	mu sync.RWMutex
	m  map[string]Record
}

// Registry — реестр устройств и их привязок к транспорту.
// Устройство появляется при первом наблюдении или при явной регистрации
// через API; привязка к транспорту обновляется по принципу «последняя
// запись побеждает».
type Registry struct {
	shards [shardCount]*shard
}

func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i] = &shard{m: make(map[string]Record)}
	}
	return r
}

func (r *Registry) shard(deviceID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(deviceID))
	return r.shards[h.Sum32()%shardCount]
}

// Observe фиксирует принятое наблюдение: обновляет момент последней
// активности и адрес источника; привязка к транспорту меняется только если
// устройство её передало.
func (r *Registry) Observe(deviceID, vehicleID string, hasVehicle bool, ts int64, ip string) {
	sh := r.shard(deviceID)
	sh.mu.Lock()
	rec := sh.m[deviceID]
	rec.LastSeenTs = ts
	rec.IP = ip
	if hasVehicle {
		rec.VehicleID = vehicleID
	}
	sh.m[deviceID] = rec
	sh.mu.Unlock()
}

// Associate — явная регистрация устройства (административный API).
func (r *Registry) Associate(deviceID, vehicleID string) {
	sh := r.shard(deviceID)
	sh.mu.Lock()
	rec := sh.m[deviceID]
	rec.VehicleID = vehicleID
	sh.m[deviceID] = rec
	sh.mu.Unlock()
}

func (r *Registry) Get(deviceID string) (Record, bool) {
	sh := r.shard(deviceID)
	sh.mu.RLock()
	rec, ok := sh.m[deviceID]
	sh.mu.RUnlock()
	return rec, ok
}

// VehicleOf возвращает текущую привязку устройства, пустую строку если её нет.
func (r *Registry) VehicleOf(deviceID string) string {
	rec, _ := r.Get(deviceID)
	return rec.VehicleID
}

// All возвращает снимок реестра.
func (r *Registry) All() map[string]Record {
	out := make(map[string]Record)
	for _, sh := range r.shards {
		sh.mu.RLock()
		for id, rec := range sh.m {
			out[id] = rec
		}
		sh.mu.RUnlock()
	}
	return out
}

// DevicesByVehicle возвращает идентификаторы устройств, привязанных к
// транспорту, в детерминированном порядке.
func (r *Registry) DevicesByVehicle(vehicleID string) []string {
	var out []string
	for _, sh := range r.shards {
		sh.mu.RLock()
		for id, rec := range sh.m {
			if rec.VehicleID == vehicleID {
				out = append(out, id)
			}
		}
		sh.mu.RUnlock()
	}
	sort.Strings(out)
	return out
}
