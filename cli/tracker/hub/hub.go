package hub

import (
	"sync"

	"github.com/daniil11ru/tracker/cli/tracker/observability"
	"github.com/daniil11ru/tracker/cli/tracker/telemetry"
	log "github.com/sirupsen/logrus"
)

const EventLatest = "latest"

// Event — одно событие для живых подписчиков: тип и JSON-тело наблюдения.
type Event struct {
	Type string
	Data []byte
}

// Subscriber — подписчик с собственным буфером событий.
type Subscriber struct {
	ch chan Event
}

// Events возвращает канал событий подписчика. Канал закрывается при отписке.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Hub рассылает принятые наблюдения текущим подписчикам. Публикация никогда
// не блокирует приём: при переполнении буфера подписчика вытесняется самое
// старое событие. История не воспроизводится — новый подписчик получает
// только наблюдения, опубликованные после подписки.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	buffer int
}

func New(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[*Subscriber]struct{}),
		buffer: buffer,
	}
}

func (h *Hub) Subscribe() *Subscriber {
	s := &Subscriber{ch: make(chan Event, h.buffer)}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Unsubscribe снимает подписку и закрывает канал. Повторный вызов безопасен.
func (h *Hub) Unsubscribe(s *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.ch)
}

// Publish доставляет наблюдение всем текущим подписчикам.
func (h *Hub) Publish(f *telemetry.Fix) {
	data, err := f.ToBytes()
	if err != nil {
		log.WithField("err", err).Error("Ошибка сериализации события")
		return
	}
	ev := Event{Type: EventLatest, Data: data}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.ch <- ev:
		default:
			// буфер полон: вытесняем самое старое событие
			select {
			case <-s.ch:
				observability.HubEventsDropped.Inc()
			default:
			}
			select {
			case s.ch <- ev:
			default:
			}
		}
	}
}

// Len возвращает количество текущих подписчиков.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
