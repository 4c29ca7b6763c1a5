package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TCPConnections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_tcp_connections_total",
		Help: "Всего принятых TCP-соединений",
	})
	LinesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_lines_received_total",
		Help: "Всего принятых строк телеметрии",
	})
	LinesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_lines_dropped_total",
		Help: "Всего отброшенных строк по причинам",
	}, []string{"reason"})
	FixesAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_fixes_accepted_total",
		Help: "Всего принятых наблюдений",
	})
	HubEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_hub_events_dropped_total",
		Help: "Всего событий, вытесненных из буферов подписчиков",
	})
	SinkErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_sink_errors_total",
		Help: "Всего ошибок записи во внешние хранилища",
	})
)
