package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/daniil11ru/tracker/cli/tracker/domain"
	"github.com/daniil11ru/tracker/cli/tracker/observability"
	"github.com/daniil11ru/tracker/cli/tracker/telemetry"
	log "github.com/sirupsen/logrus"
)

// Server — приёмник телеметрии: строчный JSON-протокол поверх TCP.
// Каждое соединение обрабатывается независимо; подтверждения устройству
// не отправляются, некорректные записи отбрасываются без разрыва соединения.
type Server struct {
	addr       string
	ttl        time.Duration
	maxLine    int
	rateWindow time.Duration
	rateLimit  int
	saveFix    *domain.SaveFix

	mu sync.Mutex
	l  net.Listener
}

func New(addr string, ttl time.Duration, maxLine int, rateWindow time.Duration, rateLimit int, saveFix *domain.SaveFix) *Server {
	return &Server{
		addr:       addr,
		ttl:        ttl,
		maxLine:    maxLine,
		rateWindow: rateWindow,
		rateLimit:  rateLimit,
		saveFix:    saveFix,
	}
}

func (s *Server) Run() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("не удалось открыть соединение: %w", err)
	}
	s.mu.Lock()
	s.l = l
	s.mu.Unlock()
	defer l.Close()

	log.WithField("addr", l.Addr()).Info("Запущен приёмник телеметрии")
	log.Debug("TTL: ", s.ttl)

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.WithField("err", err).Error("Ошибка соединения")
			continue
		}

		observability.TCPConnections.Inc()
		go s.handleConn(conn)
	}
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.l != nil {
		return s.l.Close()
	}
	return nil
}

// Addr возвращает фактический адрес слушателя, nil до запуска.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.l == nil {
		return nil
	}
	return s.l.Addr()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	ip := remoteIP(conn)
	log.WithField("ip", conn.RemoteAddr()).Info("Установлено соединение")

	framer := NewLineFramer(conn, s.maxLine)
	bucket := newTokenBucket(s.rateWindow, s.rateLimit)

	for {
		if s.ttl > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.ttl))
		} else {
			_ = conn.SetReadDeadline(time.Time{})
		}

		line, err := framer.Next()
		if err == ErrLineTooLong {
			observability.LinesDropped.WithLabelValues("oversize").Inc()
			log.WithField("ip", conn.RemoteAddr()).Warn("Строка превышает допустимую длину")
			continue
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				log.WithField("ip", conn.RemoteAddr()).Warn("Таймаут чтения")
			} else if err == io.EOF {
				log.WithField("ip", conn.RemoteAddr()).Info("Клиент закрыл соединение")
			} else {
				log.WithField("err", err).Error("Ошибка при получении")
			}
			return
		}

		observability.LinesReceived.Inc()

		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		if !bucket.Allow(time.Now()) {
			observability.LinesDropped.WithLabelValues("ratelimit").Inc()
			continue
		}

		fix, hasVehicle, err := telemetry.Normalize(line, ip)
		if err != nil {
			observability.LinesDropped.WithLabelValues("malformed").Inc()
			log.WithFields(log.Fields{"ip": conn.RemoteAddr(), "err": err}).Debug("Запись отброшена")
			continue
		}

		if err := s.saveFix.Run(fix, hasVehicle); err != nil {
			log.WithField("err", err).Warn("Телематические данные не были сохранены")
			continue
		}
		observability.FixesAccepted.Inc()
	}
}

func remoteIP(conn net.Conn) string {
	if addr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		return addr.IP.String()
	}
	return conn.RemoteAddr().String()
}
