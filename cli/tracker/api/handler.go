package api

import (
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/daniil11ru/tracker/cli/tracker/api/dto/request"
	"github.com/daniil11ru/tracker/cli/tracker/api/dto/response"
	"github.com/daniil11ru/tracker/cli/tracker/devices"
	"github.com/daniil11ru/tracker/cli/tracker/hub"
	"github.com/daniil11ru/tracker/cli/tracker/storage"
	"github.com/daniil11ru/tracker/cli/tracker/telemetry"
	"github.com/gin-gonic/gin"
)

// Handler — читающий фасад над хранилищами. Бизнес-логики здесь нет:
// только проверка параметров и формирование ответа.
type Handler struct {
	Registry *devices.Registry
	Latest   *storage.LatestStore
	Tracks   *storage.TrackStore
	Hub      *hub.Hub
}

func NewHandler(registry *devices.Registry, latest *storage.LatestStore, tracks *storage.TrackStore, h *hub.Hub) *Handler {
	return &Handler{Registry: registry, Latest: latest, Tracks: tracks, Hub: h}
}

func (h *Handler) GetVehicles(c *gin.Context) {
	all := h.Registry.All()

	items := make([]response.VehicleItem, 0, len(all))
	for id, rec := range all {
		items = append(items, response.VehicleItem{
			ID:         id,
			VehicleID:  rec.VehicleID,
			LastSeenTs: rec.LastSeenTs,
			IP:         rec.IP,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	c.JSON(http.StatusOK, response.GetVehicles{Items: items})
}

func (h *Handler) RegisterDevice(c *gin.Context) {
	req := request.RegisterDevice{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if req.ID == "" || req.VehicleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and vehicleId required"})
		return
	}

	h.Registry.Associate(req.ID, req.VehicleID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) GetDevice(c *gin.Context) {
	id := c.Param("id")

	resp := response.GetDevice{}
	if rec, ok := h.Registry.Get(id); ok {
		resp.Device = &rec
	}
	if latest, ok := h.Latest.Get(id); ok {
		resp.Latest = &latest
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetLatest(c *gin.Context) {
	id := c.Query("deviceId")
	if id == "" {
		vehicleID := c.Query("vehicleId")
		if vehicleID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "deviceId or vehicleId required"})
			return
		}
		if ids := h.Registry.DevicesByVehicle(vehicleID); len(ids) > 0 {
			id = ids[0]
		}
	}

	resp := response.GetLatest{}
	if id != "" {
		if latest, ok := h.Latest.Get(id); ok {
			resp.Latest = &latest
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetTrackByDevice(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}

	points := h.Tracks.QueryByDevice(c.Param("id"), from, to)
	if points == nil {
		points = []telemetry.Fix{}
	}
	c.JSON(http.StatusOK, response.Track{Points: points})
}

func (h *Handler) GetTrackByVehicle(c *gin.Context) {
	from, to, ok := parseWindow(c)
	if !ok {
		return
	}

	points := h.Tracks.QueryByVehicle(c.Param("vehicleId"), from, to)
	if points == nil {
		points = []telemetry.Fix{}
	}
	c.JSON(http.StatusOK, response.Track{Points: points})
}

// StreamLatest отдаёт подписчику SSE-поток принятых наблюдений.
// История не воспроизводится: доставляются только наблюдения, принятые
// после подписки.
func (h *Handler) StreamLatest(c *gin.Context) {
	sub := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(sub)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, string(ev.Data))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "now": time.Now().UnixMilli()})
}

// parseWindow разбирает границы временного окна в миллисекундах Unix.
// Значения по умолчанию — последний час. Некорректный параметр — 400.
func parseWindow(c *gin.Context) (int64, int64, bool) {
	nowMs := time.Now().UnixMilli()
	from := nowMs - time.Hour.Milliseconds()
	to := nowMs

	if v := c.Query("from"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from'"})
			return 0, 0, false
		}
		from = n
	}
	if v := c.Query("to"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to'"})
			return 0, 0, false
		}
		to = n
	}
	return from, to, true
}
