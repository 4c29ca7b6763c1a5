package domain

import (
	"fmt"

	"github.com/daniil11ru/tracker/cli/tracker/devices"
	"github.com/daniil11ru/tracker/cli/tracker/hub"
	"github.com/daniil11ru/tracker/cli/tracker/storage"
	"github.com/daniil11ru/tracker/cli/tracker/telemetry"
	log "github.com/sirupsen/logrus"
)

// SaveFix проводит нормализованное наблюдение через все хранилища процесса:
// реестр устройств, последнее состояние, журнал треков, внешние хранилища и
// рассылку подписчикам — в этом порядке. Публикация выполняется после того,
// как наблюдение отражено в хранилище последнего состояния.
type SaveFix struct {
	Registry *devices.Registry
	Latest   *storage.LatestStore
	Tracks   *storage.TrackStore
	Sinks    storage.Saver // может отсутствовать
	Hub      *hub.Hub
}

func (d *SaveFix) Run(f telemetry.Fix, hasVehicle bool) error {
	if f.DeviceID == "" {
		return fmt.Errorf("пустой идентификатор устройства")
	}

	// запись трека несёт привязку на момент приёма
	if !hasVehicle {
		f.VehicleID = d.Registry.VehicleOf(f.DeviceID)
	}

	d.Registry.Observe(f.DeviceID, f.VehicleID, hasVehicle, f.ReceivedTimestamp, f.SourceIP)
	d.Latest.Upsert(f)
	d.Tracks.Append(f)

	if d.Sinks != nil {
		if err := d.Sinks.Save(&f); err != nil {
			log.WithField("err", err).Warn("Телематические данные не были переданы во внешние хранилища")
		}
	}

	if d.Hub != nil {
		d.Hub.Publish(&f)
	}

	return nil
}
