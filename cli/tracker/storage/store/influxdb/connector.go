package influxdb

/*
Плагин пишет наблюдения в InfluxDB 2.x.

Настройки, которые должны быть в конфиге для подключения хранилища:

url = "http://localhost:8086"
token = "..."
org = "tracker"
bucket = "telemetry"
measurement = "fix"
*/

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/daniil11ru/tracker/cli/tracker/telemetry"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

type Connector struct {
	client      influxdb2.Client
	writeAPI    api.WriteAPIBlocking
	measurement string
	config      map[string]string
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.config = cfg

	if c.config["url"] == "" {
		return fmt.Errorf("не задан адрес InfluxDB")
	}

	c.measurement = c.config["measurement"]
	if c.measurement == "" {
		c.measurement = "fix"
	}

	c.client = influxdb2.NewClient(c.config["url"], c.config["token"])
	c.writeAPI = c.client.WriteAPIBlocking(c.config["org"], c.config["bucket"])

	ok, err := c.client.Ping(context.Background())
	if err != nil || !ok {
		return fmt.Errorf("InfluxDB недоступен: %v", err)
	}
	return nil
}

func (c *Connector) Save(msg interface{ ToBytes() ([]byte, error) }) error {
	if msg == nil {
		return fmt.Errorf("некорректная ссылка на наблюдение")
	}

	innerPkg, err := msg.ToBytes()
	if err != nil {
		return fmt.Errorf("ошибка сериализации наблюдения: %v", err)
	}

	var f telemetry.Fix
	if err := json.Unmarshal(innerPkg, &f); err != nil {
		return fmt.Errorf("ошибка разбора наблюдения: %v", err)
	}

	point := influxdb2.NewPoint(c.measurement,
		map[string]string{
			"device_id":  f.DeviceID,
			"vehicle_id": f.VehicleID,
		},
		map[string]interface{}{
			"lt": f.Latitude,
			"ln": f.Longitude,
			"s":  f.Speed,
			"h":  f.Heading,
		},
		time.UnixMilli(f.ReceivedTimestamp),
	)

	if err := c.writeAPI.WritePoint(context.Background(), point); err != nil {
		return fmt.Errorf("не удалось записать точку: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	c.client.Close()
	return nil
}
