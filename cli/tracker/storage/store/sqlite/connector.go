package sqlite

/*
Встраиваемое хранилище для одиночных установок без внешней БД.

Настройки, которые должны быть в конфиге для подключения хранилища:

path = "tracker.db"
*/

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/daniil11ru/tracker/cli/tracker/telemetry"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS fixes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	device_id TEXT NOT NULL,
	vehicle_id TEXT,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	speed REAL NOT NULL,
	heading REAL NOT NULL,
	received_at INTEGER NOT NULL,
	source_ip TEXT
);
CREATE INDEX IF NOT EXISTS idx_fixes_device_id ON fixes(device_id);
CREATE INDEX IF NOT EXISTS idx_fixes_received_at ON fixes(received_at);
`

type Connector struct {
	connection *sql.DB
	config     map[string]string
}

func (c *Connector) Init(cfg map[string]string) error {
	var (
		err error
	)
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.config = cfg

	if c.config["path"] == "" {
		return fmt.Errorf("не задан путь до файла базы данных")
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL", c.config["path"])
	if c.connection, err = sql.Open("sqlite3", connStr); err != nil {
		return fmt.Errorf("ошибка подключения к SQLite: %v", err)
	}

	// SQLite корректно работает только с одним писателем
	c.connection.SetMaxOpenConns(1)

	if _, err = c.connection.Exec(schema); err != nil {
		return fmt.Errorf("не удалось создать схему: %v", err)
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

	_, err = c.connection.Exec(
		"INSERT INTO fixes (device_id, vehicle_id, latitude, longitude, speed, heading, received_at, source_ip) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		f.DeviceID, f.VehicleID, f.Latitude, f.Longitude, f.Speed, f.Heading, f.ReceivedTimestamp, f.SourceIP,
	)
	if err != nil {
		return fmt.Errorf("не удалось вставить запись: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	return c.connection.Close()
}
