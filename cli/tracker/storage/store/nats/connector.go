package nats

/*
Плагин публикует наблюдения в NATS.

Настройки, которые должны быть в конфиге для подключения хранилища:

host = "localhost"
port = "4222"
user = ""
password = ""
subject = "tracker.fixes"
*/

import (
	"fmt"

	"github.com/nats-io/nats.go"
)

type Connector struct {
	connection *nats.Conn
	config     map[string]string
	subject    string
}

func (c *Connector) Init(cfg map[string]string) error {
	var (
		err error
	)
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.config = cfg

	c.subject = c.config["subject"]
	if c.subject == "" {
		c.subject = "tracker.fixes"
	}

	opts := []nats.Option{}
	if c.config["user"] != "" {
		opts = append(opts, nats.UserInfo(c.config["user"], c.config["password"]))
	}

	url := fmt.Sprintf("nats://%s:%s", c.config["host"], c.config["port"])
	if c.connection, err = nats.Connect(url, opts...); err != nil {
		return fmt.Errorf("не удалось подключиться к NATS: %v", err)
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

	if err := c.connection.Publish(c.subject, innerPkg); err != nil {
		return fmt.Errorf("не удалось отправить сообщение: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	c.connection.Close()
	return nil
}
