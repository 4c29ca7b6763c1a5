package redis

/*
Плагин публикует наблюдения в канал Redis.

Настройки, которые должны быть в конфиге для подключения хранилища:

host = "localhost"
port = "6379"
password = ""
db = "0"
channel = "fixes"
*/

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

type Connector struct {
	client  *redis.Client
	config  map[string]string
	channel string
}

func (c *Connector) Init(cfg map[string]string) error {
	if cfg == nil {
		return fmt.Errorf("некорректная ссылка на конфигурацию")
	}
	c.config = cfg

	db := 0
	if c.config["db"] != "" {
		var err error
		if db, err = strconv.Atoi(c.config["db"]); err != nil {
			return fmt.Errorf("не удалось получить номер базы: %v", err)
		}
	}

	c.channel = c.config["channel"]
	if c.channel == "" {
		c.channel = "fixes"
	}

	c.client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", c.config["host"], c.config["port"]),
		Password: c.config["password"],
		DB:       db,
	})

	if err := c.client.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("Redis недоступен: %v", err)
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

	if err := c.client.Publish(context.Background(), c.channel, innerPkg).Err(); err != nil {
		return fmt.Errorf("не удалось отправить сообщение: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	return c.client.Close()
}
