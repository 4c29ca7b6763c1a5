package rabbitmq

/*
Плагин публикует наблюдения в обменник RabbitMQ.

Настройки, которые должны быть в конфиге для подключения хранилища:

host = "localhost"
port = "5672"
user = "guest"
password = "guest"
exchange = "tracker"
routing_key = "fixes"
*/

import (
	"fmt"

	"github.com/streadway/amqp"
)

type Connector struct {
	connection *amqp.Connection
	channel    *amqp.Channel
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

	connStr := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.config["user"], c.config["password"], c.config["host"], c.config["port"])
	if c.connection, err = amqp.Dial(connStr); err != nil {
		return fmt.Errorf("не удалось подключиться к RabbitMQ: %v", err)
	}

	if c.channel, err = c.connection.Channel(); err != nil {
		return fmt.Errorf("не удалось открыть канал: %v", err)
	}

	if err = c.channel.ExchangeDeclare(c.config["exchange"], "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("не удалось объявить обменник: %v", err)
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

	err = c.channel.Publish(c.config["exchange"], c.config["routing_key"], false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        innerPkg,
	})
	if err != nil {
		return fmt.Errorf("не удалось отправить сообщение: %v", err)
	}
	return nil
}

func (c *Connector) Close() error {
	if err := c.channel.Close(); err != nil {
		return err
	}
	return c.connection.Close()
}
