package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"time"
)

/*
Fix generator.

Util sends JSON telemetry lines to the tracker server.

Usage:
  -id string
    	Device identifier (require)
  -vid string
    	Vehicle identifier
  -lat float
    	Latitude
  -lon float
    	Longitude
  -speed float
    	Speed
  -heading float
    	Heading
  -count int
    	Number of lines to send, Default: 1
  -interval int
    	Pause between lines in milliseconds, Default: 1000
  -server string
    	Tracker server address in format <ip>:<port> (default "localhost:9331")

Example

```
./fix-gen --id dev-1 --vid bus-42 --lat 45 --lon 60.344 --count 10 --server localhost:9331
```
*/

type fixLine struct {
	ID        string  `json:"Id"`
	VehicleID string  `json:"vId,omitempty"`
	Latitude  float64 `json:"lt"`
	Longitude float64 `json:"ln"`
	Speed     float64 `json:"s"`
	Heading   float64 `json:"h"`
}

func main() {
	id := ""
	vid := ""
	lat := 0.0
	lon := 0.0
	speed := 0.0
	heading := 0.0
	count := 0
	interval := 0
	server := ""

	flag.StringVar(&id, "id", "", "Идентификатор устройства (обязательно)")
	flag.StringVar(&vid, "vid", "", "Идентификатор транспорта")
	flag.Float64Var(&lat, "lat", 0, "Широта")
	flag.Float64Var(&lon, "lon", 0, "Долгота")
	flag.Float64Var(&speed, "speed", 0, "Скорость")
	flag.Float64Var(&heading, "heading", 0, "Курс")
	flag.IntVar(&count, "count", 1, "Количество отправляемых строк")
	flag.IntVar(&interval, "interval", 1000, "Пауза между строками в миллисекундах")
	flag.StringVar(&server, "server", "localhost:9331", "Адрес сервера в формате <ip>:<port>")

	flag.Parse()

	if id == "" {
		fmt.Println("Требуется идентификатор устройства, смотрите помощь (-h)")
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", server)
	if err != nil {
		fmt.Printf("Не удалось подключиться к серверу: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	for i := 0; i < count; i++ {
		line, err := json.Marshal(fixLine{
			ID:        id,
			VehicleID: vid,
			Latitude:  lat,
			Longitude: lon,
			Speed:     speed,
			Heading:   heading,
		})
		if err != nil {
			fmt.Printf("Ошибка сериализации: %v\n", err)
			os.Exit(1)
		}

		if _, err := conn.Write(append(line, '\n')); err != nil {
			fmt.Printf("Ошибка отправки: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Отправлено: %s\n", line)

		// небольшой дрейф, чтобы трек был похож на движение
		lat += 0.0001
		lon += 0.0001

		if i < count-1 {
			time.Sleep(time.Duration(interval) * time.Millisecond)
		}
	}
}
