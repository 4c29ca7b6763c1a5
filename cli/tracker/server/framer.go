package server

import (
	"bufio"
	"errors"
	"io"
)

const DefaultMaxLineBytes = 1024

var ErrLineTooLong = errors.New("строка превышает допустимую длину")

// LineFramer разбивает поток байтов одного соединения на записи,
// завершённые переводом строки. Граница TCP-сегментов не имеет значения:
// терминатор может прийти в другом чтении, в одном чтении может быть
// несколько записей. Длина строки ограничена, иначе медленный или
// враждебный клиент заставил бы буферизовать неограниченный объём.
type LineFramer struct {
	r *bufio.Reader
}

func NewLineFramer(r io.Reader, maxLineBytes int) *LineFramer {
	if maxLineBytes <= 0 {
		maxLineBytes = DefaultMaxLineBytes
	}
	return &LineFramer{r: bufio.NewReaderSize(r, maxLineBytes+1)}
}

// Next возвращает очередную запись без завершающих переводов строки.
// Запись длиннее лимита дочитывается, отбрасывается целиком и помечается
// ErrLineTooLong — соединение продолжает работу. Незавершённый хвост при
// закрытии соединения записью не считается.
func (f *LineFramer) Next() ([]byte, error) {
	line, err := f.r.ReadSlice('\n')
	switch err {
	case nil:
		return trimEOL(line), nil
	case bufio.ErrBufferFull:
		for err == bufio.ErrBufferFull {
			_, err = f.r.ReadSlice('\n')
		}
		if err != nil {
			return nil, err
		}
		return nil, ErrLineTooLong
	default:
		return nil, err
	}
}

func trimEOL(line []byte) []byte {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}
