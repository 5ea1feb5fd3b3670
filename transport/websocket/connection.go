package websocket

import (
	"sync"
	"time"

	gorilla "github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// connection is one client socket. Reads happen on the handler goroutine,
// writes on writePump, fed through send in FIFO order.
type connection struct {
	id   string
	conn *gorilla.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newConnection(id string, conn *gorilla.Conn, buffer int) *connection {
	if buffer <= 0 {
		buffer = 1
	}

	return &connection{
		id:   id,
		conn: conn,
		send: make(chan []byte, buffer),
	}
}

// enqueue hands payload to the writer. It reports false when the connection is
// already closed; a connection whose queue overflows is closed as well.
func (that *connection) enqueue(payload []byte) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return false
	}

	select {
	case that.send <- payload:
		return true
	default:
		that.closeLocked()
		return false
	}
}

func (that *connection) close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.closeLocked()
}

func (that *connection) closeLocked() {
	if that.closed {
		return
	}

	that.closed = true
	close(that.send)
}

func (that *connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(gorilla.CloseMessage, gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""))
				return
			}

			if err := that.conn.WriteMessage(gorilla.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(gorilla.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
