package gqltransport

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Socket is the abstract transport the graphql-transport-ws state
// machine runs over (§4.6 "over an abstract Socket{sendText, close,
// incomingMessageStream, closedSignal}"). wsSocket is the only
// implementation today; the interface exists so the state machine
// itself never imports gorilla/websocket.
type Socket interface {
	SendText(data []byte) error
	Close(code int, reason string) error
	Incoming() <-chan []byte
	Closed() <-chan struct{}
}

// wsSocket adapts a gorilla/websocket connection to Socket, pumping
// reads into a channel the way the teacher's readPump/writePump pair
// did, but collapsed onto the narrower Socket contract.
type wsSocket struct {
	conn     *websocket.Conn
	writeMu  sync.Mutex
	incoming chan []byte
	closed   chan struct{}
	closeOne sync.Once
}

// NewWebSocketSocket starts the read pump and returns a ready Socket.
func NewWebSocketSocket(conn *websocket.Conn) Socket {
	s := &wsSocket{
		conn:     conn,
		incoming: make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
	conn.SetReadLimit(1 << 20)
	go s.readPump()
	return s
}

func (s *wsSocket) readPump() {
	defer s.signalClosed()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case s.incoming <- data:
		case <-s.closed:
			return
		}
	}
}

func (s *wsSocket) SendText(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *wsSocket) Close(code int, reason string) error {
	s.writeMu.Lock()
	msg := websocket.FormatCloseMessage(code, reason)
	_ = s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(5*time.Second))
	s.writeMu.Unlock()
	s.signalClosed()
	return s.conn.Close()
}

func (s *wsSocket) Incoming() <-chan []byte { return s.incoming }
func (s *wsSocket) Closed() <-chan struct{} { return s.closed }

func (s *wsSocket) signalClosed() {
	s.closeOne.Do(func() { close(s.closed) })
}
