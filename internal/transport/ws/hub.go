package ws

import (
	"sync"
)

type Conn interface {
	ID() string
	Send(msg Message) error
	Close() error
}

// Hub отслеживает все живые подключения и их раскладку по комнатам —
// исключительно для адресной рассылки. Состав комнат как источник истины
// живёт в Directory; хаб лишь повторяет его для fan-out.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Conn            // conn id -> conn
	rooms map[string]map[string]Conn // pin -> conn id -> conn
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]Conn),
		rooms: make(map[string]map[string]Conn),
	}
}

func (h *Hub) Add(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.ID()] = c
}

func (h *Hub) Remove(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, connID)
	for pin, rs := range h.rooms {
		if _, ok := rs[connID]; ok {
			delete(rs, connID)
			if len(rs) == 0 {
				delete(h.rooms, pin)
			}
		}
	}
}

func (h *Hub) JoinRoom(pin string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[pin]
	if !ok {
		rs = make(map[string]Conn)
		h.rooms[pin] = rs
	}
	rs[c.ID()] = c
}

func (h *Hub) LeaveRoom(pin, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rs, ok := h.rooms[pin]; ok {
		delete(rs, connID)
		if len(rs) == 0 {
			delete(h.rooms, pin)
		}
	}
}

// BroadcastRoom шлёт событие всем подключениям комнаты.
func (h *Hub) BroadcastRoom(pin string, msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if rs, ok := h.rooms[pin]; ok {
		for _, c := range rs {
			_ = c.Send(msg) // best-effort
		}
	}
}

// BroadcastAll шлёт событие каждому подключению, в комнате оно или нет.
func (h *Hub) BroadcastAll(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.conns {
		_ = c.Send(msg) // best-effort
	}
}
