package service

import "github.com/cwrk-planet/pinchat-service/internal/domain"

// Registry хранит записи живых подключений и глобальное множество занятых
// никнеймов. Сам по себе не потокобезопасен: Directory мутирует его под тем
// же мьютексом, что и карту комнат, чтобы оба всегда были согласованы.
type Registry struct {
	conns     map[string]*domain.Connection
	nicknames map[string]string // nickname -> conn id
}

func NewRegistry() *Registry {
	return &Registry{
		conns:     make(map[string]*domain.Connection),
		nicknames: make(map[string]string),
	}
}

func (g *Registry) AddConn(id string) {
	if _, ok := g.conns[id]; !ok {
		g.conns[id] = &domain.Connection{ID: id}
	}
}

func (g *Registry) RemoveConn(id string) {
	delete(g.conns, id)
}

// Conn возвращает копию записи подключения.
func (g *Registry) Conn(id string) (domain.Connection, bool) {
	c, ok := g.conns[id]
	if !ok {
		return domain.Connection{}, false
	}
	return *c, true
}

// Bind атомарно проверяет и резервирует никнейм за подключением.
func (g *Registry) Bind(nickname, connID string) error {
	if _, ok := g.nicknames[nickname]; ok {
		return domain.ErrNicknameTaken
	}
	g.nicknames[nickname] = connID
	if c, ok := g.conns[connID]; ok {
		c.Nickname = nickname
	}
	return nil
}

// Release освобождает никнейм; для незанятого — no-op.
func (g *Registry) Release(nickname string) {
	if nickname == "" {
		return
	}
	if connID, ok := g.nicknames[nickname]; ok {
		delete(g.nicknames, nickname)
		if c, ok := g.conns[connID]; ok && c.Nickname == nickname {
			c.Nickname = ""
		}
	}
}

func (g *Registry) IsBound(nickname string) bool {
	_, ok := g.nicknames[nickname]
	return ok
}

func (g *Registry) setRoom(connID, pin string) {
	if c, ok := g.conns[connID]; ok {
		c.RoomPin = pin
	}
}
