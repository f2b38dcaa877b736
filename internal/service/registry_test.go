package service

import (
	"testing"

	"github.com/cwrk-planet/pinchat-service/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BindIsExclusive(t *testing.T) {
	req := require.New(t)
	g := NewRegistry()
	g.AddConn("a")
	g.AddConn("b")

	req.NoError(g.Bind("alice", "a"))
	req.True(g.IsBound("alice"))

	err := g.Bind("alice", "b")
	req.ErrorIs(err, domain.ErrNicknameTaken)

	c, ok := g.Conn("a")
	req.True(ok)
	req.Equal("alice", c.Nickname)
}

func TestRegistry_ReleaseIsIdempotent(t *testing.T) {
	req := require.New(t)
	g := NewRegistry()
	g.AddConn("a")

	req.NoError(g.Bind("alice", "a"))
	g.Release("alice")
	req.False(g.IsBound("alice"))

	// повторный и «пустой» Release — no-op
	g.Release("alice")
	g.Release("")
	g.Release("nobody")

	// после освобождения никнейм снова доступен
	g.AddConn("b")
	req.NoError(g.Bind("alice", "b"))
}

func TestRegistry_RemoveConn(t *testing.T) {
	req := require.New(t)
	g := NewRegistry()
	g.AddConn("a")

	_, ok := g.Conn("a")
	req.True(ok)

	g.RemoveConn("a")
	_, ok = g.Conn("a")
	req.False(ok)
}
