package service

import (
	"fmt"
	"testing"

	"github.com/cwrk-planet/pinchat-service/internal/domain"
	"github.com/stretchr/testify/require"
)

func newTestDirectory() *Directory {
	return NewDirectory(NewRegistry(), NewPinAllocator(), 500)
}

func connect(d *Directory, ids ...string) {
	for _, id := range ids {
		d.Connect(id)
	}
}

func TestDirectory_CreateRoom_PinsAreUnique(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		connID := fmt.Sprintf("conn-%d", i)
		connect(d, connID)
		info, err := d.CreateRoom("room", 2, connID, fmt.Sprintf("user-%d", i))
		req.NoError(err)
		req.False(seen[info.Pin], "pin %s issued twice", info.Pin)
		seen[info.Pin] = true
	}

	available := d.ListAvailable()
	req.Len(available, 200)
}

func TestDirectory_JoinRoom_CapacityIsEnforced(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory()
	connect(d, "a", "b", "c")

	info, err := d.CreateRoom("small", 2, "a", "alice")
	req.NoError(err)

	_, err = d.JoinRoom(info.Pin, "b", "bob")
	req.NoError(err)

	// комната заполнена: третий получает RoomFull, счётчик не меняется
	_, err = d.JoinRoom(info.Pin, "c", "carol")
	req.ErrorIs(err, domain.ErrRoomFull)

	parts, err := d.ListParticipants("a")
	req.NoError(err)
	req.Equal([]string{"alice", "bob"}, parts)
	req.False(d.reg.IsBound("carol"))
}

func TestDirectory_NicknameIsGloballyExclusive(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory()
	connect(d, "a", "b", "c")

	_, err := d.CreateRoom("first", 5, "a", "alice")
	req.NoError(err)
	infoB, err := d.CreateRoom("second", 5, "b", "bob")
	req.NoError(err)

	// занятый никнейм отклоняется независимо от комнаты
	_, err = d.JoinRoom(infoB.Pin, "c", "alice")
	req.ErrorIs(err, domain.ErrNicknameTaken)

	_, err = d.CreateRoom("third", 5, "c", "bob")
	req.ErrorIs(err, domain.ErrNicknameTaken)

	// после выхода alice никнейм снова свободен
	_, left := d.Leave("a")
	req.True(left)
	_, err = d.JoinRoom(infoB.Pin, "c", "alice")
	req.NoError(err)
}

func TestDirectory_EmptyRoomIsDeleted(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory()
	connect(d, "a")

	info, err := d.CreateRoom("lonely", 5, "a", "alice")
	req.NoError(err)
	req.Len(d.ListAvailable(), 1)

	res, left := d.Leave("a")
	req.True(left)
	req.True(res.Deleted)
	req.Equal("alice", res.Nickname)
	req.Equal(0, res.Info.CurrentParticipants)
	req.Empty(d.ListAvailable())

	// комнаты больше нет и по пину
	_, err = d.JoinRoom(info.Pin, "a", "bob")
	req.ErrorIs(err, domain.ErrRoomNotFound)
}

func TestDirectory_LeaveIsIdempotent(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory()
	connect(d, "a")

	_, err := d.CreateRoom("room", 5, "a", "alice")
	req.NoError(err)

	_, left := d.Leave("a")
	req.True(left)
	_, left = d.Leave("a")
	req.False(left)

	// disconnect после leave — тоже no-op
	_, left = d.Disconnect("a")
	req.False(left)
}

func TestDirectory_DisconnectCleansUpLikeLeave(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory()
	connect(d, "a", "b")

	info, err := d.CreateRoom("room", 5, "a", "alice")
	req.NoError(err)
	_, err = d.JoinRoom(info.Pin, "b", "bob")
	req.NoError(err)

	res, left := d.Disconnect("a")
	req.True(left)
	req.False(res.Deleted)
	req.Equal("alice", res.Nickname)
	req.Equal([]string{"bob"}, res.Participants)
	req.Equal(1, res.Info.CurrentParticipants)

	// запись подключения снята, никнейм свободен
	req.False(d.reg.IsBound("alice"))
	_, ok := d.reg.Conn("a")
	req.False(ok)
}

func TestDirectory_AppendMessage_DroppedWithoutRoom(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory()
	connect(d, "a", "b")

	info, err := d.CreateRoom("room", 5, "a", "alice")
	req.NoError(err)

	// подключение вне комнаты: определённый no-op без мутаций
	_, delivered := d.AppendMessage("b", domain.Message{ID: "m1", Author: "bob", Content: "hi"})
	req.False(delivered)

	res, err := d.JoinRoom(info.Pin, "b", "bob")
	req.NoError(err)
	req.Empty(res.History)
}

func TestDirectory_AppendMessage_DeliveredToRoomLog(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory()
	connect(d, "a", "b")

	info, err := d.CreateRoom("room", 5, "a", "alice")
	req.NoError(err)

	pin, delivered := d.AppendMessage("a", domain.Message{ID: "m1", Author: "alice", Content: "hi"})
	req.True(delivered)
	req.Equal(info.Pin, pin)

	res, err := d.JoinRoom(info.Pin, "b", "bob")
	req.NoError(err)
	req.Len(res.History, 1)
	req.Equal("m1", res.History[0].ID)
}

func TestDirectory_MessageLogIsBounded(t *testing.T) {
	req := require.New(t)
	d := NewDirectory(NewRegistry(), NewPinAllocator(), 3)
	connect(d, "a", "b")

	info, err := d.CreateRoom("room", 5, "a", "alice")
	req.NoError(err)

	for i := 0; i < 5; i++ {
		_, delivered := d.AppendMessage("a", domain.Message{ID: fmt.Sprintf("m%d", i), Author: "alice"})
		req.True(delivered)
	}

	res, err := d.JoinRoom(info.Pin, "b", "bob")
	req.NoError(err)
	req.Len(res.History, 3)
	req.Equal("m2", res.History[0].ID) // самые старые вытеснены
	req.Equal("m4", res.History[2].ID)
}

func TestDirectory_ListAvailable_CreationOrderAndFullRoomsHidden(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory()
	connect(d, "a", "b", "c")

	first, err := d.CreateRoom("first", 2, "a", "alice")
	req.NoError(err)
	second, err := d.CreateRoom("second", 5, "b", "bob")
	req.NoError(err)

	list := d.ListAvailable()
	req.Len(list, 2)
	req.Equal(first.Pin, list[0].Pin)
	req.Equal(second.Pin, list[1].Pin)

	// повторный вызов без мутаций — тот же порядок
	req.Equal(list, d.ListAvailable())

	// заполненная комната исчезает из списка
	_, err = d.JoinRoom(first.Pin, "c", "carol")
	req.NoError(err)
	list = d.ListAvailable()
	req.Len(list, 1)
	req.Equal(second.Pin, list[0].Pin)
}

func TestDirectory_CreateOrJoinWhileInRoomIsRejected(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory()
	connect(d, "a", "b")

	info, err := d.CreateRoom("room", 5, "a", "alice")
	req.NoError(err)
	_, err = d.JoinRoom(info.Pin, "b", "bob")
	req.NoError(err)

	_, err = d.CreateRoom("another", 5, "a", "alice2")
	req.ErrorIs(err, domain.ErrAlreadyInRoom)
	_, err = d.JoinRoom(info.Pin, "b", "bob2")
	req.ErrorIs(err, domain.ErrAlreadyInRoom)

	// неудачные попытки не привязали новые никнеймы
	req.False(d.reg.IsBound("alice2"))
	req.False(d.reg.IsBound("bob2"))
}

func TestDirectory_JoinUnknownPinMutatesNothing(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory()
	connect(d, "a")

	_, err := d.JoinRoom("000000", "a", "carol")
	req.ErrorIs(err, domain.ErrRoomNotFound)
	req.False(d.reg.IsBound("carol"))
	req.Empty(d.ListAvailable())
}

func TestDirectory_ListParticipants_JoinOrder(t *testing.T) {
	req := require.New(t)
	d := newTestDirectory()
	connect(d, "a", "b", "c")

	info, err := d.CreateRoom("room", 5, "a", "alice")
	req.NoError(err)
	_, err = d.JoinRoom(info.Pin, "b", "bob")
	req.NoError(err)
	_, err = d.JoinRoom(info.Pin, "c", "carol")
	req.NoError(err)

	parts, err := d.ListParticipants("b")
	req.NoError(err)
	req.Equal([]string{"alice", "bob", "carol"}, parts)

	// после выхода из середины порядок оставшихся сохраняется
	_, left := d.Leave("b")
	req.True(left)
	parts, err = d.ListParticipants("a")
	req.NoError(err)
	req.Equal([]string{"alice", "carol"}, parts)

	_, err = d.ListParticipants("b")
	req.ErrorIs(err, domain.ErrNotInRoom)
}
