package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/cwrk-planet/pinchat-service/internal/domain"
	"github.com/cwrk-planet/pinchat-service/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const (
	defaultMaxParticipants = 5
	defaultLabel           = "untitled"
)

// Router переводит входящие события протокола в вызовы Directory и
// рассылает получившиеся снапшоты через Hub. События обрабатываются строго
// по одному: mu делает мутацию Directory и смену раскладки Hub одной
// атомарной единицей — между коммитом join и подпиской на рассылку не может
// вклиниться чужой send_message.
type Router struct {
	mu       sync.Mutex
	dir      *service.Directory
	hub      *Hub
	validate *validator.Validate
	hostInfo HostInfoPayload
}

func NewRouter(dir *service.Directory, hub *Hub, hostInfo HostInfoPayload) *Router {
	return &Router{
		dir:      dir,
		hub:      hub,
		validate: validator.New(),
		hostInfo: hostInfo,
	}
}

// HandleConnect регистрирует подключение и отправляет ему host_info.
func (rt *Router) HandleConnect(c Conn) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.hub.Add(c)
	rt.dir.Connect(c.ID())
	_ = c.Send(Message{Type: TypeHostInfo, Payload: rt.hostInfo})
	slog.Debug("ws connected", "conn", c.ID())
}

// HandleDisconnect — закрытие транспорта: та же очистка, что и явный
// leave_room, плюс снятие подключения с учёта. Повторный вызов безопасен.
func (rt *Router) HandleDisconnect(c Conn) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	res, left := rt.dir.Disconnect(c.ID())
	rt.hub.Remove(c.ID())
	if left {
		rt.notifyLeft(res)
	}
	slog.Debug("ws disconnected", "conn", c.ID())
}

// HandleEvent разбирает одно входящее событие. Кривой payload отбрасывается
// с join_error только запросившему; чужие комнаты и подключения не трогаются.
func (rt *Router) HandleEvent(c Conn, msg Message) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	switch msg.Type {
	case TypeGetAvailableRooms:
		_ = c.Send(Message{Type: TypeAvailableRooms, Payload: roomInfos(rt.dir.ListAvailable())})

	case TypeGetRoomParticipants:
		parts, err := rt.dir.ListParticipants(c.ID())
		if err != nil {
			rt.sendError(c, err)
			return
		}
		_ = c.Send(Message{Type: TypeRoomParticipants, Payload: parts})

	case TypeCreateRoom:
		rt.handleCreate(c, msg.Payload)

	case TypeJoinRoom:
		rt.handleJoin(c, msg.Payload)

	case TypeSendMessage:
		rt.handleSend(c, msg.Payload)

	case TypeLeaveRoom:
		if res, left := rt.dir.Leave(c.ID()); left {
			rt.hub.LeaveRoom(res.Info.Pin, c.ID())
			rt.notifyLeft(res)
		}

	default:
		// неизвестные события игнорируем
	}
}

func (rt *Router) handleCreate(c Conn, payload interface{}) {
	var p CreateRoomPayload
	if err := decode(payload, &p); err != nil {
		rt.sendError(c, err)
		return
	}
	if err := rt.validate.Struct(p); err != nil {
		rt.sendError(c, err)
		return
	}
	if p.MaxParticipants == 0 {
		p.MaxParticipants = defaultMaxParticipants
	}
	if p.Label == "" {
		p.Label = defaultLabel
	}

	info, err := rt.dir.CreateRoom(p.Label, p.MaxParticipants, c.ID(), p.Nickname)
	if err != nil {
		rt.sendError(c, err)
		return
	}
	rt.hub.JoinRoom(info.Pin, c)

	_ = c.Send(Message{Type: TypeRoomCreated, Payload: roomInfo(info)})
	rt.broadcastAvailable()
	slog.Info("room created", "pin", info.Pin, "label", info.Label, "max", info.MaxParticipants)
}

func (rt *Router) handleJoin(c Conn, payload interface{}) {
	var p JoinRoomPayload
	if err := decode(payload, &p); err != nil {
		rt.sendError(c, err)
		return
	}
	if err := rt.validate.Struct(p); err != nil {
		rt.sendError(c, err)
		return
	}

	res, err := rt.dir.JoinRoom(p.Pin, c.ID(), p.Nickname)
	if err != nil {
		rt.sendError(c, err)
		return
	}
	rt.hub.JoinRoom(p.Pin, c)

	// порядок важен: сначала история новичку, затем комнате — состав и событие входа
	_ = c.Send(Message{Type: TypeRoomHistory, Payload: chatMessages(res.History)})
	rt.hub.BroadcastRoom(p.Pin, Message{Type: TypeRoomParticipants, Payload: res.Participants})
	rt.hub.BroadcastRoom(p.Pin, Message{
		Type:    TypeUserJoined,
		Payload: UserEventPayload{RoomInfoPayload: roomInfo(res.Info), Nickname: res.Nickname},
	})
	rt.broadcastAvailable()
	slog.Info("user joined", "pin", p.Pin, "nickname", res.Nickname)
}

func (rt *Router) handleSend(c Conn, payload interface{}) {
	var p ChatMessagePayload
	if err := decode(payload, &p); err != nil || p.ID == "" {
		return // молчаливый no-op, как и отправка вне комнаты
	}

	pin, delivered := rt.dir.AppendMessage(c.ID(), domain.Message{
		ID:      p.ID,
		Author:  p.Author,
		Content: p.Content,
	})
	if !delivered {
		return
	}
	rt.hub.BroadcastRoom(pin, Message{Type: TypeReceiveMessage, Payload: p})
}

// notifyLeft рассылает user_left и обновлённый состав оставшимся в комнате,
// затем всем — обновлённый список доступных комнат.
func (rt *Router) notifyLeft(res service.LeaveResult) {
	if !res.Deleted {
		rt.hub.BroadcastRoom(res.Info.Pin, Message{
			Type:    TypeUserLeft,
			Payload: UserEventPayload{RoomInfoPayload: roomInfo(res.Info), Nickname: res.Nickname},
		})
		rt.hub.BroadcastRoom(res.Info.Pin, Message{Type: TypeRoomParticipants, Payload: res.Participants})
	}
	rt.broadcastAvailable()
	slog.Info("user left", "pin", res.Info.Pin, "nickname", res.Nickname, "room_deleted", res.Deleted)
}

func (rt *Router) broadcastAvailable() {
	rt.hub.BroadcastAll(Message{Type: TypeAvailableRooms, Payload: roomInfos(rt.dir.ListAvailable())})
}

func (rt *Router) sendError(c Conn, err error) {
	_ = c.Send(Message{Type: TypeJoinError, Payload: JoinErrorPayload{Message: errorText(err)}})
}

// errorText переводит доменные ошибки в человекочитаемый текст join_error.
// Структурированных кодов в протоколе нет.
func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrNicknameTaken):
		return "this nickname is already active in a room or on another device"
	case errors.Is(err, domain.ErrRoomNotFound):
		return "room not found, check the pin and try again"
	case errors.Is(err, domain.ErrRoomFull):
		return "the room is full, try again later or create a new one"
	case errors.Is(err, domain.ErrNotInRoom):
		return "you are not in a room"
	case errors.Is(err, domain.ErrAlreadyInRoom):
		return "leave your current room first"
	case errors.Is(err, domain.ErrNoFreePin):
		return "no free room pins right now, try again later"
	default:
		return "invalid request"
	}
}

// -------- проекции domain -> wire --------

func roomInfo(info domain.RoomInfo) RoomInfoPayload {
	return RoomInfoPayload{
		Pin:                 info.Pin,
		Label:               info.Label,
		CurrentParticipants: info.CurrentParticipants,
		MaxParticipants:     info.MaxParticipants,
	}
}

func roomInfos(infos []domain.RoomInfo) []RoomInfoPayload {
	return lo.Map(infos, func(info domain.RoomInfo, _ int) RoomInfoPayload {
		return roomInfo(info)
	})
}

func chatMessages(msgs []domain.Message) []ChatMessagePayload {
	return lo.Map(msgs, func(m domain.Message, _ int) ChatMessagePayload {
		return ChatMessagePayload{ID: m.ID, Author: m.Author, Content: m.Content}
	})
}

// -------- helpers --------

func decode(payload interface{}, dst interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}
