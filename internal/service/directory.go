package service

import (
	"sync"

	"github.com/cwrk-planet/pinchat-service/internal/domain"
)

// JoinResult — всё, что транспорту нужно разослать после входа в комнату.
type JoinResult struct {
	Info         domain.RoomInfo
	History      []domain.Message
	Participants []string
	Nickname     string
}

// LeaveResult — снапшот сразу после выхода участника. Если комната при этом
// опустела и была удалена, Deleted == true, а Info описывает её последнее
// состояние — значения используются только для нотификаций.
type LeaveResult struct {
	Info         domain.RoomInfo
	Nickname     string
	Participants []string
	Deleted      bool
}

// Directory владеет картой живых комнат и реестром подключений. Все
// check-then-act последовательности (существование + вместимость + никнейм)
// выполняются под одним мьютексом, который накрывает комнаты, множество
// никнеймов и записи подключений разом — порознь они разъезжаются.
type Directory struct {
	mu         sync.Mutex
	rooms      map[string]*domain.Room
	order      []string // пины в порядке создания комнат
	reg        *Registry
	pins       *PinAllocator
	maxHistory int
}

func NewDirectory(reg *Registry, pins *PinAllocator, maxHistory int) *Directory {
	return &Directory{
		rooms:      make(map[string]*domain.Room),
		reg:        reg,
		pins:       pins,
		maxHistory: maxHistory,
	}
}

// Connect регистрирует новое подключение транспорта.
func (d *Directory) Connect(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reg.AddConn(connID)
}

// CreateRoom создаёт комнату с создателем в роли единственного участника.
// Либо применяется целиком, либо не меняет ничего.
func (d *Directory) CreateRoom(label string, maxParticipants int, connID, nickname string) (domain.RoomInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c, ok := d.reg.Conn(connID); ok && c.RoomPin != "" {
		return domain.RoomInfo{}, domain.ErrAlreadyInRoom
	}
	if err := d.reg.Bind(nickname, connID); err != nil {
		return domain.RoomInfo{}, err
	}

	pin, err := d.pins.Allocate(func(pin string) bool {
		_, taken := d.rooms[pin]
		return taken
	})
	if err != nil {
		d.reg.Release(nickname)
		return domain.RoomInfo{}, err
	}

	room := domain.NewRoom(pin, label, maxParticipants, d.maxHistory)
	if err := room.Add(connID, nickname); err != nil {
		d.reg.Release(nickname)
		return domain.RoomInfo{}, err
	}
	d.rooms[pin] = room
	d.order = append(d.order, pin)
	d.reg.setRoom(connID, pin)

	return room.Info(), nil
}

// JoinRoom добавляет участника в существующую комнату. Проверки существования,
// вместимости и никнейма с последующей вставкой — одна атомарная единица.
func (d *Directory) JoinRoom(pin, connID, nickname string) (JoinResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c, ok := d.reg.Conn(connID); ok && c.RoomPin != "" {
		return JoinResult{}, domain.ErrAlreadyInRoom
	}
	room, ok := d.rooms[pin]
	if !ok {
		return JoinResult{}, domain.ErrRoomNotFound
	}
	if room.Full() {
		return JoinResult{}, domain.ErrRoomFull
	}
	if err := d.reg.Bind(nickname, connID); err != nil {
		return JoinResult{}, err
	}
	if err := room.Add(connID, nickname); err != nil {
		d.reg.Release(nickname)
		return JoinResult{}, err
	}
	d.reg.setRoom(connID, pin)

	return JoinResult{
		Info:         room.Info(),
		History:      room.History(),
		Participants: room.Nicknames(),
		Nickname:     nickname,
	}, nil
}

// Leave выводит подключение из его текущей комнаты и освобождает никнейм.
// Идемпотентна: повторный вызов для подключения вне комнаты возвращает
// ok == false и ничего не меняет. Опустевшая комната удаляется тут же.
func (d *Directory) Leave(connID string) (LeaveResult, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.leaveLocked(connID)
}

func (d *Directory) leaveLocked(connID string) (LeaveResult, bool) {
	c, ok := d.reg.Conn(connID)
	if !ok || c.RoomPin == "" {
		// никнейм мог остаться привязанным только при рассинхроне,
		// но Release для незанятого — no-op, так что зовём всегда
		d.reg.Release(c.Nickname)
		return LeaveResult{}, false
	}

	room := d.rooms[c.RoomPin]
	nickname, _ := room.Remove(connID)
	d.reg.Release(nickname)
	d.reg.setRoom(connID, "")

	res := LeaveResult{
		Info:         room.Info(),
		Nickname:     nickname,
		Participants: room.Nicknames(),
	}
	if room.Size() == 0 {
		delete(d.rooms, c.RoomPin)
		for i, p := range d.order {
			if p == c.RoomPin {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
		res.Deleted = true
	}
	return res, true
}

// Disconnect — закрытие транспорта: тот же путь очистки, что и явный выход,
// плюс удаление записи подключения. Идемпотентна.
func (d *Directory) Disconnect(connID string) (LeaveResult, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	res, left := d.leaveLocked(connID)
	d.reg.RemoveConn(connID)
	return res, left
}

// ListAvailable возвращает комнаты со свободными местами в порядке создания.
func (d *Directory) ListAvailable() []domain.RoomInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]domain.RoomInfo, 0, len(d.order))
	for _, pin := range d.order {
		if room := d.rooms[pin]; !room.Full() {
			out = append(out, room.Info())
		}
	}
	return out
}

// AppendMessage дописывает сообщение в лог текущей комнаты подключения и
// возвращает её пин для адресной рассылки. Подключение вне комнаты —
// определённый протоколом no-op (delivered == false), не ошибка.
func (d *Directory) AppendMessage(connID string, msg domain.Message) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.reg.Conn(connID)
	if !ok || c.RoomPin == "" {
		return "", false
	}
	room, ok := d.rooms[c.RoomPin]
	if !ok {
		return "", false
	}
	room.Append(msg)
	return c.RoomPin, true
}

// ListParticipants возвращает никнеймы текущей комнаты в порядке входа.
func (d *Directory) ListParticipants(connID string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.reg.Conn(connID)
	if !ok || c.RoomPin == "" {
		return nil, domain.ErrNotInRoom
	}
	room, ok := d.rooms[c.RoomPin]
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	return room.Nicknames(), nil
}
