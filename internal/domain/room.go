package domain

// RoomInfo — снапшот комнаты, который рассылается клиентам после любого
// изменения состава участников.
type RoomInfo struct {
	Pin                 string
	Label               string
	CurrentParticipants int
	MaxParticipants     int
}

// Room — эфемерная комната с ограниченной вместимостью. Живёт только в
// памяти и только пока в ней есть хотя бы один участник.
type Room struct {
	Pin             string
	Label           string
	MaxParticipants int

	order      []string          // conn ids, порядок входа
	members    map[string]string // conn id -> nickname
	messages   []Message
	maxHistory int
}

func NewRoom(pin, label string, maxParticipants, maxHistory int) *Room {
	return &Room{
		Pin:             pin,
		Label:           label,
		MaxParticipants: maxParticipants,
		members:         make(map[string]string),
		maxHistory:      maxHistory,
	}
}

func (r *Room) Size() int  { return len(r.members) }
func (r *Room) Full() bool { return len(r.members) >= r.MaxParticipants }

// Add регистрирует участника. Инвариант Size() <= MaxParticipants
// обеспечивается здесь, а не вызывающим кодом.
func (r *Room) Add(connID, nickname string) error {
	if r.Full() {
		return ErrRoomFull
	}
	if _, ok := r.members[connID]; ok {
		return ErrAlreadyInRoom
	}
	r.members[connID] = nickname
	r.order = append(r.order, connID)
	return nil
}

// Remove удаляет участника и возвращает его никнейм.
func (r *Room) Remove(connID string) (string, bool) {
	nickname, ok := r.members[connID]
	if !ok {
		return "", false
	}
	delete(r.members, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nickname, true
}

// Nicknames возвращает никнеймы в порядке входа.
func (r *Room) Nicknames() []string {
	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.members[id])
	}
	return out
}

// Append дописывает сообщение в лог комнаты. Лог ограничен maxHistory:
// при переполнении самое старое сообщение вытесняется.
func (r *Room) Append(msg Message) {
	if r.maxHistory > 0 && len(r.messages) >= r.maxHistory {
		r.messages = r.messages[1:]
	}
	r.messages = append(r.messages, msg)
}

// History возвращает копию лога; сами сообщения неизменяемы.
func (r *Room) History() []Message {
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

func (r *Room) Info() RoomInfo {
	return RoomInfo{
		Pin:                 r.Pin,
		Label:               r.Label,
		CurrentParticipants: len(r.members),
		MaxParticipants:     r.MaxParticipants,
	}
}
