package ws

// Типы событий протокола. Клиент -> сервер:
const (
	TypeGetAvailableRooms   = "get_available_rooms"
	TypeGetRoomParticipants = "get_room_participants"
	TypeCreateRoom          = "create_room"
	TypeJoinRoom            = "join_room"
	TypeSendMessage         = "send_message"
	TypeLeaveRoom           = "leave_room"
)

// Сервер -> клиент:
const (
	TypeHostInfo         = "host_info"         // один раз при подключении
	TypeAvailableRooms   = "available_rooms"   // комнаты со свободными местами
	TypeRoomParticipants = "room_participants" // никнеймы в порядке входа
	TypeRoomCreated      = "room_created"
	TypeUserJoined       = "user_joined"
	TypeUserLeft         = "user_left"
	TypeRoomHistory      = "room_history" // реплей лога новому участнику
	TypeReceiveMessage   = "receive_message"
	TypeJoinError        = "join_error" // единственный канал ошибок протокола
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type HostInfoPayload struct {
	Host string `json:"host"`
	IP   string `json:"ip"`
}

// RoomInfoPayload = снапшот {pin, label, currentParticipants, maxParticipants}.
type RoomInfoPayload struct {
	Pin                 string `json:"pin"`
	Label               string `json:"label"`
	CurrentParticipants int    `json:"currentParticipants"`
	MaxParticipants     int    `json:"maxParticipants"`
}

// UserEventPayload — user_joined / user_left: снапшот комнаты плюс никнейм.
type UserEventPayload struct {
	RoomInfoPayload
	Nickname string `json:"nickname"`
}

type CreateRoomPayload struct {
	Label           string `json:"label" validate:"max=64"`
	MaxParticipants int    `json:"maxParticipants" validate:"omitempty,min=2,max=100"`
	Nickname        string `json:"nickname" validate:"required,max=32"`
}

type JoinRoomPayload struct {
	Pin      string `json:"pin" validate:"required,len=6,numeric"`
	Nickname string `json:"nickname" validate:"required,max=32"`
}

// ID обязателен, но проверяется вручную в handleSend: кривой send_message
// отбрасывается молча, без join_error, поэтому через validator он не идёт.
type ChatMessagePayload struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

type JoinErrorPayload struct {
	Message string `json:"message"`
}
