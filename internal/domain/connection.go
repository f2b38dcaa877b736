package domain

// Connection — учётная запись живого подключения. Никнейм пустой до
// create/join, RoomPin пустой пока подключение не вошло в комнату.
// Запись принадлежит реестру и наружу отдаётся только копией.
type Connection struct {
	ID       string
	Nickname string
	RoomPin  string
}
