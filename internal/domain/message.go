package domain

// Message — одно сообщение чата. ID присваивает отправитель; уникален в
// пределах комнаты, между комнатами коллизии не дедуплицируются.
type Message struct {
	ID      string
	Author  string
	Content string
}
