package service

import (
	"fmt"
	"math/rand/v2"

	"github.com/cwrk-planet/pinchat-service/internal/domain"
)

const (
	pinMin  = 100000
	pinSpan = 900000

	// Верхняя граница повторных попыток: при заполненном на ~99%
	// пространстве пинов 1000 попыток практически не дают шанса на отказ,
	// а бесконечный цикл исключён.
	maxPinAttempts = 1000
)

// PinAllocator выдаёт случайные 6-значные пины, свободные среди активных.
type PinAllocator struct {
	attempts int
	intN     func(n int) int // подменяется в тестах
}

func NewPinAllocator() *PinAllocator {
	return &PinAllocator{
		attempts: maxPinAttempts,
		intN:     rand.IntN,
	}
}

// Allocate возвращает пин, для которого taken(pin) == false.
func (a *PinAllocator) Allocate(taken func(pin string) bool) (string, error) {
	for i := 0; i < a.attempts; i++ {
		pin := fmt.Sprintf("%06d", pinMin+a.intN(pinSpan))
		if !taken(pin) {
			return pin, nil
		}
	}
	return "", domain.ErrNoFreePin
}
