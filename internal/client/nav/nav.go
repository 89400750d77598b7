// Package nav names the screens of the client and the navigation
// primitives the core relies on.
package nav

import (
	"sync"

	"github.com/atinyakov/animaltrack/internal/models"
)

// Screen is an addressable screen.
type Screen string

const (
	Login       Screen = "Login"
	AnimalsList Screen = "AnimalsList"
	Animal      Screen = "Animal"
)

// Navigator moves between screens.
type Navigator interface {
	// Reset replaces the whole stack with screen.
	Reset(screen Screen)
	// Push opens screen on top of the stack with an optional record.
	Push(screen Screen, record *models.Animal)
	// Back pops the top screen.
	Back()
}

type entry struct {
	screen Screen
	record *models.Animal
}

// Stack is a minimal in-memory Navigator. The CLI uses it to know which
// screen is active; tests use it to assert transitions.
type Stack struct {
	mu      sync.Mutex
	entries []entry
	history []Screen
}

// NewStack returns a Stack positioned on start.
func NewStack(start Screen) *Stack {
	return &Stack{entries: []entry{{screen: start}}, history: []Screen{start}}
}

func (s *Stack) Reset(screen Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = []entry{{screen: screen}}
	s.history = append(s.history, screen)
}

func (s *Stack) Push(screen Screen, record *models.Animal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{screen: screen, record: record})
	s.history = append(s.history, screen)
}

func (s *Stack) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) > 1 {
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.history = append(s.history, s.entries[len(s.entries)-1].screen)
}

// Current returns the top screen and its record.
func (s *Stack) Current() (Screen, *models.Animal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	top := s.entries[len(s.entries)-1]
	return top.screen, top.record
}

// History lists every screen that became active, oldest first.
func (s *Stack) History() []Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Screen(nil), s.history...)
}
