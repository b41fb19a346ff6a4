package app

import (
	"sync"

	"mathquiz/internal/domain"
)

// View is the rendering surface a controller draws on. Implementations must not
// call back into the controller; they run while it holds its lock.
type View interface {
	SetSlot(slot domain.Slot, value any)
	ShowScreen(screen domain.Screen)
}

// RecordingView keeps the latest value per slot and the visible screen.
type RecordingView struct {
	mu      sync.Mutex
	slots   map[domain.Slot]any
	screen  domain.Screen
	screens []domain.Screen
}

func NewRecordingView() *RecordingView {
	return &RecordingView{slots: make(map[domain.Slot]any)}
}

func (v *RecordingView) SetSlot(slot domain.Slot, value any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.slots[slot] = value
}

func (v *RecordingView) ShowScreen(screen domain.Screen) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.screen = screen
	v.screens = append(v.screens, screen)
}

func (v *RecordingView) Slot(slot domain.Slot) (any, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	value, ok := v.slots[slot]
	return value, ok
}

func (v *RecordingView) Screen() domain.Screen {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.screen
}

// Screens returns every screen shown, in order.
func (v *RecordingView) Screens() []domain.Screen {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]domain.Screen(nil), v.screens...)
}
