package events

import "sync"

// Event names published by the services.
const (
	TaskCreated     = "task.created"
	TaskCompleted   = "task.completed"
	TaskEdited      = "task.edited"
	TaskDeleted     = "task.deleted"
	AttachmentAdded = "attachment.added"
)

// Bus is the notification fan-out the services publish to. It is
// injected at construction so tests can swap in a recorder.
type Bus interface {
	Publish(event string, payload any)
	Subscribe(event string, fn func(payload any))
}

// MemoryBus is a synchronous in-process Bus. Handlers run on the
// publisher's goroutine.
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]func(payload any)
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: map[string][]func(payload any){}}
}

func (b *MemoryBus) Subscribe(event string, fn func(payload any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[event] = append(b.handlers[event], fn)
}

func (b *MemoryBus) Publish(event string, payload any) {
	b.mu.RLock()
	handlers := b.handlers[event]
	b.mu.RUnlock()
	for _, fn := range handlers {
		fn(payload)
	}
}

// NopBus discards everything; handy where notifications are unwanted.
type NopBus struct{}

func (NopBus) Publish(string, any) {}

func (NopBus) Subscribe(string, func(payload any)) {}
