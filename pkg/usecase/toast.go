package usecase

import (
	"sync"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
)

// Toasts is the transient notification queue of one dashboard instance.
// Each toast is shown once: Drain hands it out and forgets it.
type Toasts struct {
	mu    sync.Mutex
	queue []model.Toast
}

func NewToasts() *Toasts {
	return &Toasts{}
}

// Push enqueues a toast
func (t *Toasts) Push(kind model.ToastKind, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = append(t.queue, model.NewToast(kind, message))
}

// Drain returns the pending toasts in push order and empties the queue
func (t *Toasts) Drain() []model.Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.queue
	t.queue = nil
	return out
}

// Len returns the number of pending toasts
func (t *Toasts) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}
