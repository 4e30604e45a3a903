// Package schedule implements domain.Scheduler on real timers and on a
// manually advanced clock.
package schedule

import (
	"time"

	"github.com/PabloGalante/shopassist/internal/domain"
)

// Timer runs callbacks on the runtime timer goroutine.
type Timer struct{}

func NewTimer() *Timer {
	return &Timer{}
}

func (Timer) AfterFunc(d time.Duration, f func()) domain.Task {
	return time.AfterFunc(d, f)
}
