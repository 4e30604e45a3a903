package schedule

import (
	"sort"
	"sync"
	"time"

	"github.com/PabloGalante/shopassist/internal/domain"
)

// Manual is a scheduler driven by Advance. Callbacks run synchronously on
// the goroutine calling Advance, in due order.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	owner *Manual
	due   time.Duration
	seq   int
	f     func()
	done  bool
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) AfterFunc(d time.Duration, f func()) domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTask{owner: m, due: m.now + d, seq: m.seq, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

// Advance moves the clock forward by d and runs every callback that became due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	now := m.now
	m.mu.Unlock()

	for {
		t := m.popDue(now)
		if t == nil {
			return
		}
		t.f()
	}
}

// Pending reports how many callbacks are still waiting.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *Manual) popDue(now time.Duration) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].due != m.tasks[j].due {
			return m.tasks[i].due < m.tasks[j].due
		}
		return m.tasks[i].seq < m.tasks[j].seq
	})
	if len(m.tasks) == 0 || m.tasks[0].due > now {
		return nil
	}
	t := m.tasks[0]
	m.tasks = m.tasks[1:]
	t.done = true
	return t
}

func (t *manualTask) Stop() bool {
	m := t.owner
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.done {
		return false
	}
	t.done = true
	for i, other := range m.tasks {
		if other == t {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			break
		}
	}
	return true
}
