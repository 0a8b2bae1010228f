package meeting

import "sync"

// roomLocks is a keyed mutex. Entries are reference counted so rooms
// that go quiet do not pin memory.
type roomLocks struct {
	mu sync.Mutex
	m  map[string]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func newRoomLocks() *roomLocks { return &roomLocks{m: map[string]*roomLock{}} }

// lock blocks until roomID is held and returns its release func.
func (l *roomLocks) lock(roomID string) func() {
	l.mu.Lock()
	rl := l.m[roomID]
	if rl == nil {
		rl = &roomLock{}
		l.m[roomID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()
	return func() {
		rl.mu.Unlock()
		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.m, roomID)
		}
		l.mu.Unlock()
	}
}

func (l *roomLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
