package record

import "sync"

// keyLocks provides one mutex per record key so operations on the same key
// never interleave, while operations on different keys proceed concurrently.
// Entries are reference counted and removed once unused.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

// acquire blocks until the lock for key is held
func (l *keyLocks) acquire(key string) *keyLock {
	l.mu.Lock()
	kl, exists := l.locks[key]
	if !exists {
		kl = &keyLock{}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return kl
}

// release unlocks the key lock and drops it when no waiter remains
func (l *keyLocks) release(key string, kl *keyLock) {
	kl.mu.Unlock()

	l.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}
