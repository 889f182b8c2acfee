package economy

import "sync"

// keyedMutex provides mutual exclusion scoped to a single key, so unrelated
// users and proposals never contend with each other. Mutexes are retained for
// the lifetime of the engine; the map is bounded by the number of live keys.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// Lock acquires the mutex for key and returns its release func.
func (k *keyedMutex) Lock(key string) func() {
	m := k.get(key)
	m.Lock()
	return m.Unlock
}

// LockPair acquires both keys in lexicographic order so two concurrent
// transfers touching the same accounts can never deadlock.
func (k *keyedMutex) LockPair(a, b string) func() {
	if b < a {
		a, b = b, a
	}
	first, second := k.get(a), k.get(b)
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}

func userKey(id string) string     { return "user:" + id }
func proposalKey(id string) string { return "proposal:" + id }
