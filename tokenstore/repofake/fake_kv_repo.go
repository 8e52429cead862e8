package repofake

import (
	"sync"

	"github.com/myfintrack/fintrack-go/tokenstore"
)

var _ tokenstore.Repo = (*FakeKVRepo)(nil)

// FakeKVRepo is an in-memory key-value repo for tests. FailWrites makes
// Set/Delete return Err to exercise the store's degrade-and-log paths.
type FakeKVRepo struct {
	values     map[string]string
	lock       sync.RWMutex
	FailWrites bool
	Err        error
}

func NewFakeKVRepo() *FakeKVRepo {
	return &FakeKVRepo{values: make(map[string]string)}
}

func (r *FakeKVRepo) Get(key string) (string, bool, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *FakeKVRepo) Set(key, value string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.FailWrites {
		return r.Err
	}
	r.values[key] = value
	return nil
}

func (r *FakeKVRepo) Delete(key string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.FailWrites {
		return r.Err
	}
	delete(r.values, key)
	return nil
}

func (r *FakeKVRepo) Close() error { return nil }

// Len reports the number of stored keys.
func (r *FakeKVRepo) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.values)
}
