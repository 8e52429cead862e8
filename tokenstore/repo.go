package tokenstore

// Repo is the durable key-value medium behind the Store. Implementations
// live in subpackages (sqliterepo for the on-disk store, repofake for tests).
// Keys are opaque to the repo; namespacing is the Store's concern.
type Repo interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}
