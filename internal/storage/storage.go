// Package storage provides the key-value store the quota tracker and result
// cache persist into. Implementations are expected to survive process
// restarts but callers must tolerate them being unavailable.
package storage

// Store is a string-keyed blob store with no transactions. Get reports
// whether the key was present; a missing key is not an error.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
