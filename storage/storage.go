// Package storage persists the conversation snapshot across runs.
package storage

import (
	"fmt"
	"io"

	"jarvis/model"
)

// Backend names accepted by Open
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// Open returns the persister for backend rooted at dataDir. The returned
// closer releases database handles and is never nil.
func Open(backend, dataDir string) (model.Persister, io.Closer, error) {
	switch backend {
	case BackendJSON, "":
		s, err := NewJSONFile(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, nopCloser{}, nil
	case BackendSQLite:
		s, err := NewSQLite(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case BackendBolt:
		s, err := NewBolt(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case BackendMemory:
		return NewMemory(), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
