package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/model"
	"jarvis/model/testutil"
)

func TestPersisterRoundTrip(t *testing.T) {
	for _, backend := range []string{BackendJSON, BackendSQLite, BackendBolt, BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			p, closer, err := Open(backend, t.TempDir())
			require.NoError(t, err)
			defer closer.Close()

			empty, err := p.Load()
			require.NoError(t, err)
			assert.Empty(t, empty)

			want := testutil.TestMessages(7)
			require.NoError(t, p.Save(want))

			got, err := p.Load()
			require.NoError(t, err)
			requireSameMessages(t, want, got)

			// Save overwrites, it does not append
			require.NoError(t, p.Save(want[:2]))
			got, err = p.Load()
			require.NoError(t, err)
			requireSameMessages(t, want[:2], got)

			require.NoError(t, p.Clear())
			got, err = p.Load()
			require.NoError(t, err)
			assert.Empty(t, got)

			// Clearing twice is fine
			require.NoError(t, p.Clear())
		})
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, _, err := Open("redis", t.TempDir())
	require.Error(t, err)
}

func TestJSONFileCorruptSnapshot(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "{{{"},
		{name: "not an array", data: `{"role":"user"}`},
		{name: "bad role", data: `[{"id":"1","role":"robot","content":"x","timestamp":"2025-01-01T00:00:00Z"}]`},
		{name: "bad timestamp", data: `[{"id":"1","role":"user","content":"x","timestamp":"yesterday"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			s, err := NewJSONFile(dir)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(s.Path(), []byte(tt.data), 0600))

			_, err = s.Load()
			var perr *PersistenceError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, "load", perr.Op)
		})
	}
}

func TestJSONFilePermissions(t *testing.T) {
	dir := t.TempDir()
	s, err := NewJSONFile(dir)
	require.NoError(t, err)
	require.NoError(t, s.Save(testutil.TestMessages(1)))

	info, err := os.Stat(filepath.Join(dir, jsonHistoryFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestExportToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "export.json")
	require.NoError(t, ExportToJSON(testutil.TestMessages(3), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message 2"`)

	assert.Contains(t, GenerateExportPath(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)), "jarvis-chat-20250102-030405.json")
}

func requireSameMessages(t *testing.T, want, got []model.Message) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Role, got[i].Role)
		assert.Equal(t, want[i].Content, got[i].Content)
		assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp), "timestamp %d: %v != %v", i, want[i].Timestamp, got[i].Timestamp)
	}
}
