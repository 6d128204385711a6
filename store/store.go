package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"wondervoice/core"

	"github.com/bytedance/sonic"
)

// FileStore persists conversation history as a JSON array of
// {role, content} records. Load self-heals: a missing or unreadable file
// yields the canonical system-only history instead of an error. Save writes
// a temporary file in the store directory and renames it over the target so
// a crash mid-write never leaves a truncated snapshot.
type FileStore struct {
	path      string
	directive string
	logger    *core.Logger
}

// record is the on-disk message layout. Unknown extra fields in stored
// records are ignored on load.
type record struct {
	Role    core.MessageRole `json:"role"`
	Content string           `json:"content"`
}

// NewFileStore creates a store backed by the file at path. The directive is
// the session system prompt used to seed or repair the history head.
func NewFileStore(path, directive string, logger *core.Logger) *FileStore {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &FileStore{
		path:      path,
		directive: directive,
		logger:    logger,
	}
}

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Load reads the persisted history. It never fails the caller: missing or
// corrupt state resets to the system-only default, and a non-system head is
// repaired by prepending the directive once.
func (s *FileStore) Load() ([]core.Message, error) {
	fallback := []core.Message{core.SystemMessage(s.directive)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("history file unreadable, starting fresh", "path", s.path, "error", err)
		}
		return fallback, nil
	}

	var records []record
	if err := sonic.Unmarshal(data, &records); err != nil {
		s.logger.Warn("history file corrupt, starting fresh",
			"path", s.path, "error", core.NewTurnError(core.StoreCorruption, err))
		return fallback, nil
	}

	history := make([]core.Message, 0, len(records)+1)
	for _, r := range records {
		if !r.Role.Valid() {
			s.logger.Warn("history record with unknown role dropped", "role", string(r.Role))
			continue
		}
		history = append(history, core.Message{Role: r.Role, Content: r.Content})
	}

	if len(history) == 0 || history[0].Role != core.MessageRoleSystem {
		history = append([]core.Message{core.SystemMessage(s.directive)}, history...)
	}
	return history, nil
}

// Save atomically replaces the persisted history with the given one.
func (s *FileStore) Save(history []core.Message) error {
	records := make([]record, 0, len(history))
	for _, m := range history {
		records = append(records, record{Role: m.Role, Content: m.Content})
	}

	data, err := sonic.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("create temp history file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp history file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}
