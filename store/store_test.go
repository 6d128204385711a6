package store

import (
	"os"
	"path/filepath"
	"testing"

	"wondervoice/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDirective = "You are a test assistant."

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.json")
	return NewFileStore(path, testDirective, nil)
}

func TestLoadMissingFileYieldsSystemOnlyHistory(t *testing.T) {
	s := newTestStore(t)

	history, err := s.Load()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, core.MessageRoleSystem, history[0].Role)
	assert.Equal(t, testDirective, history[0].Content)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	want := []core.Message{
		core.SystemMessage(testDirective),
		core.UserMessage("what is Rust ownership"),
		core.AssistantMessage("Ownership tracks who may free memory."),
	}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadCorruptFileSelfHeals(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	history, err := s.Load()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, core.SystemMessage(testDirective), history[0])
}

func TestLoadToleratesUnknownExtraFields(t *testing.T) {
	s := newTestStore(t)
	raw := `[
		{"role":"system","content":"You are a test assistant.","ts":12345},
		{"role":"user","content":"hi","client":"web"}
	]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(raw), 0o644))

	history, err := s.Load()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hi", history[1].Content)
}

func TestLoadRepairsMissingSystemHead(t *testing.T) {
	s := newTestStore(t)
	raw := `[{"role":"user","content":"hello"},{"role":"assistant","content":"hey"}]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(raw), 0o644))

	history, err := s.Load()
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, core.SystemMessage(testDirective), history[0])
	assert.Equal(t, core.MessageRoleUser, history[1].Role)
}

func TestLoadDropsUnknownRoles(t *testing.T) {
	s := newTestStore(t)
	raw := `[
		{"role":"system","content":"You are a test assistant."},
		{"role":"tool","content":"tool output"},
		{"role":"assistant","content":"hey"}
	]`
	require.NoError(t, os.WriteFile(s.Path(), []byte(raw), 0o644))

	history, err := s.Load()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, core.MessageRoleAssistant, history[1].Role)
}

func TestSaveToleratesConsecutiveSameRoleEntries(t *testing.T) {
	s := newTestStore(t)
	want := []core.Message{
		core.SystemMessage(testDirective),
		core.UserMessage("first try"),
		core.UserMessage("second try"),
		core.AssistantMessage("answering the retry"),
	}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveLeavesNoTempFilesBehind(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, "history.json"), testDirective, nil)

	require.NoError(t, s.Save([]core.Message{core.SystemMessage(testDirective)}))
	require.NoError(t, s.Save([]core.Message{
		core.SystemMessage(testDirective),
		core.UserMessage("hi"),
		core.AssistantMessage("hello"),
	}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "history.json", entries[0].Name())
}

func TestSaveOverwriteKeepsLatestSnapshot(t *testing.T) {
	s := newTestStore(t)

	first := []core.Message{core.SystemMessage(testDirective), core.UserMessage("a"), core.AssistantMessage("b")}
	require.NoError(t, s.Save(first))

	second := append(core.CloneHistory(first), core.UserMessage("c"), core.AssistantMessage("d"))
	require.NoError(t, s.Save(second))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, second, got)
}
