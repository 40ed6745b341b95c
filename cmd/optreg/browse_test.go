package main

import (
	"errors"
	"testing"

	"optreg/cmd/optreg/option"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func browseRegistry(t *testing.T) *option.Registry {
	t.Helper()
	r := option.NewRegistry()
	r.MustRegister(option.Definition{
		Name:         "useLoginHook",
		Kind:         option.KindChoice,
		Choices:      []option.Choice{{Value: 1, Label: "Yes"}, {Value: 0, Label: "No"}},
		DefaultValue: 0,
	})
	r.MustRegister(option.Definition{Name: "debug", Kind: option.KindBoolean, DefaultValue: false})
	r.MustRegister(option.Definition{Name: "title", Kind: option.KindText, DefaultValue: "home"})
	return r
}

func press(t *testing.T, m browseModel, keys ...tea.KeyMsg) browseModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		var ok bool
		m, ok = next.(browseModel)
		require.True(t, ok)
	}
	return m
}

var (
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyReset = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}
	keySave  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")}
	keyQuit  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}
)

func TestBrowse_SpaceCyclesChoices(t *testing.T) {
	r := browseRegistry(t)
	m := newBrowseModel(r, func() error { return nil })

	m = press(t, m, keySpace)
	v, _ := r.Get("useLoginHook")
	assert.Equal(t, int64(1), v, "0 is the last choice, so cycling wraps to 1")
	assert.True(t, m.dirty)

	m = press(t, m, keySpace)
	v, _ = r.Get("useLoginHook")
	assert.Equal(t, int64(0), v)
	assert.Contains(t, m.View(), "[modified]")
}

func TestBrowse_SpaceTogglesBoolean(t *testing.T) {
	r := browseRegistry(t)
	m := newBrowseModel(r, func() error { return nil })

	m = press(t, m, keyDown, keySpace)
	v, _ := r.Get("debug")
	assert.Equal(t, true, v)
	assert.Contains(t, m.statusMsg, "debug = true")
}

func TestBrowse_TextIsNotCycled(t *testing.T) {
	r := browseRegistry(t)
	m := newBrowseModel(r, func() error { return nil })

	m = press(t, m, keyDown, keyDown, keySpace)
	v, _ := r.Get("title")
	assert.Equal(t, "home", v)
	assert.False(t, m.dirty)
	assert.Contains(t, m.statusMsg, "edit title")
}

func TestBrowse_ResetAndSave(t *testing.T) {
	r := browseRegistry(t)
	require.NoError(t, r.Set("useLoginHook", 1))

	saves := 0
	m := newBrowseModel(r, func() error { saves++; return nil })

	m = press(t, m, keyReset)
	v, _ := r.Get("useLoginHook")
	assert.Equal(t, int64(0), v)
	assert.True(t, m.dirty)

	m = press(t, m, keyReset)
	assert.Contains(t, m.statusMsg, "already has its default value")

	m = press(t, m, keySave)
	assert.Equal(t, 1, saves)
	assert.False(t, m.dirty)
	assert.Equal(t, "saved", m.statusMsg)
}

func TestBrowse_SaveFailureKeepsDirty(t *testing.T) {
	r := browseRegistry(t)
	m := newBrowseModel(r, func() error { return errors.New("disk full") })

	m = press(t, m, keySpace, keySave)
	assert.True(t, m.dirty)
	require.Error(t, m.statusErr)
	assert.Contains(t, m.View(), "disk full")
}

func TestBrowse_Quit(t *testing.T) {
	m := newBrowseModel(browseRegistry(t), func() error { return nil })
	_, cmd := m.Update(keyQuit)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestNextValue(t *testing.T) {
	d := option.Definition{
		Kind:    option.KindChoice,
		Choices: []option.Choice{{Value: "a"}, {Value: "b"}, {Value: "c"}},
	}
	next, ok := nextValue(d, "c")
	require.True(t, ok)
	assert.Equal(t, "a", next)

	next, _ = nextValue(d, "missing")
	assert.Equal(t, "a", next)

	_, ok = nextValue(option.Definition{Kind: option.KindInteger}, int64(1))
	assert.False(t, ok)
}
