package optionstore

import (
	"context"
	"path/filepath"
	"testing"

	"optreg/cmd/optreg/option"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *option.Registry {
	t.Helper()
	r := option.NewRegistry()
	r.MustRegister(option.Definition{
		Name:         "useLoginHook",
		Kind:         option.KindChoice,
		Choices:      []option.Choice{{Value: 1, Label: "Yes"}, {Value: 0, Label: "No"}},
		DefaultValue: 0,
	})
	r.MustRegister(option.Definition{Name: "title", Kind: option.KindText, DefaultValue: "home"})
	r.MustRegister(option.Definition{Name: "debug", Kind: option.KindBoolean, DefaultValue: false})
	return r
}

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "values.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	src := newRegistry(t)
	require.NoError(t, src.Set("useLoginHook", 1))
	require.NoError(t, src.Set("title", "Settings"))
	require.NoError(t, s.Save(ctx, src))

	// Saving twice upserts rather than failing on the primary key.
	require.NoError(t, src.Set("debug", true))
	require.NoError(t, s.Save(ctx, src))

	dst := newRegistry(t)
	n, err := s.Load(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, name := range dst.Names() {
		want, _ := src.Get(name)
		got, _ := dst.Get(name)
		assert.Equal(t, want, got, name)
	}
}

func TestStore_LoadSkipsUnknownOptions(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.db.ExecContext(ctx, upsertValue, "removedOption", "x", "2026-01-01T00:00:00Z")
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx, upsertValue, "useLoginHook", "1", "2026-01-01T00:00:00Z")
	require.NoError(t, err)

	r := newRegistry(t)
	n, err := s.Load(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	v, _ := r.Get("useLoginHook")
	assert.Equal(t, int64(1), v)
}

func TestStore_LoadRejectsInvalidRowsAtomically(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	_, err := s.db.ExecContext(ctx, upsertValue, "title", "stored", "2026-01-01T00:00:00Z")
	require.NoError(t, err)
	_, err = s.db.ExecContext(ctx, upsertValue, "useLoginHook", "2", "2026-01-01T00:00:00Z")
	require.NoError(t, err)

	r := newRegistry(t)
	_, err = s.Load(ctx, r)
	require.ErrorIs(t, err, option.ErrInvalidValue)
	assert.Contains(t, err.Error(), "useLoginHook")

	v, _ := r.Get("title")
	assert.Equal(t, "home", v, "no row may be applied when one is invalid")
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.ErrorContains(t, err, "database path cannot be empty")
}
