package option

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginHook() Definition {
	return Definition{
		Name:        "useLoginHook",
		Kind:        KindChoice,
		Label:       "Check for upgrades on superuser login?",
		Description: `If "No" is selected, then upgrades will only be checked manually.`,
		Notes:       "Automatic upgrade check requires version 3.0.123 or newer.",
		Choices: []Choice{
			{Value: 1, Label: "Yes"},
			{Value: 0, Label: "No"},
		},
		DisplayColumns: 1,
		DefaultValue:   0,
	}
}

func int64Ptr(n int64) *int64 { return &n }

func TestRegistry_LoginHookScenario(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(loginHook()))

	v, err := r.Get("useLoginHook")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	require.NoError(t, r.Set("useLoginHook", 1))
	v, err = r.Get("useLoginHook")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	err = r.Set("useLoginHook", 2)
	require.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "useLoginHook")

	v, err = r.Get("useLoginHook")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v, "failed set must preserve the prior value")
}

func TestRegistry_RegisterThenGetReturnsDefault(t *testing.T) {
	defs := []Definition{
		loginHook(),
		{Name: "siteName", Kind: KindText, Label: "Site name", DefaultValue: "example"},
		{Name: "pageSize", Kind: KindInteger, Label: "Page size", DefaultValue: 25, Min: int64Ptr(1), Max: int64Ptr(100)},
		{Name: "debug", Kind: KindBoolean, Label: "Debug mode", DefaultValue: false},
		{Name: "theme", Kind: KindChoice, Label: "Theme", DefaultValue: "dark", Choices: []Choice{
			{Value: "light", Label: "Light"},
			{Value: "dark", Label: "Dark"},
		}},
	}
	want := []any{int64(0), "example", int64(25), false, "dark"}

	r := NewRegistry()
	for i, d := range defs {
		require.NoError(t, r.Register(d), "register %s", d.Name)
		v, err := r.Get(d.Name)
		require.NoError(t, err)
		assert.Equal(t, want[i], v, "default of %s", d.Name)
	}
	assert.Equal(t, len(defs), r.Len())
}

func TestRegistry_DuplicateNameLeavesRegistryUnchanged(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(loginHook()))
	require.NoError(t, r.Set("useLoginHook", 1))

	dup := loginHook()
	dup.Label = "another label"
	dup.DefaultValue = 0
	err := r.Register(dup)
	require.ErrorIs(t, err, ErrDuplicateName)

	assert.Equal(t, 1, r.Len())
	d, ok := r.Lookup("useLoginHook")
	require.True(t, ok)
	assert.Equal(t, "Check for upgrades on superuser login?", d.Label)
	v, _ := r.Get("useLoginHook")
	assert.Equal(t, int64(1), v)
}

func TestRegistry_DuplicateNameWinsOverOtherProblems(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(loginHook()))

	bad := loginHook()
	bad.DefaultValue = 7
	require.ErrorIs(t, r.Register(bad), ErrDuplicateName)
}

func TestRegistry_InvalidDefault(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{
			name: "choice default outside choices",
			def: Definition{Name: "c", Kind: KindChoice, DefaultValue: 2, Choices: []Choice{
				{Value: 1, Label: "Yes"}, {Value: 0, Label: "No"},
			}},
		},
		{
			name: "choice without choices",
			def:  Definition{Name: "c", Kind: KindChoice, DefaultValue: 0},
		},
		{
			name: "choice default with wrong type",
			def: Definition{Name: "c", Kind: KindChoice, DefaultValue: "1", Choices: []Choice{
				{Value: 1, Label: "Yes"},
			}},
		},
		{
			name: "text default not a string",
			def:  Definition{Name: "t", Kind: KindText, DefaultValue: 3},
		},
		{
			name: "missing default",
			def:  Definition{Name: "t", Kind: KindText},
		},
		{
			name: "integer default below minimum",
			def:  Definition{Name: "i", Kind: KindInteger, DefaultValue: 0, Min: int64Ptr(1)},
		},
		{
			name: "boolean default not a bool",
			def:  Definition{Name: "b", Kind: KindBoolean, DefaultValue: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Register(tt.def)
			require.ErrorIs(t, err, ErrInvalidDefault)
			assert.Equal(t, 0, r.Len())
			_, err = r.Get(tt.def.Name)
			assert.ErrorIs(t, err, ErrUnknownOption)
		})
	}
}

func TestRegistry_InvalidDefinition(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
		want string
	}{
		{"missing name", Definition{Kind: KindText, DefaultValue: ""}, "Name"},
		{"unknown kind", Definition{Name: "x", Kind: "radios", DefaultValue: 0}, "Kind"},
		{"negative columns", Definition{Name: "x", Kind: KindText, DefaultValue: "", DisplayColumns: -1}, "DisplayColumns"},
		{"empty choice label", Definition{Name: "x", Kind: KindChoice, DefaultValue: 1, Choices: []Choice{{Value: 1}}}, "Label"},
		{"duplicate choice value", Definition{Name: "x", Kind: KindChoice, DefaultValue: 1, Choices: []Choice{
			{Value: 1, Label: "a"}, {Value: int8(1), Label: "b"},
		}}, "duplicate choice value 1"},
		{"choices share text form", Definition{Name: "x", Kind: KindChoice, DefaultValue: 1, Choices: []Choice{
			{Value: "1", Label: "text"}, {Value: 1, Label: "int"},
		}}, "duplicate choice value 1"},
		{"boolean and text choice", Definition{Name: "x", Kind: KindChoice, DefaultValue: true, Choices: []Choice{
			{Value: true, Label: "on"}, {Value: "true", Label: "text"},
		}}, "duplicate choice value true"},
		{"padded choice value", Definition{Name: "x", Kind: KindChoice, DefaultValue: " a", Choices: []Choice{
			{Value: " a", Label: "A"}, {Value: "b", Label: "B"},
		}}, "surrounding whitespace"},
		{"non scalar choice", Definition{Name: "x", Kind: KindChoice, DefaultValue: 1, Choices: []Choice{
			{Value: 1.5, Label: "a"},
		}}, "choice 0"},
		{"choices on text", Definition{Name: "x", Kind: KindText, DefaultValue: "a", Choices: []Choice{
			{Value: "a", Label: "A"},
		}}, "only allowed on choice"},
		{"bounds on text", Definition{Name: "x", Kind: KindText, DefaultValue: "a", Min: int64Ptr(1)}, "only allowed on integer"},
		{"min above max", Definition{Name: "x", Kind: KindInteger, DefaultValue: 1, Min: int64Ptr(5), Max: int64Ptr(2)}, "greater than max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Register(tt.def)
			require.ErrorIs(t, err, ErrInvalidDefinition)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, 0, r.Len())
		})
	}
}

func TestRegistry_SetUnknownOption(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(loginHook()))

	err := r.Set("nope", 1)
	require.ErrorIs(t, err, ErrUnknownOption)
	assert.Contains(t, err.Error(), "nope")

	_, err = r.Get("nope")
	require.ErrorIs(t, err, ErrUnknownOption)
	assert.Equal(t, []string{"useLoginHook"}, r.Names())
}

func TestRegistry_SetRejectsOutOfDomainValues(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Definition{Name: "name", Kind: KindText, DefaultValue: "a"})
	r.MustRegister(Definition{Name: "size", Kind: KindInteger, DefaultValue: 10, Min: int64Ptr(1), Max: int64Ptr(20)})
	r.MustRegister(Definition{Name: "on", Kind: KindBoolean, DefaultValue: true})

	cases := []struct {
		option string
		value  any
	}{
		{"name", 5},
		{"size", "10"},
		{"size", 0},
		{"size", 21},
		{"size", 2.0},
		{"size", uint64(1 << 63)},
		{"on", "true"},
		{"on", nil},
	}
	for _, c := range cases {
		before, _ := r.Get(c.option)
		err := r.Set(c.option, c.value)
		assert.ErrorIs(t, err, ErrInvalidValue, "%s=%v", c.option, c.value)
		after, _ := r.Get(c.option)
		assert.Equal(t, before, after, "%s must be unchanged", c.option)
	}

	require.NoError(t, r.Set("size", uint8(20)))
	v, _ := r.Get("size")
	assert.Equal(t, int64(20), v)
}

func TestRegistry_SetString(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(loginHook())
	r.MustRegister(Definition{Name: "size", Kind: KindInteger, DefaultValue: 10})
	r.MustRegister(Definition{Name: "on", Kind: KindBoolean, DefaultValue: false})
	r.MustRegister(Definition{Name: "title", Kind: KindText, DefaultValue: ""})

	require.NoError(t, r.SetString("useLoginHook", "1"))
	require.NoError(t, r.SetString("size", " 42 "))
	require.NoError(t, r.SetString("on", "yes"))
	require.NoError(t, r.SetString("title", "  kept verbatim "))

	for name, want := range map[string]any{
		"useLoginHook": int64(1),
		"size":         int64(42),
		"on":           true,
		"title":        "  kept verbatim ",
	} {
		got, err := r.Get(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	require.ErrorIs(t, r.SetString("useLoginHook", "2"), ErrInvalidValue)
	require.ErrorIs(t, r.SetString("size", "ten"), ErrInvalidValue)
	require.ErrorIs(t, r.SetString("on", "maybe"), ErrInvalidValue)
	require.ErrorIs(t, r.SetString("missing", "1"), ErrUnknownOption)

	v, _ := r.Get("useLoginHook")
	assert.Equal(t, int64(1), v)
}

func TestRegistry_ResetAndIsDefault(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(loginHook())

	isDef, err := r.IsDefault("useLoginHook")
	require.NoError(t, err)
	assert.True(t, isDef)

	require.NoError(t, r.Set("useLoginHook", 1))
	isDef, _ = r.IsDefault("useLoginHook")
	assert.False(t, isDef)

	require.NoError(t, r.Reset("useLoginHook"))
	v, _ := r.Get("useLoginHook")
	assert.Equal(t, int64(0), v)

	require.ErrorIs(t, r.Reset("missing"), ErrUnknownOption)
	_, err = r.IsDefault("missing")
	require.ErrorIs(t, err, ErrUnknownOption)
}

func TestRegistry_ListIsOrderedAndRestartable(t *testing.T) {
	r := NewRegistry()
	names := []string{"zeta", "alpha", "useLoginHook", "mid"}
	for _, n := range names {
		if n == "useLoginHook" {
			r.MustRegister(loginHook())
			continue
		}
		r.MustRegister(Definition{Name: n, Kind: KindText, DefaultValue: n})
	}

	first := slices.Collect(r.List())
	second := slices.Collect(r.List())
	require.Len(t, first, len(names))
	assert.Equal(t, first, second)
	for i, d := range first {
		assert.Equal(t, names[i], d.Name)
	}

	// Stopping early must not disturb later iterations.
	for d := range r.List() {
		assert.Equal(t, "zeta", d.Name)
		break
	}
	assert.Equal(t, first, slices.Collect(r.List()))
}

func TestRegistry_ListDoesNotExposeStorage(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(loginHook())
	r.MustRegister(Definition{Name: "size", Kind: KindInteger, DefaultValue: 3, Max: int64Ptr(5)})

	for d := range r.List() {
		d.Label = "mutated"
		if len(d.Choices) > 0 {
			d.Choices[0].Label = "mutated"
		}
		if d.Max != nil {
			*d.Max = 1
		}
	}

	d, _ := r.Lookup("useLoginHook")
	assert.Equal(t, "Yes", d.Choices[0].Label)
	assert.NotEqual(t, "mutated", d.Label)
	require.NoError(t, r.Set("size", 5), "max must still be 5")
}

func TestRegistry_NormalizesStoredDefinition(t *testing.T) {
	r := NewRegistry()
	def := loginHook()
	def.DisplayColumns = 0
	r.MustRegister(def)

	d, ok := r.Lookup("useLoginHook")
	require.True(t, ok)
	assert.Equal(t, 1, d.DisplayColumns)
	assert.Equal(t, int64(1), d.Choices[0].Value)
	assert.Equal(t, int64(0), d.DefaultValue)

	label, ok := d.ChoiceLabel(1)
	require.True(t, ok)
	assert.Equal(t, "Yes", label)
	_, ok = d.ChoiceLabel(9)
	assert.False(t, ok)
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(loginHook())
	assert.Panics(t, func() { r.MustRegister(loginHook()) })
}
