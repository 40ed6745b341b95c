package optionhcl

import (
	"os"
	"path/filepath"
	"testing"

	"optreg/cmd/optreg/option"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginHookHCL = `
option "useLoginHook" {
  kind        = "radios"
  label       = "Check for upgrades on superuser login?"
  description = "If \"No\" is selected, then upgrades will only be checked manually."
  notes       = "Automatic upgrade check requires version 3.0.123 or newer."
  columns     = 1
  default     = 0

  choice {
    value = 1
    label = "Yes"
  }
  choice {
    value = 0
    label = "No"
  }
}

option "pageSize" {
  kind    = "integer"
  min     = 1
  max     = 100
  default = 25
}

option "siteName" {
  kind    = "text"
  default = "example"
}
`

func TestParse_LoginHook(t *testing.T) {
	defs, err := Parse([]byte(loginHookHCL), "schema.hcl")
	require.NoError(t, err)
	require.Len(t, defs, 3)

	d := defs[0]
	assert.Equal(t, "useLoginHook", d.Name)
	assert.Equal(t, option.KindChoice, d.Kind)
	assert.Equal(t, `If "No" is selected, then upgrades will only be checked manually.`, d.Description)
	assert.Equal(t, 1, d.DisplayColumns)
	assert.Equal(t, int64(0), d.DefaultValue)
	assert.Equal(t, []option.Choice{
		{Value: int64(1), Label: "Yes"},
		{Value: int64(0), Label: "No"},
	}, d.Choices)

	require.NotNil(t, defs[1].Min)
	assert.Equal(t, int64(1), *defs[1].Min)
	assert.Equal(t, int64(100), *defs[1].Max)
	assert.Equal(t, "example", defs[2].DefaultValue)
}

func TestBuild_LoginHookScenario(t *testing.T) {
	r, err := Build([]byte(loginHookHCL), "schema.hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{"useLoginHook", "pageSize", "siteName"}, r.Names())

	v, _ := r.Get("useLoginHook")
	assert.Equal(t, int64(0), v)
	require.NoError(t, r.Set("useLoginHook", 1))
	require.ErrorIs(t, r.Set("useLoginHook", 2), option.ErrInvalidValue)
	v, _ = r.Get("useLoginHook")
	assert.Equal(t, int64(1), v)
}

func TestParse_MissingDefaultIsNil(t *testing.T) {
	defs, err := Parse([]byte(`option "x" { kind = "text" }`), "x.hcl")
	require.NoError(t, err)
	assert.Nil(t, defs[0].DefaultValue)

	_, err = Build([]byte(`option "x" { kind = "text" }`), "x.hcl")
	require.ErrorIs(t, err, option.ErrInvalidDefault)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `option "x" {`, "failed to parse HCL file"},
		{"missing kind", `option "x" { default = 1 }`, "failed to decode HCL file"},
		{"unknown block", `setting "x" { kind = "text" }`, "failed to decode HCL file"},
		{"unknown kind", `option "x" { kind = "colour" }`, "path=x"},
		{"fractional default", "option \"x\" {\n  kind = \"integer\"\n  default = 1.5\n}\n", "not a whole number"},
		{"list default", "option \"x\" {\n  kind = \"text\"\n  default = [\"a\"]\n}\n", "unsupported value type"},
		{"variable reference", "option \"x\" {\n  kind = \"text\"\n  default = var.name\n}\n", "default"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.hcl")
	require.NoError(t, os.WriteFile(path, []byte(loginHookHCL), 0o644))

	defs, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, defs, 3)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
}
