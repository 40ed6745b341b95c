package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"optreg/cmd/optreg/optionhcl"
	"optreg/cmd/optreg/optionyaml"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigDir(t *testing.T) {
	dir := t.TempDir()

	files, err := initConfigDir(dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "schema", "options.yml"),
		filepath.Join(dir, "config.yaml"),
	}, files)

	_, err = initConfigDir(dir, false)
	require.ErrorContains(t, err, "already exists (use --force to overwrite)")

	_, err = initConfigDir(dir, true)
	require.NoError(t, err)
}

func TestInitConfigDir_IsUsable(t *testing.T) {
	dir := setupConfigDir(t)
	_, err := initConfigDir(dir, false)
	require.NoError(t, err)

	cfg, err := loadConfig(newFlags(t))
	require.NoError(t, err)
	reg, err := buildRegistry(cfg.SchemaFiles)
	require.NoError(t, err)

	v, err := reg.Get("useLoginHook")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestExamples_YAMLAndHCLAgree(t *testing.T) {
	fromYAML, err := optionyaml.Build(exampleYAML)
	require.NoError(t, err)
	fromHCL, err := optionhcl.Build(exampleHCL, "example.hcl")
	require.NoError(t, err)

	assert.Equal(t, fromYAML.Names(), fromHCL.Names())
	for _, name := range fromYAML.Names() {
		a, _ := fromYAML.Lookup(name)
		b, _ := fromHCL.Lookup(name)
		assert.Equal(t, a, b, name)
	}
}

func TestPrintEntries(t *testing.T) {
	reg := browseRegistry(t)
	require.NoError(t, reg.Set("useLoginHook", 1))

	var buf bytes.Buffer
	printEntries(&buf, collectEntries(reg))
	assert.Equal(t,
		"useLoginHook  1 (Yes) * [choice]\n"+
			"debug         false     [boolean]\n"+
			"title         home      [text]\n",
		buf.String())

	buf.Reset()
	printEntries(&buf, nil)
	assert.Equal(t, "no options defined\n", buf.String())
}
