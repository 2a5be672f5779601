package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rawbytedev/flkv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPutGetDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	for _, engine := range []string{"leveldb", "pebble", "badger", "bolt"} {
		t.Run(engine, func(t *testing.T) {
			dir := filepath.Join(dir, engine)
			_, err := run(t, "", "put", "apple", "red", "--engine", engine, "--dir", dir)
			require.NoError(t, err)

			out, err := run(t, "", "get", "apple", "--engine", engine, "--dir", dir)
			require.NoError(t, err)
			assert.Equal(t, "red\n", out)

			_, err = run(t, "", "delete", "apple", "--engine", engine, "--dir", dir)
			require.NoError(t, err)

			_, err = run(t, "", "get", "apple", "--engine", engine, "--dir", dir)
			assert.ErrorIs(t, err, flkv.ErrNotFound)
		})
	}
}

func TestBatchAndScan(t *testing.T) {
	dir := t.TempDir()
	input := `# fruit
put fruit:apple red
put fruit:pear green
put veg:leek white
put fruit:plum purple
delete fruit:pear
`
	out, err := run(t, input, "batch", "--dir", dir, "--sync")
	require.NoError(t, err)
	assert.Contains(t, out, "applied 5 operations")

	out, err = run(t, "", "scan", "fruit:", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "fruit:apple\tred\nfruit:plum\tpurple\n", out)

	out, err = run(t, "", "scan", "--limit", "1", "--dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "fruit:apple\tred\n", out)
}

func TestParseBatchErrors(t *testing.T) {
	for _, input := range []string{
		"put onlykey",
		"delete",
		"delete a b",
		"merge a b",
	} {
		_, err := parseBatch(strings.NewReader(input))
		assert.Error(t, err, input)
	}

	batch, err := parseBatch(strings.NewReader("put k value with spaces\n\n# comment\ndel k\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Len())
}

func TestUnknownEngine(t *testing.T) {
	_, err := run(t, "", "get", "k", "--engine", "rocksdb", "--memory")
	assert.ErrorIs(t, err, flkv.ErrUnknownEngine)
}

func TestFlushInMemory(t *testing.T) {
	out, err := run(t, "", "flush", "--memory")
	require.NoError(t, err)
	assert.Contains(t, out, "flushed successfully")
}

func TestEnvironmentSelectsEngine(t *testing.T) {
	t.Setenv("FLKV_ENGINE", "rocksdb")
	_, err := run(t, "", "flush", "--memory")
	assert.ErrorIs(t, err, flkv.ErrUnknownEngine)

	_, err = run(t, "", "flush", "--memory", "--engine", "bolt")
	assert.NoError(t, err, "flags take precedence over the environment")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "flkv v"+Version+"\n", out)
}

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
}
