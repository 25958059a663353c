package history

import (
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEvictsOldest(t *testing.T) {
	r := New(3)
	for i := 1; i <= 5; i++ {
		r.Add(fmt.Sprintf("cmd %d", i))
	}
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"cmd 3", "cmd 4", "cmd 5"}, r.Entries())
}

func TestAddIgnoresBlankLines(t *testing.T) {
	r := New(10)
	r.Add("")
	r.Add("   \t")
	r.Add("\n")
	r.Add("ls -l\n")
	assert.Equal(t, []string{"ls -l"}, r.Entries())
}

func TestNewDefaultsSize(t *testing.T) {
	assert.Equal(t, DefaultSize, New(0).Cap())
	assert.Equal(t, DefaultSize, New(-4).Cap())
}

func TestLast(t *testing.T) {
	r := New(5)
	for _, l := range []string{"a", "b", "c", "d"} {
		r.Add(l)
	}

	lines, first := r.Last(2)
	assert.Equal(t, []string{"c", "d"}, lines)
	assert.Equal(t, 3, first)

	lines, first = r.Last(10)
	assert.Equal(t, []string{"a", "b", "c", "d"}, lines)
	assert.Equal(t, 1, first)
}

func TestClear(t *testing.T) {
	r := New(2)
	r.Add("a")
	r.Add("b")
	r.Add("c")
	r.Clear()
	assert.Zero(t, r.Len())
	assert.Empty(t, r.Entries())

	r.Add("d")
	assert.Equal(t, []string{"d"}, r.Entries())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/home/u", 0700))
	r := New(100)
	r.Add("cd /tmp")
	r.Add("ls | wc -l")
	require.NoError(t, r.Save(fs, "/home/u/.shell_history"))

	data, err := afero.ReadFile(fs, "/home/u/.shell_history")
	require.NoError(t, err)
	assert.Equal(t, "cd /tmp\nls | wc -l\n", string(data))

	loaded := New(100)
	require.NoError(t, loaded.Load(fs, "/home/u/.shell_history"))
	assert.Equal(t, r.Entries(), loaded.Entries())
}

func TestLoadRespectsCapacity(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/h", []byte("1\n2\n3\n4\n"), 0600))

	r := New(2)
	require.NoError(t, r.Load(fs, "/h"))
	assert.Equal(t, []string{"3", "4"}, r.Entries())
}

func TestLoadMissingFile(t *testing.T) {
	r := New(2)
	assert.NoError(t, r.Load(afero.NewMemMapFs(), "/nope"))
	assert.Zero(t, r.Len())
}
