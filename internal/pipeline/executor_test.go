package pipeline

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcelocantos/minish/internal/proc"
	"github.com/marcelocantos/minish/internal/streams"
)

// countingStarter records every Start and every reaping Wait.
type countingStarter struct {
	proc.Starter

	mu      sync.Mutex
	started int
	waits   map[int]int // pid → reaping Wait calls
}

func newCountingStarter(s proc.Starter) *countingStarter {
	return &countingStarter{Starter: s, waits: make(map[int]int)}
}

func (c *countingStarter) Start(ctx context.Context, argv []string, attr proc.Attr) (proc.Process, error) {
	p, err := c.Starter.Start(ctx, argv, attr)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.started++
	c.mu.Unlock()
	return &countingProcess{Process: p, owner: c}, nil
}

type countingProcess struct {
	proc.Process
	owner *countingStarter
}

func (p *countingProcess) Wait() (proc.State, error) {
	p.owner.mu.Lock()
	p.owner.waits[p.Pid()]++
	p.owner.mu.Unlock()
	return p.Process.Wait()
}

func eachBackend(t *testing.T, fn func(t *testing.T, s proc.Starter)) {
	t.Helper()
	for _, name := range proc.Backends() {
		s, err := proc.New(name)
		require.NoError(t, err)
		t.Run(name, func(t *testing.T) { fn(t, s) })
	}
}

func mustParse(t *testing.T, line string) *Pipeline {
	t.Helper()
	p, err := Parse(Tokenize(line))
	require.NoError(t, err)
	return p
}

// within fails the test if fn does not return before d.
func within(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("pipeline did not finish within %v", d)
	}
}

func TestExecuteTwoStages(t *testing.T) {
	eachBackend(t, func(t *testing.T, s proc.Starter) {
		var out bytes.Buffer
		std := streams.Set{In: strings.NewReader(""), Out: &out, Err: os.Stderr}
		results, err := Execute(context.Background(), mustParse(t, `printf a\nb\nc\n | cat`), s, std)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "a\nb\nc\n", out.String())
		for _, r := range results {
			assert.True(t, r.Started)
			assert.True(t, r.State.Success())
		}
	})
}

func TestExecuteLargeOutputIsByteExact(t *testing.T) {
	eachBackend(t, func(t *testing.T, s proc.Starter) {
		// Several times larger than a pipe buffer.
		data := make([]byte, 4<<20)
		rng := rand.New(rand.NewSource(1))
		rng.Read(data)
		path := filepath.Join(t.TempDir(), "blob")
		require.NoError(t, os.WriteFile(path, data, 0644))

		var out bytes.Buffer
		std := streams.Set{In: strings.NewReader(""), Out: &out, Err: os.Stderr}
		p := mustParse(t, "cat "+path+" | cat")
		within(t, 30*time.Second, func() {
			_, err := Execute(context.Background(), p, s, std)
			assert.NoError(t, err)
		})
		assert.True(t, bytes.Equal(data, out.Bytes()), "pipeline output differs from input")
	})
}

func TestExecuteFiveStagesReapedOnce(t *testing.T) {
	eachBackend(t, func(t *testing.T, s proc.Starter) {
		cs := newCountingStarter(s)
		var out bytes.Buffer
		std := streams.Set{In: strings.NewReader("through five stages\n"), Out: &out, Err: os.Stderr}

		// A stray write end held by the interpreter would make the last cat
		// wait forever for EOF.
		p := mustParse(t, "cat | cat | cat | cat | cat")
		within(t, 10*time.Second, func() {
			results, err := Execute(context.Background(), p, cs, std)
			assert.NoError(t, err)
			assert.Len(t, results, 5)
		})

		assert.Equal(t, "through five stages\n", out.String())
		assert.Equal(t, 5, cs.started)
		assert.Len(t, cs.waits, 5)
		for pid, n := range cs.waits {
			assert.Equal(t, 1, n, "pid %d waited %d times", pid, n)
		}
	})
}

func TestExecuteMissingStageStillReapsOthers(t *testing.T) {
	eachBackend(t, func(t *testing.T, s proc.Starter) {
		cs := newCountingStarter(s)
		var out, errOut bytes.Buffer
		std := streams.Set{In: strings.NewReader(""), Out: &out, Err: &errOut}

		var (
			results []StageResult
			err     error
		)
		p := mustParse(t, "echo hi | minish-no-such-program | cat")
		within(t, 10*time.Second, func() {
			results, err = Execute(context.Background(), p, cs, std)
		})
		assert.ErrorIs(t, err, proc.ErrNotFound)
		require.Len(t, results, 3)
		assert.True(t, results[0].Started)
		assert.False(t, results[1].Started)
		assert.True(t, results[2].Started)
		assert.Equal(t, 2, cs.started)
		assert.Len(t, cs.waits, 2)
		assert.Empty(t, out.String())
	})
}

func TestExecuteNonZeroExitIsNotAnError(t *testing.T) {
	eachBackend(t, func(t *testing.T, s proc.Starter) {
		var out bytes.Buffer
		std := streams.Set{In: strings.NewReader(""), Out: &out, Err: os.Stderr}
		results, err := Execute(context.Background(), mustParse(t, "echo hi | grep nomatch"), s, std)
		require.NoError(t, err)
		assert.Equal(t, 1, results[1].State.Code)
	})
}

func TestExecuteRedirectsAtTheEnds(t *testing.T) {
	eachBackend(t, func(t *testing.T, s proc.Starter) {
		dir := t.TempDir()
		in := filepath.Join(dir, "in.txt")
		out := filepath.Join(dir, "out.txt")
		require.NoError(t, os.WriteFile(in, []byte("c\na\nb\n"), 0644))
		require.NoError(t, os.WriteFile(out, []byte("stale content that must go\n"), 0644))

		std := streams.Set{In: strings.NewReader(""), Out: os.Stdout, Err: os.Stderr}
		_, err := Execute(context.Background(), mustParse(t, "sort < "+in+" | cat > "+out), s, std)
		require.NoError(t, err)

		got, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "a\nb\nc\n", string(got))
	})
}

func TestExecuteMissingInputLaunchesNothing(t *testing.T) {
	cs := newCountingStarter(proc.ExecStarter{})
	std := streams.Set{In: strings.NewReader(""), Out: os.Stdout, Err: os.Stderr}
	missing := filepath.Join(t.TempDir(), "missing.txt")

	_, err := Execute(context.Background(), mustParse(t, "cat < "+missing+" | cat"), cs, std)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, cs.started)
}

func TestExecuteLeavesNoDescriptorsOpen(t *testing.T) {
	if _, err := os.Stat("/proc/self/fd"); err != nil {
		t.Skip("no /proc/self/fd")
	}
	count := func() int {
		entries, err := os.ReadDir("/proc/self/fd")
		require.NoError(t, err)
		return len(entries)
	}

	eachBackend(t, func(t *testing.T, s proc.Starter) {
		var out, errOut bytes.Buffer
		std := streams.Set{In: strings.NewReader("x\n"), Out: &out, Err: &errOut}
		before := count()
		_, _ = Execute(context.Background(), mustParse(t, "cat | minish-no-such-program | cat | cat"), s, std)
		assert.Equal(t, before, count())
	})
}
