// Package builtin defines commands that run inside the interpreter's own
// process, and the registry the classifier consults to recognise them.
package builtin

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/afero"

	"github.com/marcelocantos/minish/internal/history"
)

// Status tells the interpreter loop whether to keep reading lines.
type Status int

const (
	Continue Status = iota
	Stop
)

func (s Status) String() string {
	if s == Stop {
		return "stop"
	}
	return "continue"
}

// Env is the interpreter state a built-in may read or change. Built-ins run
// synchronously on the interpreter's goroutine, so no locking is needed.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Fs backs every file operation a built-in performs.
	Fs afero.Fs

	History  *history.Ring
	Registry *Registry
	Version  string

	// Chdir changes the interpreter's working directory. Children started
	// afterwards inherit it.
	Chdir  func(dir string) error
	Getwd  func() (string, error)
	Getenv func(key string) string
}

// NewEnv returns an Env bound to the real process: the OS filesystem
// and the os working-directory and environment calls.
func NewEnv(reg *Registry, hist *history.Ring, version string) *Env {
	return &Env{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Fs:       afero.NewOsFs(),
		History:  hist,
		Registry: reg,
		Version:  version,
		Chdir:    os.Chdir,
		Getwd:    os.Getwd,
		Getenv:   os.Getenv,
	}
}

// Builtin is the interface every in-process command implements.
type Builtin interface {
	// Name returns the exact, case-sensitive name the classifier matches.
	Name() string

	// Description returns a one-line summary for help output.
	Description() string

	// Run executes the command. args[0] is the command name. A returned
	// error is reported to the user; it never stops the interpreter.
	Run(env *Env, args []string) (Status, error)
}

// Func adapts a plain function to Builtin.
type Func struct {
	N    string
	Desc string
	Fn   func(env *Env, args []string) (Status, error)
}

var _ Builtin = Func{}

func (f Func) Name() string        { return f.N }
func (f Func) Description() string { return f.Desc }

func (f Func) Run(env *Env, args []string) (Status, error) {
	return f.Fn(env, args)
}

// Registry maps names to built-ins. Registration happens once at startup,
// before the interpreter loop starts; afterwards it is only read, so it
// carries no lock.
type Registry struct {
	cmds map[string]Builtin
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Builtin)}
}

// Register adds b, replacing any built-in with the same name.
func (r *Registry) Register(b Builtin) {
	r.cmds[b.Name()] = b
}

// Lookup returns the built-in called name.
func (r *Registry) Lookup(name string) (Builtin, error) {
	b, ok := r.cmds[name]
	if !ok {
		return nil, fmt.Errorf("unknown builtin: %q", name)
	}
	return b, nil
}

// Has reports whether name is a registered built-in.
func (r *Registry) Has(name string) bool {
	_, ok := r.cmds[name]
	return ok
}

// All returns every built-in sorted by name.
func (r *Registry) All() []Builtin {
	all := make([]Builtin, 0, len(r.cmds))
	for _, b := range r.cmds {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name() < all[j].Name()
	})
	return all
}
