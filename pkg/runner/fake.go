package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records a single command invocation.
type Call struct {
	Name string
	Args []string
}

// String renders the call as a single command line for assertions.
func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Fake is a recording Runner for tests. Commands succeed unless an
// error or failure count is registered for their command line.
type Fake struct {
	mu    sync.Mutex
	calls []Call

	// errs maps a command-line prefix to the error returned for it.
	errs map[string]error

	// failures maps a command-line prefix to the number of times it
	// fails before succeeding.
	failures map[string]int

	// outputs maps a command-line prefix to the stdout returned by Output.
	outputs map[string]string
}

// NewFake creates an empty recording runner.
func NewFake() *Fake {
	return &Fake{
		errs:     make(map[string]error),
		failures: make(map[string]int),
		outputs:  make(map[string]string),
	}
}

// FailWith makes every command line starting with prefix return err.
func (f *Fake) FailWith(prefix string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[prefix] = err
}

// FailTimes makes command lines starting with prefix fail n times, then
// succeed.
func (f *Fake) FailTimes(prefix string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[prefix] = n
}

// SetOutput registers stdout for command lines starting with prefix.
func (f *Fake) SetOutput(prefix, out string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[prefix] = out
}

// Calls returns every recorded invocation in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CommandLines returns the recorded invocations as rendered strings.
func (f *Fake) CommandLines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Run implements Runner.
func (f *Fake) Run(ctx context.Context, name string, args ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	call := Call{Name: name, Args: args}
	f.calls = append(f.calls, call)

	line := call.String()
	for prefix, n := range f.failures {
		if strings.HasPrefix(line, prefix) && n > 0 {
			f.failures[prefix] = n - 1
			return fmt.Errorf("fake failure for %q", prefix)
		}
	}
	for prefix, err := range f.errs {
		if strings.HasPrefix(line, prefix) {
			return err
		}
	}
	return nil
}

// Output implements Runner.
func (f *Fake) Output(ctx context.Context, name string, args ...string) (string, error) {
	if err := f.Run(ctx, name, args...); err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	line := Call{Name: name, Args: args}.String()
	for prefix, out := range f.outputs {
		if strings.HasPrefix(line, prefix) {
			return out, nil
		}
	}
	return "", nil
}
