// Package jobs holds the monitored jobs this process can run itself. Each job
// is exposed at /functions/v1/:name and wrapped by the error capture gateway,
// so a failure lands in the record store like any external job's would.
package jobs

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
)

// Input is what a job sees of its triggering request.
type Input struct {
	BusinessDay string
	Params      url.Values
}

// Func runs a job and returns the number of records it processed.
type Func func(ctx context.Context, in Input) (int, error)

// Registry maps job names to implementations. Safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]Func
}

// NewRegistry returns a registry preloaded with the built-in jobs.
func NewRegistry() *Registry {
	r := &Registry{jobs: make(map[string]Func)}
	r.Register(TestAlertName, TestAlert)
	return r
}

// Register adds or replaces a job.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[name] = fn
}

// Lookup returns the job registered under name.
func (r *Registry) Lookup(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.jobs[name]
	return fn, ok
}

// Names returns the registered job names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.jobs))
	for n := range r.jobs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// TestAlertName is the built-in job used to exercise the alert path.
const TestAlertName = "test-alert"

// TestAlert fails when called with fail=1 and otherwise succeeds with no
// records. It lets operators check the capture, announcement and retry loop
// end to end.
func TestAlert(_ context.Context, in Input) (int, error) {
	if in.Params.Get("fail") == "1" {
		return 0, fmt.Errorf("test failure for chat alerts (business day %s)", in.BusinessDay)
	}
	return 0, nil
}
