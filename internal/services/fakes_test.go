package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tbourn/go-job-monitor/internal/discord"
	"github.com/tbourn/go-job-monitor/internal/domain"
	"github.com/tbourn/go-job-monitor/internal/tasks"
)

var errBoom = errors.New("boom")

// ----- Fake record store -----

type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	errors  map[int64]domain.ErrorRecord
	runs    []domain.RunRecord
	configs []domain.AuditConfig
	counts  map[string]int64 // by table; missing table => count error

	insertErr error
	runErr    error
	listErr   error
	statusErr error
	deleteErr error
	configErr error

	statusCalls []statusCall
	countCalls  []domain.CountQuery
}

type statusCall struct {
	ids []int64
	upd domain.StatusUpdate
}

func newFakeStore() *fakeStore {
	return &fakeStore{errors: map[int64]domain.ErrorRecord{}, counts: map[string]int64{}}
}

func (s *fakeStore) seed(fn, day string, status domain.ErrorStatus) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.errors[s.nextID] = domain.ErrorRecord{ID: s.nextID, FunctionName: fn, BusinessDay: day, Status: status, ErrorMessage: "x"}
	return s.nextID
}

func (s *fakeStore) get(id int64) (domain.ErrorRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.errors[id]
	return r, ok
}

func (s *fakeStore) InsertError(_ context.Context, rec *domain.ErrorRecord) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.nextID++
	rec.ID = s.nextID
	s.errors[rec.ID] = *rec
	return rec.ID, nil
}

func (s *fakeStore) InsertRun(_ context.Context, rec *domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runErr != nil {
		return s.runErr
	}
	s.runs = append(s.runs, *rec)
	return nil
}

func (s *fakeStore) ListErrors(_ context.Context, f domain.ErrorFilter) ([]domain.ErrorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.ErrorRecord
	for _, r := range s.errors {
		if f.BusinessDay != "" && r.BusinessDay != f.BusinessDay {
			continue
		}
		if len(f.Statuses) > 0 && !hasStatus(f.Statuses, r.Status) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BusinessDay != out[j].BusinessDay {
			return out[i].BusinessDay < out[j].BusinessDay
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func hasStatus(set []domain.ErrorStatus, s domain.ErrorStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func (s *fakeStore) SetErrorStatus(_ context.Context, ids []int64, upd domain.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCalls = append(s.statusCalls, statusCall{ids: append([]int64(nil), ids...), upd: upd})
	if s.statusErr != nil {
		return s.statusErr
	}
	for _, id := range ids {
		if r, ok := s.errors[id]; ok {
			r.Status = upd.Status
			if upd.RetriedAt != nil {
				t := *upd.RetriedAt
				r.RetriedAt = &t
			}
			s.errors[id] = r
		}
	}
	return nil
}

func (s *fakeStore) DeleteErrors(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for _, id := range ids {
		delete(s.errors, id)
	}
	return nil
}

func (s *fakeStore) DeleteErrorsByDay(_ context.Context, day string, statuses []domain.ErrorStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	var n int64
	for id, r := range s.errors {
		if r.BusinessDay == day && hasStatus(statuses, r.Status) {
			delete(s.errors, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) ListAuditConfigs(context.Context) ([]domain.AuditConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configErr != nil {
		return nil, s.configErr
	}
	return append([]domain.AuditConfig(nil), s.configs...), nil
}

func (s *fakeStore) CountRows(_ context.Context, q domain.CountQuery) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countCalls = append(s.countCalls, q)
	n, ok := s.counts[q.Table]
	if !ok {
		return 0, errBoom
	}
	return n, nil
}

// ----- Fake messenger -----

type sentMessage struct {
	channel string
	msg     discord.Message
}

type editedMessage struct {
	token string
	msg   discord.Message
}

type fakeMessenger struct {
	mu      sync.Mutex
	sent    []sentMessage
	edits   []editedMessage
	sendErr func(n int) error // n is the 0-based send attempt
	editErr error
	calls   int
}

func (m *fakeMessenger) SendMessage(_ context.Context, channelID string, msg discord.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.calls
	m.calls++
	if m.sendErr != nil {
		if err := m.sendErr(n); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, sentMessage{channel: channelID, msg: msg})
	return nil
}

func (m *fakeMessenger) EditOriginal(_ context.Context, token string, msg discord.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits = append(m.edits, editedMessage{token: token, msg: msg})
	return m.editErr
}

// ----- Fake invoker -----

type fakeInvoker struct {
	mu       sync.Mutex
	fail     map[string]bool
	failCall map[int]bool // by call index
	calls    []string
	days     []string
}

func (i *fakeInvoker) Invoke(_ context.Context, name, day string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	n := len(i.calls)
	i.calls = append(i.calls, name)
	i.days = append(i.days, day)
	if i.fail[name] || i.failCall[n] {
		return errBoom
	}
	return nil
}

// ----- Fake submitter -----

// fakeTasks records submissions and, when inline is set, runs them
// synchronously so tests can observe their effects.
type fakeTasks struct {
	names  []string
	inline bool
	err    error
	errs   []error
}

func (f *fakeTasks) Submit(name string, fn tasks.Func) error {
	if f.err != nil {
		return f.err
	}
	f.names = append(f.names, name)
	if f.inline {
		f.errs = append(f.errs, fn(context.Background()))
	}
	return nil
}
