package weather

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

var nopLog = zap.NewNop().Sugar()

type fakeObservationStore struct {
	mu        sync.Mutex
	obs       []Observation
	appendErr error
	queryErr  error
}

func (s *fakeObservationStore) Append(_ context.Context, o Observation) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obs = append(s.obs, o)
	return nil
}

func (s *fakeObservationStore) QueryRange(_ context.Context, name string, from, to time.Time) ([]Observation, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Observation
	for _, o := range s.obs {
		if o.Location.Name == name && !o.Timestamp.Before(from) && !o.Timestamp.After(to) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (s *fakeObservationStore) Latest(_ context.Context, name string) (Observation, error) {
	if s.queryErr != nil {
		return Observation{}, s.queryErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *Observation
	for i := range s.obs {
		if s.obs[i].Location.Name != name {
			continue
		}
		if latest == nil || s.obs[i].Timestamp.After(latest.Timestamp) {
			latest = &s.obs[i]
		}
	}
	if latest == nil {
		return Observation{}, Errorf(KindNotFound, "no observations for %q", name)
	}
	return *latest, nil
}

func (s *fakeObservationStore) byLocation(name string) []Observation {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Observation
	for _, o := range s.obs {
		if o.Location.Name == name {
			out = append(out, o)
		}
	}
	return out
}

type fakeAlertStore struct {
	mu      sync.Mutex
	rules   []AlertRule
	findErr error
}

func (s *fakeAlertStore) Create(_ context.Context, r AlertRule) (AlertRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, r)
	return r, nil
}

// FindActiveByLocation deliberately returns inactive rules too so the
// evaluator's own filtering is exercised.
func (s *fakeAlertStore) FindActiveByLocation(_ context.Context, name string) ([]AlertRule, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []AlertRule
	for _, r := range s.rules {
		if r.Location.Name == name {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeAlertStore) ListActive(_ context.Context) ([]AlertRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []AlertRule
	for _, r := range s.rules {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeAlertStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rules)
}

type fakeSource struct {
	readings map[string]Reading
	errs     map[string]error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(_ context.Context, loc Location) (Reading, error) {
	if err, ok := f.errs[loc.Name]; ok {
		return Reading{}, err
	}
	r, ok := f.readings[loc.Name]
	if !ok {
		return Reading{}, Errorf(KindSourceUnavailable, "no reading for %s", loc.Name)
	}
	return r, nil
}

type sentMessage struct {
	Recipient, Subject, Body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	fail map[string]bool
}

func (n *recordingNotifier) Send(_ context.Context, recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{recipient, subject, body})
	if n.fail[recipient] {
		return errors.New("smtp: connection refused")
	}
	return nil
}

func (n *recordingNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Observation
}

func (p *recordingPublisher) Publish(_ context.Context, o Observation) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, o)
}

func (p *recordingPublisher) published() []Observation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Observation(nil), p.events...)
}
