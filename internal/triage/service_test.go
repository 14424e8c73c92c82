package triage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

// mockStore implements Store for testing.
type mockStore struct {
	mu         sync.Mutex
	complaints []*Complaint
	bumps      []string // "location|category" in call order
	insertErr  error
	openErr    error
	bumpErr    error
}

func newMockStore() *mockStore {
	return &mockStore{}
}

func (m *mockStore) Insert(_ context.Context, c *Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	cp := *c
	m.complaints = append(m.complaints, &cp)
	return nil
}

func (m *mockStore) Get(_ context.Context, id string) (*Complaint, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.complaints {
		if c.ID == id {
			cp := *c
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *mockStore) List(_ context.Context, f ListFilter) ([]*Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Complaint
	for _, c := range m.complaints {
		if f.Department != "" && c.Department != f.Department {
			continue
		}
		if f.Priority != "" && string(c.Priority) != f.Priority {
			continue
		}
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockStore) UpdateStatus(_ context.Context, id string, status Status) (*Complaint, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.complaints {
		if c.ID == id {
			c.Status = status
			c.UpdatedAt = time.Now().UTC()
			cp := *c
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (m *mockStore) OpenSince(_ context.Context, category Category, location string, since time.Time) ([]*Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return nil, m.openErr
	}
	var out []*Complaint
	for _, c := range m.complaints {
		if c.Category != category || c.Location != location {
			continue
		}
		if c.Status == StatusResolved || c.CreatedAt.Before(since) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockStore) BumpHotspot(_ context.Context, location string, category Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bumpErr != nil {
		return m.bumpErr
	}
	m.bumps = append(m.bumps, location+"|"+string(category))
	return nil
}

func (m *mockStore) Hotspots(_ context.Context) ([]*Hotspot, error) {
	return nil, nil
}

func (m *mockStore) HotspotReport(_ context.Context, _ time.Time, _, _ int) ([]*HotspotReportRow, error) {
	return nil, nil
}

func (m *mockStore) Stats(_ context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := &Stats{ByCategory: make(map[Category]int)}
	for _, c := range m.complaints {
		st.Total++
		st.ByCategory[c.Category]++
	}
	return st, nil
}

func (m *mockStore) bumpCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bumps)
}

// pipeline wires a Service around a mock store and mock adapters.
func pipeline(store Store, llm Completer, backend TextTranslator, notifier Notifier) *Service {
	return NewService(
		store,
		NewTranslator(backend, log.Nop(), nil),
		NewClassifier(llm, log.Nop(), nil),
		NewScorer(llm, log.Nop(), nil),
		log.Nop(),
		nil,
		notifier,
	)
}

func TestSubmit_DegradedAdapters(t *testing.T) {
	t.Parallel()

	// LLM is down entirely: classification and scoring both fall back.
	store := newMockStore()
	svc := pipeline(store, &mockCompleter{err: errors.New("provider down")}, nil, nil)

	res, err := svc.Submit(context.Background(), &Submission{
		Text:     "fire broke out, urgent help needed",
		Location: "Main Street Market",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	c := res.Complaint
	if c.Category != CategoryInfrastructure {
		t.Errorf("Category = %q, want fallback %q", c.Category, CategoryInfrastructure)
	}
	if c.Priority != PriorityHigh {
		t.Errorf("Priority = %q, want %q (urgency words present)", c.Priority, PriorityHigh)
	}
	if c.Sentiment != 0.0 {
		t.Errorf("Sentiment = %v, want 0.0", c.Sentiment)
	}
	wantWords := []string{"fire", "urgent", "help"}
	if len(c.UrgencyWords) != len(wantWords) {
		t.Fatalf("UrgencyWords = %v, want %v", c.UrgencyWords, wantWords)
	}
	for i, w := range wantWords {
		if c.UrgencyWords[i] != w {
			t.Errorf("UrgencyWords[%d] = %q, want %q", i, c.UrgencyWords[i], w)
		}
	}
	if c.Department != "Public Works Department" {
		t.Errorf("Department = %q, want Public Works Department", c.Department)
	}
	if res.IsDuplicate {
		t.Error("first submission should not be a duplicate")
	}
	if c.Status != StatusPending {
		t.Errorf("Status = %q, want %q", c.Status, StatusPending)
	}
	if c.ID == "" {
		t.Error("expected non-empty id")
	}
}

func TestSubmit_DuplicateLinksToFirst(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	llm := &mockCompleter{resp: `{"sentiment": -0.5, "priority": "Medium", "urgency_words": []}`}
	svc := pipeline(store, llm, nil, nil)

	first, err := svc.Submit(context.Background(), &Submission{
		Text:     "big garbage pile near the school gate",
		Location: "Ward 12",
	})
	if err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if first.IsDuplicate {
		t.Fatal("first submission flagged duplicate")
	}

	second, err := svc.Submit(context.Background(), &Submission{
		Text:     "big garbage pile near the school gate again",
		Location: "Ward 12",
	})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if !second.IsDuplicate {
		t.Fatal("expected second submission to be flagged duplicate")
	}
	if second.Complaint.DuplicateOf != first.Complaint.ID {
		t.Errorf("DuplicateOf = %q, want %q", second.Complaint.DuplicateOf, first.Complaint.ID)
	}

	// Duplicates still persist as full records.
	if len(store.complaints) != 2 {
		t.Errorf("stored complaints = %d, want 2", len(store.complaints))
	}
}

func TestSubmit_DifferentLocationNotDuplicate(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	llm := &mockCompleter{resp: `{"sentiment": -0.5, "priority": "Medium", "urgency_words": []}`}
	svc := pipeline(store, llm, nil, nil)

	if _, err := svc.Submit(context.Background(), &Submission{
		Text: "big garbage pile near the school gate", Location: "Ward 12",
	}); err != nil {
		t.Fatalf("first Submit: %v", err)
	}

	res, err := svc.Submit(context.Background(), &Submission{
		Text: "big garbage pile near the school gate", Location: "Ward 13",
	})
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if res.IsDuplicate {
		t.Error("different location must not be a duplicate")
	}
}

func TestSubmit_TranslatesForeignLanguage(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	llm := &mockCompleter{resp: `{"sentiment": -0.2, "priority": "Low", "urgency_words": []}`}
	backend := &mockTextTranslator{out: "big pothole on main street"}
	svc := pipeline(store, llm, backend, nil)

	res, err := svc.Submit(context.Background(), &Submission{
		Text:     "sadak par bada gaddha",
		Location: "Main Street",
		Language: "hi",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if backend.callCount() != 1 {
		t.Errorf("translation backend calls = %d, want 1", backend.callCount())
	}
	if res.Complaint.Text != "big pothole on main street" {
		t.Errorf("stored Text = %q, want translated text", res.Complaint.Text)
	}
	if res.Complaint.Language != "hi" {
		t.Errorf("Language = %q, want submitted language", res.Complaint.Language)
	}
}

func TestSubmit_WorkingLanguageSkipsTranslation(t *testing.T) {
	t.Parallel()

	backend := &mockTextTranslator{out: "unused"}
	llm := &mockCompleter{resp: `{"sentiment": 0, "priority": "Low", "urgency_words": []}`}
	svc := pipeline(newMockStore(), llm, backend, nil)

	if _, err := svc.Submit(context.Background(), &Submission{
		Text: "pothole on main street", Location: "Main Street", Language: "en",
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if backend.callCount() != 0 {
		t.Errorf("translation backend calls = %d, want 0", backend.callCount())
	}
}

func TestSubmit_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   *Submission
	}{
		{"nil submission", nil},
		{"empty text", &Submission{Location: "Ward 1"}},
		{"whitespace text", &Submission{Text: "   ", Location: "Ward 1"}},
		{"empty location", &Submission{Text: "garbage pile"}},
		{"whitespace location", &Submission{Text: "garbage pile", Location: "\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := pipeline(newMockStore(), &mockCompleter{resp: "Sanitation"}, nil, nil)
			_, err := svc.Submit(context.Background(), tt.in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Submit error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSubmit_InsertFailureIsFatal(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.insertErr = errors.New("disk full")
	llm := &mockCompleter{resp: `{"sentiment": 0, "priority": "Low", "urgency_words": []}`}
	svc := pipeline(store, llm, nil, nil)

	_, err := svc.Submit(context.Background(), &Submission{Text: "garbage", Location: "Ward 1"})
	if err == nil {
		t.Fatal("expected error when insert fails")
	}
	if !strings.Contains(err.Error(), "insert complaint") {
		t.Errorf("error = %v, want insert complaint wrap", err)
	}
	if store.bumpCount() != 0 {
		t.Error("hotspot must not be bumped when insert fails")
	}
}

func TestSubmit_HotspotFailureNotFatal(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	store.bumpErr = errors.New("counter table locked")
	llm := &mockCompleter{resp: `{"sentiment": 0, "priority": "Low", "urgency_words": []}`}
	svc := pipeline(store, llm, nil, nil)

	res, err := svc.Submit(context.Background(), &Submission{Text: "garbage", Location: "Ward 1"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Complaint == nil {
		t.Fatal("expected persisted complaint despite hotspot failure")
	}
}

func TestSubmit_BumpsHotspotPerSubmission(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	llm := &mockCompleter{resp: "Sanitation"}
	svc := pipeline(store, llm, nil, nil)

	for i := 0; i < 3; i++ {
		if _, err := svc.Submit(context.Background(), &Submission{
			Text: "garbage pile", Location: "  Ward 12  ",
		}); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}
	if store.bumpCount() != 3 {
		t.Errorf("bumps = %d, want 3", store.bumpCount())
	}
	// Aggregator trims the location before handing it to the store.
	for _, b := range store.bumps {
		if !strings.HasPrefix(b, "Ward 12|") {
			t.Errorf("bump key = %q, want trimmed location", b)
		}
	}
}

// notifyRecorder implements Notifier for testing.
type notifyRecorder struct {
	mu    sync.Mutex
	sent  []*Complaint
	done  chan struct{}
	err   error
	fired bool
}

func newNotifyRecorder() *notifyRecorder {
	return &notifyRecorder{done: make(chan struct{}, 8)}
}

func (n *notifyRecorder) Send(_ context.Context, c *Complaint) error {
	n.mu.Lock()
	n.sent = append(n.sent, c)
	n.fired = true
	n.mu.Unlock()
	n.done <- struct{}{}
	return n.err
}

func TestSubmit_NotifiesOnHighPriority(t *testing.T) {
	t.Parallel()

	rec := newNotifyRecorder()
	llm := &mockCompleter{resp: `{"sentiment": -0.9, "priority": "High", "urgency_words": ["fire"]}`}
	svc := pipeline(newMockStore(), llm, nil, rec)

	res, err := svc.Submit(context.Background(), &Submission{Text: "fire", Location: "Ward 1"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not sent")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.sent) != 1 {
		t.Fatalf("notifications = %d, want 1", len(rec.sent))
	}
	if rec.sent[0].ID != res.Complaint.ID {
		t.Errorf("notified id = %q, want %q", rec.sent[0].ID, res.Complaint.ID)
	}
}

func TestSubmit_NoNotificationBelowHigh(t *testing.T) {
	t.Parallel()

	rec := newNotifyRecorder()
	llm := &mockCompleter{resp: `{"sentiment": -0.3, "priority": "Medium", "urgency_words": []}`}
	svc := pipeline(newMockStore(), llm, nil, rec)

	if _, err := svc.Submit(context.Background(), &Submission{Text: "garbage", Location: "Ward 1"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case <-rec.done:
		t.Fatal("unexpected notification for Medium priority")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubmit_DefaultsLanguageToWorking(t *testing.T) {
	t.Parallel()

	llm := &mockCompleter{resp: "Safety"}
	store := newMockStore()
	svc := pipeline(store, llm, nil, nil)

	res, err := svc.Submit(context.Background(), &Submission{Text: "broken signal", Location: "Ward 1"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Complaint.Language != WorkingLanguage {
		t.Errorf("Language = %q, want %q", res.Complaint.Language, WorkingLanguage)
	}
}

func TestUpdateStatus_RejectsUnknown(t *testing.T) {
	t.Parallel()

	svc := pipeline(newMockStore(), &mockCompleter{resp: "Safety"}, nil, nil)

	_, _, err := svc.UpdateStatus(context.Background(), "any", Status("escalated"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("UpdateStatus error = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateStatus_PermissiveTransitions(t *testing.T) {
	t.Parallel()

	store := newMockStore()
	llm := &mockCompleter{resp: "Safety"}
	svc := pipeline(store, llm, nil, nil)

	res, err := svc.Submit(context.Background(), &Submission{Text: "broken signal", Location: "Ward 1"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	id := res.Complaint.ID

	// Any valid status from any prior status, including backwards.
	for _, st := range []Status{StatusResolved, StatusPending, StatusInProgress} {
		c, ok, err := svc.UpdateStatus(context.Background(), id, st)
		if err != nil || !ok {
			t.Fatalf("UpdateStatus(%q): ok=%v err=%v", st, ok, err)
		}
		if c.Status != st {
			t.Errorf("Status = %q, want %q", c.Status, st)
		}
	}
}

func TestUpdateStatus_UnknownID(t *testing.T) {
	t.Parallel()

	svc := pipeline(newMockStore(), &mockCompleter{resp: "Safety"}, nil, nil)

	_, ok, err := svc.UpdateStatus(context.Background(), "missing", StatusResolved)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if ok {
		t.Error("expected ok=false for unknown id")
	}
}

func TestDepartmentFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cat  Category
		want string
	}{
		{CategorySanitation, "Sanitation Department"},
		{CategoryInfrastructure, "Public Works Department"},
		{CategorySafety, "Police Department"},
		{Category("Unknown"), "Public Works Department"},
	}
	for _, tt := range tests {
		if got := DepartmentFor(tt.cat); got != tt.want {
			t.Errorf("DepartmentFor(%q) = %q, want %q", tt.cat, got, tt.want)
		}
	}
}
