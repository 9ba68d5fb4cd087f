// Package testutil provides shared test doubles for use across package
// tests. All dummies implement the corresponding interfaces from the
// production code, allowing injection into components under test without
// real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SercanAkan88/siteguard/internal/logging"
	"github.com/SercanAkan88/siteguard/internal/model"
	"github.com/SercanAkan88/siteguard/internal/store"
	"github.com/SercanAkan88/siteguard/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ─── WebClient ─────────────────────────────────────────────────────────

// CannedResponse configures DummyWebClient's answer for one URL.
type CannedResponse struct {
	StatusCode int
	Body       []byte
	Err        error
}

// DummyWebClient implements webclient.WebClient. By default it returns an
// empty 200 response. Set Responses[url] for specific answers.
type DummyWebClient struct {
	Responses map[string]CannedResponse

	mu       sync.Mutex
	Requests []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canned, ok := d.Responses[req.URL]
	if !ok {
		canned = CannedResponse{StatusCode: 200}
	}
	if canned.Err != nil {
		return nil, canned.Err
	}
	return &webclient.Response{
		Request:    req,
		StatusCode: canned.StatusCode,
		Body:       canned.Body,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Head(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "HEAD", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// ─── Notifier ──────────────────────────────────────────────────────────

var errDeliveryFailed = errors.New("delivery failed")

// RecordingNotifier implements notifier.Notifier, recording every send.
// Set FailSends to make deliveries error.
type RecordingNotifier struct {
	FailSends bool

	mu         sync.Mutex
	Alerts     []string // recipient addresses of alert emails
	Recoveries []string // recipient addresses of recovery emails
}

func (n *RecordingNotifier) SendAlertEmail(ctx context.Context, to, siteName, siteURL string, issues []model.Issue) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailSends {
		return errDeliveryFailed
	}
	n.Alerts = append(n.Alerts, to)
	return nil
}

func (n *RecordingNotifier) SendRecoveryEmail(ctx context.Context, to, siteName, siteURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailSends {
		return errDeliveryFailed
	}
	n.Recoveries = append(n.Recoveries, to)
	return nil
}

// ─── Store ─────────────────────────────────────────────────────────────

// MemoryStore implements store.Store entirely in memory.
type MemoryStore struct {
	mu       sync.Mutex
	Users    map[string]*model.User
	Websites map[string]*model.Website
	Scans    map[string]*model.Scan
	Issues   []*model.Issue
	Alerts   map[string]*model.Alert

	// WebsiteOrder preserves insertion order for FindAllWebsites.
	WebsiteOrder []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Users:    map[string]*model.User{},
		Websites: map[string]*model.Website{},
		Scans:    map[string]*model.Scan{},
		Alerts:   map[string]*model.Alert{},
	}
}

func (m *MemoryStore) CreateUser(ctx context.Context, email, name string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &model.User{ID: uuid.New().String(), Email: email, Name: name, CreatedAt: time.Now().UTC()}
	m.Users[u.ID] = u
	return u, nil
}

func (m *MemoryStore) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return u, nil
}

func (m *MemoryStore) CreateWebsite(ctx context.Context, userID, url, name string) (*model.Website, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w := &model.Website{
		ID:            uuid.New().String(),
		UserID:        userID,
		URL:           url,
		Name:          name,
		CheckInterval: 60,
		Status:        model.WebsitePending,
		CreatedAt:     time.Now().UTC(),
	}
	m.Websites[w.ID] = w
	m.WebsiteOrder = append(m.WebsiteOrder, w.ID)
	return w, nil
}

func (m *MemoryStore) FindWebsiteByID(ctx context.Context, id string) (*model.Website, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.Websites[id]
	if !ok {
		return nil, store.ErrWebsiteNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *MemoryStore) FindWebsitesByUser(ctx context.Context, userID string) ([]*model.Website, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Website
	for _, id := range m.WebsiteOrder {
		if w := m.Websites[id]; w.UserID == userID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryStore) FindAllWebsites(ctx context.Context) ([]*model.Website, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Website, 0, len(m.WebsiteOrder))
	for _, id := range m.WebsiteOrder {
		cp := *m.Websites[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryStore) UpdateWebsiteStatus(ctx context.Context, id string, status model.WebsiteStatus, checkedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.Websites[id]
	if !ok {
		return store.ErrWebsiteNotFound
	}
	w.Status = status
	w.LastCheckedAt = &checkedAt
	return nil
}

func (m *MemoryStore) CreateScan(ctx context.Context, websiteID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.Scans[id] = &model.Scan{ID: id, WebsiteID: websiteID, Status: "running", StartedAt: time.Now().UTC()}
	return id, nil
}

func (m *MemoryStore) CompleteScan(ctx context.Context, scanID string, status model.ScanStatus, summaryJSON, detailsJSON string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.Scans[scanID]
	if !ok {
		return store.ErrScanNotFound
	}
	now := time.Now().UTC()
	sc.Status = status
	sc.Summary = summaryJSON
	sc.Details = detailsJSON
	sc.CompletedAt = &now
	return nil
}

func (m *MemoryStore) CreateIssue(ctx context.Context, scanID, websiteID string, issue *model.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *issue
	m.Issues = append(m.Issues, &cp)
	return nil
}

func (m *MemoryStore) CreateAlert(ctx context.Context, alert *model.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *alert
	m.Alerts[alert.ID] = &cp
	return nil
}

func (m *MemoryStore) MarkAlertEmailSent(ctx context.Context, alertID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Alerts[alertID]
	if !ok {
		return store.ErrAlertNotFound
	}
	a.EmailSent = true
	return nil
}

func (m *MemoryStore) Close() error { return nil }
