package orchestrator_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SercanAkan88/siteguard/internal/analyzer"
	"github.com/SercanAkan88/siteguard/internal/engine"
	"github.com/SercanAkan88/siteguard/internal/fetcher"
	"github.com/SercanAkan88/siteguard/internal/model"
	"github.com/SercanAkan88/siteguard/internal/orchestrator"
	"github.com/SercanAkan88/siteguard/internal/store"
	"github.com/SercanAkan88/siteguard/internal/testutil"
	"github.com/SercanAkan88/siteguard/internal/validator"
	"github.com/SercanAkan88/siteguard/internal/webclient"
)

const healthyPage = `<html><head>
	<title>Fine</title>
	<meta name="description" content="All good.">
	<meta name="viewport" content="width=device-width">
</head><body><p>ok</p></body></html>`

const problemPage = `<html><body>
	<form action="/contact"><input type="email" name="email"><textarea></textarea></form>
</body></html>`

type fixture struct {
	orch     *orchestrator.Orchestrator
	store    *testutil.MemoryStore
	notifier *testutil.RecordingNotifier
}

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	log := &testutil.DummyLogger{}

	wc, err := webclient.NewNetHTTPClient(log, nil)
	if err != nil {
		t.Fatalf("webclient.NewNetHTTPClient: %v", err)
	}
	t.Cleanup(func() { wc.Close() })

	f, err := fetcher.New(nil, wc, log)
	if err != nil {
		t.Fatalf("fetcher.New: %v", err)
	}
	a, err := analyzer.New(log)
	if err != nil {
		t.Fatalf("analyzer.New: %v", err)
	}
	vcfg := validator.DefaultConfig()
	vcfg.ProbesPerSecond = 1000
	v, err := validator.New(vcfg, wc, log)
	if err != nil {
		t.Fatalf("validator.New: %v", err)
	}
	eng, err := engine.New(f, a, v, log)
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return eng
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := testutil.NewMemoryStore()
	not := &testutil.RecordingNotifier{}
	orch, err := orchestrator.New(newTestEngine(t), st, not, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("orchestrator.New: %v", err)
	}
	return &fixture{orch: orch, store: st, notifier: not}
}

func servePage(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunBatchScan_IsolatesFailingSite(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	good := servePage(t, healthyPage)
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()
	alsoGood := servePage(t, healthyPage)

	w1, _ := fx.store.CreateWebsite(ctx, "", good.URL, "First")
	w2, _ := fx.store.CreateWebsite(ctx, "", deadURL, "Second")
	w3, _ := fx.store.CreateWebsite(ctx, "", alsoGood.URL, "Third")

	fx.orch.RunBatchScan(ctx)

	if got := fx.store.Websites[w1.ID].Status; got != model.WebsiteHealthy {
		t.Errorf("site 1: expected healthy, got %s", got)
	}
	// Unreachable site yields a critical site_down issue, stored as error.
	if got := fx.store.Websites[w2.ID].Status; got != model.WebsiteError {
		t.Errorf("site 2: expected error, got %s", got)
	}
	if got := fx.store.Websites[w3.ID].Status; got != model.WebsiteHealthy {
		t.Errorf("site 3: expected healthy, got %s", got)
	}

	if len(fx.store.Scans) != 3 {
		t.Errorf("expected 3 scan records, got %d", len(fx.store.Scans))
	}
	for id, sc := range fx.store.Scans {
		if sc.CompletedAt == nil {
			t.Errorf("scan %s was never completed", id)
		}
	}
}

func TestRunBatchScan_EmptyRegistry(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	// Must return cleanly without touching anything.
	fx.orch.RunBatchScan(context.Background())

	if len(fx.store.Scans) != 0 {
		t.Errorf("expected no scans, got %d", len(fx.store.Scans))
	}
}

func TestScanOneWebsite_Healthy(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	srv := servePage(t, healthyPage)
	u, _ := fx.store.CreateUser(ctx, "owner@example.com", "Owner")
	w, _ := fx.store.CreateWebsite(ctx, u.ID, srv.URL, "Shop")

	outcome, err := fx.orch.ScanOneWebsite(ctx, w.ID)
	if err != nil {
		t.Fatalf("ScanOneWebsite: %v", err)
	}

	if outcome.Status != model.WebsiteHealthy {
		t.Errorf("expected healthy outcome, got %s", outcome.Status)
	}
	if outcome.ScanID == "" || outcome.Result == nil {
		t.Errorf("incomplete outcome: %+v", outcome)
	}
	if outcome.EmailError != "" {
		t.Errorf("unexpected email error: %s", outcome.EmailError)
	}
	if len(fx.notifier.Alerts) != 0 || len(fx.notifier.Recoveries) != 0 {
		t.Errorf("expected no emails for first healthy scan, got %+v", fx.notifier)
	}
}

func TestScanOneWebsite_UnknownID(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	_, err := fx.orch.ScanOneWebsite(context.Background(), "nope")
	if !errors.Is(err, store.ErrWebsiteNotFound) {
		t.Errorf("expected ErrWebsiteNotFound, got %v", err)
	}
}

func TestScanOneWebsite_AlertLifecycle(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	srv := servePage(t, problemPage)
	u, _ := fx.store.CreateUser(ctx, "owner@example.com", "Owner")
	w, _ := fx.store.CreateWebsite(ctx, u.ID, srv.URL, "Shop")

	outcome, err := fx.orch.ScanOneWebsite(ctx, w.ID)
	if err != nil {
		t.Fatalf("ScanOneWebsite: %v", err)
	}

	if outcome.Status != model.WebsiteWarning {
		t.Errorf("expected warning outcome, got %s", outcome.Status)
	}
	if len(fx.notifier.Alerts) != 1 || fx.notifier.Alerts[0] != "owner@example.com" {
		t.Fatalf("expected one alert email to owner, got %+v", fx.notifier.Alerts)
	}
	if len(fx.store.Alerts) != 1 {
		t.Fatalf("expected one alert record, got %d", len(fx.store.Alerts))
	}
	for _, a := range fx.store.Alerts {
		if !a.EmailSent {
			t.Error("expected alert flagged as delivered")
		}
		if a.Title != "Issues found on Shop" {
			t.Errorf("unexpected alert title: %q", a.Title)
		}
		if a.UserID != u.ID || a.WebsiteID != w.ID || a.ScanID != outcome.ScanID {
			t.Errorf("alert not linked correctly: %+v", a)
		}
	}
	if len(fx.store.Issues) == 0 {
		t.Error("expected issues persisted")
	}
}

func TestScanOneWebsite_CriticalAlertTitle(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	u, _ := fx.store.CreateUser(ctx, "owner@example.com", "Owner")
	w, _ := fx.store.CreateWebsite(ctx, u.ID, srv.URL, "Shop")

	if _, err := fx.orch.ScanOneWebsite(ctx, w.ID); err != nil {
		t.Fatalf("ScanOneWebsite: %v", err)
	}

	if len(fx.store.Alerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(fx.store.Alerts))
	}
	for _, a := range fx.store.Alerts {
		if a.Title != "Critical problems on Shop" {
			t.Errorf("unexpected alert title: %q", a.Title)
		}
	}
}

func TestScanOneWebsite_EmailFailureIsData(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.notifier.FailSends = true
	ctx := context.Background()

	srv := servePage(t, problemPage)
	u, _ := fx.store.CreateUser(ctx, "owner@example.com", "Owner")
	w, _ := fx.store.CreateWebsite(ctx, u.ID, srv.URL, "Shop")

	outcome, err := fx.orch.ScanOneWebsite(ctx, w.ID)
	if err != nil {
		t.Fatalf("expected scan to succeed despite email failure, got %v", err)
	}
	if outcome.EmailError == "" {
		t.Error("expected email error carried in outcome")
	}
	// The alert record exists but is never flagged as delivered.
	if len(fx.store.Alerts) != 1 {
		t.Fatalf("expected one alert, got %d", len(fx.store.Alerts))
	}
	for _, a := range fx.store.Alerts {
		if a.EmailSent {
			t.Error("alert must not be flagged sent after delivery failure")
		}
	}
}

func TestScanOneWebsite_OwnerlessSiteGetsNoAlert(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	srv := servePage(t, problemPage)
	w, _ := fx.store.CreateWebsite(ctx, "", srv.URL, "Demo")

	outcome, err := fx.orch.ScanOneWebsite(ctx, w.ID)
	if err != nil {
		t.Fatalf("ScanOneWebsite: %v", err)
	}
	if outcome.EmailError != "" {
		t.Errorf("expected missing owner to be silent, got %q", outcome.EmailError)
	}
	if len(fx.store.Alerts) != 0 || len(fx.notifier.Alerts) != 0 {
		t.Error("expected no alert for ownerless website")
	}
}

func TestScanOneWebsite_Recovery(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	srv := servePage(t, healthyPage)
	u, _ := fx.store.CreateUser(ctx, "owner@example.com", "Owner")
	w, _ := fx.store.CreateWebsite(ctx, u.ID, srv.URL, "Shop")
	fx.store.Websites[w.ID].Status = model.WebsiteError

	outcome, err := fx.orch.ScanOneWebsite(ctx, w.ID)
	if err != nil {
		t.Fatalf("ScanOneWebsite: %v", err)
	}

	if outcome.Status != model.WebsiteHealthy {
		t.Errorf("expected healthy outcome, got %s", outcome.Status)
	}
	if len(fx.notifier.Recoveries) != 1 || fx.notifier.Recoveries[0] != "owner@example.com" {
		t.Fatalf("expected one recovery email, got %+v", fx.notifier.Recoveries)
	}
	// Recovery is an email only, never an alert record.
	if len(fx.store.Alerts) != 0 {
		t.Errorf("expected no alert records for recovery, got %d", len(fx.store.Alerts))
	}
}

func TestScanOneWebsite_NoRecoveryFromPending(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	ctx := context.Background()

	srv := servePage(t, healthyPage)
	u, _ := fx.store.CreateUser(ctx, "owner@example.com", "Owner")
	w, _ := fx.store.CreateWebsite(ctx, u.ID, srv.URL, "Shop")

	if _, err := fx.orch.ScanOneWebsite(ctx, w.ID); err != nil {
		t.Fatalf("ScanOneWebsite: %v", err)
	}
	if len(fx.notifier.Recoveries) != 0 {
		t.Errorf("pending -> healthy must not trigger recovery, got %+v", fx.notifier.Recoveries)
	}
}

// statusFailStore simulates a persistence failure after the scan ran.
type statusFailStore struct {
	*testutil.MemoryStore
}

func (s *statusFailStore) UpdateWebsiteStatus(ctx context.Context, id string, status model.WebsiteStatus, checkedAt time.Time) error {
	return errors.New("disk full")
}

func TestScanOneWebsite_ClosesScanRecordOnPersistenceFailure(t *testing.T) {
	t.Parallel()
	st := testutil.NewMemoryStore()
	orch, err := orchestrator.New(newTestEngine(t), &statusFailStore{st}, &testutil.RecordingNotifier{}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("orchestrator.New: %v", err)
	}

	srv := servePage(t, healthyPage)
	w, _ := st.CreateWebsite(context.Background(), "", srv.URL, "Shop")

	if _, err := orch.ScanOneWebsite(context.Background(), w.ID); err == nil {
		t.Fatal("expected persistence failure to surface")
	}

	// The scan record must not be left "running".
	if len(st.Scans) != 1 {
		t.Fatalf("expected one scan record, got %d", len(st.Scans))
	}
	for _, sc := range st.Scans {
		if sc.CompletedAt == nil {
			t.Error("expected aborted scan record to be closed")
		}
		if sc.Status != model.ScanError {
			t.Errorf("expected error status on aborted scan, got %s", sc.Status)
		}
	}
}

func TestQuickCheck(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	srv := servePage(t, healthyPage)
	qr := fx.orch.QuickCheck(context.Background(), srv.URL)

	if !qr.Online || qr.StatusCode != 200 {
		t.Errorf("unexpected quick result: %+v", qr)
	}
	if len(fx.store.Scans) != 0 {
		t.Error("quick check must not persist anything")
	}
}
