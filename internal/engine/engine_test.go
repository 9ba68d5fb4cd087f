package engine_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SercanAkan88/siteguard/internal/analyzer"
	"github.com/SercanAkan88/siteguard/internal/engine"
	"github.com/SercanAkan88/siteguard/internal/fetcher"
	"github.com/SercanAkan88/siteguard/internal/model"
	"github.com/SercanAkan88/siteguard/internal/testutil"
	"github.com/SercanAkan88/siteguard/internal/validator"
	"github.com/SercanAkan88/siteguard/internal/webclient"
)

func newEngine(t *testing.T) *engine.Engine {
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

// scanTarget serves a page with 25 links (3 dead among the first 20),
// 12 images, one contact form without a submit button, a title and a
// viewport tag but no meta description.
func scanTarget(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/ok", strings.HasPrefix(r.URL.Path, "/img-"):
			return
		case r.URL.Path != "/":
			http.NotFound(w, r)
			return
		}

		var b strings.Builder
		b.WriteString(`<html><head><title>Shop</title><meta name="viewport" content="width=device-width"></head><body>`)
		for i := 0; i < 25; i++ {
			path := "/ok"
			if i == 2 || i == 7 || i == 15 {
				path = fmt.Sprintf("/dead-%d", i)
			}
			fmt.Fprintf(&b, `<a href="%s%s">link %d</a>`, srv.URL, path, i)
		}
		for i := 0; i < 12; i++ {
			fmt.Fprintf(&b, `<img src="%s/img-%d.png" alt="pic %d">`, srv.URL, i, i)
		}
		b.WriteString(`<form action="/contact"><input type="email" name="email"><textarea></textarea></form>`)
		b.WriteString(`</body></html>`)
		w.Write([]byte(b.String()))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestScan_FullPage(t *testing.T) {
	t.Parallel()
	srv := scanTarget(t)
	eng := newEngine(t)

	res := eng.Scan(context.Background(), srv.URL+"/")

	if res.Status != model.ScanError {
		t.Errorf("expected status error (broken links present), got %s", res.Status)
	}
	if !res.Checks.SiteOnline {
		t.Error("expected site online")
	}
	if res.Summary.TotalPages != 1 || res.Summary.TotalLinks != 25 ||
		res.Summary.TotalImages != 12 || res.Summary.TotalForms != 1 {
		t.Errorf("unexpected summary: %+v", res.Summary)
	}
	if len(res.Checks.BrokenLinks) != 3 {
		t.Fatalf("expected 3 broken links, got %d: %+v", len(res.Checks.BrokenLinks), res.Checks.BrokenLinks)
	}
	for _, l := range res.Checks.BrokenLinks {
		if l.Status != 404 {
			t.Errorf("expected 404 on broken link %s, got %d", l.Href, l.Status)
		}
	}
	if len(res.Checks.BrokenImages) != 0 {
		t.Errorf("expected no broken images, got %+v", res.Checks.BrokenImages)
	}

	types := issueTypes(res.Issues)
	want := []model.IssueType{model.IssueBrokenLinks, model.IssueForm, model.IssueSEO}
	if fmt.Sprint(types) != fmt.Sprint(want) {
		t.Errorf("expected issues %v, got %v", want, types)
	}
	if res.Summary.IssuesFound != len(res.Issues) {
		t.Errorf("IssuesFound=%d disagrees with %d issues", res.Summary.IssuesFound, len(res.Issues))
	}
	if res.EndTime.Before(res.StartTime) {
		t.Error("expected EndTime >= StartTime")
	}
	if res.ID == "" {
		t.Error("expected a scan id")
	}
}

func TestScan_HealthyPage(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head>
			<title>Fine</title>
			<meta name="description" content="All good here.">
			<meta name="viewport" content="width=device-width">
		</head><body><p>nothing to see</p></body></html>`))
	}))
	t.Cleanup(srv.Close)

	res := newEngine(t).Scan(context.Background(), srv.URL)

	if res.Status != model.ScanHealthy {
		t.Errorf("expected healthy, got %s (issues: %+v)", res.Status, res.Issues)
	}
	if len(res.Issues) != 0 {
		t.Errorf("expected no issues, got %+v", res.Issues)
	}
}

func TestScan_ErrorStatusShortCircuits(t *testing.T) {
	t.Parallel()
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
		// Body full of checkable content that must be ignored.
		w.Write([]byte(`<html><body>
			<a href="https://nonexistent.invalid/x">dead</a>
			<img src="https://nonexistent.invalid/y.png">
			<form><textarea></textarea></form>
		</body></html>`))
	}))
	t.Cleanup(srv.Close)

	res := newEngine(t).Scan(context.Background(), srv.URL)

	if hits != 1 {
		t.Errorf("expected exactly one request, got %d", hits)
	}
	if res.Status != model.ScanCritical {
		t.Errorf("expected critical, got %s", res.Status)
	}
	if len(res.Issues) != 1 || res.Issues[0].Type != model.IssueSiteDown {
		t.Fatalf("expected single site_down issue, got %+v", res.Issues)
	}
	if res.Checks.SiteOnline {
		t.Error("expected siteOnline=false for 500")
	}
	if res.Summary.TotalLinks != 0 || res.Summary.TotalForms != 0 {
		t.Errorf("expected no parsing after error status, got %+v", res.Summary)
	}
}

func TestScan_Unreachable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := newEngine(t).Scan(context.Background(), url)

	if res.Status != model.ScanError {
		t.Errorf("expected error status, got %s", res.Status)
	}
	if len(res.Issues) != 1 {
		t.Fatalf("expected single issue, got %+v", res.Issues)
	}
	is := res.Issues[0]
	if is.Type != model.IssueSiteDown || is.Severity != model.SeverityCritical {
		t.Errorf("unexpected issue: %+v", is)
	}
	if !strings.HasPrefix(is.Description, "Could not connect:") {
		t.Errorf("expected connect wording, got %q", is.Description)
	}
	if res.Checks.SiteOnline {
		t.Error("expected siteOnline=false")
	}
}

func issueTypes(issues []model.Issue) []model.IssueType {
	out := make([]model.IssueType, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Type)
	}
	return out
}
