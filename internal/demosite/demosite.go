// Package demosite serves a small set of fixture pages with deliberate
// health defects (broken links, missing metadata, a contact form without a
// submit button) so the scanner can be demonstrated against a local target.
package demosite

import (
	"fmt"
	"net/http"
)

// DemoSite is a simple HTTP server exposing pages the scanner should flag.
type DemoSite struct {
	cfg Config
}

func NewDemoSite(cfg Config) *DemoSite {
	return &DemoSite{cfg: cfg}
}

// Handler returns the demo site's mux so tests can mount it on httptest.
func (s *DemoSite) Handler() http.Handler {
	mux := http.NewServeMux()

	for path, page := range pages {
		p := page // capture for closure
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, p)
		})
	}

	mux.HandleFunc("/problems", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, problemsPage, r.Host)
	})

	// Deliberately broken endpoints referenced by /problems
	mux.HandleFunc("/missing-page", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/img/missing.png", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return mux
}

// Start serves the demo site until the process exits.
func (s *DemoSite) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Demo site listening on http://localhost%s\n", addr)
	fmt.Println("Try: /healthy /problems /contact")
	return http.ListenAndServe(addr, s.Handler())
}
