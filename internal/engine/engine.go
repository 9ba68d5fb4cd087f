// Package engine runs one full health scan of one URL: fetch, parse,
// validate, classify, aggregate. A scan never escapes as an error or a
// panic; every failure mode is folded into the returned ScanResult.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SercanAkan88/siteguard/internal/analyzer"
	"github.com/SercanAkan88/siteguard/internal/classifier"
	"github.com/SercanAkan88/siteguard/internal/fetcher"
	"github.com/SercanAkan88/siteguard/internal/logging"
	"github.com/SercanAkan88/siteguard/internal/model"
	"github.com/SercanAkan88/siteguard/internal/validator"
)

// Engine composes the fetcher, analyzer, validator and classifier into the
// single-page scan pipeline. All collaborators are injected so tests can
// substitute doubles.
type Engine struct {
	fetcher   *fetcher.Fetcher
	analyzer  *analyzer.Analyzer
	validator *validator.Validator
	logger    logging.Logger
}

func New(f *fetcher.Fetcher, a *analyzer.Analyzer, v *validator.Validator, logger logging.Logger) (*Engine, error) {
	if f == nil || a == nil || v == nil {
		return nil, errors.New("engine: nil collaborator")
	}
	if logger == nil {
		return nil, errors.New("engine: nil logger")
	}
	return &Engine{
		fetcher:   f,
		analyzer:  a,
		validator: v,
		logger:    logger.With(logging.Field{Key: "component", Value: "engine"}),
	}, nil
}

// Scan runs one complete scan. The returned result is complete and owned by
// the caller; it is never mutated afterwards.
func (e *Engine) Scan(ctx context.Context, url string) (res *model.ScanResult) {
	res = &model.ScanResult{
		ID:        uuid.New().String(),
		URL:       url,
		StartTime: time.Now().UTC(),
		Checks: model.Checks{
			BrokenLinks:  []model.Link{},
			BrokenImages: []model.Image{},
			Forms:        []model.Form{},
			PageErrors:   []string{},
		},
		Summary: model.Summary{TotalPages: 1},
		Issues:  []model.Issue{},
	}

	// Anything unexpected below becomes a single critical scan_error issue
	// rather than escaping past the engine boundary.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("scan panicked",
				logging.Field{Key: "url", Value: url},
				logging.Field{Key: "panic", Value: fmt.Sprint(r)})
			res.Issues = append(res.Issues, classifier.ScanError(url, fmt.Sprint(r)))
			e.finalize(res, model.ScanError)
		}
	}()

	e.logger.Info("scan started", logging.Field{Key: "url", Value: url})

	fetched, err := e.fetcher.Fetch(ctx, url)
	if err != nil {
		// Transport failure short-circuits the whole scan.
		var unreachable *fetcher.UnreachableError
		timedOut := errors.As(err, &unreachable) && unreachable.TimedOut
		res.Checks.SiteOnline = false
		res.Issues = append(res.Issues, classifier.Unreachable(url, timedOut, err))
		e.finalize(res, model.ScanError)
		return res
	}

	res.Checks.LoadTime = fetched.ElapsedMs
	res.Checks.SiteOnline = fetched.StatusCode < 400

	if fetched.StatusCode >= 400 {
		// An error page gets exactly one critical site_down issue; link,
		// image and form checks are pointless against it.
		res.Issues = classifier.Classify(&classifier.Findings{
			URL:        url,
			StatusCode: fetched.StatusCode,
		})
		e.finalize(res, model.AggregateStatus(res.Issues))
		return res
	}

	doc := e.analyzer.Parse(url, fetched.Body)

	res.Summary.TotalLinks = len(doc.Links)
	res.Summary.TotalImages = len(doc.Images)
	res.Summary.TotalForms = len(doc.Forms)
	res.Checks.Forms = doc.Forms

	res.Checks.BrokenLinks = e.validator.CheckLinks(ctx, doc.Links)
	res.Checks.BrokenImages = e.validator.CheckImages(ctx, doc.Images)

	res.Issues = classifier.Classify(&classifier.Findings{
		URL:             url,
		StatusCode:      fetched.StatusCode,
		LoadTimeMs:      fetched.ElapsedMs,
		BrokenLinks:     res.Checks.BrokenLinks,
		BrokenImages:    res.Checks.BrokenImages,
		Forms:           doc.Forms,
		Title:           doc.Title,
		MetaDescription: doc.MetaDescription,
		Viewport:        doc.Viewport,
	})

	e.finalize(res, model.AggregateStatus(res.Issues))
	return res
}

// QuickCheck verifies reachability only; nothing is parsed or classified.
func (e *Engine) QuickCheck(ctx context.Context, url string) *fetcher.QuickResult {
	return e.fetcher.QuickCheck(ctx, url)
}

func (e *Engine) finalize(res *model.ScanResult, status model.ScanStatus) {
	res.Summary.IssuesFound = len(res.Issues)
	res.Status = status
	res.EndTime = time.Now().UTC()

	e.logger.Info("scan finished",
		logging.Field{Key: "url", Value: res.URL},
		logging.Field{Key: "status", Value: string(res.Status)},
		logging.Field{Key: "issues", Value: res.Summary.IssuesFound})
}
