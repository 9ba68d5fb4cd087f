package validator

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/SercanAkan88/siteguard/internal/logging"
	"github.com/SercanAkan88/siteguard/internal/model"
	"github.com/SercanAkan88/siteguard/internal/webclient"
)

// Validator probes a bounded sample of extracted links and images for
// reachability. The sample bound keeps total scan latency predictable on
// arbitrarily large pages; it is a deliberate approximation rather than
// exhaustive validation.
type Validator struct {
	cfg     *Config
	wc      webclient.WebClient
	limiter *rate.Limiter
	logger  logging.Logger
}

func New(cfg *Config, wc webclient.WebClient, logger logging.Logger) (*Validator, error) {
	if wc == nil {
		return nil, errors.New("validator: nil webclient")
	}
	if logger == nil {
		return nil, errors.New("validator: nil logger")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Validator{
		cfg:     cfg,
		wc:      wc,
		limiter: rate.NewLimiter(rate.Limit(cfg.ProbesPerSecond), cfg.Concurrency),
		logger:  logger.With(logging.Field{Key: "component", Value: "validator"}),
	}, nil
}

// CheckLinks probes at most the first MaxLinks links in document order and
// returns the broken ones, still in document order. A status >= 400 or any
// transport error marks a link broken; some servers reject HEAD, so any
// error is counted rather than retried.
func (v *Validator) CheckLinks(ctx context.Context, links []model.Link) []model.Link {
	sample := links
	if len(sample) > v.cfg.MaxLinks {
		sample = sample[:v.cfg.MaxLinks]
	}

	broken := make([]*model.Link, len(sample))
	v.forEach(ctx, len(sample), func(i int) {
		link := sample[i]
		status, probeErr := v.probe(ctx, link.Href, v.cfg.LinkTimeout)
		if probeErr != nil {
			link.Error = probeErr.Error()
			broken[i] = &link
			return
		}
		if status >= 400 {
			link.Status = status
			broken[i] = &link
		}
	})

	out := []model.Link{}
	for _, l := range broken {
		if l != nil {
			out = append(out, *l)
		}
	}
	return out
}

// CheckImages probes at most the first MaxImages images in document order
// and returns the broken ones, still in document order.
func (v *Validator) CheckImages(ctx context.Context, images []model.Image) []model.Image {
	sample := images
	if len(sample) > v.cfg.MaxImages {
		sample = sample[:v.cfg.MaxImages]
	}

	broken := make([]*model.Image, len(sample))
	v.forEach(ctx, len(sample), func(i int) {
		img := sample[i]
		status, probeErr := v.probe(ctx, img.Src, v.cfg.ImageTimeout)
		if probeErr != nil {
			img.Error = probeErr.Error()
			broken[i] = &img
			return
		}
		if status >= 400 {
			img.Status = status
			broken[i] = &img
		}
	})

	out := []model.Image{}
	for _, img := range broken {
		if img != nil {
			out = append(out, *img)
		}
	}
	return out
}

// forEach runs fn(0..n-1) on a bounded worker pool. Each task writes to its
// own index, so document order is preserved no matter which worker finishes
// first.
func (v *Validator) forEach(ctx context.Context, n int, fn func(i int)) {
	if n == 0 {
		return
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, v.cfg.Concurrency)

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			fn(i)
		}(i)
	}

	wg.Wait()
}

// probe issues a single HEAD request with its own timeout. A timeout on one
// probe cancels only that probe; sibling probes are unaffected.
func (v *Validator) probe(ctx context.Context, url string, timeout time.Duration) (int, error) {
	if err := v.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := v.wc.Head(probeCtx, url)
	if err != nil {
		v.logger.Debug("probe failed",
			logging.Field{Key: "url", Value: url},
			logging.Field{Key: "error", Value: err.Error()})
		return 0, err
	}
	return resp.StatusCode, nil
}
