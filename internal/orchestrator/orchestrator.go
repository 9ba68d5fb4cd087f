// Package orchestrator drives scans across every registered website:
// it runs the engine per site, persists results, diffs the stored status
// and manages the alert/recovery notification lifecycle. One site's
// failure never aborts the rest of a batch.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/SercanAkan88/siteguard/internal/engine"
	"github.com/SercanAkan88/siteguard/internal/fetcher"
	"github.com/SercanAkan88/siteguard/internal/logging"
	"github.com/SercanAkan88/siteguard/internal/model"
	"github.com/SercanAkan88/siteguard/internal/notifier"
	"github.com/SercanAkan88/siteguard/internal/store"
)

// SingleScanOutcome is what the immediate API path gets back from scanning
// one website. EmailError carries a notification delivery failure as data;
// the scan itself is already persisted by then.
type SingleScanOutcome struct {
	ScanID     string              `json:"scanId"`
	Status     model.WebsiteStatus `json:"status"`
	Result     *model.ScanResult   `json:"results"`
	EmailError string              `json:"emailError,omitempty"`
}

// Orchestrator walks registered websites, scans them one at a time and
// persists+notifies per site. Sites are processed sequentially to bound
// outbound request volume against target servers.
type Orchestrator struct {
	engine   *engine.Engine
	store    store.Store
	notifier notifier.Notifier
	logger   logging.Logger
}

func New(eng *engine.Engine, st store.Store, not notifier.Notifier, logger logging.Logger) (*Orchestrator, error) {
	if eng == nil {
		return nil, errors.New("orchestrator: nil engine")
	}
	if st == nil {
		return nil, errors.New("orchestrator: nil store")
	}
	if not == nil {
		return nil, errors.New("orchestrator: nil notifier")
	}
	if logger == nil {
		return nil, errors.New("orchestrator: nil logger")
	}
	return &Orchestrator{
		engine:   eng,
		store:    st,
		notifier: not,
		logger:   logger.With(logging.Field{Key: "component", Value: "orchestrator"}),
	}, nil
}

// RunBatchScan scans every registered website. It has no return value:
// results are persisted and notifications dispatched as side effects, and
// per-site failures are logged, reflected in stored status and swallowed.
func (o *Orchestrator) RunBatchScan(ctx context.Context) {
	o.logger.Info("batch scan started")

	websites, err := o.store.FindAllWebsites(ctx)
	if err != nil {
		o.logger.Error("listing websites failed", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	if len(websites) == 0 {
		o.logger.Info("no websites to scan")
		return
	}

	o.logger.Info("scanning websites", logging.Field{Key: "count", Value: len(websites)})

	for _, website := range websites {
		if ctx.Err() != nil {
			o.logger.Warn("batch scan canceled")
			return
		}
		if err := o.scanSite(ctx, website, true); err != nil {
			o.logger.Error("site scan failed",
				logging.Field{Key: "website", Value: website.URL},
				logging.Field{Key: "error", Value: err.Error()})
			// Force the stored status to error so the failure is visible,
			// then continue with the next site.
			if uerr := o.store.UpdateWebsiteStatus(ctx, website.ID, model.WebsiteError, time.Now().UTC()); uerr != nil {
				o.logger.Error("forcing error status failed",
					logging.Field{Key: "website", Value: website.URL},
					logging.Field{Key: "error", Value: uerr.Error()})
			}
		}
	}

	o.logger.Info("batch scan completed")
}

// ScanOneWebsite runs the full persist+notify lifecycle for a single
// website and returns the outcome for immediate display.
func (o *Orchestrator) ScanOneWebsite(ctx context.Context, websiteID string) (*SingleScanOutcome, error) {
	website, err := o.store.FindWebsiteByID(ctx, websiteID)
	if err != nil {
		return nil, err
	}

	outcome, err := o.runLifecycle(ctx, website, true)
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// QuickCheck is a reachability probe only; nothing is persisted.
func (o *Orchestrator) QuickCheck(ctx context.Context, url string) *fetcher.QuickResult {
	return o.engine.QuickCheck(ctx, url)
}

// scanSite wraps runLifecycle with a panic barrier so a defect in one
// site's scan cannot take down the batch loop.
func (o *Orchestrator) scanSite(ctx context.Context, website *model.Website, notify bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan panicked: %v", r)
		}
	}()

	_, err = o.runLifecycle(ctx, website, notify)
	return err
}

// runLifecycle is the per-site state machine: create scan record, run the
// engine, persist result + issues + derived status, then decide between an
// alert and a recovery notification based on the previous stored status.
func (o *Orchestrator) runLifecycle(ctx context.Context, website *model.Website, notify bool) (*SingleScanOutcome, error) {
	// The previous status must be read before it is overwritten; it is the
	// only way to detect a problem -> healthy transition.
	previousStatus := website.Status

	scanID, err := o.store.CreateScan(ctx, website.ID)
	if err != nil {
		return nil, fmt.Errorf("create scan record: %w", err)
	}

	result := o.engine.Scan(ctx, website.URL)
	websiteStatus := model.WebsiteStatusFor(result.Issues)

	if err := o.store.UpdateWebsiteStatus(ctx, website.ID, websiteStatus, time.Now().UTC()); err != nil {
		o.abortScan(ctx, scanID)
		return nil, fmt.Errorf("update website status: %w", err)
	}

	summaryJSON, detailsJSON := renderJSON(result)
	if err := o.store.CompleteScan(ctx, scanID, result.Status, summaryJSON, detailsJSON); err != nil {
		o.abortScan(ctx, scanID)
		return nil, fmt.Errorf("complete scan record: %w", err)
	}

	for i := range result.Issues {
		if err := o.store.CreateIssue(ctx, scanID, website.ID, &result.Issues[i]); err != nil {
			o.abortScan(ctx, scanID)
			return nil, fmt.Errorf("persist issue: %w", err)
		}
	}

	outcome := &SingleScanOutcome{
		ScanID: scanID,
		Status: websiteStatus,
		Result: result,
	}

	if notify {
		if emailErr := o.handleNotifications(ctx, website, scanID, websiteStatus, previousStatus, result.Issues); emailErr != nil {
			outcome.EmailError = emailErr.Error()
		}
	}

	o.logger.Info("site scan completed",
		logging.Field{Key: "website", Value: website.URL},
		logging.Field{Key: "status", Value: string(websiteStatus)},
		logging.Field{Key: "issues", Value: len(result.Issues)})

	return outcome, nil
}

// abortScan best-effort closes a scan record whose lifecycle failed after
// creation, so it cannot stay "running" forever.
func (o *Orchestrator) abortScan(ctx context.Context, scanID string) {
	if err := o.store.CompleteScan(ctx, scanID, model.ScanError, "{}", "{}"); err != nil {
		o.logger.Warn("could not close aborted scan",
			logging.Field{Key: "scan_id", Value: scanID},
			logging.Field{Key: "error", Value: err.Error()})
	}
}

// handleNotifications creates an alert + email when issues exist, or a
// recovery email when a previously bad site comes back clean. Delivery
// failures are returned as data, never as lifecycle errors.
func (o *Orchestrator) handleNotifications(ctx context.Context, website *model.Website, scanID string, status model.WebsiteStatus, previousStatus model.WebsiteStatus, issues []model.Issue) error {
	if len(issues) > 0 {
		user, err := o.store.FindUserByID(ctx, website.UserID)
		if err != nil {
			// An ownerless website (demo targets) simply gets no alert.
			if errors.Is(err, store.ErrUserNotFound) {
				return nil
			}
			o.logger.Error("user lookup failed",
				logging.Field{Key: "website", Value: website.URL},
				logging.Field{Key: "error", Value: err.Error()})
			return err
		}

		alert := &model.Alert{
			ID:        uuid.New().String(),
			UserID:    user.ID,
			WebsiteID: website.ID,
			ScanID:    scanID,
			Status:    status,
			Title:     alertTitle(website, issues),
			Message:   fmt.Sprintf("Found %d issue(s)", len(issues)),
			CreatedAt: time.Now().UTC(),
		}
		if err := o.store.CreateAlert(ctx, alert); err != nil {
			return fmt.Errorf("create alert: %w", err)
		}

		if err := o.notifier.SendAlertEmail(ctx, user.Email, website.DisplayName(), website.URL, issues); err != nil {
			o.logger.Warn("alert email not delivered",
				logging.Field{Key: "website", Value: website.URL},
				logging.Field{Key: "error", Value: err.Error()})
			return err
		}

		// Flag delivery only after the send was confirmed.
		if err := o.store.MarkAlertEmailSent(ctx, alert.ID); err != nil {
			return fmt.Errorf("mark alert email sent: %w", err)
		}

		o.logger.Info("alert sent",
			logging.Field{Key: "website", Value: website.URL},
			logging.Field{Key: "to", Value: user.Email})
		return nil
	}

	// Clean scan: a recovery notification goes out only when the site was
	// previously in a problem state. No alert record is created.
	if previousStatus.HasProblem() {
		user, err := o.store.FindUserByID(ctx, website.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return nil
			}
			return err
		}
		if err := o.notifier.SendRecoveryEmail(ctx, user.Email, website.DisplayName(), website.URL); err != nil {
			o.logger.Warn("recovery email not delivered",
				logging.Field{Key: "website", Value: website.URL},
				logging.Field{Key: "error", Value: err.Error()})
			return err
		}
		o.logger.Info("recovery email sent",
			logging.Field{Key: "website", Value: website.URL},
			logging.Field{Key: "to", Value: user.Email})
	}
	return nil
}

func alertTitle(website *model.Website, issues []model.Issue) string {
	for _, is := range issues {
		if is.Severity == model.SeverityCritical {
			return fmt.Sprintf("Critical problems on %s", website.DisplayName())
		}
	}
	return fmt.Sprintf("Issues found on %s", website.DisplayName())
}

// renderJSON produces the persisted summary and full-result renderings.
// Marshal failures degrade to empty JSON objects; the scan must not fail
// over its own serialization.
func renderJSON(result *model.ScanResult) (summaryJSON, detailsJSON string) {
	summary, err := json.Marshal(result.Summary)
	if err != nil {
		summary = []byte("{}")
	}
	details, err := json.Marshal(result)
	if err != nil {
		details = []byte("{}")
	}
	return string(summary), string(details)
}
