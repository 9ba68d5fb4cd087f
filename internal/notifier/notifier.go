package notifier

import (
	"context"

	"github.com/SercanAkan88/siteguard/internal/model"
)

// Notifier delivers alert and recovery emails to website owners. A delivery
// failure is reported as an error but must never roll back the scan that
// triggered it; callers log and move on.
type Notifier interface {
	// SendAlertEmail notifies the owner that a scan found issues.
	SendAlertEmail(ctx context.Context, to, siteName, siteURL string, issues []model.Issue) error

	// SendRecoveryEmail notifies the owner that a previously reported
	// problem state has cleared.
	SendRecoveryEmail(ctx context.Context, to, siteName, siteURL string) error
}
