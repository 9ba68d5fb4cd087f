package store

import (
	"context"
	"errors"
	"time"

	"github.com/SercanAkan88/siteguard/internal/model"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrWebsiteNotFound = errors.New("website not found")
	ErrScanNotFound    = errors.New("scan not found")
	ErrAlertNotFound   = errors.New("alert not found")
)

// Store is the persistence contract the orchestrator and API depend on.
// Implementations should be safe for concurrent use.
type Store interface {
	// CreateUser registers a user and returns the stored record.
	CreateUser(ctx context.Context, email, name string) (*model.User, error)

	// FindUserByID returns ErrUserNotFound when no such user exists.
	FindUserByID(ctx context.Context, id string) (*model.User, error)

	// CreateWebsite registers a monitoring target with status "pending".
	CreateWebsite(ctx context.Context, userID, url, name string) (*model.Website, error)

	// FindWebsiteByID returns ErrWebsiteNotFound when no such website exists.
	FindWebsiteByID(ctx context.Context, id string) (*model.Website, error)

	// FindWebsitesByUser lists a user's websites, oldest first.
	FindWebsitesByUser(ctx context.Context, userID string) ([]*model.Website, error)

	// FindAllWebsites lists every registered website, oldest first.
	FindAllWebsites(ctx context.Context) ([]*model.Website, error)

	// UpdateWebsiteStatus overwrites the stored status and last-checked time.
	UpdateWebsiteStatus(ctx context.Context, id string, status model.WebsiteStatus, checkedAt time.Time) error

	// CreateScan opens a scan record in the "running" state and returns its ID.
	CreateScan(ctx context.Context, websiteID string) (string, error)

	// CompleteScan closes a scan record with its final status and the JSON
	// renderings of the summary and full result.
	CompleteScan(ctx context.Context, scanID string, status model.ScanStatus, summaryJSON, detailsJSON string) error

	// CreateIssue persists one issue of a scan.
	CreateIssue(ctx context.Context, scanID, websiteID string, issue *model.Issue) error

	// CreateAlert persists a notification record.
	CreateAlert(ctx context.Context, alert *model.Alert) error

	// MarkAlertEmailSent flags an alert after confirmed delivery.
	MarkAlertEmailSent(ctx context.Context, alertID string) error

	// Close releases resources used by the store.
	Close() error
}
