package model

import "time"

// WebsiteStatus is the persisted three-value health label of a registered
// website. Unlike ScanStatus it has no "critical": a critical scan is
// stored as error. See WebsiteStatusFor for the mapping.
type WebsiteStatus string

const (
	WebsitePending WebsiteStatus = "pending"
	WebsiteHealthy WebsiteStatus = "healthy"
	WebsiteWarning WebsiteStatus = "warning"
	WebsiteError   WebsiteStatus = "error"
)

// Website is a registered monitoring target owned by a user.
type Website struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	URL           string        `json:"url"`
	Name          string        `json:"name"`
	CheckInterval int           `json:"checkInterval"`
	Status        WebsiteStatus `json:"status"`
	LastCheckedAt *time.Time    `json:"lastCheckedAt,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// DisplayName prefers the human name and falls back to the URL.
func (w *Website) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.URL
}

// User is the owner of one or more websites, looked up when an alert or
// recovery notification must be delivered.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Scan is the persisted record of one engine invocation against a website.
// Summary and Details hold the JSON renderings written at completion.
type Scan struct {
	ID          string     `json:"id"`
	WebsiteID   string     `json:"websiteId"`
	Status      ScanStatus `json:"status"`
	Summary     string     `json:"summary,omitempty"`
	Details     string     `json:"details,omitempty"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Alert is the persisted record of a notification attempt tied to a scan
// that produced at least one issue.
type Alert struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	WebsiteID string        `json:"websiteId"`
	ScanID    string        `json:"scanId"`
	Status    WebsiteStatus `json:"status"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	EmailSent bool          `json:"emailSent"`
	CreatedAt time.Time     `json:"createdAt"`
}

// WebsiteStatusFor reduces a scan's issues to the stored website status:
// error if any critical-or-error issue, warning if any issue at all,
// healthy otherwise.
func WebsiteStatusFor(issues []Issue) WebsiteStatus {
	switch AggregateStatus(issues) {
	case ScanCritical, ScanError:
		return WebsiteError
	case ScanWarning:
		return WebsiteWarning
	default:
		return WebsiteHealthy
	}
}

// HasProblem reports whether a stored status represents a problem state,
// i.e. a later clean scan counts as a recovery.
func (s WebsiteStatus) HasProblem() bool {
	return s == WebsiteError || s == WebsiteWarning
}
