package model

import "time"

// ScanStatus is the aggregated health label for one scan.
type ScanStatus string

const (
	ScanHealthy  ScanStatus = "healthy"
	ScanWarning  ScanStatus = "warning"
	ScanError    ScanStatus = "error"
	ScanCritical ScanStatus = "critical"
)

// Severity classifies how urgent an issue is. The order is total:
// critical > error > warning.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityError    Severity = "error"
	SeverityWarning  Severity = "warning"
)

// IssueType identifies which detection rule produced an issue.
type IssueType string

const (
	IssueSiteDown     IssueType = "site_down"
	IssueSlowLoading  IssueType = "slow_loading"
	IssueBrokenLinks  IssueType = "broken_links"
	IssueBrokenImages IssueType = "broken_images"
	IssueForm         IssueType = "form_issue"
	IssueSEO          IssueType = "seo_issue"
	IssueMobile       IssueType = "mobile_issue"
	IssueScanError    IssueType = "scan_error"
)

// Link is an outbound anchor discovered on the scanned page.
// Status and Error are only populated when a probe marked it broken.
type Link struct {
	Href   string `json:"href"`
	Text   string `json:"text"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Image is an image reference discovered on the scanned page, with Src
// already resolved to an absolute URL.
type Image struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Status int    `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Form describes one form element found on the page together with the
// heuristic identity resolved for it.
type Form struct {
	// Index is 1-based for human readability.
	Index           int    `json:"index"`
	Action          string `json:"action"`
	Method          string `json:"method"`
	Inputs          int    `json:"inputs"`
	HasEmail        bool   `json:"hasEmail"`
	HasSubmit       bool   `json:"hasSubmit"`
	IsContactForm   bool   `json:"isContactForm"`
	Name            string `json:"formName"`
	SubmitButtonTxt string `json:"submitButtonText"`
	PageSection     string `json:"pageSection"`
	FormID          string `json:"formId,omitempty"`
	Language        string `json:"language"`
	PageURL         string `json:"pageUrl"`
}

// Issue is a single detected problem with human-actionable evidence.
// Exactly one of BrokenLinks, BrokenImages or FormDetails is set depending
// on Type; the rest are omitted from JSON.
type Issue struct {
	ID          string    `json:"id"`
	Type        IssueType `json:"type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`

	BrokenLinks  []Link  `json:"brokenLinks,omitempty"`
	BrokenImages []Image `json:"brokenImages,omitempty"`
	FormDetails  *Form   `json:"formDetails,omitempty"`
}

// Checks holds the raw per-check observations of one scan.
type Checks struct {
	SiteOnline   bool     `json:"siteOnline"`
	LoadTime     int64    `json:"loadTime"`
	BrokenLinks  []Link   `json:"brokenLinks"`
	BrokenImages []Image  `json:"brokenImages"`
	Forms        []Form   `json:"forms"`
	PageErrors   []string `json:"pageErrors"`
}

// Summary counts what the scan saw on the page (before sampling).
type Summary struct {
	TotalPages  int `json:"totalPages"`
	TotalLinks  int `json:"totalLinks"`
	TotalImages int `json:"totalImages"`
	TotalForms  int `json:"totalForms"`
	IssuesFound int `json:"issuesFound"`
}

// ScanResult is the complete outcome of one scan of one URL. It is built
// once by the engine and never mutated after being returned.
type ScanResult struct {
	ID        string     `json:"id"`
	URL       string     `json:"url"`
	StartTime time.Time  `json:"startTime"`
	EndTime   time.Time  `json:"endTime"`
	Status    ScanStatus `json:"status"`
	Checks    Checks     `json:"checks"`
	Summary   Summary    `json:"summary"`
	Issues    []Issue    `json:"issues"`
}

// severityRank orders severities so aggregation can compare them.
// Higher is worse.
func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityError:
		return 2
	case SeverityWarning:
		return 1
	}
	return 0
}

// AggregateStatus reduces an issue set to the four-value scan status:
// critical if any critical issue, else error if any error issue, else
// warning if any issue at all, else healthy.
func AggregateStatus(issues []Issue) ScanStatus {
	worst := 0
	for _, is := range issues {
		if r := severityRank(is.Severity); r > worst {
			worst = r
		}
	}
	switch {
	case worst >= 3:
		return ScanCritical
	case worst == 2:
		return ScanError
	case worst == 1:
		return ScanWarning
	default:
		return ScanHealthy
	}
}
