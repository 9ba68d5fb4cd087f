// Package classifier converts raw scan findings into typed, severity-tagged
// issues. The rule table is deterministic: given the same findings it emits
// the same issues in the same order (only the generated IDs differ).
package classifier

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/SercanAkan88/siteguard/internal/model"
)

// Findings is everything the page checks observed, handed to the rule table.
type Findings struct {
	URL             string
	StatusCode      int
	LoadTimeMs      int64
	BrokenLinks     []model.Link
	BrokenImages    []model.Image
	Forms           []model.Form
	Title           string
	MetaDescription string
	Viewport        string
}

// SlowLoadThresholdMs is the latency above which a page counts as slow.
// The boundary itself is excluded: exactly 5000ms is not slow.
const SlowLoadThresholdMs = 5000

// rule is one row of the classification table. Each rule runs
// independently and may contribute zero or more issues.
type rule func(f *Findings) []model.Issue

// Rules run in this fixed order, which fixes the ordering of the resulting
// issue list.
var rules = []rule{
	siteDownRule,
	slowLoadingRule,
	brokenLinksRule,
	brokenImagesRule,
	formRule,
	missingTitleRule,
	missingDescriptionRule,
	missingViewportRule,
}

// Classify evaluates every rule against the findings. Rules that inspect
// page content stay quiet for a failing status code: an error page is
// reported as exactly one critical site_down issue, nothing else.
func Classify(f *Findings) []model.Issue {
	issues := []model.Issue{}
	for _, r := range rules {
		issues = append(issues, r(f)...)
	}
	return issues
}

func newIssue(t model.IssueType, sev model.Severity, title, desc, url string) model.Issue {
	return model.Issue{
		ID:          uuid.New().String(),
		Type:        t,
		Severity:    sev,
		Title:       title,
		Description: desc,
		URL:         url,
	}
}

func siteDownRule(f *Findings) []model.Issue {
	if f.StatusCode < 400 {
		return nil
	}
	return []model.Issue{newIssue(
		model.IssueSiteDown,
		model.SeverityCritical,
		"Website returned an error",
		fmt.Sprintf("The website returned status code %d", f.StatusCode),
		f.URL,
	)}
}

func slowLoadingRule(f *Findings) []model.Issue {
	if f.StatusCode >= 400 || f.LoadTimeMs <= SlowLoadThresholdMs {
		return nil
	}
	return []model.Issue{newIssue(
		model.IssueSlowLoading,
		model.SeverityWarning,
		"Website loads slowly",
		fmt.Sprintf("Page took %.1f seconds to load. Visitors expect under 3 seconds.", float64(f.LoadTimeMs)/1000),
		f.URL,
	)}
}

func brokenLinksRule(f *Findings) []model.Issue {
	n := len(f.BrokenLinks)
	if n == 0 {
		return nil
	}

	details := make([]string, 0, 5)
	for _, link := range f.BrokenLinks[:min(n, 5)] {
		details = append(details, fmt.Sprintf("%q → %s", link.Text, link.Href))
	}
	desc := "These links lead to error pages: " + strings.Join(details, "; ")
	if n > 5 {
		desc += fmt.Sprintf(" (and %d more)", n-5)
	}

	issue := newIssue(
		model.IssueBrokenLinks,
		model.SeverityError,
		fmt.Sprintf("%d broken link(s) found", n),
		desc,
		f.URL,
	)
	issue.BrokenLinks = f.BrokenLinks
	return []model.Issue{issue}
}

func brokenImagesRule(f *Findings) []model.Issue {
	n := len(f.BrokenImages)
	if n == 0 {
		return nil
	}

	details := make([]string, 0, 3)
	for _, img := range f.BrokenImages[:min(n, 3)] {
		entry := fmt.Sprintf("%q", imageFilename(img.Src))
		if img.Alt != "[No alt text]" {
			entry += fmt.Sprintf(" (%s)", img.Alt)
		}
		details = append(details, entry)
	}
	desc := "These images are broken or missing: " + strings.Join(details, ", ")
	if n > 3 {
		desc += fmt.Sprintf(" (and %d more)", n-3)
	}

	issue := newIssue(
		model.IssueBrokenImages,
		model.SeverityWarning,
		fmt.Sprintf("%d image(s) not loading", n),
		desc,
		f.URL,
	)
	issue.BrokenImages = f.BrokenImages
	return []model.Issue{issue}
}

// formRule flags contact-like forms (contact-classified or carrying an
// email field) that have no submit control. The description names the form
// as concretely as the heuristics allow.
func formRule(f *Findings) []model.Issue {
	if f.StatusCode >= 400 {
		return nil
	}
	var issues []model.Issue
	for i := range f.Forms {
		form := f.Forms[i]
		if !form.IsContactForm && !form.HasEmail {
			continue
		}
		if form.HasSubmit {
			continue
		}

		desc := fmt.Sprintf("The %s%s%s appears to be missing a working submit button.",
			formIdentifier(&form), languageNote(&form), locationNote(&form))

		issue := newIssue(
			model.IssueForm,
			model.SeverityWarning,
			"Contact form may be missing submit button",
			desc,
			f.URL,
		)
		issue.FormDetails = &form
		issues = append(issues, issue)
	}
	return issues
}

// formIdentifier picks the most specific available handle for a form:
// resolved name, then id, then submit button text, then its index.
func formIdentifier(form *model.Form) string {
	switch {
	case form.Name != "":
		return fmt.Sprintf("%q", form.Name)
	case form.FormID != "":
		return fmt.Sprintf("form #%s", form.FormID)
	case form.SubmitButtonTxt != "":
		return fmt.Sprintf("form with %q button", form.SubmitButtonTxt)
	default:
		return fmt.Sprintf("form #%d on the page", form.Index)
	}
}

func languageNote(form *model.Form) string {
	if form.Language == "unknown" || form.Language == "" {
		return ""
	}
	return fmt.Sprintf(" (%s version)", form.Language)
}

func locationNote(form *model.Form) string {
	if form.PageSection == "" {
		return ""
	}
	return fmt.Sprintf(" in the %q section", form.PageSection)
}

func missingTitleRule(f *Findings) []model.Issue {
	if f.StatusCode >= 400 || f.Title != "" {
		return nil
	}
	return []model.Issue{newIssue(
		model.IssueSEO,
		model.SeverityWarning,
		"Missing page title",
		"The page is missing a title tag, which is important for search engines.",
		f.URL,
	)}
}

func missingDescriptionRule(f *Findings) []model.Issue {
	if f.StatusCode >= 400 || f.MetaDescription != "" {
		return nil
	}
	return []model.Issue{newIssue(
		model.IssueSEO,
		model.SeverityWarning,
		"Missing meta description",
		"The page is missing a meta description, which helps with search engine visibility.",
		f.URL,
	)}
}

func missingViewportRule(f *Findings) []model.Issue {
	if f.StatusCode >= 400 || f.Viewport != "" {
		return nil
	}
	return []model.Issue{newIssue(
		model.IssueMobile,
		model.SeverityWarning,
		"May not be mobile-friendly",
		"The page is missing a viewport meta tag, which usually means it won't display well on phones.",
		f.URL,
	)}
}

// Unreachable builds the single critical issue emitted when the top-level
// fetch fails at the transport level.
func Unreachable(url string, timedOut bool, cause error) model.Issue {
	desc := "Website took too long to respond"
	if !timedOut {
		desc = "Could not connect: " + cause.Error()
	}
	return newIssue(model.IssueSiteDown, model.SeverityCritical, "Website is not accessible", desc, url)
}

// ScanError builds the single critical issue emitted when the engine
// recovers from an unexpected failure mid-scan.
func ScanError(url, message string) model.Issue {
	return newIssue(model.IssueScanError, model.SeverityCritical, "Could not complete scan", message, url)
}

// imageFilename extracts just the filename from an image URL, dropping any
// query string.
func imageFilename(src string) string {
	if i := strings.LastIndex(src, "/"); i >= 0 {
		src = src[i+1:]
	}
	if i := strings.Index(src, "?"); i >= 0 {
		src = src[:i]
	}
	return src
}
