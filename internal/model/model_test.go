package model_test

import (
	"testing"

	"github.com/SercanAkan88/siteguard/internal/model"
)

func TestAggregateStatus(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		issues []model.Issue
		want   model.ScanStatus
	}{
		{"no issues", nil, model.ScanHealthy},
		{"empty slice", []model.Issue{}, model.ScanHealthy},
		{
			"single warning",
			[]model.Issue{{Severity: model.SeverityWarning}},
			model.ScanWarning,
		},
		{
			"error beats warning",
			[]model.Issue{{Severity: model.SeverityWarning}, {Severity: model.SeverityError}},
			model.ScanError,
		},
		{
			"critical beats everything",
			[]model.Issue{{Severity: model.SeverityError}, {Severity: model.SeverityCritical}, {Severity: model.SeverityWarning}},
			model.ScanCritical,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := model.AggregateStatus(tc.issues); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestWebsiteStatusFor(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		issues []model.Issue
		want   model.WebsiteStatus
	}{
		{"no issues", nil, model.WebsiteHealthy},
		{
			"only warnings",
			[]model.Issue{{Severity: model.SeverityWarning}},
			model.WebsiteWarning,
		},
		{
			"any error",
			[]model.Issue{{Severity: model.SeverityWarning}, {Severity: model.SeverityError}},
			model.WebsiteError,
		},
		{
			"any critical",
			[]model.Issue{{Severity: model.SeverityCritical}},
			model.WebsiteError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := model.WebsiteStatusFor(tc.issues); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestWebsiteStatusHasProblem(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status model.WebsiteStatus
		want   bool
	}{
		{model.WebsitePending, false},
		{model.WebsiteHealthy, false},
		{model.WebsiteWarning, true},
		{model.WebsiteError, true},
	}

	for _, tc := range cases {
		if got := tc.status.HasProblem(); got != tc.want {
			t.Errorf("%s.HasProblem() = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestWebsiteDisplayName(t *testing.T) {
	t.Parallel()
	named := model.Website{Name: "My Shop", URL: "https://shop.example.com"}
	if named.DisplayName() != "My Shop" {
		t.Errorf("expected name preferred, got %q", named.DisplayName())
	}

	unnamed := model.Website{URL: "https://shop.example.com"}
	if unnamed.DisplayName() != "https://shop.example.com" {
		t.Errorf("expected url fallback, got %q", unnamed.DisplayName())
	}
}
