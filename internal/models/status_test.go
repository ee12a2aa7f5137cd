package models_test

import (
	"testing"

	"jobscout/internal/models"
)

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{
		"pending", "approved", "skipped", "manual_required",
		"generating_docs", "ready_to_apply", "failed",
	}
	for _, s := range valid {
		got, err := models.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	for _, s := range []string{"UNKNOWN", "", "Pending"} {
		if _, err := models.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

func TestIsTransitionAllowed_Valid(t *testing.T) {
	cases := []struct {
		from models.Status
		to   models.Status
	}{
		{models.StatusPending, models.StatusApproved},
		{models.StatusPending, models.StatusSkipped},
		{models.StatusPending, models.StatusManualRequired},
		{models.StatusApproved, models.StatusGeneratingDocs},
		{models.StatusApproved, models.StatusManualRequired},
		{models.StatusGeneratingDocs, models.StatusReadyToApply},
		{models.StatusGeneratingDocs, models.StatusFailed},
		{models.StatusFailed, models.StatusApproved},
	}
	for _, c := range cases {
		if !models.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be true", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_SkipLevel(t *testing.T) {
	cases := []struct {
		from models.Status
		to   models.Status
	}{
		{models.StatusPending, models.StatusGeneratingDocs}, // skip approved
		{models.StatusPending, models.StatusReadyToApply},   // skip two
		{models.StatusApproved, models.StatusReadyToApply},  // skip generating_docs
		{models.StatusPending, models.StatusFailed},
	}
	for _, c := range cases {
		if models.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (skip-level)", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_FromTerminal(t *testing.T) {
	terminals := []models.Status{
		models.StatusReadyToApply, models.StatusSkipped, models.StatusManualRequired,
	}
	targets := []models.Status{
		models.StatusPending, models.StatusApproved, models.StatusSkipped,
		models.StatusManualRequired, models.StatusGeneratingDocs,
		models.StatusReadyToApply, models.StatusFailed,
	}
	for _, from := range terminals {
		for _, to := range targets {
			if models.IsTransitionAllowed(from, to) {
				t.Errorf("IsTransitionAllowed(%s → %s) should be false (terminal state)", from, to)
			}
		}
	}
}

func TestIsTransitionAllowed_Backwards(t *testing.T) {
	cases := []struct {
		from models.Status
		to   models.Status
	}{
		{models.StatusApproved, models.StatusPending},
		{models.StatusGeneratingDocs, models.StatusApproved},
		{models.StatusReadyToApply, models.StatusGeneratingDocs},
	}
	for _, c := range cases {
		if models.IsTransitionAllowed(c.from, c.to) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (backwards)", c.from, c.to)
		}
	}
}

func TestIsTransitionAllowed_Self(t *testing.T) {
	all := []models.Status{
		models.StatusPending, models.StatusApproved, models.StatusSkipped,
		models.StatusManualRequired, models.StatusGeneratingDocs,
		models.StatusReadyToApply, models.StatusFailed,
	}
	for _, s := range all {
		if models.IsTransitionAllowed(s, s) {
			t.Errorf("IsTransitionAllowed(%s → %s) should be false (self)", s, s)
		}
	}
}
