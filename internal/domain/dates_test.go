package domain_test

import (
	"testing"
	"time"

	"github.com/thebenzza/nonnon/internal/domain"
)

func TestParseCivilDateFormats(t *testing.T) {
	now := time.Date(2025, 11, 3, 12, 0, 0, 0, domain.BangkokZone)
	want := time.Date(2025, 11, 3, 0, 0, 0, 0, domain.BangkokZone)

	cases := []string{"2025-11-03", "03/11/2025", " 2025-11-03 "}
	for _, in := range cases {
		got, err := domain.ParseCivilDate(in, now)
		if err != nil {
			t.Fatalf("ParseCivilDate(%q) error: %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseCivilDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseCivilDateRelativeWords(t *testing.T) {
	// 23:30 UTC on Dec 31 is already Jan 1 in the assistant's zone; the
	// relative words must follow the civil day, not the UTC day.
	now := time.Date(2025, 12, 31, 23, 30, 0, 0, time.UTC)

	today, err := domain.ParseCivilDate("วันนี้", now)
	if err != nil {
		t.Fatalf("ParseCivilDate(วันนี้) error: %v", err)
	}
	if want := time.Date(2026, 1, 1, 0, 0, 0, 0, domain.BangkokZone); !today.Equal(want) {
		t.Fatalf("today = %v, want %v", today, want)
	}

	yesterday, err := domain.ParseCivilDate("yesterday", now)
	if err != nil {
		t.Fatalf("ParseCivilDate(yesterday) error: %v", err)
	}
	if want := time.Date(2025, 12, 31, 0, 0, 0, 0, domain.BangkokZone); !yesterday.Equal(want) {
		t.Fatalf("yesterday = %v, want %v", yesterday, want)
	}
}

func TestParseCivilDateRejectsGarbage(t *testing.T) {
	now := time.Now()
	for _, in := range []string{"", "   ", "เมื่อไหร่ก็ได้", "11/2025", "2025-13-40"} {
		if _, err := domain.ParseCivilDate(in, now); err == nil {
			t.Fatalf("ParseCivilDate(%q) accepted, want error", in)
		}
	}
}

func TestFormatCivilDateRoundTrip(t *testing.T) {
	got, err := domain.ParseCivilDate("2025-11-03", time.Now())
	if err != nil {
		t.Fatalf("ParseCivilDate error: %v", err)
	}
	if s := domain.FormatCivilDate(got); s != "2025-11-03" {
		t.Fatalf("FormatCivilDate = %q, want 2025-11-03", s)
	}
}

func TestNextDueAfterDefaultCycle(t *testing.T) {
	administered, err := domain.ParseCivilDate("2025-11-03", time.Now())
	if err != nil {
		t.Fatalf("ParseCivilDate error: %v", err)
	}
	nextDue := administered.AddDate(0, 0, 365)
	if s := domain.FormatCivilDate(nextDue); s != "2026-11-03" {
		t.Fatalf("next due = %q, want 2026-11-03", s)
	}
}
