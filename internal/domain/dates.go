package domain

import (
	"fmt"
	"strings"
	"time"
)

// BangkokZone is the assistant's fixed civil zone (UTC+7, no DST).
// Every "which day is it" decision in the domain uses this zone.
var BangkokZone = time.FixedZone("Asia/Bangkok", 7*60*60)

const civilDateLayout = "2006-01-02"

// date words the parser accepts as "relative to now". They resolve at the
// moment of execution, not when the plan was made, so a slot-filling flow
// that spans midnight still records the right day.
var (
	todayTokens     = []string{"today", "วันนี้"}
	yesterdayTokens = []string{"yesterday", "เมื่อวาน", "เมื่อวานนี้"}
)

// ParseCivilDate turns user-supplied text into a civil date at midnight in
// the assistant's zone. Accepted: "YYYY-MM-DD", "DD/MM/YYYY", and the
// relative words today/วันนี้ and yesterday/เมื่อวาน resolved against now.
func ParseCivilDate(s string, now time.Time) (time.Time, error) {
	tok := normalizeToken(s)
	if tok == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, t := range todayTokens {
		if tok == t {
			return CivilDate(now), nil
		}
	}
	for _, t := range yesterdayTokens {
		if tok == t {
			return CivilDate(now).AddDate(0, 0, -1), nil
		}
	}

	if t, err := time.ParseInLocation(civilDateLayout, tok, BangkokZone); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("02/01/2006", tok, BangkokZone); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// CivilDate truncates an instant to midnight of its Bangkok civil day.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.In(BangkokZone).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, BangkokZone)
}

// FormatCivilDate renders a civil date the way users type it.
func FormatCivilDate(t time.Time) string {
	return t.In(BangkokZone).Format(civilDateLayout)
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
