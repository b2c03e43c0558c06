package chat_test

import (
	"testing"
	"time"

	"github.com/thebenzza/nonnon/internal/app/chat"
	"github.com/thebenzza/nonnon/internal/domain"
)

var routerNow = time.Date(2025, 11, 3, 12, 0, 0, 0, domain.BangkokZone)

func TestClassifyKeywords(t *testing.T) {
	cases := []struct {
		text string
		want chat.Route
	}{
		{"เพิ่มหมาชื่อ โมจิ", chat.RoutePlanner},
		{"ฉีด Rabies ให้โมจิ 2025-11-03", chat.RoutePlanner},
		{"ขอดูประวัติวัคซีนหน่อย", chat.RoutePlanner},
		{"add a dog named Mochi", chat.RoutePlanner},
		{"ส่งรูปโมจิให้หน่อย", chat.RoutePlanner},
		{"น้องอาเจียนตั้งแต่เมื่อคืน", chat.RouteHealth},
		{"my cat keeps itching", chat.RouteHealth},
		{"อยากปรึกษาเรื่องสุขภาพน้องแมว", chat.RouteHealth},
		{"ใช่ค่ะ", chat.RouteContinue},
		{"ไม่", chat.RouteContinue},
		{"2025-11-03", chat.RouteContinue},
		{"เมื่อวาน", chat.RouteContinue},
		{"วันนี้อากาศดีจัง ว่าไงบ้าง", chat.RouteUnknown},
		{"หมากินสตรอเบอร์รี่ได้ไหม", chat.RouteUnknown},
		// "รูปร่าง" contains the syllable รูป; the photo tokens are composed
		// so body-shape talk stays out of the photo flow.
		{"น้องรูปร่างผอมลง", chat.RouteUnknown},
	}

	for _, tc := range cases {
		dec := chat.Classify(tc.text, domain.NewSession("u1"), routerNow)
		if dec.Route != tc.want {
			t.Fatalf("Classify(%q) = %s (%s), want %s", tc.text, dec.Route, dec.Reason, tc.want)
		}
	}
}

// An open question always wins: the answer to "which pet?" must never be
// re-read as a brand-new request, keyword or not.
func TestClassifyOpenSessionForcesContinue(t *testing.T) {
	sess := domain.NewSession("u1")
	sess.AwaitField(domain.PendingAddVaccine, domain.FieldPetName)

	for _, text := range []string{"โมจิ", "เพิ่มหมาอีกตัว", "น้องป่วยหรือเปล่า"} {
		dec := chat.Classify(text, sess, routerNow)
		if dec.Route != chat.RouteContinue {
			t.Fatalf("Classify(%q) with open session = %s, want continue", text, dec.Route)
		}
	}
}

func TestClassifyNilSession(t *testing.T) {
	dec := chat.Classify("สวัสดีค่ะ ว่าไงบ้างเอ่ย", nil, routerNow)
	if dec.Route != chat.RouteUnknown {
		t.Fatalf("Classify with nil session = %s, want unknown", dec.Route)
	}
}
