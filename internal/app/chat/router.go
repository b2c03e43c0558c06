package chat

import (
	"strings"
	"time"

	"github.com/thebenzza/nonnon/internal/domain"
)

// Route is the coarse classification of one inbound message.
type Route string

const (
	RouteContinue Route = "continue"
	RoutePlanner  Route = "planner"
	RouteHealth   Route = "health"
	RouteChat     Route = "chat"
	RouteUnknown  Route = "unknown"
)

// Decision carries the route plus a reason tag. The reason goes to the
// logs only and never changes behavior.
type Decision struct {
	Route  Route
	Reason string
}

// Keyword lists are matched by substring since Thai has no word breaks.
// Entries are chosen long enough not to fire inside unrelated words; the
// photo tokens are composed because bare "รูป"/"ภาพ" sit inside everyday
// words like "รูปร่าง" and "สุขภาพ".
var (
	plannerKeywords = []string{
		"เพิ่ม", "บันทึก", "ฉีด", "ลงทะเบียน", "แก้ไข", "เตือน",
		"วัคซีน", "ประวัติ", "ทรีตเมนต์",
		"add ", "record", "save", "vaccin", "remind", "history", "register",
	}
	photoKeywords = []string{
		"ส่งรูป", "ส่งภาพ", "บันทึกรูป", "บันทึกภาพ", "รูปถ่าย", "ภาพถ่าย", "อัปโหลด",
		"photo", "picture",
	}
	healthKeywords = []string{
		"ป่วย", "ซึม", "อาเจียน", "ท้องเสีย", "เบื่ออาหาร", "เห็บ", "หมัด", "คันมาก", "มีไข้", "สุขภาพ",
		"sick", "vomit", "diarrhea", "fever", "tick", "flea", "itch",
	}
)

// Classify picks the route for a message without touching the interpreter.
// An open question always wins, so the answer to "น้องตัวไหนคะ" is never
// re-read as a brand-new request. RouteUnknown tells the caller to try the
// interpreter. Pure: the clock for date-word answers is passed in.
func Classify(text string, sess *domain.Session, now time.Time) Decision {
	if sess != nil && sess.Open() {
		return Decision{Route: RouteContinue, Reason: "open_question"}
	}

	lower := strings.ToLower(text)
	for _, kw := range plannerKeywords {
		if strings.Contains(lower, kw) {
			return Decision{Route: RoutePlanner, Reason: "verb:" + kw}
		}
	}
	for _, kw := range photoKeywords {
		if strings.Contains(lower, kw) {
			return Decision{Route: RoutePlanner, Reason: "photo:" + kw}
		}
	}
	for _, kw := range healthKeywords {
		if strings.Contains(lower, kw) {
			return Decision{Route: RouteHealth, Reason: "symptom:" + kw}
		}
	}

	// Very short answers count as answers to whatever was asked last,
	// even with no question officially open. Deliberately permissive.
	if isShortAnswer(text, now) {
		return Decision{Route: RouteContinue, Reason: "short_answer"}
	}

	return Decision{Route: RouteUnknown, Reason: "no_keyword"}
}

func isShortAnswer(text string, now time.Time) bool {
	if domain.IsAffirmative(text) || domain.IsNegative(text) || domain.IsCancel(text) {
		return true
	}
	_, err := domain.ParseCivilDate(text, now)
	return err == nil
}
