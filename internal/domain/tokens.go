package domain

// Conversational tokens the planner and router treat as whole answers.
// Matching is exact on the normalized message, not substring: "ไม่" inside
// a longer sentence is not a dismissal.

var (
	cancelTokens      = tokenSet("ยกเลิก", "เลิก", "ไม่เอาแล้ว", "cancel")
	affirmativeTokens = tokenSet("ใช่", "ใช่ค่ะ", "ใช่ครับ", "ใช่เลย", "ครับ", "ค่ะ", "โอเค", "โอเคค่ะ", "ตกลง", "ได้", "ได้เลย", "yes", "y", "ok", "okay")
	negativeTokens    = tokenSet("ไม่", "ไม่ใช่", "ไม่เอา", "ไม่ค่ะ", "ไม่ครับ", "no", "n")
)

func tokenSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func IsCancel(s string) bool {
	_, ok := cancelTokens[normalizeToken(s)]
	return ok
}

func IsAffirmative(s string) bool {
	_, ok := affirmativeTokens[normalizeToken(s)]
	return ok
}

func IsNegative(s string) bool {
	_, ok := negativeTokens[normalizeToken(s)]
	return ok
}
