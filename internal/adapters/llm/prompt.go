package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thebenzza/nonnon/internal/domain"
)

const interpreterSystemPrompt = `You are the intent interpreter for "Nonnon" (นนท์), a Thai pet-care record assistant.
Read ONE user message plus the conversation context and answer with a single JSON object. No prose, no markdown, JSON only.

Output schema:
{
  "confidence": number between 0 and 1,
  "reply_hint": optional short Thai sentence the assistant may show,
  "followup_question": optional single Thai question when information is missing,
  "actions": [ { "kind": string, "params": object } ]
}

Allowed kinds and their params:
- "add_pet": params name (required), species (dog/cat/other), breed, sex (male/female), birth_date (YYYY-MM-DD), neutered (true/false), markings
- "add_vaccine": params vaccine_name, pet_name, date (YYYY-MM-DD or "today"), cycle_days (number of days until the next shot)
- "add_treatment": params treatment_name, pet_name, date, note
- "list_vaccine": params pet_name (optional)
- "list_treatment": params pet_name (optional)
- "confirm": no params, the user accepted or closed the pending flow
- "noop": nothing actionable

Rules:
- Emit every action the message clearly asks for, in the order stated.
- Never invent values. Omit a param rather than guessing it; ask via followup_question instead.
- At most ONE followup_question. Leave it empty when some action is complete.
- Dates stay as written by the user; keep the word "วันนี้" or "today" as-is.
- If the message only answers a pending question, put the answer into the matching param of the pending action's kind.
- Users write Thai, English or a mix. Pet names are arbitrary strings, often Thai nicknames.

Examples:
"เพิ่มหมาชื่อ โมจิ" -> {"confidence":0.92,"actions":[{"kind":"add_pet","params":{"name":"โมจิ","species":"dog"}}]}
"ฉีด Rabies ให้โมจิ 2025-11-03 รอบ 365" -> {"confidence":0.9,"actions":[{"kind":"add_vaccine","params":{"vaccine_name":"Rabies","pet_name":"โมจิ","date":"2025-11-03","cycle_days":365}}]}
"ฉีดวัคซีน" -> {"confidence":0.55,"followup_question":"ฉีดวัคซีนอะไรคะ","actions":[{"kind":"add_vaccine","params":{}}]}
"หมากินอะไรดี" -> {"confidence":0.3,"actions":[{"kind":"noop","params":{}}]}`

const adviceSystemPrompt = `You are "Nonnon" (นนท์), a warm Thai pet-care assistant on a chat app.
- Answer in the language of the user's message (usually Thai), friendly and brief: at most 4 short sentences.
- You help with everyday pet care: food, grooming, behavior, vaccination schedules.
- You are NOT a veterinarian and never diagnose or prescribe.`

const healthAdviceInstructions = `The user is describing symptoms. Give gentle general care guidance only,
and always close by recommending a veterinarian visit if symptoms persist or worsen.`

// size bounds for the serialized context. The interpreter gets enough to
// resolve references, never the whole session history.
const (
	maxContextPets     = 8
	maxPartialValueLen = 80
)

// BuildInterpreterInput renders the user turn plus a bounded serialization
// of the session for the interpreter.
func BuildInterpreterInput(text string, sctx domain.SessionContext) string {
	var b strings.Builder

	if len(sctx.PetNames) > 0 {
		names := sctx.PetNames
		if len(names) > maxContextPets {
			names = names[:maxContextPets]
		}
		fmt.Fprintf(&b, "Known pets: %s\n", strings.Join(names, ", "))
	}
	if sctx.Pending != domain.PendingNone {
		fmt.Fprintf(&b, "Pending action: %s\n", sctx.Pending)
	}
	switch sctx.Expect {
	case domain.ExpectField:
		fmt.Fprintf(&b, "Waiting for field: %s\n", sctx.Field)
	case domain.ExpectFollowup:
		b.WriteString("Waiting for the answer to a follow-up question\n")
	}
	if len(sctx.Partial) > 0 {
		b.WriteString("Collected so far:")
		for _, k := range sortedKeys(sctx.Partial) {
			if strings.HasPrefix(k, "_") {
				continue
			}
			b.WriteString(" " + k + "=" + truncate(sctx.Partial[k], maxPartialValueLen))
		}
		b.WriteString("\n")
	}

	b.WriteString("User message:\n")
	b.WriteString(text)
	return b.String()
}

// BuildAdviceInput gives the advisor the pet roster so answers can name
// the right animal.
func BuildAdviceInput(text string, sctx domain.SessionContext) string {
	var b strings.Builder
	if len(sctx.PetNames) > 0 {
		names := sctx.PetNames
		if len(names) > maxContextPets {
			names = names[:maxContextPets]
		}
		fmt.Fprintf(&b, "The user's pets: %s\n\n", strings.Join(names, ", "))
	}
	b.WriteString(text)
	return b.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
