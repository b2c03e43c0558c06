package llm_test

import (
	"strings"
	"testing"

	"github.com/thebenzza/nonnon/internal/adapters/llm"
	"github.com/thebenzza/nonnon/internal/domain"
)

func TestDecodePlanBareJSON(t *testing.T) {
	raw := `{"confidence":0.9,"reply_hint":"","followup_question":"","actions":[{"kind":"add_vaccine","params":{"vaccine_name":"Rabies","pet_name":"โมจิ","date":"2025-11-03","cycle_days":365}}]}`

	plan, err := llm.DecodePlan(raw)
	if err != nil {
		t.Fatalf("DecodePlan error: %v", err)
	}
	if plan.Confidence != 0.9 {
		t.Fatalf("confidence = %v, want 0.9", plan.Confidence)
	}
	if len(plan.Actions) != 1 || plan.Actions[0].Kind != domain.KindAddVaccine {
		t.Fatalf("actions = %+v, want one add_vaccine", plan.Actions)
	}
	params := plan.Actions[0].Params
	if params["cycle_days"] != "365" {
		t.Fatalf("cycle_days = %q, want stringified 365", params["cycle_days"])
	}
	if params["pet_name"] != "โมจิ" {
		t.Fatalf("pet_name = %q", params["pet_name"])
	}
}

func TestDecodePlanFencedBlock(t *testing.T) {
	raw := "Here is the plan:\n```json\n{\"confidence\":0.8,\"actions\":[{\"kind\":\"add_pet\",\"params\":{\"name\":\"โมจิ\"}}]}\n```\nHope that helps!"

	plan, err := llm.DecodePlan(raw)
	if err != nil {
		t.Fatalf("DecodePlan error: %v", err)
	}
	if len(plan.Actions) != 1 || plan.Actions[0].Kind != domain.KindAddPet {
		t.Fatalf("actions = %+v, want one add_pet", plan.Actions)
	}
}

func TestDecodePlanBracedSubstring(t *testing.T) {
	raw := `Sure! {"confidence":0.7,"followup_question":"น้องตัวไหนคะ","actions":[]} anything else?`

	plan, err := llm.DecodePlan(raw)
	if err != nil {
		t.Fatalf("DecodePlan error: %v", err)
	}
	if plan.Followup != "น้องตัวไหนคะ" {
		t.Fatalf("followup = %q", plan.Followup)
	}
}

func TestDecodePlanGarbageFails(t *testing.T) {
	for _, raw := range []string{"", "ขอโทษค่ะ ไม่เข้าใจ", "``` incomplete fence", "{\"confidence\": 0.5"} {
		if _, err := llm.DecodePlan(raw); err == nil {
			t.Fatalf("DecodePlan(%q) succeeded, want error", raw)
		}
	}
}

func TestDecodePlanNormalization(t *testing.T) {
	raw := `{"confidence":3.2,"actions":[
		{"kind":"WipeDatabase","params":{"force":true}},
		{"kind":"add_pet","params":{"name":"  โมจิ  ","weird":null,"nested":{"a":1}}}
	]}`

	plan, err := llm.DecodePlan(raw)
	if err != nil {
		t.Fatalf("DecodePlan error: %v", err)
	}
	if plan.Confidence != 1 {
		t.Fatalf("confidence = %v, want clamped to 1", plan.Confidence)
	}
	if plan.Actions[0].Kind != domain.KindNoop {
		t.Fatalf("unknown kind = %q, want noop", plan.Actions[0].Kind)
	}
	params := plan.Actions[1].Params
	if params["name"] != "โมจิ" {
		t.Fatalf("name = %q, want trimmed", params["name"])
	}
	if _, ok := params["weird"]; ok {
		t.Fatalf("null param survived normalization")
	}
	if _, ok := params["nested"]; ok {
		t.Fatalf("nested param survived normalization")
	}
}

func TestDecodePlanCapsActions(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"confidence":0.9,"actions":[`)
	for i := 0; i < 7; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"kind":"confirm","params":{}}`)
	}
	b.WriteString(`]}`)

	plan, err := llm.DecodePlan(b.String())
	if err != nil {
		t.Fatalf("DecodePlan error: %v", err)
	}
	if len(plan.Actions) != 5 {
		t.Fatalf("actions = %d, want capped at 5", len(plan.Actions))
	}
}
