package actions

import (
	"fmt"
	"strings"

	"github.com/thebenzza/nonnon/internal/domain"
)

// User-facing copy. Everything the executor and planner can say lives here
// so tests can assert on the exact strings and the tone stays in one place.
const (
	ReplyAcknowledged = "รับทราบค่ะ 🐾"
	ReplyCancelled    = "ยกเลิกให้แล้วค่ะ มีอะไรให้นนท์ช่วยบอกได้เลยนะคะ"

	ReplyAskVaccine   = "ฉีดวัคซีนอะไรคะ (เช่น Rabies, รวม 5 โรค)"
	ReplyAskTreatment = "ทำทรีตเมนต์อะไรคะ (เช่น หยดยากันเห็บ, ถ่ายพยาธิ)"
	ReplyAskPet       = "น้องตัวไหนคะ บอกชื่อได้เลยค่ะ"
	ReplyAskPetName   = "น้องชื่ออะไรคะ"
	ReplyAskDate      = "วันไหนคะ (เช่น 2025-11-03 หรือพิมพ์ว่า วันนี้)"

	ReplyStorageTrouble = "ขอโทษค่ะ ตอนนี้ระบบบันทึกมีปัญหานิดหน่อย ลองใหม่อีกครั้งนะคะ"
	ReplyBusy           = "ขอโทษค่ะ นนท์กำลังบันทึกเรื่องก่อนหน้าอยู่ ส่งมาอีกครั้งนะคะ"

	ReplyConfirmAsk = "ให้นนท์บันทึกเลยใช่ไหมคะ"
	ReplyClarify    = "ขอโทษค่ะ นนท์ยังไม่แน่ใจว่าให้ช่วยอะไร ลองพิมพ์แบบนี้ได้เลยนะคะ เช่น ฉีด Rabies ให้โมจิ วันนี้"
	ReplyAskPhoto   = "ส่งรูปน้องมาได้เลยค่ะ"
	ReplyPhotoHint  = "ถ้าอยากให้นนท์เก็บรูปน้องไว้ พิมพ์บอกก่อนนะคะ เช่น บันทึกรูปโมจิ"
	ReplyPhotoNoPet = "ยังหาน้องไม่เจอเลยค่ะ เพิ่มน้องก่อนได้นะคะ เช่น เพิ่มหมาชื่อโมจิ"

	ReplyChatFallback   = "นนท์อยู่ตรงนี้ค่ะ มีอะไรให้ช่วยดูแลน้องบอกได้เลยนะคะ"
	ReplyHealthFallback = "ตอนนี้นนท์ตอบไม่ได้จริงๆ ค่ะ ถ้าน้องอาการน่าเป็นห่วง รีบพาไปหาคุณหมอนะคะ"
)

// QuestionFor maps a missing field to the single follow-up question the
// assistant asks for it. The mapping is part of the slot-filling contract:
// the same gap always produces the same question.
func QuestionFor(field string) string {
	switch field {
	case domain.FieldVaccineName:
		return ReplyAskVaccine
	case domain.FieldTreatmentName:
		return ReplyAskTreatment
	case domain.FieldPetName:
		return ReplyAskPet
	case domain.FieldName:
		return ReplyAskPetName
	case domain.FieldDate:
		return ReplyAskDate
	default:
		return ReplyAskPet
	}
}

func replyPetCreated(name string) string {
	return fmt.Sprintf("บันทึกน้อง %s เรียบร้อยแล้วค่ะ 🐾", name)
}

func replyPetUpdated(name string) string {
	return fmt.Sprintf("อัปเดตข้อมูลน้อง %s ให้แล้วค่ะ", name)
}

func replyVaccineRecorded(vaccine, pet string, nextDue domain.Timestamp) string {
	return fmt.Sprintf("บันทึกวัคซีน %s ของน้อง %s แล้วค่ะ เข็มถัดไปวันที่ %s เดี๋ยวนนท์เตือนล่วงหน้าให้นะคะ",
		vaccine, pet, domain.FormatCivilDate(nextDue))
}

func replyTreatmentRecorded(name, pet string) string {
	return fmt.Sprintf("บันทึก %s ของน้อง %s แล้วค่ะ", name, pet)
}

func replyPetUnknown(name string) string {
	return fmt.Sprintf("ยังไม่เคยบันทึกน้องชื่อ %s เลยค่ะ ลองพิมพ์ เพิ่ม%s ก่อนนะคะ", name, name)
}

func replyNoVaccines(pet string) string {
	return fmt.Sprintf("ยังไม่มีประวัติวัคซีนของน้อง %s เลยค่ะ", pet)
}

func replyNoTreatments(pet string) string {
	return fmt.Sprintf("ยังไม่มีประวัติทรีตเมนต์ของน้อง %s เลยค่ะ", pet)
}

func replyVaccineList(pet string, recs []*domain.VaccinationRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ประวัติวัคซีนของน้อง %s ค่ะ", pet)
	for _, r := range recs {
		fmt.Fprintf(&b, "\n• %s ฉีดเมื่อ %s ครบรอบถัดไป %s",
			r.Vaccine, domain.FormatCivilDate(r.Administered), domain.FormatCivilDate(r.NextDue))
	}
	return b.String()
}

func replyTreatmentList(pet string, recs []*domain.TreatmentRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ประวัติทรีตเมนต์ของน้อง %s ค่ะ", pet)
	for _, r := range recs {
		fmt.Fprintf(&b, "\n• %s เมื่อ %s", r.Name, domain.FormatCivilDate(r.Treated))
		if r.Note != "" {
			fmt.Fprintf(&b, " (%s)", r.Note)
		}
	}
	return b.String()
}

func replyPhotoSaved(pet string) string {
	return fmt.Sprintf("บันทึกรูปน้อง %s แล้วค่ะ น่ารักมากเลย 📸", pet)
}
