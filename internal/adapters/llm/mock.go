package llm

import (
	"context"
	"fmt"

	"github.com/thebenzza/nonnon/internal/domain"
)

// Mock is a scriptable stand-in for the Gemini client, used in local mode
// and in tests. Zero value: every message interprets to a low-confidence
// noop and advice politely echoes.
type Mock struct {
	InterpretFunc func(ctx context.Context, text string, sctx domain.SessionContext) (*domain.Plan, error)
	AdviseFunc    func(ctx context.Context, text string, sctx domain.SessionContext, health bool) (string, error)
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Interpret(ctx context.Context, text string, sctx domain.SessionContext) (*domain.Plan, error) {
	if m.InterpretFunc != nil {
		return m.InterpretFunc(ctx, text, sctx)
	}
	return &domain.Plan{
		Confidence: 0.2,
		Actions:    []domain.ActionRequest{{Kind: domain.KindNoop, Params: map[string]string{}}},
	}, nil
}

func (m *Mock) Advise(ctx context.Context, text string, sctx domain.SessionContext, health bool) (string, error) {
	if m.AdviseFunc != nil {
		return m.AdviseFunc(ctx, text, sctx, health)
	}
	return fmt.Sprintf("นนท์ได้ยินว่า %q ค่ะ ตอนนี้อยู่ในโหมดทดสอบ เลยตอบแบบเต็มที่ไม่ได้นะคะ", text), nil
}
