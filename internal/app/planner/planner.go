// Package planner drives the slot-filling state machine: per turn it
// decides whether a plan executes now, waits for one more answer, or is
// dismissed.
package planner

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/thebenzza/nonnon/internal/app/actions"
	"github.com/thebenzza/nonnon/internal/domain"
	"github.com/thebenzza/nonnon/internal/observability"
)

// kindKey is the reserved partial entry remembering which action a generic
// collect flow is gathering fields for. Keys with a "_" prefix never reach
// the executor or the interpreter context.
const kindKey = "_kind"

// Planner applies interpreter plans to sessions. It owns every session
// write: callers hand it a loaded session and the planner saves at the
// points where state legitimately changes. Storage failures leave the
// session unsaved so the user's next attempt re-triggers the same action.
type Planner struct {
	exec     *actions.Executor
	sessions domain.SessionStore
	interp   domain.PlanInterpreter

	threshold float64
	now       func() time.Time
}

func New(exec *actions.Executor, sessions domain.SessionStore, interp domain.PlanInterpreter, threshold float64) *Planner {
	return &Planner{
		exec:      exec,
		sessions:  sessions,
		interp:    interp,
		threshold: threshold,
		now:       time.Now,
	}
}

// Apply works a freshly interpreted plan into the session: execute when
// ready, otherwise ask exactly one question and wait for the answer.
func (p *Planner) Apply(ctx context.Context, sess *domain.Session, plan *domain.Plan) (string, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", sess.UserID)

	if !plan.HasActionable() {
		if plan.Followup != "" {
			pending := sess.Pending
			if pending == domain.PendingNone {
				pending = domain.PendingCollect
			}
			sess.AwaitFollowup(pending)
			if err := p.save(ctx, sess); err != nil {
				return "", err
			}
			log.Info("awaiting followup answer")
			return plan.Followup, nil
		}
		if plan.ReplyHint != "" {
			return plan.ReplyHint, nil
		}
		return actions.ReplyClarify, nil
	}

	first, _ := plan.FirstActionable()
	merged := first.WithPartial(sess.Partial)

	if missing := p.missingFields(ctx, sess, merged); len(missing) > 0 {
		return p.askForField(ctx, sess, merged, missing[0])
	}

	// A complete but shaky read is confirmed, not executed. The collected
	// params survive in the session so a plain "ใช่" can finish the job.
	if plan.Confidence < p.threshold {
		p.stash(sess, merged)
		sess.AwaitFollowup(pendingFor(merged.Kind))
		if err := p.save(ctx, sess); err != nil {
			return "", err
		}
		log.Info("confidence below threshold, asking to confirm", "confidence", plan.Confidence)
		if plan.Followup != "" {
			return plan.Followup, nil
		}
		return actions.ReplyConfirmAsk, nil
	}

	return p.runActions(ctx, sess, plan)
}

// Continue feeds the next user message into an open flow.
func (p *Planner) Continue(ctx context.Context, sess *domain.Session, text string, sctx domain.SessionContext) (string, error) {
	if domain.IsCancel(text) {
		sess.Clear()
		if err := p.save(ctx, sess); err != nil {
			return "", err
		}
		return actions.ReplyCancelled, nil
	}

	if sess.Expect == domain.ExpectField {
		return p.continueField(ctx, sess, text)
	}
	return p.continueFollowup(ctx, sess, text, sctx)
}

// runActions executes the plan's actions strictly in order. The first
// action still missing a field pauses the plan and asks for it; replies
// produced up to that point stay in front of the question.
func (p *Planner) runActions(ctx context.Context, sess *domain.Session, plan *domain.Plan) (string, error) {
	var (
		replies []string
		clear   bool
	)
	for _, req := range plan.Actions {
		if req.Kind == domain.KindNoop {
			continue
		}
		merged := req.WithPartial(sess.Partial)

		if missing := p.missingFields(ctx, sess, merged); len(missing) > 0 {
			q, err := p.askForField(ctx, sess, merged, missing[0])
			if err != nil {
				return "", err
			}
			return joinReplies(append(replies, q)), nil
		}

		res, err := p.exec.Execute(ctx, sess.UserID, sess, merged)
		if err != nil {
			return p.recover(ctx, sess, merged, err, replies)
		}
		if res.Reply != "" {
			replies = append(replies, res.Reply)
		}
		clear = clear || res.ClearSession
	}

	if clear {
		sess.Clear()
	}
	if err := p.save(ctx, sess); err != nil {
		return "", err
	}
	if len(replies) == 0 {
		return actions.ReplyAcknowledged, nil
	}
	return joinReplies(replies), nil
}

func (p *Planner) continueField(ctx context.Context, sess *domain.Session, text string) (string, error) {
	field := sess.ExpectField
	value, ok := p.acceptAnswer(field, text)
	if !ok {
		// Same question again; the session already waits for this field.
		return actions.QuestionFor(field), nil
	}
	sess.SetPartial(field, value)

	kind := pendingKind(sess)
	if kind == domain.KindNoop {
		sess.Clear()
		if err := p.save(ctx, sess); err != nil {
			return "", err
		}
		return actions.ReplyClarify, nil
	}

	if missing := p.missingFields(ctx, sess, requestFromSession(sess)); len(missing) > 0 {
		sess.AwaitField(sess.Pending, missing[0])
		if err := p.save(ctx, sess); err != nil {
			return "", err
		}
		return actions.QuestionFor(missing[0]), nil
	}
	return p.executePending(ctx, sess)
}

func (p *Planner) continueFollowup(ctx context.Context, sess *domain.Session, text string, sctx domain.SessionContext) (string, error) {
	if domain.IsNegative(text) {
		sess.Clear()
		if err := p.save(ctx, sess); err != nil {
			return "", err
		}
		return actions.ReplyCancelled, nil
	}

	if domain.IsAffirmative(text) {
		if kind := pendingKind(sess); kind != domain.KindNoop && len(p.missingFields(ctx, sess, requestFromSession(sess))) == 0 {
			return p.executePending(ctx, sess)
		}
		if sess.Pending == domain.PendingAttachPhoto {
			return actions.ReplyAskPhoto, nil
		}
	}

	// Free-form answer: hand it back to the interpreter together with
	// everything collected so far and work the new plan in.
	plan, err := p.interp.Interpret(ctx, text, sctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("interpreter unavailable on followup",
			"user_id", sess.UserID, "error", err)
		if sess.Pending == domain.PendingAttachPhoto {
			return actions.ReplyAskPhoto, nil
		}
		return actions.ReplyClarify, nil
	}
	return p.Apply(ctx, sess, plan)
}

func (p *Planner) executePending(ctx context.Context, sess *domain.Session) (string, error) {
	req := requestFromSession(sess)
	res, err := p.exec.Execute(ctx, sess.UserID, sess, req)
	if err != nil {
		return p.recover(ctx, sess, req, err, nil)
	}
	if res.ClearSession {
		sess.Clear()
	}
	if err := p.save(ctx, sess); err != nil {
		return "", err
	}
	if res.Reply == "" {
		return actions.ReplyAcknowledged, nil
	}
	return res.Reply, nil
}

// askForField parks the flow on one missing field. The uttered question is
// always the canonical one for that field: the next answer is stored under
// the field key, so question and key must agree. Interpreter-phrased
// questions are only safe on the followup path, where answers are
// re-interpreted instead of keyed.
func (p *Planner) askForField(ctx context.Context, sess *domain.Session, req domain.ActionRequest, field string) (string, error) {
	p.stash(sess, req)
	sess.AwaitField(pendingFor(req.Kind), field)
	if err := p.save(ctx, sess); err != nil {
		return "", err
	}
	observability.LoggerFromContext(ctx).Info("awaiting field",
		"user_id", sess.UserID, "field", field, "action", req.Kind)
	return actions.QuestionFor(field), nil
}

// recover converts executor failures into the next question where the
// failure is conversational, and propagates storage trouble untouched.
func (p *Planner) recover(ctx context.Context, sess *domain.Session, req domain.ActionRequest, execErr error, replies []string) (string, error) {
	if field, ok := domain.MissingField(execErr); ok {
		p.stash(sess, req)
		delete(sess.Partial, field) // the value on file was unusable
		sess.AwaitField(pendingFor(req.Kind), field)
		if err := p.save(ctx, sess); err != nil {
			return "", err
		}
		return joinReplies(append(replies, actions.QuestionFor(field))), nil
	}
	if errors.Is(execErr, domain.ErrNoResolvablePet) {
		p.stash(sess, req)
		sess.AwaitField(pendingFor(req.Kind), domain.FieldPetName)
		if err := p.save(ctx, sess); err != nil {
			return "", err
		}
		return joinReplies(append(replies, actions.ReplyAskPet)), nil
	}
	return "", execErr
}

// missingFields returns the fields to ask for before req can execute, in
// ask-priority order. pet_name drops out when the executor could resolve a
// pet anyway (a collected name, or any pet on file): the "which pet?"
// question is reserved for the case where execution would genuinely fail.
func (p *Planner) missingFields(ctx context.Context, sess *domain.Session, req domain.ActionRequest) []string {
	missing := domain.MissingFields(req.Kind, req.Params)
	out := missing[:0]
	for _, f := range missing {
		if f == domain.FieldPetName && p.exec.CanResolvePet(ctx, sess.UserID, sess) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// acceptAnswer validates a direct answer for the field the session waits
// on. Dates are checked for parseability but stored raw, so words like
// "วันนี้" resolve against the clock at execution time rather than now.
func (p *Planner) acceptAnswer(field, text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	switch field {
	case domain.FieldDate, domain.FieldBirthDate:
		if _, err := domain.ParseCivilDate(text, p.now()); err != nil {
			return "", false
		}
		return text, true
	case domain.FieldCycleDays:
		n, err := strconv.Atoi(text)
		if err != nil || n <= 0 {
			return "", false
		}
		return strconv.Itoa(n), true
	default:
		return text, true
	}
}

func (p *Planner) save(ctx context.Context, sess *domain.Session) error {
	sess.UpdatedAt = p.now()
	return p.sessions.Save(ctx, sess)
}

// stash folds an action's params into the session so the flow can resume
// next turn, and remembers the kind under the reserved key.
func (p *Planner) stash(sess *domain.Session, req domain.ActionRequest) {
	params := make(map[string]string, len(req.Params))
	for k, v := range req.Params {
		if strings.HasPrefix(k, "_") {
			continue
		}
		params[k] = strings.TrimSpace(v)
	}
	sess.MergePartial(params)
	sess.SetPartial(kindKey, string(req.Kind))
}

func requestFromSession(sess *domain.Session) domain.ActionRequest {
	params := make(map[string]string, len(sess.Partial))
	for k, v := range sess.Partial {
		if strings.HasPrefix(k, "_") {
			continue
		}
		params[k] = v
	}
	return domain.ActionRequest{Kind: pendingKind(sess), Params: params}
}

func pendingKind(sess *domain.Session) domain.ActionKind {
	switch sess.Pending {
	case domain.PendingAddVaccine:
		return domain.KindAddVaccine
	case domain.PendingCollect:
		return domain.ParseActionKind(sess.Partial[kindKey])
	default:
		return domain.KindNoop
	}
}

func pendingFor(kind domain.ActionKind) domain.PendingAction {
	if kind == domain.KindAddVaccine {
		return domain.PendingAddVaccine
	}
	return domain.PendingCollect
}

func joinReplies(replies []string) string {
	return strings.Join(replies, "\n")
}
