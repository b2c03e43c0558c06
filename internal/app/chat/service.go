// Package chat is the conversational front of the assistant: it routes
// inbound messages, keeps per-user turns serialized and turns every
// failure into something polite to say.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/thebenzza/nonnon/internal/app/actions"
	"github.com/thebenzza/nonnon/internal/app/planner"
	"github.com/thebenzza/nonnon/internal/domain"
	"github.com/thebenzza/nonnon/internal/observability"
)

type Service struct {
	sessions domain.SessionStore
	pets     domain.PetStore
	interp   domain.PlanInterpreter
	advisor  domain.Advisor
	exec     *actions.Executor
	planner  *planner.Planner
	now      func() time.Time

	// mu guards users. Turns for one user run serialized; the version
	// check in the session store stays as the cross-process guard.
	mu    sync.Mutex
	users map[domain.UserID]*sync.Mutex
}

func NewService(
	sessions domain.SessionStore,
	pets domain.PetStore,
	interp domain.PlanInterpreter,
	advisor domain.Advisor,
	exec *actions.Executor,
	plan *planner.Planner,
) *Service {
	return &Service{
		sessions: sessions,
		pets:     pets,
		interp:   interp,
		advisor:  advisor,
		exec:     exec,
		planner:  plan,
		now:      time.Now,
		users:    map[domain.UserID]*sync.Mutex{},
	}
}

// HandleMessageInput is one inbound event. Text and ImageID are mutually
// exclusive in practice; when both are present the image wins.
type HandleMessageInput struct {
	UserID  domain.UserID
	Text    string
	ImageID string
}

// HandleMessage runs one full turn and always returns something to say.
// Errors never cross this boundary: they are logged and collapsed into
// apology replies.
func (s *Service) HandleMessage(ctx context.Context, in HandleMessageInput) string {
	unlock := s.lockUser(in.UserID)
	defer unlock()

	log := observability.LoggerFromContext(ctx).With("user_id", in.UserID)

	sess, err := s.loadSession(ctx, in.UserID)
	if err != nil {
		log.Error("failed to load session", "error", err)
		return actions.ReplyStorageTrouble
	}

	reply, err := s.handle(ctx, sess, in)
	if err != nil {
		if errors.Is(err, domain.ErrSessionConflict) {
			log.Warn("session version conflict", "error", err)
			return actions.ReplyBusy
		}
		log.Error("turn failed", "error", err)
		return actions.ReplyStorageTrouble
	}
	return reply
}

func (s *Service) handle(ctx context.Context, sess *domain.Session, in HandleMessageInput) (string, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", in.UserID)

	if in.ImageID != "" {
		return s.handleImage(ctx, sess, in.ImageID)
	}

	sctx := s.sessionContext(ctx, sess)
	dec := Classify(in.Text, sess, s.now())
	log.Info("message routed", "route", dec.Route, "reason", dec.Reason)

	switch dec.Route {
	case RouteContinue:
		return s.planner.Continue(ctx, sess, in.Text, sctx)
	case RoutePlanner:
		return s.handlePlanner(ctx, sess, in.Text, sctx)
	case RouteHealth:
		return s.advise(ctx, in.Text, sctx, true), nil
	case RouteChat:
		return s.advise(ctx, in.Text, sctx, false), nil
	default:
		return s.handleUnknown(ctx, sess, in.Text, sctx)
	}
}

func (s *Service) handlePlanner(ctx context.Context, sess *domain.Session, text string, sctx domain.SessionContext) (string, error) {
	// The photo flow lives outside the interpreter's action enum, so it
	// is primed here before any interpretation happens.
	if isPhotoIntent(text) {
		return s.primePhotoFlow(ctx, sess, text)
	}

	plan, err := s.interp.Interpret(ctx, text, sctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("interpreter unavailable",
			"user_id", sess.UserID, "error", err)
		return actions.ReplyClarify, nil
	}
	return s.planner.Apply(ctx, sess, plan)
}

// handleUnknown tries the interpreter once. A plan with a real action is
// worked in; anything else, interpreter failure included, becomes small
// talk. Routing never fails.
func (s *Service) handleUnknown(ctx context.Context, sess *domain.Session, text string, sctx domain.SessionContext) (string, error) {
	plan, err := s.interp.Interpret(ctx, text, sctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("interpreter unavailable, falling back to chat",
			"user_id", sess.UserID, "error", err)
		return s.advise(ctx, text, sctx, false), nil
	}
	if plan.HasActionable() {
		return s.planner.Apply(ctx, sess, plan)
	}
	return s.advise(ctx, text, sctx, false), nil
}

func (s *Service) handleImage(ctx context.Context, sess *domain.Session, imageID string) (string, error) {
	if sess.Pending != domain.PendingAttachPhoto {
		return actions.ReplyPhotoHint, nil
	}

	res, err := s.exec.AttachPhoto(ctx, sess.UserID, sess, imageID)
	if errors.Is(err, domain.ErrNoResolvablePet) || errors.Is(err, domain.ErrPetNotFound) {
		sess.Clear()
		if err := s.saveSession(ctx, sess); err != nil {
			return "", err
		}
		return actions.ReplyPhotoNoPet, nil
	}
	if err != nil {
		return "", err
	}

	if res.ClearSession {
		sess.Clear()
	}
	if err := s.saveSession(ctx, sess); err != nil {
		return "", err
	}
	return res.Reply, nil
}

// primePhotoFlow remembers which pet the photo belongs to, when the
// message names one, and asks for the image.
func (s *Service) primePhotoFlow(ctx context.Context, sess *domain.Session, text string) (string, error) {
	pets, err := s.pets.ListByOwner(ctx, sess.UserID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("listing pets for photo flow",
			"user_id", sess.UserID, "error", err)
	}
	for _, p := range pets {
		if p.Name != "" && strings.Contains(text, p.Name) {
			sess.SetPartial(domain.FieldPetName, p.Name)
			break
		}
	}

	sess.AwaitFollowup(domain.PendingAttachPhoto)
	if err := s.saveSession(ctx, sess); err != nil {
		return "", err
	}
	return actions.ReplyAskPhoto, nil
}

func (s *Service) advise(ctx context.Context, text string, sctx domain.SessionContext, health bool) string {
	answer, err := s.advisor.Advise(ctx, text, sctx, health)
	if err != nil || strings.TrimSpace(answer) == "" {
		observability.LoggerFromContext(ctx).Warn("advisor unavailable",
			"user_id", sctx.UserID, "health", health, "error", err)
		if health {
			return actions.ReplyHealthFallback
		}
		return actions.ReplyChatFallback
	}
	return answer
}

func (s *Service) loadSession(ctx context.Context, userID domain.UserID) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, userID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.NewSession(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) saveSession(ctx context.Context, sess *domain.Session) error {
	sess.UpdatedAt = s.now()
	return s.sessions.Save(ctx, sess)
}

func (s *Service) sessionContext(ctx context.Context, sess *domain.Session) domain.SessionContext {
	sctx := domain.SessionContext{
		UserID:  sess.UserID,
		Pending: sess.Pending,
		Expect:  sess.Expect,
		Field:   sess.ExpectField,
		Partial: sess.Partial,
	}
	pets, err := s.pets.ListByOwner(ctx, sess.UserID)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("listing pets for context",
			"user_id", sess.UserID, "error", err)
		return sctx
	}
	for _, p := range pets {
		sctx.PetNames = append(sctx.PetNames, p.Name)
	}
	return sctx
}

func (s *Service) lockUser(id domain.UserID) func() {
	s.mu.Lock()
	mu, ok := s.users[id]
	if !ok {
		mu = &sync.Mutex{}
		s.users[id] = mu
	}
	s.mu.Unlock()
	mu.Lock()
	return mu.Unlock
}

func isPhotoIntent(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range photoKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
