package domain

// ExpectKind says what the assistant is waiting for from the user.
// A session holds at most one outstanding expectation at a time.
type ExpectKind string

const (
	ExpectNone     ExpectKind = ""
	ExpectFollowup ExpectKind = "followup"
	ExpectField    ExpectKind = "field"
)

// PendingAction names the multi-turn flow a session is in the middle of.
type PendingAction string

const (
	PendingNone        PendingAction = ""
	PendingAddVaccine  PendingAction = "add_vaccine"
	PendingAttachPhoto PendingAction = "attach_photo"
	// PendingCollect covers generic field collection for the remaining
	// action kinds (add_pet, add_treatment, list queries).
	PendingCollect PendingAction = "collect"
)

// Session is the per-user conversational state that survives between turns.
// It is created lazily on the first message, rewritten by the planner every
// turn, and zeroed on completion or cancellation. There is no TTL: a stale
// session stays around until the next turn overwrites it.
type Session struct {
	UserID UserID

	Expect      ExpectKind
	ExpectField string // field name, only when Expect == ExpectField
	Pending     PendingAction

	// Partial accumulates type-checked field values across turns.
	// Values must pass per-kind validation before the executor sees them.
	Partial map[string]string

	UpdatedAt Timestamp

	// Version is bumped on every save. Save must fail with
	// ErrSessionConflict when the stored version no longer matches,
	// so two near-simultaneous turns cannot silently overwrite each other.
	Version int64
}

// NewSession returns the zero-state session for a user.
func NewSession(userID UserID) *Session {
	return &Session{
		UserID:  userID,
		Partial: map[string]string{},
	}
}

// Clear resets conversational state in place. Version is kept so the
// subsequent save still goes through the compare-and-swap check.
func (s *Session) Clear() {
	s.Expect = ExpectNone
	s.ExpectField = ""
	s.Pending = PendingNone
	s.Partial = map[string]string{}
}

// AwaitField marks the session as waiting for one named field.
func (s *Session) AwaitField(pending PendingAction, field string) {
	s.Expect = ExpectField
	s.ExpectField = field
	s.Pending = pending
}

// AwaitFollowup marks the session as waiting for a free-form answer
// to the question just asked.
func (s *Session) AwaitFollowup(pending PendingAction) {
	s.Expect = ExpectFollowup
	s.ExpectField = ""
	s.Pending = pending
}

// SetPartial records a collected field value.
func (s *Session) SetPartial(field, value string) {
	if s.Partial == nil {
		s.Partial = map[string]string{}
	}
	s.Partial[field] = value
}

// MergePartial folds new values over the accumulated ones. Later non-empty
// values win, mirroring the merge semantics of the record stores.
func (s *Session) MergePartial(values map[string]string) {
	for k, v := range values {
		if v == "" {
			continue
		}
		s.SetPartial(k, v)
	}
}

// Open reports whether the session is in the middle of a multi-turn flow.
func (s *Session) Open() bool {
	return s.Expect != ExpectNone
}
