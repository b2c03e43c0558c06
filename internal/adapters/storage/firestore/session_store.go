package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/thebenzza/nonnon/internal/domain"
)

type SessionStore struct {
	client *firestore.Client
}

type sessionDoc struct {
	Expect      string            `firestore:"expect"`
	ExpectField string            `firestore:"expect_field"`
	Pending     string            `firestore:"pending_action"`
	Partial     map[string]string `firestore:"partial"`
	UpdatedAt   time.Time         `firestore:"updated_at"`
	Version     int64             `firestore:"version"`
}

func (s *SessionStore) doc(userID domain.UserID) *firestore.DocumentRef {
	return s.client.Collection(colSessions).Doc(string(userID))
}

func (s *SessionStore) Get(ctx context.Context, userID domain.UserID) (*domain.Session, error) {
	snap, err := s.doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}

	sess := &domain.Session{
		UserID:      userID,
		Expect:      domain.ExpectKind(doc.Expect),
		ExpectField: doc.ExpectField,
		Pending:     domain.PendingAction(doc.Pending),
		Partial:     doc.Partial,
		UpdatedAt:   doc.UpdatedAt,
		Version:     doc.Version,
	}
	if sess.Partial == nil {
		sess.Partial = map[string]string{}
	}
	return sess, nil
}

// Save upserts the session behind a transactional version check,
// mirroring the in-memory store: the incoming version must match the
// stored one, then both advance.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	ref := s.doc(session.UserID)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			var stored sessionDoc
			if err := snap.DataTo(&stored); err != nil {
				return fmt.Errorf("decode sessionDoc: %w", err)
			}
			if stored.Version != session.Version {
				return domain.ErrSessionConflict
			}
		case status.Code(err) == codes.NotFound:
			// First save for this user, nothing to compare against.
		default:
			return err
		}

		return tx.Set(ref, sessionDoc{
			Expect:      string(session.Expect),
			ExpectField: session.ExpectField,
			Pending:     string(session.Pending),
			Partial:     session.Partial,
			UpdatedAt:   session.UpdatedAt,
			Version:     session.Version + 1,
		})
	})
	if err != nil {
		if errors.Is(err, domain.ErrSessionConflict) {
			return domain.ErrSessionConflict
		}
		return fmt.Errorf("firestore SaveSession: %w", err)
	}

	session.Version++
	return nil
}
