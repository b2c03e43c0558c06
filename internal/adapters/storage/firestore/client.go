// Package firestore persists sessions and domain records in Cloud
// Firestore. One wrapped client hands out the per-collection stores; the
// document layout is flat top-level collections keyed by record ID.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

const (
	colSessions     = "sessions"
	colPets         = "pets"
	colVaccinations = "vaccinations"
	colTreatments   = "treatments"
	colReminders    = "reminders"
)

type Client struct {
	client *firestore.Client
}

// NewClient connects to the project's Firestore database using ambient
// credentials.
func NewClient(ctx context.Context, projectID string) (*Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for firestore")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Sessions() *SessionStore {
	return &SessionStore{client: c.client}
}

func (c *Client) Pets() *PetStore {
	return &PetStore{client: c.client}
}

func (c *Client) Vaccinations() *VaccinationStore {
	return &VaccinationStore{client: c.client}
}

func (c *Client) Treatments() *TreatmentStore {
	return &TreatmentStore{client: c.client}
}

func (c *Client) Reminders() *ReminderStore {
	return &ReminderStore{client: c.client}
}
