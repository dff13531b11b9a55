// Package notification queues donor-facing messages on lifecycle
// transitions. Delivery mechanics (email/SMS) live outside the core; this
// package only guarantees the enqueue.
package notification

import (
	"time"

	"github.com/google/uuid"
)

// Kind tags why a notification was queued.
type Kind string

const (
	KindVerificationRejected Kind = "verification_rejected"
	KindDonationCompleted    Kind = "donation_completed"
	KindRegistrationReminder Kind = "registration_reminder"
)

// Notification is a queued message for one recipient. RelatedID optionally
// points at the entity that triggered it (verification, registration).
type Notification struct {
	ID          uuid.UUID `json:"id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	RelatedID   uuid.UUID `json:"related_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
