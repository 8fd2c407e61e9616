package testutil

import (
	"time"

	"github.com/google/uuid"

	"registro/internal/contact/models"
)

// TestIDs provides pre-generated IDs for deterministic test data.
var TestIDs = struct {
	ContactID1 uuid.UUID
	ContactID2 uuid.UUID
}{
	ContactID1: uuid.MustParse("11111111-1111-1111-1111-111111111111"),
	ContactID2: uuid.MustParse("22222222-2222-2222-2222-222222222222"),
}

// FixedTime is the creation time builders stamp unless told otherwise.
var FixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

// ContactBuilder provides a fluent interface for building stored contacts.
type ContactBuilder struct {
	contact *models.Contact
}

// NewContactBuilder creates a ContactBuilder with a fresh ID and valid fields.
func NewContactBuilder() *ContactBuilder {
	return &ContactBuilder{
		contact: &models.Contact{
			ID:        uuid.New(),
			Names:     "Ana",
			Surname:   "Pérez",
			Email:     "ana@example.com",
			Phone:     "3001234567",
			Interest:  "cloud",
			CreatedAt: FixedTime,
		},
	}
}

func (b *ContactBuilder) WithID(id uuid.UUID) *ContactBuilder {
	b.contact.ID = id
	return b
}

func (b *ContactBuilder) WithName(names, surname string) *ContactBuilder {
	b.contact.Names = names
	b.contact.Surname = surname
	return b
}

func (b *ContactBuilder) WithEmail(email string) *ContactBuilder {
	b.contact.Email = email
	return b
}

func (b *ContactBuilder) WithInterest(interest string) *ContactBuilder {
	b.contact.Interest = interest
	return b
}

func (b *ContactBuilder) CreatedAt(t time.Time) *ContactBuilder {
	b.contact.CreatedAt = t
	return b
}

func (b *ContactBuilder) Build() *models.Contact {
	return b.contact
}

// RegisterRequestBuilder builds form submissions that pass validation by default.
type RegisterRequestBuilder struct {
	req *models.RegisterRequest
}

func NewRegisterRequestBuilder() *RegisterRequestBuilder {
	return &RegisterRequestBuilder{
		req: &models.RegisterRequest{
			Names:    "Lucía",
			Surname:  "Quispe",
			Email:    "lucia@example.com",
			Phone:    "987654321",
			Interest: "devops",
		},
	}
}

func (b *RegisterRequestBuilder) WithNames(names string) *RegisterRequestBuilder {
	b.req.Names = names
	return b
}

func (b *RegisterRequestBuilder) WithEmail(email string) *RegisterRequestBuilder {
	b.req.Email = email
	return b
}

func (b *RegisterRequestBuilder) WithInterest(interest string) *RegisterRequestBuilder {
	b.req.Interest = interest
	return b
}

func (b *RegisterRequestBuilder) Build() *models.RegisterRequest {
	return b.req
}
