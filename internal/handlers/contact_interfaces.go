package handlers

import (
	"context"

	"github.com/amanksolutions/galleryguard/internal/service"
)

// MailerInterface defines methods required from the outbound mail service.
type MailerInterface interface {
	// Relay forwards a contact-form submission to the studio inbox.
	//
	// Parameters:
	//   - ctx: Context for the operation
	//   - msg: The visitor's message
	//
	// Returns:
	//   - An error if the provider refuses or the send fails
	Relay(ctx context.Context, msg service.ContactMessage) error
}
