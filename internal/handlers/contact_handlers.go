package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/amanksolutions/galleryguard/internal/constants"
	"github.com/amanksolutions/galleryguard/internal/service"
	"github.com/amanksolutions/galleryguard/internal/utils"
)

// ContactHandler handles contact-form submissions.
type ContactHandler struct {
	mailer MailerInterface
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(mailer MailerInterface) *ContactHandler {
	return &ContactHandler{
		mailer: mailer,
	}
}

// ContactRequest is a visitor's contact-form submission.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// SubmitContactForm validates a submission and queues it for delivery.
// The visitor gets an immediate acknowledgement; the actual send happens
// in the background so a slow mail provider cannot stall the response.
func (h *ContactHandler) SubmitContactForm(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := utils.DecodeAndValidate(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	msg := service.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}

	go func() {
		if err := h.mailer.Relay(context.Background(), msg); err != nil {
			log.Error().Err(err).Str("sender", msg.Email).Msg("Failed to relay contact message")
		}
	}()

	utils.JSON(w, constants.StatusAccepted, map[string]interface{}{
		"status":  "queued",
		"message": constants.MsgContactQueued,
	})
}
