// Send HTTP handler.
//
// This file exposes the gateway's primary endpoint:
//   - POST /sendmessage  (multipart form: fromNumber, toNumber, text,
//     optional files image/document, optional sessionId override)
//
// The handler is transport-thin: it stores the raw uploads, delegates to the
// SendService, and translates service sentinels into the legacy plain-text
// contract the frontend depends on (200/404/500 with fixed bodies).
package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-wa-gateway/internal/http/middleware"
	"github.com/tbourn/go-wa-gateway/internal/media"
	"github.com/tbourn/go-wa-gateway/internal/services"
)

// Legacy response bodies. The frontend string-matches these; do not reword.
const (
	msgSent            = "Message sent successfully"
	msgClientNotFound  = "Client not found"
	msgLookupError     = "Error fetching recipient name"
	msgSendError       = "Error sending message"
	msgPersistError    = "Error updating sentdata table"
	msgRecipientNeeded = "toNumber is required"
)

// SendService is the orchestration contract consumed by the send handler.
type SendService interface {
	Send(ctx context.Context, in services.SendInput) (*services.SendOutcome, error)
}

// SessionCreator registers a session and starts its pairing in the
// background. Initialization outlives the HTTP request that triggered it,
// so no request context is threaded through.
type SessionCreator interface {
	Create(sessionID string)
}

// StatusReporter answers existence/readiness questions for a session id.
type StatusReporter interface {
	Status(sessionID string) (found, ready bool)
}

// Handlers groups the gateway's HTTP endpoints.
type Handlers struct {
	sendSvc  SendService
	status   StatusReporter
	sessions SessionCreator
	store    *media.Store
	db       *gorm.DB // read path for the send-log listing

	// defaultSessionID is used when the form carries no sessionId field,
	// mirroring the single hardcoded client of the original deployment.
	defaultSessionID string
}

// New constructs a Handlers instance bound to the given collaborators.
func New(sendSvc SendService, status StatusReporter, sessions SessionCreator, store *media.Store, defaultSessionID string) *Handlers {
	return &Handlers{
		sendSvc:          sendSvc,
		status:           status,
		sessions:         sessions,
		store:            store,
		defaultSessionID: defaultSessionID,
	}
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a templated message
// @Description Resolves the recipient's known display name, substitutes it for
// @Description the first <name> token in the text, and dispatches the message
// @Description (optionally with an image and/or document attachment) through
// @Description the configured messaging session. Successful sends are logged.
// @Tags        Messages
// @Accept      mpfd
// @Produce     plain
//
// @Param       fromNumber  formData  string  true   "Sender identifier"
// @Param       toNumber    formData  string  true   "Recipient identifier (bare number)"
// @Param       text        formData  string  false  "Message template; may contain <name>"
// @Param       sessionId   formData  string  false  "Session override (defaults to the configured session)"
// @Param       image       formData  file    false  "Image attachment (max 1)"
// @Param       document    formData  file    false  "Document attachment (max 1)"
//
// @Success     200  {string}  string  "Message sent successfully"
// @Failure     400  {string}  string  "Missing recipient"
// @Failure     404  {string}  string  "Client not found"
// @Failure     500  {string}  string  "Downstream failure"
// @Router      /sendmessage [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()

	sessionID := strings.TrimSpace(c.PostForm("sessionId"))
	if sessionID == "" {
		sessionID = h.defaultSessionID
	}

	in := services.SendInput{
		SessionID:  sessionID,
		FromNumber: strings.TrimSpace(c.PostForm("fromNumber")),
		ToNumber:   strings.TrimSpace(c.PostForm("toNumber")),
		Template:   c.PostForm("text"),
	}
	if in.ToNumber == "" {
		text(c, http.StatusBadRequest, msgRecipientNeeded)
		return
	}

	// Store uploads before orchestration, one file per field at most.
	var err error
	if in.ImageName, err = h.saveUpload(c, "image"); err != nil {
		text(c, http.StatusInternalServerError, msgSendError)
		return
	}
	if in.DocumentName, err = h.saveUpload(c, "document"); err != nil {
		text(c, http.StatusInternalServerError, msgSendError)
		return
	}

	out, err := h.sendSvc.Send(ctx, in)
	if err != nil {
		middleware.CountSend(sendOutcome(err))
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			text(c, http.StatusNotFound, msgClientNotFound)
		case errors.Is(err, services.ErrEmptyRecipient):
			text(c, http.StatusBadRequest, msgRecipientNeeded)
		case errors.Is(err, services.ErrLookupFailed):
			text(c, http.StatusInternalServerError, msgLookupError)
		case errors.Is(err, services.ErrRecordLost):
			// The message went out; only the audit row is missing. The
			// legacy contract still reports failure here.
			text(c, http.StatusInternalServerError, msgPersistError)
		default:
			// Dispatch failures and unresolvable attachments.
			text(c, http.StatusInternalServerError, msgSendError)
		}
		return
	}

	middleware.CountSend("ok")
	if in.ImageName != "" {
		middleware.CountMediaDispatch("image")
	}
	if in.DocumentName != "" {
		middleware.CountMediaDispatch("document")
	}

	middleware.LoggerFrom(c).Info().
		Str("session_id", sessionID).
		Str("recipient_name", out.RecipientName).
		Bool("with_attachment", out.AttachmentURL != "").
		Msg("message sent")

	text(c, http.StatusOK, msgSent)
}

// sendOutcome maps a service error to the bounded metrics label set.
func sendOutcome(err error) string {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, services.ErrEmptyRecipient):
		return "bad_request"
	case errors.Is(err, services.ErrLookupFailed):
		return "lookup_failed"
	case errors.Is(err, services.ErrAttachmentMissing):
		return "attachment_missing"
	case errors.Is(err, services.ErrRecordLost):
		return "record_lost"
	default:
		return "dispatch_failed"
	}
}

// saveUpload persists the first uploaded file for field, returning its
// stored name, or "" when the field is absent. A MaxCount of one per field
// is enforced by taking only the first file.
func (h *Handlers) saveUpload(c *gin.Context, field string) (string, error) {
	fh, err := firstFile(c, field)
	if err != nil || fh == nil {
		return "", err
	}
	return h.store.Save(fh)
}

// firstFile returns the first multipart file for field, or nil when the
// field carries no file. A request without any multipart body is fine.
func firstFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil
		}
		return nil, err
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	return files[0], nil
}
