// Package services – SendService
//
// This file implements SendService, the orchestrator behind POST
// /sendmessage. For one request it resolves the recipient's display name
// from the send log, substitutes it into the message template, resolves any
// uploaded attachments, dispatches through a ready session, and persists the
// audit row. Ordering inside one call is fixed: lookup precedes substitution
// precedes dispatch precedes persistence. Across calls nothing is ordered.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// session id and attachment counts, never raw recipient numbers.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-wa-gateway/internal/domain"
	"github.com/tbourn/go-wa-gateway/internal/media"
	"github.com/tbourn/go-wa-gateway/internal/repo"
	"github.com/tbourn/go-wa-gateway/internal/session"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// placeholderToken is the literal token substituted in templates. Only
	// its first occurrence is replaced; any other token is left untouched.
	placeholderToken = "<name>"

	// defaultRecipientName is used when the recipient has no prior record.
	defaultRecipientName = "User"
)

// SendService coordinates name resolution, templating, attachment
// resolution, transport dispatch, and send-log persistence.
type SendService struct {
	DB       *gorm.DB
	Registry *session.Registry
	Resolver *media.Resolver

	// AddressSuffix is appended to bare recipient ids to form the transport
	// address (e.g. "@c.us").
	AddressSuffix string

	// SendTimeout bounds a single dispatch; zero disables the deadline.
	SendTimeout time.Duration
}

// SendInput is the ephemeral request handed to Send. Attachment names are
// stored filenames produced by the upload store; empty means absent.
type SendInput struct {
	SessionID    string
	FromNumber   string
	ToNumber     string
	Template     string
	ImageName    string
	DocumentName string
}

// SendOutcome reports what was actually sent and logged.
type SendOutcome struct {
	RecipientName string
	Message       string
	AttachmentURL string
	Record        *domain.SendRecord
}

// Send runs the full orchestration for one outbound message.
//
// Failure semantics follow the gateway contract: any failure aborts the
// remaining steps and is reported to the caller with its proximate cause; a
// failed dispatch writes no record, and a failed persistence after a
// successful dispatch still reports failure (ErrRecordLost) even though the
// message went out.
func (s *SendService) Send(ctx context.Context, in SendInput) (*SendOutcome, error) {
	tr := otel.Tracer("services/SendService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("session.id", in.SessionID),
			attribute.Bool("has_image", in.ImageName != ""),
			attribute.Bool("has_document", in.DocumentName != ""),
		),
	)
	defer span.End()

	if strings.TrimSpace(in.ToNumber) == "" {
		return nil, ErrEmptyRecipient
	}

	// 1) A ready session must exist; absent and not-yet-paired look the
	// same to the send path (the registry only "publishes" ready sessions
	// to it), both surface as not found.
	sess, ok := s.Registry.Get(in.SessionID)
	if !ok || !sess.Ready() {
		return nil, ErrSessionNotFound
	}

	// 2) Recipient display name from the most recent prior send.
	name, err := repo.LookupRecipientName(ctx, s.DB, in.ToNumber)
	if errors.Is(err, repo.ErrNotFound) {
		name = defaultRecipientName
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	// 3) First-occurrence placeholder substitution.
	message := SubstituteName(in.Template, name)

	// 4) Attachments, at most one per kind.
	atts, err := s.Resolver.Resolve(in.ImageName, in.DocumentName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttachmentMissing, err)
	}

	// 5) Dispatch.
	address := qualifyAddress(in.ToNumber, s.AddressSuffix)
	if err := s.dispatch(ctx, sess, address, message, atts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	// 6) Persist exactly one audit row. Image URL wins when both kinds were
	// sent (historical single-column precedence).
	attURL := loggedURL(atts)
	rec, err := repo.CreateSendRecord(ctx, s.DB,
		in.FromNumber, in.ToNumber, name, message, attURL, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecordLost, err)
	}

	return &SendOutcome{
		RecipientName: name,
		Message:       message,
		AttachmentURL: attURL,
		Record:        rec,
	}, nil
}

// dispatch sends either one text message or one media message per
// attachment, all carrying the same caption. Media sends run concurrently
// and the call waits for all of them; the first error fails the whole
// operation and an already-succeeded sibling send is not undone.
func (s *SendService) dispatch(ctx context.Context, sess *session.Session, address, message string, atts []media.Attachment) error {
	if s.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.SendTimeout)
		defer cancel()
	}

	if len(atts) == 0 {
		return sess.SendText(ctx, address, message)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, att := range atts {
		g.Go(func() error {
			return sess.SendMedia(gctx, address, att.Media(), message)
		})
	}
	return g.Wait()
}

// SubstituteName replaces the first occurrence of the <name> token in
// template with name. Templates without the token pass through unchanged,
// as do any other tokens.
func SubstituteName(template, name string) string {
	if !strings.Contains(template, placeholderToken) {
		return template
	}
	return strings.Replace(template, placeholderToken, name, 1)
}

// qualifyAddress appends suffix to a bare id unless the id already carries a
// domain part.
func qualifyAddress(id, suffix string) string {
	if strings.Contains(id, "@") {
		return id
	}
	return id + suffix
}

// loggedURL picks the single URL persisted with the record: image first,
// then document, empty for text-only sends. Resolve returns attachments in
// image-then-document order, but the precedence is made explicit here.
func loggedURL(atts []media.Attachment) string {
	var docURL string
	for _, a := range atts {
		switch a.Kind {
		case session.MediaImage:
			return a.PublicURL
		case session.MediaDocument:
			docURL = a.PublicURL
		}
	}
	return docURL
}
