package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cradle/internal/child"
	"cradle/internal/events"
	"cradle/internal/ledger"
	dErrors "cradle/pkg/domainerrors"
	"cradle/pkg/platform/sentinel"
	"cradle/pkg/requestcontext"
)

type registeredPayload struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
	GuardianID int64  `json:"guardian_id"`
}

type regeneratedPayload struct {
	OldIdentifier string `json:"old_identifier"`
	NewIdentifier string `json:"new_identifier"`
	RequestedBy   int64  `json:"requested_by"`
	Device        string `json:"device,omitempty"`
}

type assignedPayload struct {
	OldGuardianID int64  `json:"old_guardian_id"`
	NewGuardianID int64  `json:"new_guardian_id"`
	OldIdentifier string `json:"old_identifier"`
	NewIdentifier string `json:"new_identifier"`
	AssignedBy    int64  `json:"assigned_by"`
}

type deactivatedPayload struct {
	Identifier    string `json:"identifier"`
	DeactivatedBy int64  `json:"deactivated_by"`
}

// Register creates a child record with a freshly generated identifier.
// Guardians may only register children under their own account; admins and
// doctors may register for any active guardian.
func (s *Service) Register(ctx context.Context, principal requestcontext.AuthPrincipal, input RegisterInput) (child.Record, error) {
	ctx, span := s.tracer.Start(ctx, "child.Register")
	defer span.End()

	if err := input.validate(); err != nil {
		return child.Record{}, err
	}
	if principal.UserID != input.GuardianID && !principal.IsAdmin() && principal.Role != requestcontext.RoleDoctor {
		return child.Record{}, dErrors.New(dErrors.CodeAccessDenied, "cannot register a child for another guardian")
	}

	owner, err := s.guardians.FindByID(ctx, input.GuardianID)
	if err != nil {
		return child.Record{}, s.translate(err, "guardian not found")
	}
	if !owner.Active {
		return child.Record{}, dErrors.New(dErrors.CodeNotFound, "guardian not found")
	}

	now := requestcontext.Now(ctx)
	record := child.Record{
		Name:          input.Name,
		BirthDate:     input.BirthDate,
		Gender:        input.Gender,
		WeightAtBirth: input.WeightAtBirth,
		HeightAtBirth: input.HeightAtBirth,
		BloodType:     input.BloodType,
		Notes:         input.Notes,
		GuardianID:    input.GuardianID,
		Active:        true,
	}

	err = s.withIdentifierRetry(ctx, func(ctx context.Context) error {
		record.Identifier = child.NewIdentifier(now)
		return s.tx.RunInTx(ctx, func(ctx context.Context) error {
			if err := s.children.Create(ctx, &record); err != nil {
				return err
			}
			return s.events.Record(ctx, events.TypeChildRegistered, strconv.FormatInt(record.ID, 10), registeredPayload{
				Name:       record.Name,
				Identifier: record.Identifier,
				GuardianID: record.GuardianID,
			})
		})
	})
	if err != nil {
		return child.Record{}, err
	}
	span.SetAttributes(attribute.Int64("child.id", record.ID))

	if s.metrics != nil {
		s.metrics.ChildrenRegistered.Inc()
	}
	s.notifyRegistered(ctx, owner.Email, record)
	return record, nil
}

func (in RegisterInput) validate() error {
	switch {
	case in.Name == "":
		return dErrors.New(dErrors.CodeValidation, "name is required")
	case in.BirthDate.IsZero():
		return dErrors.New(dErrors.CodeValidation, "birth_date is required")
	case in.Gender == "":
		return dErrors.New(dErrors.CodeValidation, "gender is required")
	case in.GuardianID <= 0:
		return dErrors.New(dErrors.CodeValidation, "guardian_id is required")
	}
	return nil
}

// Lookup returns the active record holding the identifier. Public: any
// authenticated caller may resolve an identifier to the child's basic record.
func (s *Service) Lookup(ctx context.Context, identifier string) (child.Record, error) {
	ctx, span := s.tracer.Start(ctx, "child.Lookup")
	defer span.End()

	if s.cache != nil {
		if record, ok := s.cache.Get(ctx, identifier); ok {
			s.lookupOutcome("found")
			return record, nil
		}
	}

	record, err := s.children.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.lookupOutcome("miss")
		}
		return child.Record{}, s.translate(err, "child record not found")
	}
	s.lookupOutcome("found")
	if s.cache != nil {
		s.cache.Set(ctx, identifier, record)
	}
	return record, nil
}

// Validate reports whether an identifier resolves to an active record.
func (s *Service) Validate(ctx context.Context, identifier string) (bool, error) {
	_, err := s.Lookup(ctx, identifier)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// LookupWithGuardian resolves an identifier together with the owning
// guardian's contact details. Contact disclosure is restricted to the owning
// guardian and administrators.
func (s *Service) LookupWithGuardian(ctx context.Context, principal requestcontext.AuthPrincipal, identifier string) (child.WithGuardian, error) {
	ctx, span := s.tracer.Start(ctx, "child.LookupWithGuardian")
	defer span.End()

	record, err := s.children.FindByIdentifierWithGuardian(ctx, identifier)
	if err != nil {
		return child.WithGuardian{}, s.translate(err, "child record not found")
	}
	if !principal.IsAdmin() && principal.UserID != record.GuardianID {
		return child.WithGuardian{}, dErrors.New(dErrors.CodeAccessDenied, "not authorized to view this record")
	}
	return record, nil
}

// VerificationPayload builds the QR code contents for an identifier.
func (s *Service) VerificationPayload(ctx context.Context, principal requestcontext.AuthPrincipal, identifier string) (Verification, error) {
	record, err := s.LookupWithGuardian(ctx, principal, identifier)
	if err != nil {
		return Verification{}, err
	}
	return Verification{
		Identifier:      record.Identifier,
		ChildName:       record.Name,
		VerificationURL: fmt.Sprintf("%s/api/identifiers/%s/validate", s.baseURL, record.Identifier),
	}, nil
}

// Regenerate replaces a child's identifier with a freshly generated one at
// the owning guardian's request. Only the owner may regenerate; admins use
// Assign instead, which leaves an attributable trail.
func (s *Service) Regenerate(ctx context.Context, principal requestcontext.AuthPrincipal, childID int64) (newIdentifier string, err error) {
	ctx, span := s.tracer.Start(ctx, "child.Regenerate", trace.WithAttributes(attribute.Int64("child.id", childID)))
	defer span.End()

	var oldIdentifier string
	err = s.withIdentifierRetry(ctx, func(ctx context.Context) error {
		return s.tx.RunInTx(ctx, func(ctx context.Context) error {
			record, err := s.children.FindByID(ctx, childID)
			if err != nil {
				return s.translate(err, "child record not found")
			}
			if record.GuardianID != principal.UserID {
				return dErrors.New(dErrors.CodeAccessDenied, "only the child's guardian may regenerate the identifier")
			}
			oldIdentifier = record.Identifier
			candidate := child.NewIdentifier(requestcontext.Now(ctx))
			if err := s.children.UpdateIdentifier(ctx, childID, candidate, requestcontext.Now(ctx)); err != nil {
				return err
			}
			if err := s.ledger.Append(ctx, childID, oldIdentifier, candidate, ledger.ReasonUserRequested); err != nil {
				return err
			}
			if err := s.events.Record(ctx, events.TypeIdentifierRegenerated, strconv.FormatInt(childID, 10), regeneratedPayload{
				OldIdentifier: oldIdentifier,
				NewIdentifier: candidate,
				RequestedBy:   principal.UserID,
				Device:        requestcontext.DeviceLabel(ctx),
			}); err != nil {
				return err
			}
			newIdentifier = candidate
			return nil
		})
	})
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, oldIdentifier, newIdentifier)
	}
	if s.metrics != nil {
		s.metrics.Regenerations.Inc()
	}
	s.logger.InfoContext(ctx, "identifier regenerated",
		"child_id", childID,
		"requested_by", principal.UserID,
	)
	return newIdentifier, nil
}

// Assign moves a child record to a new guardian, optionally overwriting its
// identifier. Admin-only (enforced at the router). The target child is named
// by exactly one of input.ChildID or input.Identifier.
func (s *Service) Assign(ctx context.Context, principal requestcontext.AuthPrincipal, input AssignInput) (AssignResult, error) {
	ctx, span := s.tracer.Start(ctx, "child.Assign")
	defer span.End()

	if err := input.validate(); err != nil {
		return AssignResult{}, err
	}

	var result AssignResult
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		record, err := s.resolveTarget(ctx, input)
		if err != nil {
			return err
		}

		target, err := s.guardians.FindByID(ctx, input.GuardianID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return s.translate(err, "target user not found")
		}
		if err != nil || !target.Active {
			return dErrors.New(dErrors.CodeNotFound, "target user not found")
		}

		now := requestcontext.Now(ctx)
		result = AssignResult{
			ChildID:       record.ID,
			OldGuardianID: record.GuardianID,
			NewGuardianID: input.GuardianID,
			OldIdentifier: record.Identifier,
			NewIdentifier: record.Identifier,
		}

		// Identifier checks run before the guardian write so a rejected
		// identifier leaves the record untouched even without rollback.
		if input.NewIdentifier != nil && *input.NewIdentifier != "" && *input.NewIdentifier != record.Identifier {
			requested := *input.NewIdentifier
			inUse, err := s.children.IdentifierInUse(ctx, requested, record.ID)
			if err != nil {
				return s.translate(err, "child record not found")
			}
			if inUse {
				return dErrors.New(dErrors.CodeValidation, "requested identifier already in use")
			}
			if err := s.children.UpdateIdentifier(ctx, record.ID, requested, now); err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					return dErrors.New(dErrors.CodeValidation, "requested identifier already in use")
				}
				return s.translate(err, "child record not found")
			}
			if err := s.ledger.Append(ctx, record.ID, record.Identifier, requested, ledger.ReasonAdminReassignment); err != nil {
				return err
			}
			result.NewIdentifier = requested
		}

		if err := s.children.UpdateGuardian(ctx, record.ID, input.GuardianID, now); err != nil {
			return s.translate(err, "child record not found")
		}

		return s.events.Record(ctx, events.TypeChildAssigned, strconv.FormatInt(record.ID, 10), assignedPayload{
			OldGuardianID: result.OldGuardianID,
			NewGuardianID: result.NewGuardianID,
			OldIdentifier: result.OldIdentifier,
			NewIdentifier: result.NewIdentifier,
			AssignedBy:    principal.UserID,
		})
	})
	if err != nil {
		return AssignResult{}, s.wrapInternal(err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, result.OldIdentifier, result.NewIdentifier)
	}
	if s.metrics != nil {
		s.metrics.AdminReassignments.Inc()
	}
	s.logger.InfoContext(ctx, "child reassigned",
		"child_id", result.ChildID,
		"old_guardian_id", result.OldGuardianID,
		"new_guardian_id", result.NewGuardianID,
		"identifier_changed", result.OldIdentifier != result.NewIdentifier,
		"assigned_by", principal.UserID,
	)
	return result, nil
}

func (in AssignInput) validate() error {
	hasID := in.ChildID != nil && *in.ChildID > 0
	hasIdentifier := in.Identifier != nil && *in.Identifier != ""
	if hasID == hasIdentifier {
		return dErrors.New(dErrors.CodeValidation, "exactly one of child_id or identifier is required")
	}
	if in.GuardianID <= 0 {
		return dErrors.New(dErrors.CodeValidation, "guardian_id is required")
	}
	return nil
}

func (s *Service) resolveTarget(ctx context.Context, input AssignInput) (child.Record, error) {
	if input.ChildID != nil && *input.ChildID > 0 {
		record, err := s.children.FindByID(ctx, *input.ChildID)
		if err != nil {
			return child.Record{}, s.translate(err, "child record not found")
		}
		return record, nil
	}
	record, err := s.children.FindByIdentifier(ctx, *input.Identifier)
	if err != nil {
		return child.Record{}, s.translate(err, "child record not found")
	}
	return record, nil
}

// History returns the child's identifier change trail, newest-first. Visible
// to the owning guardian and administrators.
func (s *Service) History(ctx context.Context, principal requestcontext.AuthPrincipal, childID int64) ([]ledger.Entry, error) {
	ctx, span := s.tracer.Start(ctx, "child.History", trace.WithAttributes(attribute.Int64("child.id", childID)))
	defer span.End()

	record, err := s.children.FindByID(ctx, childID)
	if err != nil {
		return nil, s.translate(err, "child record not found")
	}
	if !principal.IsAdmin() && principal.UserID != record.GuardianID {
		return nil, dErrors.New(dErrors.CodeAccessDenied, "not authorized to view this record")
	}
	return s.ledger.ListFor(ctx, childID)
}

// Deactivate soft-deletes a child record. The identifier stays reserved so it
// can never be reissued to another child.
func (s *Service) Deactivate(ctx context.Context, principal requestcontext.AuthPrincipal, childID int64) error {
	ctx, span := s.tracer.Start(ctx, "child.Deactivate", trace.WithAttributes(attribute.Int64("child.id", childID)))
	defer span.End()

	var identifier string
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		record, err := s.children.FindByID(ctx, childID)
		if err != nil {
			return s.translate(err, "child record not found")
		}
		if !principal.IsAdmin() && principal.UserID != record.GuardianID {
			return dErrors.New(dErrors.CodeAccessDenied, "not authorized to delete this record")
		}
		identifier = record.Identifier
		if err := s.children.Deactivate(ctx, childID, requestcontext.Now(ctx)); err != nil {
			return s.translate(err, "child record not found")
		}
		return s.events.Record(ctx, events.TypeChildDeactivated, strconv.FormatInt(childID, 10), deactivatedPayload{
			Identifier:    identifier,
			DeactivatedBy: principal.UserID,
		})
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, identifier)
	}
	return nil
}

// ListAllForAdmin returns every active record with guardian contact details.
func (s *Service) ListAllForAdmin(ctx context.Context) ([]child.AdminListing, error) {
	return s.children.ListForAdmin(ctx)
}

// withIdentifierRetry reruns fn while the identifier unique constraint
// rejects it, up to maxGenerationAttempts. Each attempt runs in its own
// transaction since a constraint violation aborts the current one.
func (s *Service) withIdentifierRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxGenerationAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sentinel.ErrConflict) {
			return s.wrapInternal(err)
		}
		if s.metrics != nil {
			s.metrics.CollisionRetries.Inc()
		}
		s.logger.WarnContext(ctx, "identifier collision, retrying", "attempt", attempt)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "could not allocate a unique identifier")
}

func (s *Service) notifyRegistered(ctx context.Context, recipient string, record child.Record) {
	if s.notifier == nil || recipient == "" {
		return
	}
	subject := "Child registered"
	text := fmt.Sprintf("%s has been registered. Unique identifier: %s. Keep this identifier for clinic visits.", record.Name, record.Identifier)
	html := fmt.Sprintf("<p>%s has been registered.</p><p>Unique identifier: <strong>%s</strong></p><p>Keep this identifier for clinic visits.</p>", record.Name, record.Identifier)
	if ok := s.notifier.Send(ctx, recipient, subject, html, text); !ok {
		if s.metrics != nil {
			s.metrics.NotificationFailures.Inc()
		}
		s.logger.WarnContext(ctx, "registration notification failed", "child_id", record.ID)
	}
}

func (s *Service) lookupOutcome(outcome string) {
	if s.metrics != nil {
		s.metrics.IdentifierLookups.WithLabelValues(outcome).Inc()
	}
}
