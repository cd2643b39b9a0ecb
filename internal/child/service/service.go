// Package service orchestrates the unique identifier lifecycle: registration,
// lookup/validation, self-service regeneration, administrative reassignment,
// and soft deletion. Every mutation that touches an identifier runs in a
// single transaction spanning the child record, the history ledger, and the
// event outbox, so a committed change always has its audit trail.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"cradle/internal/child"
	"cradle/internal/events"
	"cradle/internal/guardian"
	"cradle/internal/ledger"
	"cradle/internal/notify"
	"cradle/internal/platform/metrics"
	dErrors "cradle/pkg/domainerrors"
	"cradle/pkg/platform/sentinel"
)

// maxGenerationAttempts bounds retries when a freshly generated identifier
// loses the race against the unique constraint. With 32 bits of suffix
// entropy three attempts is already absurdly generous.
const maxGenerationAttempts = 3

// TxRunner runs a function inside one database transaction, threading the
// transaction through context for the stores.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// NopTx runs the function without a transaction. Used with the in-memory
// stores, which apply each write atomically on their own.
type NopTx struct{}

func (NopTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// LookupCache fronts identifier reads. All methods are best-effort.
type LookupCache interface {
	Get(ctx context.Context, identifier string) (child.Record, bool)
	Set(ctx context.Context, identifier string, record child.Record)
	Invalidate(ctx context.Context, identifiers ...string)
}

// Config collects the service's collaborators. Cache and Notifier are
// optional; everything else is required.
type Config struct {
	Children  child.Store
	Guardians guardian.Directory
	Ledger    *ledger.Service
	Events    events.Recorder
	Notifier  notify.Notifier
	Cache     LookupCache
	Tx        TxRunner
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	BaseURL   string
}

type Service struct {
	children  child.Store
	guardians guardian.Directory
	ledger    *ledger.Service
	events    events.Recorder
	notifier  notify.Notifier
	cache     LookupCache
	tx        TxRunner
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	baseURL   string
}

func New(cfg Config) *Service {
	return &Service{
		children:  cfg.Children,
		guardians: cfg.Guardians,
		ledger:    cfg.Ledger,
		events:    cfg.Events,
		notifier:  cfg.Notifier,
		cache:     cfg.Cache,
		tx:        cfg.Tx,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		tracer:    otel.Tracer("cradle/child"),
		baseURL:   cfg.BaseURL,
	}
}

// RegisterInput carries everything needed to create a child record.
type RegisterInput struct {
	Name          string
	BirthDate     time.Time
	Gender        string
	WeightAtBirth *float64
	HeightAtBirth *float64
	BloodType     *string
	Notes         string
	GuardianID    int64
}

// AssignInput references the target child by exactly one of ChildID or
// Identifier and names the guardian the record moves to. NewIdentifier is
// optional.
type AssignInput struct {
	ChildID       *int64
	Identifier    *string
	GuardianID    int64
	NewIdentifier *string
}

// AssignResult reports what an administrative reassignment changed.
type AssignResult struct {
	ChildID       int64
	OldGuardianID int64
	NewGuardianID int64
	OldIdentifier string
	NewIdentifier string
}

// Verification is the payload QR codes are rendered from.
type Verification struct {
	Identifier      string
	ChildName       string
	VerificationURL string
}

func (s *Service) translate(err error, notFoundMsg string) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return s.wrapInternal(err)
}

// wrapInternal passes coded errors through untouched and hides everything
// else behind an internal storage failure. Unlike translate it attaches no
// not-found message, for call sites where the operation's own wording has
// already been applied.
func (s *Service) wrapInternal(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
}
