package lookup

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"qrzbuddy/internal/components/assert"
	"qrzbuddy/internal/components/telemetry"
	"qrzbuddy/internal/qrz"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("qrzbuddy/lookup")

// DefaultRetryCeiling is how many consecutive authentication failures
// trigger a refresh before a term is given up on.
const DefaultRetryCeiling = 4

const (
	report_orchestrator_initialize = "orchestrator.initialize"
	report_orchestrator_batch      = "orchestrator.batch"
	report_orchestrator_refresh    = "orchestrator.refresh"
)

// Client is the API client the orchestrator drives.
type Client interface {
	TokenClient
	FetchCallsign(ctx context.Context, term string) (qrz.Callsign, error)
	FetchDXCC(ctx context.Context, term string) (qrz.DXCC, error)
	FetchBio(ctx context.Context, term string) (string, error)
	TokenIsValid() bool
	SetSession(session qrz.Session)
}

// Reporter is the record consumer's notification side. It receives the
// aggregated error report once per batch, and the credentials needed signal.
type Reporter interface {
	DisplayError(report string)
	CredentialsNeeded()
}

type Options struct {
	// RetryCeiling defaults to DefaultRetryCeiling.
	RetryCeiling int
	// ContinueWithoutCredentials keeps a batch going when credentials are
	// unavailable, letting each term run into the retry ceiling instead of
	// stopping the batch.
	ContinueWithoutCredentials bool
}

// Orchestrator drives batches of terms through the API client. Batches
// run one at a time; the InvalidTermSet lives as long as the orchestrator.
type Orchestrator struct {
	client    Client
	store     ConfigStore
	refresher *Refresher
	reporter  Reporter
	tel       telemetry.API
	opts      Options

	invalid *InvalidTermSet
	batch   sync.Mutex
	// consecutive authentication failures, only a successful fetch resets
	// it, guarded by batch
	failures int
}

// NewOrchestrator wires an orchestrator, `prompt` and `reporter` may be nil.
func NewOrchestrator(
	client Client,
	store ConfigStore,
	prompt Prompter,
	reporter Reporter,
	tel telemetry.API,
	opts Options,
) *Orchestrator {
	assert.NotNil(client)
	assert.NotNil(store)
	assert.NotNil(tel)

	if opts.RetryCeiling <= 0 {
		opts.RetryCeiling = DefaultRetryCeiling
	}

	return &Orchestrator{
		client:    client,
		store:     store,
		refresher: NewRefresher(client, store, prompt, tel),
		reporter:  reporter,
		tel:       telemetry.NewScopedAPI("lookup", tel),
		opts:      opts,
		invalid:   newInvalidTermSet(),
	}
}

// Invalid exposes the set of terms known to have no record.
func (o *Orchestrator) Invalid() *InvalidTermSet {
	return o.invalid
}

// Initialize loads the stored session into the client.
func (o *Orchestrator) Initialize(ctx context.Context) error {
	username, err := o.store.Username(ctx)
	if err != nil {
		o.tel.ReportBroken(report_orchestrator_initialize, err)
		return fmt.Errorf("read username: %w", err)
	}
	key, err := o.store.SessionKey(ctx)
	if err != nil {
		o.tel.ReportBroken(report_orchestrator_initialize, err)
		return fmt.Errorf("read session key: %w", err)
	}
	expiration, err := o.store.SessionExpiration(ctx)
	if err != nil {
		o.tel.ReportBroken(report_orchestrator_initialize, err)
		return fmt.Errorf("read session expiration: %w", err)
	}

	o.client.SetSession(qrz.Session{
		Username:   username,
		Key:        key,
		Expiration: expiration,
	})
	return nil
}

// RefreshToken obtains a new session outside of a batch.
func (o *Orchestrator) RefreshToken(ctx context.Context) error {
	err := o.refresher.Refresh(ctx)
	if errors.Is(err, ErrCredentialsNeeded) && o.reporter != nil {
		o.reporter.CredentialsNeeded()
	}
	return err
}

// Login replaces the stored credentials with `username` and `password`
// once the provider accepts them. A refused login changes nothing.
func (o *Orchestrator) Login(ctx context.Context, username, password string) error {
	return o.refresher.Login(ctx, username, password)
}

// FetchCallsignRecords looks up every term as a callsign.
func (o *Orchestrator) FetchCallsignRecords(ctx context.Context, terms []SearchTerm) Result[qrz.Callsign] {
	return runBatch(ctx, o, "callsign", namespaceCallsign, terms, o.client.FetchCallsign)
}

// FetchDXCCRecords looks up every term as a DXCC entity.
func (o *Orchestrator) FetchDXCCRecords(ctx context.Context, terms []SearchTerm) Result[qrz.DXCC] {
	return runBatch(ctx, o, "dxcc", namespaceDXCC, terms, o.client.FetchDXCC)
}

// FetchBios fetches the bio markup of every term. Bios share the callsign
// namespace of the invalid term set.
func (o *Orchestrator) FetchBios(ctx context.Context, terms []SearchTerm) Result[string] {
	return runBatch(ctx, o, "bio", namespaceCallsign, terms, o.client.FetchBio)
}

// refresh reports whether the batch has to stop.
func (o *Orchestrator) refresh(ctx context.Context, credentialsNeeded *bool) (stop bool) {
	err := o.refresher.Refresh(ctx)
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCredentialsNeeded) {
		*credentialsNeeded = true
		return !o.opts.ContinueWithoutCredentials
	}
	o.tel.ReportWarning(report_orchestrator_refresh, err)
	return false
}

func runBatch[T any](
	ctx context.Context,
	o *Orchestrator,
	kind string,
	ns namespace,
	terms []SearchTerm,
	fetch func(ctx context.Context, term string) (T, error),
) Result[T] {
	o.batch.Lock()
	defer o.batch.Unlock()

	ctx, span := tracer.Start(ctx, "orchestrator:"+kind, trace.WithAttributes(
		attribute.Int("lookup.terms", len(terms)),
	))
	defer span.End()

	var result Result[T]

	if !o.client.TokenIsValid() && o.refresh(ctx, &result.CredentialsNeeded) {
		result.Unresolved = append(result.Unresolved, terms...)
		o.finish(span, kind, result.Report(), len(result.Resolved), result.Errors, result.CredentialsNeeded)
		return result
	}

	i := 0
	for i < len(terms) {
		if ctx.Err() != nil {
			result.Unresolved = append(result.Unresolved, terms[i:]...)
			break
		}

		term := terms[i]
		if o.invalid.contains(ns, term) {
			result.Skipped = append(result.Skipped, term)
			i++
			continue
		}

		record, err := fetch(ctx, string(term))
		if err == nil {
			result.Records = append(result.Records, record)
			result.Resolved = append(result.Resolved, term)
			o.failures = 0
			i++
			continue
		}

		switch qrz.KindOf(err) {
		case qrz.KindAuthentication:
			if o.failures < o.opts.RetryCeiling {
				// the term is retried, not advanced past
				o.failures++
				if o.refresh(ctx, &result.CredentialsNeeded) {
					result.Unresolved = append(result.Unresolved, terms[i:]...)
					i = len(terms)
				}
				continue
			}
			result.Errors = append(result.Errors, TermError{
				Term:    term,
				Kind:    qrz.KindAuthentication,
				Message: fmt.Sprintf("QRZ API Error: %s", err.Error()),
			})
		case qrz.KindNotFound:
			if o.invalid.add(ns, term) {
				result.Errors = append(result.Errors, TermError{
					Term:    term,
					Kind:    qrz.KindNotFound,
					Message: err.Error(),
				})
			} else {
				result.Skipped = append(result.Skipped, term)
			}
		default:
			result.Errors = append(result.Errors, TermError{
				Term:    term,
				Kind:    qrz.KindTransport,
				Message: err.Error(),
			})
		}
		i++
	}

	o.finish(span, kind, result.Report(), len(result.Resolved), result.Errors, result.CredentialsNeeded)
	return result
}

func (o *Orchestrator) finish(span trace.Span, kind, report string, resolved int, errs []TermError, credentialsNeeded bool) {
	span.SetAttributes(
		attribute.Int("lookup.resolved", resolved),
		attribute.Int("lookup.errors", len(errs)),
	)
	o.tel.ReportCount(fmt.Sprintf("%s.%s.resolved", report_orchestrator_batch, kind), int64(resolved))
	o.tel.ReportCount(fmt.Sprintf("%s.%s.errors", report_orchestrator_batch, kind), int64(len(errs)))

	if credentialsNeeded {
		span.SetStatus(codes.Error, ErrCredentialsNeeded.Error())
		if o.reporter != nil {
			o.reporter.CredentialsNeeded()
		}
	}
	if len(errs) > 0 && o.reporter != nil {
		o.reporter.DisplayError(report)
	}
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
