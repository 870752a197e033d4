package lookup

import (
	"context"
	"errors"
	"fmt"

	"qrzbuddy/internal/components/assert"
	"qrzbuddy/internal/components/telemetry"
	"qrzbuddy/internal/qrz"

	"golang.org/x/sync/singleflight"
)

// ErrCredentialsNeeded is returned when no username or password is
// available and none could be obtained from the Prompter.
var ErrCredentialsNeeded = errors.New("credentials needed")

// ErrPromptDeclined is what a Prompter returns when the user cancels.
var ErrPromptDeclined = errors.New("prompt declined")

const (
	report_refresher_refresh = "refresher.refresh"
	report_refresher_login   = "refresher.login"
)

// ConfigStore is the external configuration collaborator that persists
// credentials and the current session.
type ConfigStore interface {
	Username(ctx context.Context) (string, error)
	Password(ctx context.Context) (string, error)
	SessionKey(ctx context.Context) (string, error)
	SessionExpiration(ctx context.Context) (string, error)

	SetUsername(ctx context.Context, username string) error
	SetPassword(ctx context.Context, password string) error
	SetSessionKey(ctx context.Context, key string) error
	SetSessionExpiration(ctx context.Context, expiration string) error

	HasSessionKey(ctx context.Context) (bool, error)
	HasSessionExpiration(ctx context.Context) (bool, error)
}

// Prompter obtains credentials from the user when the store has none.
type Prompter interface {
	PromptUsername(ctx context.Context) (string, error)
	PromptPassword(ctx context.Context, username string) (string, error)
}

// TokenClient is the part of the API client the refresh flow needs.
type TokenClient interface {
	FetchToken(ctx context.Context, username, password string) (qrz.Session, error)
}

// Refresher exchanges stored (or prompted) credentials for a new session
// and writes the result through to the ConfigStore.
//
// Concurrent calls to Refresh share a single exchange and all receive its
// result.
type Refresher struct {
	client TokenClient
	store  ConfigStore
	prompt Prompter
	tel    telemetry.API
	group  singleflight.Group
}

// NewRefresher creates a Refresher, `prompt` may be nil in which case
// missing credentials always yield ErrCredentialsNeeded.
func NewRefresher(client TokenClient, store ConfigStore, prompt Prompter, tel telemetry.API) *Refresher {
	assert.NotNil(client)
	assert.NotNil(store)
	assert.NotNil(tel)

	return &Refresher{
		client: client,
		store:  store,
		prompt: prompt,
		tel:    telemetry.NewScopedAPI("lookup", tel),
	}
}

// Refresh obtains a new session. It does not touch the network when
// credentials are unavailable.
func (r *Refresher) Refresh(ctx context.Context) error {
	_, err, _ := r.group.Do("refresh", func() (any, error) {
		return nil, r.refresh(ctx)
	})
	return err
}

// Login exchanges the given credentials for a session. The credentials
// are stored only once the provider accepts them, so a refused login keeps
// whatever was stored before.
func (r *Refresher) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return ErrCredentialsNeeded
	}
	_, err, _ := r.group.Do("login", func() (any, error) {
		return nil, r.login(ctx, username, password)
	})
	return err
}

func (r *Refresher) login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "refresher:Login")
	defer span.End()

	session, err := r.client.FetchToken(ctx, username, password)
	if err != nil {
		failSpan(span, err)
		r.tel.ReportWarning(report_refresher_login, username, err)
		return err
	}

	err = errors.Join(
		r.store.SetPassword(ctx, password),
		r.persist(ctx, session),
	)
	if err != nil {
		failSpan(span, err)
		r.tel.ReportBroken(report_refresher_login, err)
		return err
	}
	return nil
}

func (r *Refresher) persist(ctx context.Context, session qrz.Session) error {
	err := errors.Join(
		r.store.SetUsername(ctx, session.Username),
		r.store.SetSessionKey(ctx, session.Key),
		r.store.SetSessionExpiration(ctx, session.Expiration),
	)
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (r *Refresher) credentials(ctx context.Context) (string, string, error) {
	username, err := r.store.Username(ctx)
	if err != nil {
		return "", "", fmt.Errorf("read username: %w", err)
	}
	if username == "" && r.prompt != nil {
		username, err = r.prompt.PromptUsername(ctx)
		if err != nil {
			return "", "", fmt.Errorf("%w: %w", ErrCredentialsNeeded, err)
		}
		if username != "" {
			err = r.store.SetUsername(ctx, username)
			if err != nil {
				return "", "", fmt.Errorf("store username: %w", err)
			}
		}
	}
	if username == "" {
		return "", "", ErrCredentialsNeeded
	}

	password, err := r.store.Password(ctx)
	if err != nil {
		return "", "", fmt.Errorf("read password: %w", err)
	}
	if password == "" && r.prompt != nil {
		password, err = r.prompt.PromptPassword(ctx, username)
		if err != nil {
			return "", "", fmt.Errorf("%w: %w", ErrCredentialsNeeded, err)
		}
		if password != "" {
			err = r.store.SetPassword(ctx, password)
			if err != nil {
				return "", "", fmt.Errorf("store password: %w", err)
			}
		}
	}
	if password == "" {
		return "", "", ErrCredentialsNeeded
	}

	return username, password, nil
}

func (r *Refresher) refresh(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "refresher:Refresh")
	defer span.End()

	username, password, err := r.credentials(ctx)
	if err != nil {
		failSpan(span, err)
		if !errors.Is(err, ErrCredentialsNeeded) {
			r.tel.ReportBroken(report_refresher_refresh, err)
		}
		return err
	}

	session, err := r.client.FetchToken(ctx, username, password)
	if err != nil {
		failSpan(span, err)
		r.tel.ReportWarning(report_refresher_refresh, username, err)
		return err
	}

	err = r.persist(ctx, session)
	if err != nil {
		failSpan(span, err)
		r.tel.ReportBroken(report_refresher_refresh, err)
		return err
	}

	return nil
}
