package qrz

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"qrzbuddy/internal/components/assert"
	"qrzbuddy/internal/components/chrono"
	"qrzbuddy/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("qrzbuddy/qrz")

const DefaultEndpoint = "https://xmldata.qrz.com/xml/current/"

// the provider does not report how long a key lives, keys are good for a day
const DefaultSessionLifetime = 24 * time.Hour

// provider timestamp layout, e.g. "Sun Nov 16 04:13:46 2012"
const gmTimeLayout = time.ANSIC

const (
	report_client_fetch_token    = "client.fetch-token"
	report_client_fetch_callsign = "client.fetch-callsign"
	report_client_fetch_dxcc     = "client.fetch-dxcc"
	report_client_fetch_bio      = "client.fetch-bio"
)

type ClientOptions struct {
	// Endpoint defaults to DefaultEndpoint.
	Endpoint string
	// Agent identifies this program to the provider.
	Agent string
	// Timeout bounds each request, zero means no timeout.
	Timeout time.Duration
	// RequestsPerSecond limits the request rate, zero disables the limit.
	RequestsPerSecond float64
	// SessionLifetime defaults to DefaultSessionLifetime.
	SessionLifetime time.Duration
}

// Client maps the provider's XML API onto typed calls. It never retries,
// the only state it keeps between calls is the current Session.
type Client struct {
	http     *resty.Client
	tel      telemetry.API
	time     chrono.TimeAPI
	endpoint string
	agent    string
	lifetime time.Duration

	mutex   sync.RWMutex
	session Session
}

func NewClient(opts ClientOptions, tel telemetry.API, clock chrono.TimeAPI) (*Client, error) {
	assert.NotNil(tel)
	assert.NotNil(clock)

	tel = telemetry.NewScopedAPI("qrz", tel)

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, fmt.Errorf("invalid endpoint %q: must be an absolute http(s) url", endpoint)
	}
	lifetime := opts.SessionLifetime
	if lifetime <= 0 {
		lifetime = DefaultSessionLifetime
	}

	httpClient := resty.New()
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	if opts.Agent != "" {
		httpClient.SetHeader("user-agent", opts.Agent)
	}
	telemetry.InstrumentResty(httpClient, tel)

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	return &Client{
		http:     httpClient,
		tel:      tel,
		time:     clock,
		endpoint: endpoint,
		agent:    opts.Agent,
		lifetime: lifetime,
	}, nil
}

// Session returns a copy of the current session.
func (c *Client) Session() Session {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.session
}

// SetSession replaces the current session, no validation is performed.
func (c *Client) SetSession(session Session) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.session = session
}

// TokenIsValid reports whether the current session is usable right now.
func (c *Client) TokenIsValid() bool {
	return c.Session().Valid(c.time.Now())
}

func (c *Client) get(ctx context.Context, params map[string]string) ([]byte, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(c.endpoint)
	if err != nil {
		return nil, transportError("request failed", telemetry.RedactError(err))
	}
	if res.IsError() {
		return nil, transportError(fmt.Sprintf("unexpected status %s", res.Status()), nil)
	}
	return res.Body(), nil
}

func (c *Client) sessionKey() (string, error) {
	key := c.Session().Key
	if key == "" {
		return "", authError("no active session")
	}
	return key, nil
}

func failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// expiration derives the session expiration from the provider clock when
// it reports one, falling back to the local clock.
func (c *Client) expiration(gmTime string) time.Time {
	issued, err := time.ParseInLocation(gmTimeLayout, strings.TrimSpace(gmTime), time.UTC)
	if err != nil {
		issued = c.time.Now()
	}
	return issued.Add(c.lifetime).UTC()
}

// FetchToken exchanges credentials for a new session, which also becomes
// the client's current session.
func (c *Client) FetchToken(ctx context.Context, username, password string) (Session, error) {
	ctx, span := tracer.Start(ctx, "client:FetchToken")
	defer span.End()

	body, err := c.get(ctx, map[string]string{
		"username": username,
		"password": password,
		"agent":    c.agent,
	})
	if err != nil {
		failSpan(span, err)
		c.tel.ReportBroken(report_client_fetch_token, err)
		return Session{}, err
	}

	block, err := ParseSession(body)
	if KindOf(err) == KindNotFound {
		// any provider error on the exchange means the credentials were refused
		err = authError(err.Error())
	}
	if err == nil && block.Key == "" {
		err = authError("no session key in response")
	}
	if err != nil {
		failSpan(span, err)
		c.tel.ReportWarning(report_client_fetch_token, err)
		return Session{}, err
	}

	session := Session{
		Username:   username,
		Key:        block.Key,
		Expiration: c.expiration(block.GMTime).Format(ExpirationLayout),
	}
	c.SetSession(session)
	c.tel.ReportDebug(report_client_fetch_token, "session renewed", session.Expiration)

	return session, nil
}

// fetchRecord performs one keyed lookup and hands the body to parse.
func fetchRecord[T any](
	ctx context.Context,
	c *Client,
	spanName,
	reportId,
	param,
	term string,
	parse func([]byte) (T, error),
) (T, error) {
	var empty T

	ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("qrz.term", term),
	))
	defer span.End()

	key, err := c.sessionKey()
	if err != nil {
		failSpan(span, err)
		return empty, err
	}

	body, err := c.get(ctx, map[string]string{
		"s":   key,
		param: term,
	})
	if err != nil {
		failSpan(span, err)
		c.tel.ReportBroken(reportId, term, err)
		return empty, err
	}

	record, err := parse(body)
	if err != nil {
		failSpan(span, err)
		if KindOf(err) == KindTransport {
			c.tel.ReportBroken(reportId, term, err)
		}
		return empty, err
	}
	return record, nil
}

// FetchCallsign looks up a single callsign with the current session.
func (c *Client) FetchCallsign(ctx context.Context, term string) (Callsign, error) {
	return fetchRecord(ctx, c, "client:FetchCallsign", report_client_fetch_callsign, "callsign", term, ParseCallsign)
}

// FetchDXCC looks up a single DXCC entity with the current session.
func (c *Client) FetchDXCC(ctx context.Context, term string) (DXCC, error) {
	return fetchRecord(ctx, c, "client:FetchDXCC", report_client_fetch_dxcc, "dxcc", term, ParseDXCC)
}

// FetchBio returns the provider formatted bio markup for a callsign, verbatim.
func (c *Client) FetchBio(ctx context.Context, term string) (string, error) {
	return fetchRecord(ctx, c, "client:FetchBio", report_client_fetch_bio, "html", term, ParseBio)
}
