package lookup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"qrzbuddy/internal/qrz"
)

var testNow = time.Date(2025, time.November, 16, 5, 0, 0, 0, time.UTC)

const (
	freshExpiration = "2025-11-17T04:13:46Z"
	staleExpiration = "2025-11-15T04:13:46Z"
)

func sessionTimeout() error {
	return &qrz.Error{Kind: qrz.KindAuthentication, Message: "Session Timeout"}
}

func notFound(term string) error {
	return &qrz.Error{Kind: qrz.KindNotFound, Message: "Not found: " + term}
}

// fakeClient stands in for *qrz.Client. `lookup` decides the outcome of
// every fetch, a nil error is a success.
type fakeClient struct {
	mutex      sync.Mutex
	session    qrz.Session
	calls      []string
	tokenCalls int

	fetchToken func(username, password string) (qrz.Session, error)
	lookup     func(kind, term string, session qrz.Session) error
}

func newFakeClient(lookup func(kind, term string, session qrz.Session) error) *fakeClient {
	return &fakeClient{
		lookup: lookup,
		fetchToken: func(username, password string) (qrz.Session, error) {
			return qrz.Session{Username: username, Key: "fresh-key", Expiration: freshExpiration}, nil
		},
	}
}

func (c *fakeClient) FetchToken(ctx context.Context, username, password string) (qrz.Session, error) {
	c.mutex.Lock()
	c.tokenCalls++
	c.calls = append(c.calls, "token")
	fetchToken := c.fetchToken
	c.mutex.Unlock()

	session, err := fetchToken(username, password)
	if err != nil {
		return qrz.Session{}, err
	}

	c.mutex.Lock()
	c.session = session
	c.mutex.Unlock()
	return session, nil
}

func (c *fakeClient) fetch(kind, term string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.calls = append(c.calls, fmt.Sprintf("%s:%s", kind, term))
	return c.lookup(kind, term, c.session)
}

func (c *fakeClient) FetchCallsign(ctx context.Context, term string) (qrz.Callsign, error) {
	err := c.fetch("callsign", term)
	if err != nil {
		return qrz.Callsign{}, err
	}
	return qrz.Callsign{Call: term}, nil
}

func (c *fakeClient) FetchDXCC(ctx context.Context, term string) (qrz.DXCC, error) {
	err := c.fetch("dxcc", term)
	if err != nil {
		return qrz.DXCC{}, err
	}
	return qrz.DXCC{Dxcc: term}, nil
}

func (c *fakeClient) FetchBio(ctx context.Context, term string) (string, error) {
	err := c.fetch("bio", term)
	if err != nil {
		return "", err
	}
	return "<p>" + term + "</p>", nil
}

func (c *fakeClient) TokenIsValid() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.session.Valid(testNow)
}

func (c *fakeClient) SetSession(session qrz.Session) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.session = session
}

func (c *fakeClient) Session() qrz.Session {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.session
}

func (c *fakeClient) callLog() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return append([]string(nil), c.calls...)
}

func (c *fakeClient) fetchCount(kind, term string) int {
	n := 0
	for _, call := range c.callLog() {
		if call == kind+":"+term {
			n++
		}
	}
	return n
}

func (c *fakeClient) tokenCount() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.tokenCalls
}

type fakeReporter struct {
	mutex             sync.Mutex
	reports           []string
	credentialsNeeded int
}

func (r *fakeReporter) DisplayError(report string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, report)
}

func (r *fakeReporter) CredentialsNeeded() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.credentialsNeeded++
}

type fakePrompter struct {
	username string
	password string
	err      error
	prompts  int
}

func (p *fakePrompter) PromptUsername(ctx context.Context) (string, error) {
	p.prompts++
	return p.username, p.err
}

func (p *fakePrompter) PromptPassword(ctx context.Context, username string) (string, error) {
	p.prompts++
	return p.password, p.err
}
