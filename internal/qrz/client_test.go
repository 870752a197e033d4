package qrz

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"qrzbuddy/internal/components/chrono"
	"qrzbuddy/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

// fakeProvider answers like the provider would, keyed on the query.
type fakeProvider struct {
	mutex    sync.Mutex
	requests []map[string]string
	handle   func(query map[string]string) (int, []byte)
}

func (f *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := map[string]string{}
	for key := range r.URL.Query() {
		query[key] = r.URL.Query().Get(key)
	}

	f.mutex.Lock()
	f.requests = append(f.requests, query)
	f.mutex.Unlock()

	status, body := f.handle(query)
	w.WriteHeader(status)
	w.Write(body)
}

func (f *fakeProvider) count() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.requests)
}

func setupClient(t testing.TB, handle func(query map[string]string) (int, []byte)) (*Client, *fakeProvider, chrono.FixedTime) {
	provider := &fakeProvider{handle: handle}
	server := httptest.NewServer(provider)
	t.Cleanup(server.Close)

	clock := chrono.NewFixedTime(time.Date(2025, time.November, 16, 5, 0, 0, 0, time.UTC))
	client, err := NewClient(ClientOptions{
		Endpoint: server.URL + "/xml/current/",
		Agent:    "qrzbuddy-test",
		Timeout:  time.Second * 5,
	}, &telemetry.Recorder{}, clock)
	require.NoError(t, err)

	return client, provider, clock
}

func TestNewClientRejectsRelativeEndpoint(t *testing.T) {
	_, err := NewClient(ClientOptions{Endpoint: "xml/current"}, &telemetry.Recorder{}, chrono.NewStandardTime())
	require.Error(t, err)
}

func TestFetchToken(t *testing.T) {
	client, provider, clock := setupClient(t, func(query map[string]string) (int, []byte) {
		if query["username"] == "K4RWR" && query["password"] == "hunter2" {
			return http.StatusOK, loginXml
		}
		return http.StatusOK, loginRefusedXml
	})
	require.False(t, client.TokenIsValid())

	session, err := client.FetchToken(context.Background(), "K4RWR", "hunter2")
	require.NoError(t, err)
	require.Equal(t, Session{
		Username:   "K4RWR",
		Key:        "2331uf894c4bd29f3923f3bacf02c532d7bd9",
		Expiration: "2025-11-17T04:13:46Z",
	}, session)
	require.Equal(t, session, client.Session())
	require.True(t, client.TokenIsValid())
	require.Equal(t, "qrzbuddy-test", provider.requests[0]["agent"])

	clock.Set(time.Date(2025, time.November, 17, 4, 13, 47, 0, time.UTC))
	require.False(t, client.TokenIsValid())
}

func TestFetchTokenRefused(t *testing.T) {
	client, _, _ := setupClient(t, func(query map[string]string) (int, []byte) {
		return http.StatusOK, loginRefusedXml
	})

	_, err := client.FetchToken(context.Background(), "K4RWR", "wrong")
	require.True(t, errors.Is(err, ErrAuthentication))
	require.Equal(t, "Username/password incorrect", err.Error())
	require.Equal(t, Session{}, client.Session())
}

func TestFetchTokenTransportFailure(t *testing.T) {
	client, _, _ := setupClient(t, func(query map[string]string) (int, []byte) {
		return http.StatusBadGateway, []byte("bad gateway")
	})

	_, err := client.FetchToken(context.Background(), "K4RWR", "hunter2")
	require.True(t, errors.Is(err, ErrTransport))
}

func TestTransportFailureHidesSecrets(t *testing.T) {
	// nothing listens on a port that was just released
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	endpoint := fmt.Sprintf("http://%s/xml/current/", listener.Addr())
	require.NoError(t, listener.Close())

	rec := &telemetry.Recorder{}
	clock := chrono.NewFixedTime(time.Date(2025, time.November, 16, 5, 0, 0, 0, time.UTC))
	client, err := NewClient(ClientOptions{
		Endpoint: endpoint,
		Agent:    "qrzbuddy-test",
		Timeout:  time.Second * 5,
	}, rec, clock)
	require.NoError(t, err)

	ctx := context.Background()
	_, tokenErr := client.FetchToken(ctx, "K4RWR", "hunter2")
	require.Error(t, tokenErr)
	require.Equal(t, KindTransport, KindOf(tokenErr))
	require.NotContains(t, tokenErr.Error(), "hunter2")
	require.Contains(t, tokenErr.Error(), "password=REDACTED")

	client.SetSession(Session{Username: "K4RWR", Key: "secretkey123", Expiration: "2025-11-17T04:13:46Z"})
	_, fetchErr := client.FetchCallsign(ctx, "W1AW")
	require.Error(t, fetchErr)
	require.NotContains(t, fetchErr.Error(), "secretkey123")
	require.Contains(t, fetchErr.Error(), "s=REDACTED")

	reports := append(rec.Reports("broken", ""), rec.Reports("warning", "")...)
	reports = append(reports, rec.Reports("debug", "")...)
	require.NotEmpty(t, rec.Reports("broken", "resty.response"))
	require.NotEmpty(t, rec.Reports("broken", report_client_fetch_token))
	for _, report := range reports {
		for _, param := range report.Params {
			text := fmt.Sprint(param)
			require.False(t, strings.Contains(text, "hunter2"), "%s leaks the password: %s", report.Id, text)
			require.False(t, strings.Contains(text, "secretkey123"), "%s leaks the session key: %s", report.Id, text)
		}
	}
}

func TestFetchRecords(t *testing.T) {
	client, provider, _ := setupClient(t, func(query map[string]string) (int, []byte) {
		if query["s"] != "valid-key" {
			return http.StatusOK, invalidKeyXml
		}
		switch {
		case query["callsign"] == "W1AW":
			return http.StatusOK, callsignXml
		case query["dxcc"] == "291":
			return http.StatusOK, dxccXml
		case query["html"] == "W1AW":
			return http.StatusOK, bioHtml
		}
		return http.StatusOK, notFoundXml
	})
	ctx := context.Background()

	// no session: nothing is sent
	_, err := client.FetchCallsign(ctx, "W1AW")
	require.True(t, errors.Is(err, ErrAuthentication))
	require.Equal(t, 0, provider.count())

	client.SetSession(Session{Username: "K4RWR", Key: "stale-key", Expiration: "2030-01-01T00:00:00Z"})
	_, err = client.FetchCallsign(ctx, "W1AW")
	require.True(t, errors.Is(err, ErrAuthentication))

	client.SetSession(Session{Username: "K4RWR", Key: "valid-key", Expiration: "2030-01-01T00:00:00Z"})

	callsign, err := client.FetchCallsign(ctx, "W1AW")
	require.NoError(t, err)
	require.Equal(t, w1aw, callsign)

	dxcc, err := client.FetchDXCC(ctx, "291")
	require.NoError(t, err)
	require.Equal(t, "United States", dxcc.Name)

	bio, err := client.FetchBio(ctx, "W1AW")
	require.NoError(t, err)
	require.Equal(t, string(bioHtml), bio)

	_, err = client.FetchCallsign(ctx, "INVALIDCALL")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestFetchHonorsContext(t *testing.T) {
	client, _, _ := setupClient(t, func(query map[string]string) (int, []byte) {
		return http.StatusOK, callsignXml
	})
	client.SetSession(Session{Key: "valid-key", Expiration: "2030-01-01T00:00:00Z"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchCallsign(ctx, "W1AW")
	require.True(t, errors.Is(err, ErrTransport))
	require.True(t, errors.Is(err, context.Canceled))
}
