package telemetry

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	scoped := NewScopedAPI("qrz", NewScopedAPI("client", rec))

	scoped.ReportBroken("fetch-token", "boom")
	scoped.ReportCount("batch", 3)

	broken := rec.Reports("broken", "")
	require.Len(t, broken, 1)
	require.Equal(t, "qrz: client: fetch-token", broken[0].Id)
	require.Equal(t, []any{"boom"}, broken[0].Params)

	counts := rec.Reports("count", "batch")
	require.Len(t, counts, 1)
	require.EqualValues(t, 3, counts[0].Count)
}

func TestRedactURL(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{
			input:    "https://xmldata.qrz.com/xml/current/?callsign=W1AW&s=abc123",
			expected: "https://xmldata.qrz.com/xml/current/?callsign=W1AW&s=REDACTED",
		},
		{
			input:    "https://xmldata.qrz.com/xml/current/?agent=x&password=hunter2&username=K4RWR",
			expected: "https://xmldata.qrz.com/xml/current/?agent=x&password=REDACTED&username=K4RWR",
		},
		{
			input:    "https://xmldata.qrz.com/xml/current/?dxcc=291",
			expected: "https://xmldata.qrz.com/xml/current/?dxcc=291",
		},
	}

	for _, row := range table {
		require.Equal(t, row.expected, RedactURL(row.input))
	}
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	rec := &Recorder{}
	client := resty.New()
	InstrumentResty(client, rec)

	_, err := client.R().
		SetContext(context.Background()).
		SetQueryParam("s", "secret-session-key").
		Get(server.URL)
	require.NoError(t, err)

	requests := rec.Reports("debug", report_resty_request)
	require.Len(t, requests, 1)
	for _, p := range requests[0].Params {
		if s, ok := p.(string); ok {
			require.False(t, strings.Contains(s, "secret-session-key"))
		}
	}
	require.Len(t, rec.Reports("debug", report_resty_response), 1)
}

func TestInstrumentRestyRedactsTransportErrors(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	target := fmt.Sprintf("http://%s/xml/current/", listener.Addr())
	require.NoError(t, listener.Close())

	rec := &Recorder{}
	client := resty.New()
	InstrumentResty(client, rec)

	_, err = client.R().
		SetContext(context.Background()).
		SetQueryParam("password", "hunter2").
		Get(target)
	require.Error(t, err)
	require.NotContains(t, err.Error(), "hunter2")

	broken := rec.Reports("broken", report_resty_response)
	require.Len(t, broken, 1)
	for _, p := range broken[0].Params {
		require.NotContains(t, fmt.Sprint(p), "hunter2")
	}
}
