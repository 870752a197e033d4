package js8call

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"qrzbuddy/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

// fakeStation answers requests the way JS8Call does, after first sending
// an unsolicited message.
func fakeStation(t *testing.T, values map[string]string) string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		encoder := json.NewEncoder(conn)
		encoder.Encode(Message{Type: "RIG.FREQ", Params: map[string]any{"DIAL": 7078000}})

		scanner := bufio.NewScanner(conn)
		for scanner.Scan() {
			var req Message
			if json.Unmarshal(scanner.Bytes(), &req) != nil {
				continue
			}
			value, ok := values[req.Type]
			if !ok {
				continue
			}
			// noise with an id nobody asked for
			encoder.Encode(Message{Type: "STATION.STATUS", Params: map[string]any{"_ID": "someone-else"}})
			encoder.Encode(Message{Type: req.Type, Value: value, Params: req.Params})
		}
	}()

	return listener.Addr().String()
}

func TestStation(t *testing.T) {
	addr := fakeStation(t, map[string]string{
		TypeGetCallsign: "K4RWR",
		TypeGetGrid:     "EM73tu",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, addr, &telemetry.Recorder{})
	require.NoError(t, err)
	defer client.Close()

	callsign, err := client.StationCallsign(ctx)
	require.NoError(t, err)
	require.Equal(t, "K4RWR", callsign)

	grid, err := client.StationGrid(ctx)
	require.NoError(t, err)
	require.Equal(t, "EM73tu", grid)
}

func TestRequestTimesOut(t *testing.T) {
	addr := fakeStation(t, map[string]string{})

	client, err := Dial(context.Background(), addr, &telemetry.Recorder{})
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = client.StationGrid(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRequestAfterClose(t *testing.T) {
	addr := fakeStation(t, map[string]string{})

	client, err := Dial(context.Background(), addr, &telemetry.Recorder{})
	require.NoError(t, err)
	require.NoError(t, client.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = client.StationCallsign(ctx)
	require.Error(t, err)
}

func TestMessageId(t *testing.T) {
	require.Equal(t, "abc", Message{Params: map[string]any{"_ID": "abc"}}.id())
	require.Equal(t, "1234567890", Message{Params: map[string]any{"_ID": float64(1234567890)}}.id())
	require.Equal(t, "", Message{}.id())
}
