package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/cccac/attendance-geofence/geofence"
)

type testCase struct {
	expected bool
	p        geofence.Point
}

func dialStream(t *testing.T, polygon string) (*server, *websocket.Conn, context.Context) {
	t.Helper()

	s, r := setupRouter(t, polygon)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/check/stream"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatal("unexpected error", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	return s, conn, ctx
}

func TestSocketStream(t *testing.T) {
	s, conn, ctx := dialStream(t, _testSquare)

	testCases := []testCase{
		{true, geofence.Point{Latitude: 5, Longitude: 5}},
		{false, geofence.Point{Latitude: 15, Longitude: 15}},
		{true, geofence.Point{Latitude: 1, Longitude: 9}},
	}

	for _, tc := range testCases {
		if err := wsjson.Write(ctx, conn, tc.p); err != nil {
			t.Fatal("unexpected error", err)
		}

		var resp checkResponse
		if err := wsjson.Read(ctx, conn, &resp); err != nil {
			t.Fatal("unexpected error", err)
		}
		if resp.Latitude != tc.p.Latitude || resp.Longitude != tc.p.Longitude {
			t.Errorf("response for %s echoes the wrong coordinate: %+v", tc.p, resp)
		}
		if resp.IsWithin != tc.expected {
			t.Error("expected:", tc.p, "=", tc.expected, "got:", resp.IsWithin)
		}
	}

	if v := testutil.ToFloat64(s.metrics.checks.WithLabelValues(transportWebsocket, "inside")); v != 2 {
		t.Errorf("expected 2 inside checks, got %v", v)
	}
}

func TestSocketMultiplePointsPerMessage(t *testing.T) {
	_, conn, ctx := dialStream(t, _testSquare)

	msg := `{"latitude":5,"longitude":5} {"latitude":20,"longitude":20}`
	if err := conn.Write(ctx, websocket.MessageText, []byte(msg)); err != nil {
		t.Fatal("unexpected error", err)
	}

	want := []bool{true, false}
	for i, expected := range want {
		var resp checkResponse
		if err := wsjson.Read(ctx, conn, &resp); err != nil {
			t.Fatal("unexpected error", err)
		}
		if resp.IsWithin != expected {
			t.Errorf("response %d: expected isWithin=%v, got %v", i, expected, resp.IsWithin)
		}
	}
}

func TestSocketSkipsBinaryMessages(t *testing.T) {
	_, conn, ctx := dialStream(t, _testSquare)

	if err := conn.Write(ctx, websocket.MessageBinary, []byte{0x01, 0x02, 0x03}); err != nil {
		t.Fatal("unexpected error", err)
	}
	if err := wsjson.Write(ctx, conn, geofence.Point{Latitude: 5, Longitude: 5}); err != nil {
		t.Fatal("unexpected error", err)
	}

	var resp checkResponse
	if err := wsjson.Read(ctx, conn, &resp); err != nil {
		t.Fatal("unexpected error", err)
	}
	if !resp.IsWithin {
		t.Error("expected the text message after the binary one to be answered")
	}
}

func TestSocketRejectsGarbage(t *testing.T) {
	_, conn, ctx := dialStream(t, _testSquare)

	if err := conn.Write(ctx, websocket.MessageText, []byte("not json")); err != nil {
		t.Fatal("unexpected error", err)
	}

	_, _, err := conn.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusUnsupportedData {
		t.Errorf("expected close status %v, got %v", websocket.StatusUnsupportedData, err)
	}
}

func TestSocketRejectsMissingCoordinates(t *testing.T) {
	for _, msg := range []string{`{}`, `{"lat":5,"lon":5}`, `{"latitude":5}`} {
		t.Run(msg, func(t *testing.T) {
			s, conn, ctx := dialStream(t, _testSquare)

			if err := conn.Write(ctx, websocket.MessageText, []byte(msg)); err != nil {
				t.Fatal("unexpected error", err)
			}

			_, data, err := conn.Read(ctx)
			if websocket.CloseStatus(err) != websocket.StatusUnsupportedData {
				t.Errorf("expected close status %v, got %v (data %s)", websocket.StatusUnsupportedData, err, data)
			}
			if v := testutil.ToFloat64(s.metrics.checks.WithLabelValues(transportWebsocket, "inside")); v != 0 {
				t.Errorf("expected no checks, got %v", v)
			}
		})
	}
}
