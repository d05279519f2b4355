package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/infinitime/smartalarm/internal/alarm"
	"github.com/infinitime/smartalarm/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		Broker:       "tcp://192.168.1.200:1883",
		HTTPAddr:     ":80",
		AlarmHours:   7,
		AlarmMinutes: 0,
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(true, false, true, alarm.PhaseLight, 12)
	tr.SetBusConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Phase != "Light" {
		t.Errorf("Phase: got %q, want Light", sj.Status.Phase)
	}
	if !sj.Status.Enabled {
		t.Error("expected Enabled=true")
	}
	if !sj.Status.Bus.Connected {
		t.Error("expected Bus.Connected=true")
	}
	if sj.Status.Bus.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("Bus.Broker: got %q, want tcp://192.168.1.200:1883", sj.Status.Bus.Broker)
	}
	if sj.Status.HRSampleCount != 12 {
		t.Errorf("HRSampleCount: got %d, want 12", sj.Status.HRSampleCount)
	}
	if sj.Status.Config.AlarmHours != 7 {
		t.Errorf("Config.AlarmHours: got %d, want 7", sj.Status.Config.AlarmHours)
	}
}

func TestJSONUnknownPhaseBeforeAnyCheck(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Status.Phase != "Unknown" {
		t.Errorf("Phase before any check: got %q, want Unknown", sj.Status.Phase)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.Update(true, false, true, alarm.PhaseDeep, 0)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.Enabled {
		t.Error("expected Enabled=false initially")
	}

	tr.Update(true, true, false, alarm.PhaseREM, 5)
	tr.SetBusConnected(true)

	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if !sj2.Status.Enabled {
		t.Error("expected Enabled=true after update")
	}
	if sj2.Status.Phase != "REM" {
		t.Errorf("Phase: got %q, want REM", sj2.Status.Phase)
	}
	if !sj2.Status.Bus.Connected {
		t.Error("expected Bus connected after update")
	}
}
