package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gloworm-vision/encodersine/hardware"
	"github.com/gloworm-vision/encodersine/store"
	"github.com/gloworm-vision/encodersine/synth"
	"github.com/sirupsen/logrus/hooks/test"
)

type fixedStatus synth.Status

func (f fixedStatus) Status() synth.Status { return synth.Status(f) }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := store.OpenBBolt(filepath.Join(t.TempDir(), "store.db"), 0666, nil)
	if err != nil {
		t.Fatalf("unexpected error opening store: %s", err)
	}
	t.Cleanup(func() { st.Close() })

	count := uint16(423)
	logger, _ := test.NewNullLogger()
	s := &Server{
		Store:  st,
		Synth:  fixedStatus{State: "running", Frequency: 523, Count: &count, Gain: 25},
		Logger: logger,
	}

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return ts
}

func TestGetStatus(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var status synth.Status
	if err := json.NewDecoder(res.Body).Decode(&status); err != nil {
		t.Fatalf("unexpected error decoding: %s", err)
	}
	if status.Frequency != 523 || status.Count == nil || *status.Count != 423 || status.State != "running" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestHardwareConfig(t *testing.T) {
	ts := newTestServer(t)

	res, err := http.Get(ts.URL + "/hardware")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before anything is stored, got %d", res.StatusCode)
	}

	body := `{"pigpioAddr":"10.0.0.2:8888","i2cBus":1,"i2cAddr":85,"statusLEDPin":4}`
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/hardware", strings.NewReader(body))
	res, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.StatusCode)
	}

	res, err = http.Get(ts.URL + "/hardware")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer res.Body.Close()

	var config hardware.Config
	if err := json.NewDecoder(res.Body).Decode(&config); err != nil {
		t.Fatalf("unexpected error decoding: %s", err)
	}

	want := hardware.Config{PigpioAddr: "10.0.0.2:8888", I2CBus: 1, I2CAddr: 0x55, StatusLEDPin: 4}
	if config != want {
		t.Fatalf("expected %+v, got %+v", want, config)
	}
}

func TestPutSynthConfigRejectsBadJSON(t *testing.T) {
	ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/synth", strings.NewReader(`{"targetGain":`))
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.StatusCode)
	}
}
