package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cogbotics/go-animahead/pkg/servo"
	"github.com/cogbotics/go-animahead/pkg/state"
)

func testServer() (*Server, *state.Flags, *servo.Positions) {
	flags := state.New()
	pos := servo.NewPositions()
	return NewServer("0", flags, pos), flags, pos
}

func get(t *testing.T, s *Server, path string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, body
}

func TestHealthz(t *testing.T) {
	s, _, _ := testServer()
	code, _ := get(t, s, "/healthz")
	if code != http.StatusOK {
		t.Errorf("healthz: got %d", code)
	}
}

func TestStateEndpoint(t *testing.T) {
	s, flags, _ := testServer()
	flags.SetArmed(true)
	flags.SetThinking(true)

	code, body := get(t, s, "/api/state")
	if code != http.StatusOK {
		t.Fatalf("state: got %d", code)
	}

	var got struct {
		Mode     string `json:"mode"`
		Armed    bool   `json:"armed"`
		Thinking bool   `json:"thinking"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Mode != "thinking" || !got.Armed || !got.Thinking {
		t.Errorf("state: got %+v", got)
	}
}

func TestPositionsEndpoint(t *testing.T) {
	s, _, pos := testServer()
	pos.Set(0, 90)
	pos.Set(2, -12)

	code, body := get(t, s, "/api/positions")
	if code != http.StatusOK {
		t.Fatalf("positions: got %d", code)
	}

	var got map[string]float64
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["0"] != 90 || got["2"] != -12 {
		t.Errorf("positions: got %v", got)
	}
}

func TestCaptureEndpoint(t *testing.T) {
	s, _, _ := testServer()

	code, _ := get(t, s, "/api/capture")
	if code != http.StatusNotFound {
		t.Errorf("capture before any session: got %d", code)
	}

	s.RecordCapture("abc", 1600*time.Millisecond, "done")
	code, body := get(t, s, "/api/capture")
	if code != http.StatusOK {
		t.Fatalf("capture: got %d", code)
	}
	var got CaptureStats
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != "abc" || got.Status != "done" {
		t.Errorf("capture: got %+v", got)
	}
}
