package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veikk/veikkd-go/core"
	"github.com/veikk/veikkd-go/memorywriter"
)

// minimal fakes so a manager with one attached tablet can back the
// handlers

type nullSink struct{}

func (nullSink) Abs(core.Axis, int32) error { return nil }
func (nullSink) Key(core.Key, bool) error   { return nil }
func (nullSink) Sync() error                { return nil }
func (nullSink) Close() error               { return nil }

type nullPublisher struct{}

func (nullPublisher) Pen(*core.Model) (core.EventSink, error)     { return nullSink{}, nil }
func (nullPublisher) Buttons(*core.Model) (core.EventSink, error) { return nullSink{}, nil }
func (nullPublisher) Pad(*core.Model) (core.EventSink, error)     { return nullSink{}, nil }

type stubDevice struct {
	closed chan struct{}
}

func (d *stubDevice) Read(p []byte) (int, error) {
	<-d.closed
	return 0, errors.New("closed")
}

func (d *stubDevice) Write(p []byte) (int, error) { return len(p), nil }

func (d *stubDevice) Close() error {
	select {
	case <-d.closed:
	default:
		close(d.closed)
	}
	return nil
}

type stubBus struct{}

func (stubBus) Enumerate() ([]core.HIDInfo, error) { return nil, nil }
func (stubBus) Connect(path string) (core.HIDDevice, error) {
	return &stubDevice{closed: make(chan struct{})}, nil
}
func (stubBus) Has(path string) bool { return true }

func testServer(t *testing.T) (*Server, *core.Manager) {
	t.Helper()
	log, err := memorywriter.New(100, 10, false, nil)
	require.NoError(t, err)
	m := core.New(stubBus{}, nullPublisher{}, log, core.DefaultActivationPolicy())
	t.Cleanup(m.DetachAll)
	return New(m, "127.0.0.1:0", "9.9.9", io.Discard, log), m
}

func request(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.https.Handler.ServeHTTP(w, req)
	return w
}

func TestInfo(t *testing.T) {
	s, _ := testServer(t)
	w := request(t, s, "GET", "/")
	require.Equal(t, http.StatusOK, w.Code)

	var info struct {
		Version string `json:"version"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	require.Equal(t, "9.9.9", info.Version)
}

func TestStatusEmpty(t *testing.T) {
	s, _ := testServer(t)
	w := request(t, s, "GET", "/status")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "[]\n", w.Body.String())
}

func TestStatusListsDevices(t *testing.T) {
	s, m := testServer(t)
	require.NoError(t, m.Attach(core.HIDInfo{
		Path: "usb:001", VendorID: core.VendorID, ProductID: 0x0003, Proprietary: true,
	}))

	w := request(t, s, "GET", "/status")
	require.Equal(t, http.StatusOK, w.Code)

	var devices []core.DeviceStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &devices))
	require.Len(t, devices, 1)
	require.Equal(t, "usb:001", devices[0].Path)
	require.Equal(t, "VEIKK A50", devices[0].Model)
}

func TestLogExport(t *testing.T) {
	s, m := testServer(t)
	require.NoError(t, m.Attach(core.HIDInfo{
		Path: "usb:001", VendorID: core.VendorID, ProductID: 0x0001, Proprietary: true,
	}))

	w := request(t, s, "GET", "/log")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "veikkd version: 9.9.9")
	require.Contains(t, body, "VEIKK S640")
	require.Contains(t, body, "attached VEIKK S640 at usb:001")
}

func TestWriteMethodsRejected(t *testing.T) {
	s, _ := testServer(t)
	for _, method := range []string{"POST", "PUT", "DELETE"} {
		w := request(t, s, method, "/status")
		require.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
	}
}

func TestAccessLogWritten(t *testing.T) {
	log, err := memorywriter.New(100, 10, false, nil)
	require.NoError(t, err)
	m := core.New(stubBus{}, nullPublisher{}, log, core.DefaultActivationPolicy())

	var access bytes.Buffer
	s := New(m, "127.0.0.1:0", "9.9.9", &access, log)

	req := httptest.NewRequest("GET", "/", nil)
	s.https.Handler.ServeHTTP(httptest.NewRecorder(), req)
	require.Contains(t, access.String(), "GET / HTTP")
}
