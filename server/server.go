// Package server exposes a local status surface for the daemon:
// version, the attached tablets with their merged button state, and a
// dump of the detailed in-memory log for bug reports. Read-only and
// bound to loopback; this is an operator tool, not a control channel.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/veikk/veikkd-go/core"
	"github.com/veikk/veikkd-go/memorywriter"
)

type Server struct {
	https   *http.Server
	manager *core.Manager

	version string
	log     *memorywriter.MemoryWriter
}

func New(manager *core.Manager, addr, version string, accessLog io.Writer, log *memorywriter.MemoryWriter) *Server {
	s := &Server{
		https:   &http.Server{Addr: addr},
		manager: manager,
		version: version,
		log:     log,
	}

	r := mux.NewRouter()
	sr := r.Methods("GET").Subrouter()
	sr.HandleFunc("/", s.info)
	sr.HandleFunc("/status", s.status)
	sr.HandleFunc("/log", s.logExport)

	// Log after the request is done, in the Apache format.
	s.https.Handler = handlers.LoggingHandler(accessLog, r)
	return s
}

func (s *Server) Run() error {
	return s.https.ListenAndServe()
}

func (s *Server) Close() error {
	return s.https.Close()
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	type info struct {
		Version string `json:"version"`
	}
	s.respondJSON(w, info{Version: s.version})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, s.manager.Devices())
}

func (s *Server) logExport(w http.ResponseWriter, r *http.Request) {
	header := fmt.Sprintf("veikkd version: %s\n", s.version)
	for _, d := range s.manager.Devices() {
		header += fmt.Sprintf("device: %s at %s buttons=%04x wheel=%02x pad=%02x\n",
			d.Model, d.Path, d.ButtonsState, d.WheelState, d.PadState)
	}

	text, err := s.log.String(header)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, text)
}

func (s *Server) respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Log("server - encode error: " + err.Error())
	}
}
