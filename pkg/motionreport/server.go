// HTTP and websocket endpoints for motion reporting
//
// Copyright (C) 2025  Go port
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package motionreport

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"stepsmooth/pkg/log"
)

// Server serves the reporter over HTTP. Plain GET endpoints answer one-shot
// queries; the websocket endpoint speaks a small request/response protocol
// for clients polling positions continuously.
type Server struct {
	rep    *Reporter
	logger *log.Logger

	upgrader   websocket.Upgrader
	httpServer *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewServer creates a server for the reporter.
func NewServer(rep *Reporter, logger *log.Logger) *Server {
	return &Server{
		rep:    rep,
		logger: logger.Component("server"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Handler returns the HTTP handler serving all endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/motion/steppers", s.handleSteppers)
	mux.HandleFunc("/motion/moves", s.handleMoves)
	mux.HandleFunc("/motion/sample", s.handleSample)
	mux.HandleFunc("/websocket", s.handleWebSocket)
	return mux
}

// ListenAndServe serves on addr until Stop is called.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.Handler()}
	s.logger.Infof("motion report server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down and drops all websocket clients.
func (s *Server) Stop() error {
	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) handleSteppers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"steppers": s.rep.StepperNames()})
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	start, err1 := queryFloat(r, "start", 0.)
	end, err2 := queryFloat(r, "end", 1e15)
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid time range", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"moves": s.rep.DumpMoves(start, end)})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("stepper")
	start, err1 := queryFloat(r, "start", 0.)
	end, err2 := queryFloat(r, "end", 0.)
	interval, err3 := queryFloat(r, "interval", 0.001)
	if err1 != nil || err2 != nil || err3 != nil {
		http.Error(w, "invalid query parameter", http.StatusBadRequest)
		return
	}
	samples, err := s.rep.SampleStepper(name, start, end, interval)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"stepper": name, "samples": samples})
}

// wsRequest is one websocket query.
type wsRequest struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// wsResponse answers one websocket query.
type wsResponse struct {
	ID     int64  `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("websocket upgrade failed: %v", err)
		return
	}
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				s.logger.Debugf("websocket client dropped: %v", err)
			}
			return
		}
		resp := s.dispatch(&req)
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req *wsRequest) wsResponse {
	switch req.Method {
	case "list_steppers":
		return wsResponse{ID: req.ID, Result: map[string]any{
			"steppers": s.rep.StepperNames()}}
	case "dump_moves":
		var p struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
		}
		p.End = 1e15
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &p); err != nil {
				return wsResponse{ID: req.ID, Error: "invalid params"}
			}
		}
		return wsResponse{ID: req.ID, Result: map[string]any{
			"moves": s.rep.DumpMoves(p.Start, p.End)}}
	case "sample":
		var p struct {
			Stepper  string  `json:"stepper"`
			Start    float64 `json:"start"`
			End      float64 `json:"end"`
			Interval float64 `json:"interval"`
		}
		p.Interval = 0.001
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return wsResponse{ID: req.ID, Error: "invalid params"}
		}
		samples, err := s.rep.SampleStepper(p.Stepper, p.Start, p.End, p.Interval)
		if err != nil {
			return wsResponse{ID: req.ID, Error: err.Error()}
		}
		return wsResponse{ID: req.ID, Result: map[string]any{
			"stepper": p.Stepper, "samples": samples}}
	}
	return wsResponse{ID: req.ID, Error: "unknown method " + req.Method}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func queryFloat(r *http.Request, key string, fallback float64) (float64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(v, 64)
}
