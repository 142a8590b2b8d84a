// Package gateway exposes the dialogue engine over a small JSON HTTP API.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cineforge/muse/pkg/agent"
	"github.com/cineforge/muse/pkg/bus"
	"github.com/cineforge/muse/pkg/creative"
	"github.com/cineforge/muse/pkg/guiding"
	"github.com/cineforge/muse/pkg/logger"
	"github.com/cineforge/muse/pkg/session"
	"github.com/cineforge/muse/pkg/usage"
)

const turnTimeout = 60 * time.Second

// Gateway serves the HTTP API. Construct it with New and mount Handler on
// a server, or call ListenAndServe directly.
type Gateway struct {
	engine    *agent.Engine
	sessions  *session.Store
	bus       *bus.EventBus
	usage     *usage.Store
	questions *guiding.Generator
}

func New(engine *agent.Engine, sessions *session.Store, b *bus.EventBus, usageStore *usage.Store, questions *guiding.Generator) *Gateway {
	return &Gateway{
		engine:    engine,
		sessions:  sessions,
		bus:       b,
		usage:     usageStore,
		questions: questions,
	}
}

// Handler builds the route table. Exposed separately from ListenAndServe
// so tests can drive it through httptest.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/inspire", g.handleInspire)
	mux.HandleFunc("/health", g.handleHealth)
	mux.HandleFunc("/events", g.handleEvents)
	mux.HandleFunc("/usage", g.handleUsage)
	mux.HandleFunc("/usage/reset", g.handleUsageReset)
	mux.HandleFunc("/guiding", g.handleGuiding)
	return recoverMiddleware(logMiddleware(mux))
}

func (g *Gateway) ListenAndServe(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	logger.InfoCF("gateway", "Listening", map[string]any{"addr": addr})
	server := &http.Server{
		Addr:         addr,
		Handler:      g.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * turnTimeout,
	}
	return server.ListenAndServe()
}

func (g *Gateway) handleInspire(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req agent.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		http.Error(w, "user_input is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), turnTimeout)
	defer cancel()
	result, err := g.engine.ProcessTurn(ctx, req)
	if err != nil {
		logger.ErrorCF("gateway", "Turn failed", map[string]any{
			"session_id": req.SessionID,
			"error":      err.Error(),
		})
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{
		"status":   "ok",
		"sessions": g.sessions.Stats(),
		"events":   g.bus.Stats(),
	})
}

func (g *Gateway) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "limit must be an integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	events := g.bus.History(r.URL.Query().Get("type"), limit)
	writeJSON(w, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

func (g *Gateway) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	records := g.usage.Query(usage.Filter{
		SessionID: q.Get("session_id"),
		DayKey:    q.Get("day"),
		Provider:  q.Get("provider"),
		Purpose:   q.Get("purpose"),
	})
	total := usage.AggregateRecords(records)
	writeJSON(w, map[string]any{
		"records":    records,
		"total":      total,
		"by_purpose": usage.PurposeBreakdown(records),
		"summary": fmt.Sprintf("%d calls, %s tokens, %s",
			total.Calls, usage.HumanTokens(total.TotalTokens), usage.FormatCost(total.CostUSD)),
	})
}

func (g *Gateway) handleUsageReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	g.usage.Reset()
	writeJSON(w, map[string]any{"status": "reset"})
}

// handleGuiding previews the question bank for a stage without running a
// turn, mostly for prompt tuning.
func (g *Gateway) handleGuiding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	stage, err := creative.ParseStage(q.Get("stage"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	turn := 1
	if raw := q.Get("turn"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "turn must be a positive integer", http.StatusBadRequest)
			return
		}
		turn = n
	}
	writeJSON(w, map[string]any{
		"stage":     stage,
		"turn":      turn,
		"questions": g.questions.Generate(stage, turn),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.DebugCF("gateway", "Request", map[string]any{
			"method":     r.Method,
			"path":       r.URL.Path,
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorCF("gateway", "Handler panic", map[string]any{
					"path":  r.URL.Path,
					"panic": fmt.Sprintf("%v", rec),
				})
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
