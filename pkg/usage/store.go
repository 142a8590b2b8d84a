// Package usage records LLM calls with token counts and estimated cost so
// operators can see what a conversation spends.
package usage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Per-token prices in USD. Unknown models fall back to the cheapest
// Anthropic tier.
var pricing = map[string]struct{ input, output float64 }{
	"claude-3-haiku-20240307":   {0.25 / 1_000_000, 1.25 / 1_000_000},
	"claude-3-5-haiku-20241022": {0.80 / 1_000_000, 4.00 / 1_000_000},
	"gpt-4o-mini":               {0.15 / 1_000_000, 0.60 / 1_000_000},
}

const fallbackModel = "claude-3-haiku-20240307"

// EstimateCost computes the USD cost of a call from its token counts.
func EstimateCost(model string, inputTokens, outputTokens int) float64 {
	p, ok := pricing[model]
	if !ok {
		p = pricing[fallbackModel]
	}
	return float64(inputTokens)*p.input + float64(outputTokens)*p.output
}

type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	DayKey       string    `json:"day_key"`
	SessionID    string    `json:"session_id"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Purpose      string    `json:"purpose"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	TotalTokens  int       `json:"total_tokens"`
	CostUSD      float64   `json:"cost_usd"`
	UsageKnown   bool      `json:"usage_known"`
}

type Filter struct {
	SessionID string
	DayKey    string
	Provider  string
	Purpose   string
	Limit     int
}

type Aggregate struct {
	Calls        int     `json:"calls"`
	KnownCalls   int     `json:"known_calls"`
	UnknownCalls int     `json:"unknown_calls"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// Store keeps usage records in memory, optionally mirrored to a JSON file.
type Store struct {
	mu      sync.RWMutex
	records []Record
	path    string
}

// NewStore creates a store. A non-empty dir enables JSON persistence under
// dir/usage.json.
func NewStore(dir string) *Store {
	s := &Store{records: make([]Record, 0, 256)}
	if dir == "" {
		return s
	}
	_ = os.MkdirAll(dir, 0755)
	s.path = filepath.Join(dir, "usage.json")
	s.load()
	return s
}

func (s *Store) TodayKey() string {
	return time.Now().UTC().Format("2006-01-02")
}

// Add records one call. Missing day key, timestamp, total and cost are
// filled in here.
func (s *Store) Add(r Record) {
	if r.DayKey == "" {
		r.DayKey = s.TodayKey()
	}
	if r.TotalTokens == 0 {
		r.TotalTokens = r.InputTokens + r.OutputTokens
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if r.CostUSD == 0 && r.UsageKnown {
		r.CostUSD = EstimateCost(r.Model, r.InputTokens, r.OutputTokens)
	}

	s.mu.Lock()
	s.records = append(s.records, r)
	s.mu.Unlock()

	s.save()
}

func (s *Store) LastBySession(sessionID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].SessionID == sessionID {
			return s.records[i], true
		}
	}
	return Record{}, false
}

func (s *Store) Query(f Filter) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if f.SessionID != "" && r.SessionID != f.SessionID {
			continue
		}
		if f.DayKey != "" && r.DayKey != f.DayKey {
			continue
		}
		if f.Provider != "" && !strings.EqualFold(r.Provider, f.Provider) {
			continue
		}
		if f.Purpose != "" && r.Purpose != f.Purpose {
			continue
		}
		out = append(out, r)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out
}

// Reset drops every record, including the persisted copy.
func (s *Store) Reset() {
	s.mu.Lock()
	s.records = s.records[:0]
	s.mu.Unlock()
	s.save()
}

func AggregateRecords(records []Record) Aggregate {
	var agg Aggregate
	for _, r := range records {
		agg.Calls++
		if r.UsageKnown {
			agg.KnownCalls++
			agg.InputTokens += r.InputTokens
			agg.OutputTokens += r.OutputTokens
			agg.TotalTokens += r.TotalTokens
			agg.CostUSD += r.CostUSD
		} else {
			agg.UnknownCalls++
		}
	}
	return agg
}

// PurposeBreakdown groups records by what the call was for, e.g.
// keyword_extraction versus scene_generation.
func PurposeBreakdown(records []Record) map[string]Aggregate {
	out := map[string]Aggregate{}
	for _, r := range records {
		p := strings.TrimSpace(r.Purpose)
		if p == "" {
			p = "unknown"
		}
		agg := out[p]
		agg.Calls++
		if r.UsageKnown {
			agg.KnownCalls++
			agg.InputTokens += r.InputTokens
			agg.OutputTokens += r.OutputTokens
			agg.TotalTokens += r.TotalTokens
			agg.CostUSD += r.CostUSD
		} else {
			agg.UnknownCalls++
		}
		out[p] = agg
	}
	return out
}

func (s *Store) load() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return
	}
	s.records = records
}

func (s *Store) save() {
	if s.path == "" {
		return
	}
	s.mu.RLock()
	snapshot := make([]Record, len(s.records))
	copy(snapshot, s.records)
	s.mu.RUnlock()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(s.path, data, 0644)
}
