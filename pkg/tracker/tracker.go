// Package tracker maintains each session's creator state: the current
// stage, the fused keyword set and the structure dimension. It publishes a
// state change on the bus whenever the committed state actually differs.
package tracker

import (
	"context"
	"strings"
	"sync"

	"github.com/cineforge/muse/pkg/bus"
	"github.com/cineforge/muse/pkg/creative"
	"github.com/cineforge/muse/pkg/guiding"
	"github.com/cineforge/muse/pkg/intent"
	"github.com/cineforge/muse/pkg/logger"
	"github.com/cineforge/muse/pkg/utils"
)

// Extractor produces up to a handful of keywords for an input. It never
// fails; LLM-backed implementations fall back to rules internally.
type Extractor interface {
	Extract(ctx context.Context, input string, contextKeywords []string) []string
}

// Structure dimension cues. Inputs that anchor to an opening or an ending
// override the default middle placement.
var (
	openingMarkers = []string{"开头", "起始", "引入", "开场", "序幕"}
	middleMarkers  = []string{"中间", "发展", "过程", "展开"}
	endingMarkers  = []string{"结尾", "收尾", "总结", "结局", "尾声"}
)

type Tracker struct {
	bus       *bus.EventBus
	extractor Extractor
	analyzer  intent.Analyzer

	mu   sync.Mutex
	last map[string]*creative.CreatorState
}

func New(b *bus.EventBus, extractor Extractor, analyzer intent.Analyzer) *Tracker {
	return &Tracker{
		bus:       b,
		extractor: extractor,
		analyzer:  analyzer,
		last:      make(map[string]*creative.CreatorState),
	}
}

// Analyze derives the creator state for one turn and publishes a
// state-changed event when it differs from the session's previous state.
func (t *Tracker) Analyze(ctx context.Context, sessionID, input string, contextKeywords []string, turn int) creative.CreatorState {
	ref := t.analyzer.AnalyzeRefinement(input, contextKeywords)
	current := t.extractor.Extract(ctx, input, contextKeywords)

	var keywords []string
	if ref.IsRefinement {
		keywords = Merge(contextKeywords, current, ref)
	} else {
		keywords = utils.Dedupe(current)
	}

	stage := guiding.DetectStage(input, turn, contextKeywords)
	state := creative.CreatorState{
		Stage:              stage,
		Keywords:           keywords,
		StructureDimension: detectStructure(input),
		Progress:           stage.Progress(),
		Context:            input,
	}

	t.commit(sessionID, state)
	return state
}

// Merge fuses context keywords with the current extraction under a
// refinement intent: context minus exclusions, then current, then the
// intent's own additions, deduplicated in first-seen order.
func Merge(contextKeywords, current []string, ref intent.RefinementIntent) []string {
	excluded := make(map[string]struct{}, len(ref.ExcludedKeywords))
	for _, kw := range ref.ExcludedKeywords {
		excluded[kw] = struct{}{}
	}

	var merged []string
	for _, kw := range contextKeywords {
		if _, drop := excluded[kw]; !drop {
			merged = append(merged, kw)
		}
	}
	merged = append(merged, current...)
	merged = append(merged, ref.NewKeywords...)
	return utils.Dedupe(merged)
}

func detectStructure(input string) string {
	for _, m := range openingMarkers {
		if strings.Contains(input, m) {
			return "前置"
		}
	}
	for _, m := range endingMarkers {
		if strings.Contains(input, m) {
			return "后置"
		}
	}
	for _, m := range middleMarkers {
		if strings.Contains(input, m) {
			return "中置"
		}
	}
	return "中置"
}

func (t *Tracker) commit(sessionID string, state creative.CreatorState) {
	t.mu.Lock()
	previous := t.last[sessionID]
	changed := previous == nil || !statesEqual(*previous, state)
	if changed {
		snapshot := state
		t.last[sessionID] = &snapshot
	}
	t.mu.Unlock()

	if !changed {
		return
	}

	logger.DebugCF("tracker", "State changed", map[string]any{
		"session_id": sessionID,
		"stage":      state.Stage.Slug(),
		"keywords":   strings.Join(state.Keywords, ","),
	})
	t.bus.Publish(bus.EventStateChanged, bus.StateChanged{
		SessionID: sessionID,
		Previous:  previous,
		Current:   state,
	}, "tracker")
}

// Current returns the last committed state for a session, nil when none.
func (t *Tracker) Current(sessionID string) *creative.CreatorState {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.last[sessionID]; ok {
		snapshot := *s
		return &snapshot
	}
	return nil
}

// Forget drops tracked state for expired sessions.
func (t *Tracker) Forget(sessionIDs ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range sessionIDs {
		delete(t.last, id)
	}
}

func statesEqual(a, b creative.CreatorState) bool {
	if a.Stage != b.Stage || a.StructureDimension != b.StructureDimension {
		return false
	}
	if len(a.Keywords) != len(b.Keywords) {
		return false
	}
	for i := range a.Keywords {
		if a.Keywords[i] != b.Keywords[i] {
			return false
		}
	}
	return true
}
