// Package agent orchestrates one dialogue turn end to end: state analysis,
// inspiration collection off the bus, content planning, scene generation
// and guiding questions.
package agent

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cineforge/muse/pkg/bus"
	"github.com/cineforge/muse/pkg/controller"
	"github.com/cineforge/muse/pkg/creative"
	"github.com/cineforge/muse/pkg/guiding"
	"github.com/cineforge/muse/pkg/logger"
	"github.com/cineforge/muse/pkg/scenes"
	"github.com/cineforge/muse/pkg/session"
	"github.com/cineforge/muse/pkg/tracker"
)

const defaultProviderWait = 300 * time.Millisecond

// TurnRequest is one user input. An empty SessionID starts a new session.
type TurnRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Input     string `json:"user_input"`
}

// TurnResult is everything a turn produced.
type TurnResult struct {
	SessionID        string                     `json:"session_id"`
	TurnNumber       int                        `json:"turn_number"`
	State            creative.CreatorState      `json:"state"`
	Inspirations     []creative.Inspiration     `json:"inspirations"`
	TotalCount       int                        `json:"total_count"`
	GuidingQuestions []creative.GuidingQuestion `json:"guiding_questions"`
	VisualScenes     []creative.VisualScene     `json:"visual_scenes"`
	ProgressMessage  string                     `json:"progress_message,omitempty"`
	Plan             controller.ContentPlan     `json:"plan"`
}

// Engine wires the collaborators together. All dependencies are injected;
// the engine owns no global state.
type Engine struct {
	bus        *bus.EventBus
	sessions   *session.Store
	tracker    *tracker.Tracker
	controller *controller.Controller
	questions  *guiding.Generator
	scenes     scenes.Generator

	// providerWait bounds how long a turn waits for providers after the
	// state change fans out. Synchronous providers finish before Publish
	// returns, so this only matters for asynchronous ones. Zero in tests.
	providerWait time.Duration
}

type Option func(*Engine)

func WithProviderWait(d time.Duration) Option {
	return func(e *Engine) { e.providerWait = d }
}

func NewEngine(b *bus.EventBus, sessions *session.Store, tr *tracker.Tracker, ctrl *controller.Controller, questions *guiding.Generator, sceneGen scenes.Generator, opts ...Option) *Engine {
	e := &Engine{
		bus:          b,
		sessions:     sessions,
		tracker:      tr,
		controller:   ctrl,
		questions:    questions,
		scenes:       sceneGen,
		providerWait: defaultProviderWait,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessTurn runs one dialogue turn. Unknown session ids start a fresh
// session rather than failing, matching the stateless-client contract.
func (e *Engine) ProcessTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	sessionID := req.SessionID
	if sessionID == "" || !e.sessions.Exists(sessionID) {
		sessionID = e.sessions.Create()
	}
	turnNumber := e.sessions.TurnCount(sessionID) + 1
	contextKeywords := e.sessions.ContextKeywords(sessionID)

	logger.InfoCF("agent", "Processing turn", map[string]any{
		"session_id": sessionID,
		"turn":       turnNumber,
	})

	// Collect this session's inspirations while the turn runs. The
	// subscriber name is unique per turn so concurrent turns on other
	// sessions cannot collide.
	collector := newCollector(sessionID)
	subName := "turn-collector-" + uuid.NewString()
	e.bus.Subscribe(bus.EventInspirationFound, subName, collector.handle)
	defer e.bus.Unsubscribe(bus.EventInspirationFound, subName)

	state := e.tracker.Analyze(ctx, sessionID, req.Input, contextKeywords, turnNumber)

	if e.providerWait > 0 {
		timer := time.NewTimer(e.providerWait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	inspirations := collector.items()
	plan := e.controller.Plan(turnNumber, state.Stage, req.Input)

	filtered := filterByPlan(inspirations, plan)
	visualScenes := e.generateScenes(ctx, req.Input, state, plan, filtered)
	questions := e.questions.Generate(state.Stage, turnNumber)

	progress := ""
	if e.controller.ShouldExplainProgress(turnNumber) || plan.ExplainProcess {
		progress = e.controller.ProgressMessage(turnNumber, state.Stage)
	}

	// Commit the turn only after everything above succeeded.
	e.sessions.AddTurn(sessionID, req.Input, state.Keywords, state.Stage, len(inspirations))

	// The response carries what the plan releases. TotalCount stays the
	// full deduped count so clients can see more was found than shown;
	// keywords are withheld entirely on turns that do not release them.
	responseState := state
	if !plan.ReturnKeywords {
		responseState.Keywords = []string{}
	}

	result := &TurnResult{
		SessionID:        sessionID,
		TurnNumber:       turnNumber,
		State:            responseState,
		Inspirations:     filtered,
		TotalCount:       len(inspirations),
		GuidingQuestions: questions,
		VisualScenes:     visualScenes,
		ProgressMessage:  progress,
		Plan:             plan,
	}
	return result, nil
}

// filterByPlan applies the plan's per-type gates and limits, keeping
// relevance order within each type.
func filterByPlan(items []creative.Inspiration, plan controller.ContentPlan) []creative.Inspiration {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].RelevanceScore > items[j].RelevanceScore
	})

	var theory, works []creative.Inspiration
	for _, item := range items {
		switch item.Type {
		case "theory":
			theory = append(theory, item)
		case "work":
			works = append(works, item)
		}
	}

	var out []creative.Inspiration
	if plan.ReturnTheory {
		out = append(out, capItems(theory, plan.TheoryLimit)...)
	}
	if plan.ReturnWorks {
		out = append(out, capItems(works, plan.WorksLimit)...)
	}
	if out == nil {
		out = []creative.Inspiration{}
	}
	return out
}

func capItems(items []creative.Inspiration, limit int) []creative.Inspiration {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func (e *Engine) generateScenes(ctx context.Context, input string, state creative.CreatorState, plan controller.ContentPlan, inspirations []creative.Inspiration) []creative.VisualScene {
	if !plan.ReturnScenes {
		return []creative.VisualScene{}
	}

	generated, err := e.scenes.Generate(ctx, input, state.Keywords, state.Stage, inspirations)
	if err != nil {
		logger.WarnCF("agent", "Scene generation failed", map[string]any{"error": err.Error()})
		return []creative.VisualScene{}
	}
	if generated == nil {
		generated = []creative.VisualScene{}
	}

	// A limit of one walks the scene list by index across turns; an index
	// past the end yields nothing rather than an error. A zero limit
	// means every scene.
	switch {
	case plan.ScenesLimit == 1:
		if plan.SceneIndex >= 0 && plan.SceneIndex < len(generated) {
			return generated[plan.SceneIndex : plan.SceneIndex+1]
		}
		return []creative.VisualScene{}
	case plan.ScenesLimit > 0 && len(generated) > plan.ScenesLimit:
		return generated[:plan.ScenesLimit]
	default:
		return generated
	}
}

// collector accumulates inspiration events for one session, deduplicating
// on (type, title). Providers may publish from their own goroutines, so
// access is locked.
type collector struct {
	sessionID string

	mu        sync.Mutex
	seen      map[string]struct{}
	collected []creative.Inspiration
}

func newCollector(sessionID string) *collector {
	return &collector{sessionID: sessionID, seen: make(map[string]struct{})}
}

func (c *collector) handle(e bus.Event) error {
	payload, ok := e.Payload.(bus.InspirationFound)
	if !ok || payload.SessionID != c.sessionID {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range payload.Items {
		key := item.Type + "\x00" + item.Title
		if _, dup := c.seen[key]; dup {
			continue
		}
		c.seen[key] = struct{}{}
		c.collected = append(c.collected, item)
	}
	return nil
}

func (c *collector) items() []creative.Inspiration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]creative.Inspiration{}, c.collected...)
}
