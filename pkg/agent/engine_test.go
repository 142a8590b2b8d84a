package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/cineforge/muse/pkg/bus"
	"github.com/cineforge/muse/pkg/controller"
	"github.com/cineforge/muse/pkg/creative"
	"github.com/cineforge/muse/pkg/guiding"
	"github.com/cineforge/muse/pkg/intent"
	"github.com/cineforge/muse/pkg/knowledge"
	"github.com/cineforge/muse/pkg/scenes"
	"github.com/cineforge/muse/pkg/session"
	"github.com/cineforge/muse/pkg/tracker"
)

type ruleLikeExtractor struct{}

func (ruleLikeExtractor) Extract(_ context.Context, input string, _ []string) []string {
	// Tiny vocabulary, enough for orchestration tests.
	var out []string
	for _, kw := range []string{"记忆", "童年", "战争", "怀旧"} {
		if containsSub(input, kw) {
			out = append(out, kw)
		}
	}
	if len(out) == 0 {
		out = []string{"记忆"}
	}
	return out
}

func containsSub(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}

type fixedScenes struct {
	scenes []creative.VisualScene
	err    error
}

func (f fixedScenes) Generate(context.Context, string, []string, creative.Stage, []creative.Inspiration) ([]creative.VisualScene, error) {
	return f.scenes, f.err
}

func newTestEngine(t *testing.T, sceneGen scenes.Generator) (*Engine, *session.Store) {
	t.Helper()
	b := bus.New()
	theories, err := knowledge.LoadTheoryCorpus("")
	if err != nil {
		t.Fatal(err)
	}
	works, err := knowledge.LoadWorkCorpus("")
	if err != nil {
		t.Fatal(err)
	}
	knowledge.NewTheoryProvider(b, theories)
	knowledge.NewWorkProvider(b, works)

	tr := tracker.New(b, ruleLikeExtractor{}, intent.NewRuleAnalyzer())
	if sceneGen == nil {
		sceneGen = scenes.Disabled{}
	}
	sessions := session.NewStore()
	return NewEngine(b, sessions, tr, controller.New(), guiding.NewGenerator(), sceneGen, WithProviderWait(0)), sessions
}

func TestProcessTurnFirstTurn(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	res, err := e.ProcessTurn(context.Background(), TurnRequest{Input: "我想拍一部关于记忆的电影"})
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if res.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if res.TurnNumber != 1 {
		t.Fatalf("TurnNumber=%d", res.TurnNumber)
	}
	if res.State.Stage != creative.StageClarify {
		t.Fatalf("Stage=%v", res.State.Stage)
	}
	if !res.Plan.ReturnKeywords {
		t.Fatal("turn 1 plan should return keywords")
	}
	if len(res.State.Keywords) == 0 {
		t.Fatal("turn 1 releases the extracted keywords")
	}
	// Turn 1 releases no theory or works, but the count still reports
	// what the providers found.
	if len(res.Inspirations) != 0 {
		t.Fatalf("turn 1 should carry no inspirations, got %d", len(res.Inspirations))
	}
	if res.TotalCount == 0 {
		t.Fatal("TotalCount should report everything found, released or not")
	}
	if len(res.GuidingQuestions) == 0 {
		t.Fatal("expected guiding questions")
	}
	if res.ProgressMessage == "" {
		t.Fatal("turn 1 should explain progress")
	}
	if res.Inspirations == nil || res.VisualScenes == nil {
		t.Fatal("slices must be non-nil for JSON clients")
	}
}

func TestProcessTurnSecondTurnReturnsTheory(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	first, err := e.ProcessTurn(ctx, TurnRequest{Input: "我想拍一部关于记忆的电影"})
	if err != nil {
		t.Fatal(err)
	}

	second, err := e.ProcessTurn(ctx, TurnRequest{SessionID: first.SessionID, Input: "和童年有关的记忆"})
	if err != nil {
		t.Fatal(err)
	}
	if second.TurnNumber != 2 {
		t.Fatalf("TurnNumber=%d", second.TurnNumber)
	}
	if !second.Plan.ReturnTheory || second.Plan.TheoryLimit != 2 {
		t.Fatalf("plan: %+v", second.Plan)
	}
	if len(second.Inspirations) == 0 {
		t.Fatal("expected theory inspirations on turn 2")
	}
	if len(second.Inspirations) > 2 {
		t.Fatalf("theory limit exceeded: %d", len(second.Inspirations))
	}
	for _, item := range second.Inspirations {
		if item.Type != "theory" {
			t.Fatalf("unexpected type %q on turn 2", item.Type)
		}
	}
	// Works were found but held back, so the total exceeds the release.
	if second.TotalCount <= len(second.Inspirations) {
		t.Fatalf("TotalCount=%d should exceed the %d released items",
			second.TotalCount, len(second.Inspirations))
	}
	// Keywords only go out on turns whose plan releases them.
	if len(second.State.Keywords) != 0 {
		t.Fatalf("turn 2 should withhold keywords, got %v", second.State.Keywords)
	}
}

func TestProcessTurnUnknownSessionStartsFresh(t *testing.T) {
	e, _ := newTestEngine(t, nil)

	res, err := e.ProcessTurn(context.Background(), TurnRequest{SessionID: "no-such-session", Input: "记忆"})
	if err != nil {
		t.Fatal(err)
	}
	if res.SessionID == "no-such-session" {
		t.Fatal("unknown session id should be replaced")
	}
	if res.TurnNumber != 1 {
		t.Fatalf("TurnNumber=%d", res.TurnNumber)
	}
}

func TestProcessTurnSceneIndexWalk(t *testing.T) {
	generated := []creative.VisualScene{
		{Title: "一", Visual: "v", Sound: "s", Duration: "10秒", Purpose: "p", Tension: "t"},
		{Title: "二", Visual: "v", Sound: "s", Duration: "10秒", Purpose: "p", Tension: "t"},
	}
	e, _ := newTestEngine(t, fixedScenes{scenes: generated})
	ctx := context.Background()

	var sessionID string
	// Walk to turn 4; keep inputs scenario-flavored so late turns converge.
	inputs := []string{"我想拍记忆", "童年的记忆", "场景在老房间", "场景里只有一把椅子"}
	var last *TurnResult
	for _, in := range inputs {
		res, err := e.ProcessTurn(ctx, TurnRequest{SessionID: sessionID, Input: in})
		if err != nil {
			t.Fatal(err)
		}
		sessionID = res.SessionID
		last = res
	}

	// Turn 4 in converge: one scene at index 0.
	if last.Plan.SceneIndex != 0 || last.Plan.ScenesLimit != 1 {
		t.Fatalf("plan: %+v", last.Plan)
	}
	if len(last.VisualScenes) != 1 || last.VisualScenes[0].Title != "一" {
		t.Fatalf("scenes: %+v", last.VisualScenes)
	}

	// Turn 5 advances the index.
	res5, err := e.ProcessTurn(ctx, TurnRequest{SessionID: sessionID, Input: "场景里再加一个人"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res5.VisualScenes) != 1 || res5.VisualScenes[0].Title != "二" {
		t.Fatalf("turn 5 scenes: %+v", res5.VisualScenes)
	}

	// Turn 6's index runs past the end: empty, not an error.
	res6, err := e.ProcessTurn(ctx, TurnRequest{SessionID: sessionID, Input: "场景还要更空"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res6.VisualScenes) != 0 {
		t.Fatalf("turn 6 scenes: %+v", res6.VisualScenes)
	}
}

func TestProcessTurnSceneErrorIsSoft(t *testing.T) {
	e, _ := newTestEngine(t, fixedScenes{err: errors.New("api down")})
	ctx := context.Background()

	res, err := e.ProcessTurn(ctx, TurnRequest{Input: "为什么始终没有结果"})
	if err != nil {
		t.Fatalf("scene failure must not fail the turn: %v", err)
	}
	if len(res.VisualScenes) != 0 {
		t.Fatalf("scenes: %+v", res.VisualScenes)
	}
}

func TestProcessTurnFrustratedPlan(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	ctx := context.Background()

	res, err := e.ProcessTurn(ctx, TurnRequest{Input: "为什么始终没有结果"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Plan.Sentiment != controller.SentimentFrustrated {
		t.Fatalf("Sentiment=%v", res.Plan.Sentiment)
	}
	if !res.Plan.ReturnScenes || res.Plan.ScenesLimit != 2 {
		t.Fatalf("plan: %+v", res.Plan)
	}
	if !res.Plan.ReturnWorks || res.Plan.WorksLimit != 2 {
		t.Fatalf("plan: %+v", res.Plan)
	}
	if !res.Plan.ExplainProcess || !res.Plan.AdjustStrategy {
		t.Fatalf("plan: %+v", res.Plan)
	}
}

func TestProcessTurnConcurrentSessionsDoNotBleed(t *testing.T) {
	e, sessions := newTestEngine(t, nil)
	ctx := context.Background()

	a1, err := e.ProcessTurn(ctx, TurnRequest{Input: "我想拍记忆"})
	if err != nil {
		t.Fatal(err)
	}
	b1, err := e.ProcessTurn(ctx, TurnRequest{Input: "我想拍战争"})
	if err != nil {
		t.Fatal(err)
	}
	if a1.SessionID == b1.SessionID {
		t.Fatal("expected distinct sessions")
	}

	if _, err := e.ProcessTurn(ctx, TurnRequest{SessionID: a1.SessionID, Input: "童年记忆那种"}); err != nil {
		t.Fatal(err)
	}
	for _, kw := range sessions.AccumulatedKeywords(a1.SessionID) {
		if kw == "战争" {
			t.Fatalf("keywords bled across sessions: %v", sessions.AccumulatedKeywords(a1.SessionID))
		}
	}
	if got := sessions.AccumulatedKeywords(a1.SessionID); len(got) == 0 {
		t.Fatal("session A should have accumulated its own keywords")
	}
}

func TestFilterByPlanOrdersAndLimits(t *testing.T) {
	items := []creative.Inspiration{
		{Type: "work", Title: "w1", RelevanceScore: 0.9},
		{Type: "theory", Title: "t1", RelevanceScore: 0.3},
		{Type: "theory", Title: "t2", RelevanceScore: 0.6},
		{Type: "work", Title: "w2", RelevanceScore: 0.5},
	}
	plan := controller.ContentPlan{
		ReturnTheory: true, TheoryLimit: 1,
		ReturnWorks: true, WorksLimit: 2,
	}

	got := filterByPlan(items, plan)
	if len(got) != 3 {
		t.Fatalf("got %d items", len(got))
	}
	if got[0].Title != "t2" {
		t.Fatalf("highest-relevance theory first, got %q", got[0].Title)
	}
	if got[1].Title != "w1" || got[2].Title != "w2" {
		t.Fatalf("works out of order: %v, %v", got[1].Title, got[2].Title)
	}
}
