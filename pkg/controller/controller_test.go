package controller

import (
	"testing"

	"github.com/cineforge/muse/pkg/creative"
)

func TestDetectSentiment(t *testing.T) {
	cases := []struct {
		input string
		want  Sentiment
	}{
		{"为什么始终没有结果", SentimentFrustrated},
		{"这是什么意思", SentimentConfused},
		{"很好，继续", SentimentSatisfied},
		{"然后呢？", SentimentCurious},
		{"嗯", SentimentNeutral},
	}
	for _, c := range cases {
		if got := DetectSentiment(c.input); got != c.want {
			t.Fatalf("input %q: got %v, want %v", c.input, got, c.want)
		}
	}
}

func TestDetectSentimentPrecedence(t *testing.T) {
	// Frustration cues outrank confusion cues in the same input.
	if got := DetectSentiment("为什么不明白我的意思"); got != SentimentFrustrated {
		t.Fatalf("got %v, want frustrated", got)
	}
}

func TestDetectSentimentLongInputIsCurious(t *testing.T) {
	long := "我在想这个故事里的人物关系到底应该设计成什么样的结构比较合适"
	if got := DetectSentiment(long); got != SentimentCurious {
		t.Fatalf("got %v, want curious", got)
	}
}

func TestPlanFrustratedSwitchesToConcrete(t *testing.T) {
	c := New()
	plan := c.Plan(5, creative.StageFocus, "为什么一直没有结果")

	if !plan.ReturnScenes || plan.ScenesLimit != 2 {
		t.Fatalf("scenes: %+v", plan)
	}
	if !plan.ReturnWorks || plan.WorksLimit != 2 {
		t.Fatalf("works: %+v", plan)
	}
	if !plan.ExplainProcess || !plan.AdjustStrategy {
		t.Fatalf("strategy flags: %+v", plan)
	}
	if !plan.ReturnQuestion {
		t.Fatal("question must always be returned")
	}
}

func TestPlanConfusedExplainsOnly(t *testing.T) {
	c := New()
	plan := c.Plan(3, creative.StageFocus, "不懂你在说什么")

	if !plan.ExplainProcess {
		t.Fatal("expected process explanation")
	}
	if plan.ReturnTheory || plan.ReturnWorks || plan.ReturnScenes || plan.ReturnKeywords {
		t.Fatalf("confused plan should carry no content: %+v", plan)
	}
}

func TestPlanFirstTurnKeywordsOnly(t *testing.T) {
	c := New()
	plan := c.Plan(1, creative.StageClarify, "我想拍一部电影")

	if !plan.ReturnKeywords || !plan.ReturnQuestion {
		t.Fatalf("plan: %+v", plan)
	}
	if plan.ReturnTheory || plan.ReturnWorks || plan.ReturnScenes {
		t.Fatalf("turn 1 should return keywords only: %+v", plan)
	}
}

func TestPlanTurnTwoByStage(t *testing.T) {
	c := New()

	if p := c.Plan(2, creative.StageClarify, "嗯"); !p.ReturnTheory || p.TheoryLimit != 2 {
		t.Fatalf("early stage turn 2: %+v", p)
	}
	if p := c.Plan(2, creative.StageDiverge, "嗯"); !p.ReturnWorks || p.WorksLimit != 2 {
		t.Fatalf("late stage turn 2: %+v", p)
	}
}

func TestPlanTurnThreeByStage(t *testing.T) {
	c := New()

	if p := c.Plan(3, creative.StageFocus, "嗯"); !p.ReturnWorks || p.WorksLimit != 2 {
		t.Fatalf("early stage turn 3: %+v", p)
	}
	p := c.Plan(3, creative.StageConverge, "嗯")
	if !p.ReturnScenes || p.ScenesLimit != 1 || p.SceneIndex != 0 {
		t.Fatalf("late stage turn 3: %+v", p)
	}
}

func TestPlanLaterTurnsWalkScenes(t *testing.T) {
	c := New()

	for turn := 4; turn <= 6; turn++ {
		p := c.Plan(turn, creative.StageConverge, "嗯")
		if !p.ReturnScenes || p.ScenesLimit != 1 {
			t.Fatalf("turn %d: %+v", turn, p)
		}
		if p.SceneIndex != turn-4 {
			t.Fatalf("turn %d: SceneIndex = %d", turn, p.SceneIndex)
		}
	}
}

func TestPlanOrganizeReturnsAllScenes(t *testing.T) {
	c := New()
	p := c.Plan(8, creative.StageOrganize, "嗯")
	if !p.ReturnScenes || p.ScenesLimit != 0 {
		t.Fatalf("organize plan: %+v", p)
	}
}

func TestPlanLateEarlyStageAlternates(t *testing.T) {
	c := New()

	if p := c.Plan(4, creative.StageClarify, "嗯"); !p.ReturnTheory || p.TheoryLimit != 1 {
		t.Fatalf("even turn: %+v", p)
	}
	if p := c.Plan(5, creative.StageClarify, "嗯"); !p.ReturnWorks || p.WorksLimit != 2 {
		t.Fatalf("odd turn: %+v", p)
	}
}

func TestShouldExplainProgress(t *testing.T) {
	c := New()
	for turn := 1; turn <= 12; turn++ {
		want := turn == 1 || turn == 4 || turn == 7 || turn == 10
		if got := c.ShouldExplainProgress(turn); got != want {
			t.Fatalf("turn %d: got %v, want %v", turn, got, want)
		}
	}
}

func TestProgressMessage(t *testing.T) {
	c := New()
	if msg := c.ProgressMessage(1, creative.StageClarify); msg == "" {
		t.Fatal("expected message on turn 1")
	}
	if msg := c.ProgressMessage(5, creative.StageFocus); msg != "" {
		t.Fatalf("expected empty message on turn 5, got %q", msg)
	}
}
