package intent

import "testing"

func TestAnalyzeRefinementCues(t *testing.T) {
	a := NewRuleAnalyzer()

	got := a.AnalyzeRefinement("还要加上一些怀旧的感觉", nil)
	if !got.IsRefinement {
		t.Fatal("add cue should mark input as refinement")
	}
	if got.RefinementType != "add" {
		t.Fatalf("RefinementType = %q, want add", got.RefinementType)
	}
	if len(got.NewKeywords) != 1 || got.NewKeywords[0] != "怀旧" {
		t.Fatalf("NewKeywords = %v", got.NewKeywords)
	}
}

func TestAnalyzeDimensionCueAloneIsRefinement(t *testing.T) {
	a := NewRuleAnalyzer()

	got := a.AnalyzeRefinement("光线可以再暗一点", nil)
	if !got.IsRefinement {
		t.Fatal("dimension cue should mark input as refinement")
	}
	if got.DimensionShift != "光线" {
		t.Fatalf("DimensionShift = %q, want 光线", got.DimensionShift)
	}
	if got.RefinementType != "" {
		t.Fatalf("RefinementType = %q, want empty", got.RefinementType)
	}
}

func TestAnalyzeNewTopic(t *testing.T) {
	a := NewRuleAnalyzer()

	got := a.AnalyzeRefinement("我想拍一部关于记忆的电影", nil)
	if got.IsRefinement {
		t.Fatal("plain topic input should not be refinement")
	}
	if len(got.NewKeywords) != 1 || got.NewKeywords[0] != "记忆" {
		t.Fatalf("NewKeywords = %v", got.NewKeywords)
	}
	if got.DimensionShift != "" || got.RefinementType != "" {
		t.Fatalf("unexpected dimension %q or type %q", got.DimensionShift, got.RefinementType)
	}
}

func TestAnalyzeExcludedKeywords(t *testing.T) {
	a := NewRuleAnalyzer()
	context := []string{"城市", "记忆"}

	got := a.AnalyzeRefinement("不要城市的部分", context)
	if got.RefinementType != "exclude" {
		t.Fatalf("RefinementType = %q, want exclude", got.RefinementType)
	}
	if len(got.ExcludedKeywords) != 1 || got.ExcludedKeywords[0] != "城市" {
		t.Fatalf("ExcludedKeywords = %v", got.ExcludedKeywords)
	}

	// The exclusion cue alone names nothing from context.
	got = a.AnalyzeRefinement("去掉那些多余的东西", context)
	if len(got.ExcludedKeywords) != 0 {
		t.Fatalf("ExcludedKeywords = %v, want empty", got.ExcludedKeywords)
	}

	// A context keyword mentioned without an exclusion cue stays.
	got = a.AnalyzeRefinement("城市的感觉很好", context)
	if len(got.ExcludedKeywords) != 0 {
		t.Fatalf("ExcludedKeywords = %v, want empty", got.ExcludedKeywords)
	}
}

func TestAnalyzeTypePrecedence(t *testing.T) {
	a := NewRuleAnalyzer()
	// Both an add and an exclude cue present: add wins.
	got := a.AnalyzeRefinement("另外不要太亮", nil)
	if got.RefinementType != "add" {
		t.Fatalf("RefinementType = %q, want add", got.RefinementType)
	}
}

func TestDetectDimensionOrder(t *testing.T) {
	a := NewRuleAnalyzer()
	cases := []struct {
		input string
		want  string
	}{
		{"色调偏冷一点", "色彩"},
		{"构图再紧凑些", "构图"},
		{"自然光的感觉", "光线"},
		{"时长控制在三分钟", "时间"},
		{"节奏快一点", "节奏"},
		{"配乐用钢琴", "声音"},
		{"讲一个故事", ""},
	}
	for _, c := range cases {
		if got := a.AnalyzeRefinement(c.input, nil).DimensionShift; got != c.want {
			t.Fatalf("input %q: dimension %q, want %q", c.input, got, c.want)
		}
	}
}
