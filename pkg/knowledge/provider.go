package knowledge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cineforge/muse/pkg/bus"
	"github.com/cineforge/muse/pkg/creative"
	"github.com/cineforge/muse/pkg/logger"
)

const (
	relevanceThreshold = 0.2
	maxResults         = 3
	keywordWeight      = 0.3
)

// relevance scores an entry against keywords: a flat weight per keyword
// that appears anywhere in the entry's serialized text, capped at 1.0.
// Deliberately crude; the corpora are small and hand-curated.
func relevance(serialized string, keywords []string) float64 {
	text := strings.ToLower(serialized)
	score := 0.0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			score += keywordWeight
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// TheoryProvider publishes film theory inspirations on state changes.
type TheoryProvider struct {
	bus    *bus.EventBus
	corpus *TheoryCorpus
}

func NewTheoryProvider(b *bus.EventBus, corpus *TheoryCorpus) *TheoryProvider {
	p := &TheoryProvider{bus: b, corpus: corpus}
	b.Subscribe(bus.EventStateChanged, "theory-provider", p.onStateChanged)
	return p
}

func (p *TheoryProvider) onStateChanged(e bus.Event) error {
	payload, ok := e.Payload.(bus.StateChanged)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", e.Payload)
	}
	if len(payload.Current.Keywords) == 0 {
		logger.DebugC("theory", "No keywords, skipping")
		return nil
	}

	items := p.Search(payload.Current.Keywords)
	if len(items) == 0 {
		return nil
	}
	p.bus.Publish(bus.EventInspirationFound, bus.InspirationFound{
		SessionID: payload.SessionID,
		Items:     items,
		Module:    "theory",
	}, "theory")
	return nil
}

// Search returns the top theory matches for a keyword set.
func (p *TheoryProvider) Search(keywords []string) []creative.Inspiration {
	var results []creative.Inspiration
	for _, theory := range p.corpus.Theories {
		score := relevance(serializeTheory(theory), keywords)
		if score <= relevanceThreshold {
			continue
		}
		results = append(results, creative.Inspiration{
			Type:           "theory",
			Title:          theory.Name,
			Content:        theoryContent(theory),
			RelevanceScore: score,
			Source:         "theory_database",
			Metadata: map[string]any{
				"category":          theory.Category,
				"keywords":          theory.Keywords,
				"related_directors": theory.RelatedDirectors,
				"when_to_use":       theory.WhenToUse,
				"common_mistakes":   theory.CommonMistakes,
			},
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func theoryContent(t TheoryEntry) string {
	var b strings.Builder
	b.WriteString(t.Description)

	if len(t.HowToApply) > 0 {
		b.WriteString("\n\n【如何应用】")
		for _, item := range t.HowToApply {
			fmt.Fprintf(&b, "\n▸ %s\n  %s", item.Title, item.Tip)
			if item.Example != "" {
				fmt.Fprintf(&b, "\n  例如：%s", item.Example)
			}
		}
	}
	if len(t.WhenToUse) > 0 {
		b.WriteString("\n\n【适用于】")
		for _, s := range t.WhenToUse {
			fmt.Fprintf(&b, "\n✓ %s", s)
		}
	}
	if len(t.CommonMistakes) > 0 {
		b.WriteString("\n\n【避免误区】")
		for _, m := range t.CommonMistakes {
			fmt.Fprintf(&b, "\n⚠ %s", m)
		}
	}
	return b.String()
}

func serializeTheory(t TheoryEntry) string {
	parts := []string{t.Name, t.Category, t.Description}
	parts = append(parts, t.Keywords...)
	parts = append(parts, t.RelatedDirectors...)
	parts = append(parts, t.WhenToUse...)
	for _, item := range t.HowToApply {
		parts = append(parts, item.Title, item.Tip, item.Example)
	}
	return strings.Join(parts, " ")
}

// WorkProvider publishes reference-work inspirations on state changes.
type WorkProvider struct {
	bus    *bus.EventBus
	corpus *WorkCorpus
}

func NewWorkProvider(b *bus.EventBus, corpus *WorkCorpus) *WorkProvider {
	p := &WorkProvider{bus: b, corpus: corpus}
	b.Subscribe(bus.EventStateChanged, "work-provider", p.onStateChanged)
	return p
}

func (p *WorkProvider) onStateChanged(e bus.Event) error {
	payload, ok := e.Payload.(bus.StateChanged)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", e.Payload)
	}
	if len(payload.Current.Keywords) == 0 {
		logger.DebugC("work", "No keywords, skipping")
		return nil
	}

	items := p.Search(payload.Current.Keywords)
	if len(items) == 0 {
		return nil
	}
	p.bus.Publish(bus.EventInspirationFound, bus.InspirationFound{
		SessionID: payload.SessionID,
		Items:     items,
		Module:    "work",
	}, "work")
	return nil
}

// Search returns the top work matches for a keyword set, scanning every
// director's filmography.
func (p *WorkProvider) Search(keywords []string) []creative.Inspiration {
	var results []creative.Inspiration
	for _, director := range p.corpus.Directors {
		for _, work := range director.Works {
			score := relevance(serializeWork(work), keywords)
			if score <= relevanceThreshold {
				continue
			}
			results = append(results, creative.Inspiration{
				Type:           "work",
				Title:          fmt.Sprintf("%s - %s (%d)", director.Name, work.Title, work.Year),
				Content:        workContent(work),
				RelevanceScore: score,
				Source:         "work_database",
				Metadata: map[string]any{
					"director":           director.Name,
					"core_tension":       director.CoreTension,
					"theme":              work.Theme,
					"keywords":           work.Keywords,
					"structure_analysis": work.StructureAnalysis,
					"when_to_use":        work.WhenToUse,
					"avoid_when":         work.AvoidWhen,
				},
			})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func workContent(w WorkEntry) string {
	var b strings.Builder
	b.WriteString(w.SceneDescription)

	if len(w.ActionableTips) > 0 {
		b.WriteString("\n\n【如何拍摄】")
		for _, tip := range w.ActionableTips {
			fmt.Fprintf(&b, "\n• %s", tip)
		}
	}
	if len(w.WhenToUse) > 0 {
		b.WriteString("\n\n【适用于】")
		for _, s := range w.WhenToUse {
			fmt.Fprintf(&b, "\n✓ %s", s)
		}
	}
	return b.String()
}

func serializeWork(w WorkEntry) string {
	parts := []string{w.Title, w.Theme, w.SceneDescription}
	parts = append(parts, w.Keywords...)
	parts = append(parts, w.ActionableTips...)
	parts = append(parts, w.WhenToUse...)
	for _, v := range w.StructureAnalysis {
		parts = append(parts, v)
	}
	return strings.Join(parts, " ")
}
