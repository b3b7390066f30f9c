package bank

import (
	"fmt"
	"strings"
)

// buildDedup formats known prompt texts for the prompt, keeping the most
// recent max entries. Returns "None" if there are none.
func buildDedup(texts []string, max int) string {
	if len(texts) == 0 {
		return "None"
	}

	if max > 0 && len(texts) > max {
		texts = texts[len(texts)-max:]
	}

	var b strings.Builder
	for i, q := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

// textSet de-duplicates prompt texts by case-insensitive exact match.
type textSet struct {
	seen  map[string]struct{}
	order []string
}

func newTextSet(texts []string) *textSet {
	s := &textSet{seen: make(map[string]struct{}, len(texts))}
	// texts arrive newest first; keep order oldest first.
	for i := len(texts) - 1; i >= 0; i-- {
		s.add(texts[i])
	}
	return s
}

func dedupKey(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func (s *textSet) add(text string) bool {
	k := dedupKey(text)
	if k == "" {
		return false
	}
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	s.order = append(s.order, text)
	return true
}

// filter drops candidates whose prompt text is already known, including
// repeats within cands, and remembers the survivors.
func (s *textSet) filter(cands []Candidate) (kept []Candidate, dropped int) {
	for _, c := range cands {
		if !s.add(c.PromptText()) {
			dropped++
			continue
		}
		kept = append(kept, c)
	}
	return kept, dropped
}

// recent returns up to max texts, oldest first.
func (s *textSet) recent(max int) []string {
	if max > 0 && len(s.order) > max {
		return s.order[len(s.order)-max:]
	}
	return s.order
}
