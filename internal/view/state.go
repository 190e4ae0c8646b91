package view

import "HeroCatalog/internal/hero"

// State is what a presentation renders. Search is the raw input; Query is
// the term Filtered currently reflects. Editing is nil while the form creates
// a new record.
type State struct {
	Heroes   []hero.Hero
	Filtered []hero.Hero
	Search   string
	Query    string
	Selected *hero.Hero
	FormOpen bool
	Editing  *hero.Hero
	Busy     bool
}

func (s State) Count() int         { return len(s.Heroes) }
func (s State) FilteredCount() int { return len(s.Filtered) }

// Find looks a record up in the full collection.
func (s State) Find(id string) (hero.Hero, bool) {
	for _, h := range s.Heroes {
		if h.ID == id {
			return h.Clone(), true
		}
	}
	return hero.Hero{}, false
}

func (s State) clone() State {
	out := s
	out.Heroes = hero.CloneAll(s.Heroes)
	out.Filtered = hero.CloneAll(s.Filtered)
	out.Selected = cloneRef(s.Selected)
	out.Editing = cloneRef(s.Editing)
	return out
}

func cloneRef(h *hero.Hero) *hero.Hero {
	if h == nil {
		return nil
	}
	c := h.Clone()
	return &c
}
