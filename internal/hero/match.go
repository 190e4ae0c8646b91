package hero

import (
	"slices"
	"strings"
)

// Matches reports whether term occurs, ignoring case, in the name,
// nationality, alias, team or any power of h.
func Matches(h Hero, term string) bool {
	t := strings.ToLower(term)
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), t) }

	if contains(h.Name) || contains(h.Nationality) {
		return true
	}
	if h.Alias != "" && contains(h.Alias) {
		return true
	}
	if h.Team != "" && contains(h.Team) {
		return true
	}
	return slices.ContainsFunc(h.Powers, contains)
}

// Filter keeps the order of hs.
func Filter(hs []Hero, term string) []Hero {
	out := make([]Hero, 0, len(hs))
	for _, h := range hs {
		if Matches(h, term) {
			out = append(out, h.Clone())
		}
	}
	return out
}

func CloneAll(hs []Hero) []Hero {
	if hs == nil {
		return nil
	}
	out := make([]Hero, len(hs))
	for i, h := range hs {
		out[i] = h.Clone()
	}
	return out
}

// AddPower appends a trimmed power unless it is blank or already present.
// Duplicate checks belong to form editing; the store accepts any list.
func AddPower(powers []string, power string) ([]string, bool) {
	p := strings.TrimSpace(power)
	if p == "" || slices.Contains(powers, p) {
		return powers, false
	}
	return append(powers, p), true
}

func RemovePower(powers []string, power string) []string {
	return slices.DeleteFunc(slices.Clone(powers), func(p string) bool { return p == power })
}
