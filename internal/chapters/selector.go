package chapters

import (
	"fmt"
	"strconv"
	"strings"
)

// Selection restricts a run to positions (0-based) in the chapter order.
// The zero value selects everything. Ranges are kept as bounds.
type Selection struct {
	set    map[int]bool
	ranges []bounds
}

type bounds struct {
	lo, hi int
}

// All reports whether the selection is unrestricted.
func (s Selection) All() bool {
	return s.set == nil
}

func (s Selection) Includes(pos int) bool {
	if s.set == nil || s.set[pos] {
		return true
	}
	for _, r := range s.ranges {
		if pos >= r.lo && pos <= r.hi {
			return true
		}
	}

	return false
}

// Positions returns the selected positions below limit in ascending order.
func (s Selection) Positions(limit int) []int {
	var out []int
	for p := 0; p < limit; p++ {
		if s.Includes(p) {
			out = append(out, p)
		}
	}

	return out
}

// Max returns the highest selected position, or -1 for an unrestricted
// selection.
func (s Selection) Max() int {
	if s.set == nil {
		return -1
	}

	m := -1
	for p := range s.set {
		m = max(m, p)
	}
	for _, r := range s.ranges {
		m = max(m, r.hi)
	}

	return m
}

// ParseSelection builds a selection from positional arguments (single
// positions or comma lists) and an optional inclusive range "a-b".
// No arguments and no range selects everything.
func ParseSelection(args []string, rng string) (Selection, error) {
	if len(args) == 0 && strings.TrimSpace(rng) == "" {
		return Selection{}, nil
	}

	sel := Selection{set: map[int]bool{}}

	for _, arg := range args {
		if err := addList(sel.set, arg); err != nil {
			return Selection{}, err
		}
	}

	if strings.TrimSpace(rng) != "" {
		r, err := parseRange(rng)
		if err != nil {
			return Selection{}, err
		}
		sel.ranges = append(sel.ranges, r)
	}

	return sel, nil
}

func addList(set map[int]bool, list string) error {
	for _, n := range strings.Split(list, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}

		idx, err := atoi(n)
		if err != nil || idx < 0 {
			return fmt.Errorf("invalid position %q", n)
		}
		set[idx] = true
	}

	return nil
}

func parseRange(rng string) (bounds, error) {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return bounds{}, fmt.Errorf("invalid range %q (want a-b)", rng)
	}

	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil || start < 0 || start > end {
		return bounds{}, fmt.Errorf("invalid range %q (want a-b)", rng)
	}

	return bounds{lo: start, hi: end}, nil
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
