// Package presenter turns successive course snapshots into row operations
// for a list view.
package presenter

import (
	"fmt"
	"sort"
	"strings"

	"coursekeeper/internal/domain/course"
)

type Kind int

const (
	Insert Kind = iota + 1
	Remove
	Update
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Remove:
		return "remove"
	case Update:
		return "update"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Op is one row instruction. Position refers to the list as it stands when
// the op is applied, ops being applied in slice order.
type Op struct {
	Kind     Kind
	Position int
	Course   course.Course
}

func (o Op) String() string {
	return fmt.Sprintf("%s %d %s", o.Kind, o.Position, o.Course.ID)
}

// FormatOps renders ops one per line.
func FormatOps(ops []Op) string {
	var b strings.Builder
	for _, op := range ops {
		b.WriteString(op.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Diff returns the operations that turn prev into next.
//
// Rows are matched by course ID. Matched rows that keep their relative order
// (the longest increasing run of their new positions) stay in place and get
// an Update only when their content changed; every other row is removed and
// inserted again. Ops come as removals in descending position, then
// insertions in ascending position, then updates at final positions.
func Diff(prev, next []course.Course) []Op {
	nextIndex := make(map[string]int, len(next))
	for j, c := range next {
		if _, dup := nextIndex[c.ID]; !dup {
			nextIndex[c.ID] = j
		}
	}

	match := make([]int, len(prev))
	claimed := make(map[string]bool, len(prev))
	for i, c := range prev {
		j, ok := nextIndex[c.ID]
		if !ok || claimed[c.ID] {
			match[i] = -1
			continue
		}
		claimed[c.ID] = true
		match[i] = j
	}

	keep := longestIncreasing(match)

	var ops []Op
	for i := len(prev) - 1; i >= 0; i-- {
		if !keep[i] {
			ops = append(ops, Op{Kind: Remove, Position: i, Course: prev[i]})
		}
	}

	origin := make([]int, len(next))
	for j := range origin {
		origin[j] = -1
	}
	for i, ok := range keep {
		if ok {
			origin[match[i]] = i
		}
	}

	for j, c := range next {
		if origin[j] < 0 {
			ops = append(ops, Op{Kind: Insert, Position: j, Course: c})
		}
	}
	for j, c := range next {
		if origin[j] >= 0 && !prev[origin[j]].Equal(c) {
			ops = append(ops, Op{Kind: Update, Position: j, Course: c})
		}
	}

	return ops
}

// longestIncreasing marks the entries of one longest strictly increasing
// subsequence of seq, ignoring negative entries. Runs in O(n log n).
func longestIncreasing(seq []int) []bool {
	keep := make([]bool, len(seq))
	back := make([]int, len(seq))
	var tails []int

	for i, v := range seq {
		if v < 0 {
			continue
		}
		k := sort.Search(len(tails), func(k int) bool {
			return seq[tails[k]] >= v
		})
		back[i] = -1
		if k > 0 {
			back[i] = tails[k-1]
		}
		if k == len(tails) {
			tails = append(tails, i)
		} else {
			tails[k] = i
		}
	}

	if len(tails) == 0 {
		return keep
	}
	for i := tails[len(tails)-1]; i >= 0; i = back[i] {
		keep[i] = true
	}
	return keep
}

// Apply replays ops on a copy of rows.
func Apply(rows []course.Course, ops []Op) ([]course.Course, error) {
	out := append([]course.Course(nil), rows...)
	for n, op := range ops {
		switch op.Kind {
		case Remove:
			if op.Position < 0 || op.Position >= len(out) {
				return nil, fmt.Errorf("op %d: remove at %d out of range [0,%d)", n, op.Position, len(out))
			}
			out = append(out[:op.Position], out[op.Position+1:]...)
		case Insert:
			if op.Position < 0 || op.Position > len(out) {
				return nil, fmt.Errorf("op %d: insert at %d out of range [0,%d]", n, op.Position, len(out))
			}
			out = append(out, course.Course{})
			copy(out[op.Position+1:], out[op.Position:])
			out[op.Position] = op.Course
		case Update:
			if op.Position < 0 || op.Position >= len(out) {
				return nil, fmt.Errorf("op %d: update at %d out of range [0,%d)", n, op.Position, len(out))
			}
			out[op.Position] = op.Course
		default:
			return nil, fmt.Errorf("op %d: unknown kind %s", n, op.Kind)
		}
	}
	return out, nil
}
