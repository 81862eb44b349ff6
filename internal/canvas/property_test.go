package canvas

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/roach88/canvas/internal/model"
)

// applyOp interprets n as one store mutation against the current tree.
// Rejected mutations are expected; they must leave the tree valid too.
func applyOp(s *Store, n int) {
	ids := s.ElementIDs()
	pick := func(k int) string {
		if len(ids) == 0 {
			return ""
		}
		return ids[k%len(ids)]
	}
	target := pick(n / 7)
	other := pick(n / 13)

	switch n % 6 {
	case 0, 1:
		typ := model.ElementTypes[n%len(model.ElementTypes)]
		_, _ = s.AddElement(NewElement{Type: typ, ParentID: target})
	case 2:
		_ = s.DeleteElement(target)
	case 3:
		_, _ = s.DuplicateElement(target)
	case 4:
		_ = s.MoveElement(target, other, n%3-1)
	case 5:
		_ = s.MoveElement(target, "", n%2)
	}
}

func TestTreeIntegrityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.MaxSize = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("tree integrity holds after every operation", prop.ForAll(
		func(ops []int) bool {
			s := newStore()
			for _, n := range ops {
				applyOp(s, n)
				if err := s.Validate(); err != nil {
					t.Logf("after op %d: %v", n, err)
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 10000)),
	))

	properties.TestingRun(t)
}

func TestDeleteRemovesEveryDescendantProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.MaxSize = 40
	properties := gopter.NewProperties(parameters)

	properties.Property("delete removes the whole subtree and nothing else", prop.ForAll(
		func(ops []int, victim int) bool {
			s := newStore()
			for _, n := range ops {
				applyOp(s, n)
			}
			ids := s.ElementIDs()
			if len(ids) == 0 {
				return true
			}
			id := ids[victim%len(ids)]
			doomed := s.Descendants(id)
			s.Select(ids...)

			if err := s.DeleteElement(id); err != nil {
				return false
			}
			for _, d := range doomed {
				if s.Has(d) {
					return false
				}
			}
			return s.Len() == len(ids)-len(doomed) && len(s.Selection()) == s.Len()
		},
		gen.SliceOf(gen.IntRange(0, 10000)),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
