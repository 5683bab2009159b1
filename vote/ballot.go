// Package vote implements a streaming majority vote with an early stop.
package vote

import (
	"cmp"
	"fmt"
	"slices"

	"golang.org/x/exp/constraints"
)

// Ballot counts votes for integer candidates and tracks a leader.
//
// The leader changes only when the candidate that was just voted for
// strictly exceeds the leader's count; ties keep the incumbent. Once the
// leader reaches the threshold the ballot is closed and further votes are
// ignored.
//
// The zero value is not usable, see New.
type Ballot[T constraints.Integer] struct {
	threshold   int
	counts      map[T]int
	casts       int
	leader      T
	leaderCount int
	hasLeader   bool
}

func New[T constraints.Integer](threshold int) (*Ballot[T], error) {
	if threshold < 1 {
		return nil, fmt.Errorf("the threshold must be positive, got %d", threshold)
	}
	return &Ballot[T]{
		threshold: threshold,
		counts:    map[T]int{},
	}, nil
}

func (b *Ballot[T]) Threshold() int {
	return b.threshold
}

// Cast registers a vote and returns true if the leader has reached the
// threshold, in which case the caller is expected to stop voting.
func (b *Ballot[T]) Cast(v T) bool {
	if b.Decided() {
		return true
	}
	b.casts++
	b.counts[v]++
	switch {
	case b.hasLeader && v == b.leader:
		b.leaderCount++
	case b.counts[v] > b.leaderCount:
		b.leader, b.leaderCount, b.hasLeader = v, b.counts[v], true
	}
	return b.Decided()
}

// Leader returns the current leader with its count, and false if no vote
// was cast yet.
func (b *Ballot[T]) Leader() (T, int, bool) {
	if !b.hasLeader {
		var zero T
		return zero, 0, false
	}
	return b.leader, b.leaderCount, true
}

func (b *Ballot[T]) Decided() bool {
	return b.hasLeader && b.leaderCount >= b.threshold
}

func (b *Ballot[T]) Count(v T) int {
	return b.counts[v]
}

func (b *Ballot[T]) Casts() int {
	return b.casts
}

type Standing[T constraints.Integer] struct {
	Candidate T
	Count     int
}

func (s Standing[T]) String() string {
	return fmt.Sprintf("%v×%d", s.Candidate, s.Count)
}

// Standings returns every candidate that got a vote, most voted first;
// candidates with equal counts are ordered by value.
func (b *Ballot[T]) Standings() []Standing[T] {
	result := make([]Standing[T], 0, len(b.counts))
	for candidate, count := range b.counts {
		result = append(result, Standing[T]{Candidate: candidate, Count: count})
	}
	slices.SortFunc(result, func(a, b Standing[T]) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Candidate, b.Candidate)
	})
	return result
}
