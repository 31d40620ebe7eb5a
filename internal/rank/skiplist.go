// Package rank implements the arcade leaderboard: a skip list with
// augmented span counts for O(log n) rank and range queries, the same
// pattern Redis ZSET uses.
//
// Origin: Pugh (1990), "Skip Lists: A Probabilistic Alternative to
// Balanced Trees".
package rank

import "math/rand"

const (
	maxLevel         = 32
	levelProbability = 0.25
)

// scored is one node payload: ordering is score descending, then name
// ascending for ties.
type scored struct {
	name  string
	score float64
}

// before reports whether a sorts ahead of b.
func (a scored) before(b scored) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.name < b.name
}

type skipNode struct {
	entry scored
	next  []*skipNode
	span  []int
}

// skipList is a rank-augmented skip list ordered by (score desc, name
// asc). Not safe for concurrent use; the owning Board serializes access.
// Nodes are addressed by their full (score, name) pair so removal and
// rank queries walk the same order the list is sorted in.
type skipList struct {
	head   *skipNode
	level  int
	length int
	rng    *rand.Rand
}

func newSkipList(rng *rand.Rand) *skipList {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &skipList{
		head: &skipNode{
			next: make([]*skipNode, maxLevel),
			span: make([]int, maxLevel),
		},
		level: 1,
		rng:   rng,
	}
}

func (sl *skipList) randomLevel() int {
	level := 1
	for level < maxLevel && sl.rng.Float64() < levelProbability {
		level++
	}
	return level
}

// insert adds an entry. The caller guarantees the (score, name) pair is
// not already present; updates remove the old pair first.
func (sl *skipList) insert(e scored) {
	update := make([]*skipNode, maxLevel)
	rank := make([]int, maxLevel)

	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		if i == sl.level-1 {
			rank[i] = 0
		} else {
			rank[i] = rank[i+1]
		}
		for x.next[i] != nil && x.next[i].entry.before(e) {
			rank[i] += x.span[i]
			x = x.next[i]
		}
		update[i] = x
	}

	newLevel := sl.randomLevel()
	if newLevel > sl.level {
		for i := sl.level; i < newLevel; i++ {
			rank[i] = 0
			update[i] = sl.head
			update[i].span[i] = sl.length
		}
		sl.level = newLevel
	}

	node := &skipNode{
		entry: e,
		next:  make([]*skipNode, newLevel),
		span:  make([]int, newLevel),
	}
	for i := 0; i < newLevel; i++ {
		node.next[i] = update[i].next[i]
		update[i].next[i] = node
		node.span[i] = update[i].span[i] - (rank[0] - rank[i])
		update[i].span[i] = (rank[0] - rank[i]) + 1
	}
	for i := newLevel; i < sl.level; i++ {
		update[i].span[i]++
	}

	sl.length++
}

// remove drops the node matching the (score, name) pair exactly.
func (sl *skipList) remove(e scored) bool {
	update := make([]*skipNode, maxLevel)

	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && x.next[i].entry.before(e) {
			x = x.next[i]
		}
		update[i] = x
	}

	x = x.next[0]
	if x == nil || x.entry != e {
		return false
	}

	for i := 0; i < sl.level; i++ {
		if update[i].next[i] == x {
			update[i].span[i] += x.span[i] - 1
			update[i].next[i] = x.next[i]
		} else {
			update[i].span[i]--
		}
	}
	for sl.level > 1 && sl.head.next[sl.level-1] == nil {
		sl.level--
	}
	sl.length--
	return true
}

// rankOf returns the 1-indexed rank of the (score, name) pair, 0 when
// absent.
func (sl *skipList) rankOf(e scored) int {
	rank := 0
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && (x.next[i].entry.before(e) || x.next[i].entry == e) {
			rank += x.span[i]
			x = x.next[i]
			if x.entry == e {
				return rank
			}
		}
	}
	return 0
}

// rangeOf returns entries in rank order [start, end], 1-indexed
// inclusive.
func (sl *skipList) rangeOf(start, end int) []scored {
	if start <= 0 {
		start = 1
	}
	if end > sl.length {
		end = sl.length
	}
	if start > end {
		return nil
	}

	traversed := 0
	x := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for x.next[i] != nil && traversed+x.span[i] < start {
			traversed += x.span[i]
			x = x.next[i]
		}
	}

	result := make([]scored, 0, end-start+1)
	x = x.next[0]
	for x != nil && traversed < end {
		traversed++
		if traversed >= start {
			result = append(result, x.entry)
		}
		x = x.next[0]
	}
	return result
}

func (sl *skipList) len() int { return sl.length }

func (sl *skipList) clear() {
	for i := range sl.head.next {
		sl.head.next[i] = nil
		sl.head.span[i] = 0
	}
	sl.level = 1
	sl.length = 0
}
