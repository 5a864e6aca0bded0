// Package queue provides a bounded priority queue for top-k selection.
//
// The queue keeps only the k best candidates seen so far in a min-oriented
// heap of capacity k, discarding the current worst whenever a better
// candidate arrives. Selection over n candidates costs O(n log k) with O(k)
// memory, the right tradeoff when k is much smaller than n.
package queue

// ScoreIndex pairs a similarity score with the candidate's position in its
// collection. Higher scores are better; equal scores order by lower index
// so results are deterministic regardless of scan order.
type ScoreIndex struct {
	Score float32 // Similarity score, higher is more similar.
	Index uint32  // Position of the candidate within its collection.
}

// worse reports whether a ranks strictly worse than b.
func worse(a, b ScoreIndex) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Index > b.Index
}

// TopK is a bounded min-heap of ScoreIndex items.
// The zero value is not usable; create instances with NewTopK.
type TopK struct {
	k     int
	items []ScoreIndex // min-heap ordered by worse: items[0] is the worst kept
}

// NewTopK creates a bounded queue keeping the k best candidates.
// k == 0 yields a queue that discards everything.
func NewTopK(k int) *TopK {
	capacity := k
	if capacity > 1024 {
		capacity = 1024 // Grown on demand; avoids huge upfront allocations.
	}
	return &TopK{
		k:     k,
		items: make([]ScoreIndex, 0, capacity),
	}
}

// Len returns the number of candidates currently held.
func (t *TopK) Len() int { return len(t.items) }

// Worst returns the worst candidate currently held.
func (t *TopK) Worst() (ScoreIndex, bool) {
	if len(t.items) == 0 {
		return ScoreIndex{}, false
	}
	return t.items[0], true
}

// Push offers a candidate. When the queue is full the candidate is kept only
// if it beats the current worst, which is then discarded.
func (t *TopK) Push(item ScoreIndex) {
	if t.k == 0 {
		return
	}
	if len(t.items) < t.k {
		t.items = append(t.items, item)
		t.siftUp(len(t.items) - 1)
		return
	}
	if !worse(t.items[0], item) {
		return
	}
	t.items[0] = item
	t.siftDown(0)
}

// Merge drains other into t.
func (t *TopK) Merge(other *TopK) {
	for _, item := range other.items {
		t.Push(item)
	}
	other.items = other.items[:0]
}

// Drain empties the queue and returns its contents best-first.
func (t *TopK) Drain() []ScoreIndex {
	out := make([]ScoreIndex, len(t.items))
	for i := len(t.items) - 1; i >= 0; i-- {
		out[i] = t.pop()
	}
	return out
}

// pop removes and returns the worst candidate.
func (t *TopK) pop() ScoreIndex {
	n := len(t.items)
	root := t.items[0]
	last := t.items[n-1]
	t.items = t.items[:n-1]
	if n-1 > 0 {
		t.items[0] = last
		t.siftDown(0)
	}
	return root
}

func (t *TopK) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !worse(t.items[i], t.items[p]) {
			return
		}
		t.items[i], t.items[p] = t.items[p], t.items[i]
		i = p
	}
}

func (t *TopK) siftDown(i int) {
	n := len(t.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		worst := l
		if r := l + 1; r < n && worse(t.items[r], t.items[l]) {
			worst = r
		}
		if !worse(t.items[worst], t.items[i]) {
			return
		}
		t.items[i], t.items[worst] = t.items[worst], t.items[i]
		i = worst
	}
}
