package pqueue

import (
	"testing"

	"github.com/Faultbox/qslim/pkg/pair"
)

func TestPopMinOrdersByCost(t *testing.T) {
	q := New()
	q.Insert(pair.Pair{Key: pair.NewKey(0, 1), Cost: 3})
	q.Insert(pair.Pair{Key: pair.NewKey(1, 2), Cost: 1})
	q.Insert(pair.Pair{Key: pair.NewKey(2, 3), Cost: 2})

	var costs []float64
	for q.Len() > 0 {
		p, ok := q.PopMin()
		if !ok {
			t.Fatal("expected a pair")
		}
		costs = append(costs, p.Cost)
	}
	want := []float64{1, 2, 3}
	for i, c := range want {
		if costs[i] != c {
			t.Errorf("pop order %d: got %v want %v", i, costs[i], c)
		}
	}
}

func TestTieBreaksDeterministically(t *testing.T) {
	q := New()
	q.Insert(pair.Pair{Key: pair.NewKey(5, 6), Cost: 1})
	q.Insert(pair.Pair{Key: pair.NewKey(1, 2), Cost: 1})
	q.Insert(pair.Pair{Key: pair.NewKey(3, 4), Cost: 1})

	p, _ := q.PopMin()
	if p.Key != pair.NewKey(1, 2) {
		t.Errorf("expected lowest (V1,V2) to win the tie, got %v", p.Key)
	}
}

func TestRemoveThenReinsertChangesOrder(t *testing.T) {
	q := New()
	k := pair.NewKey(0, 1)
	q.Insert(pair.Pair{Key: k, Cost: 5})
	q.Insert(pair.Pair{Key: pair.NewKey(2, 3), Cost: 10})

	if !q.Contains(k) {
		t.Fatal("expected key to be resident")
	}
	q.Remove(k)
	if q.Contains(k) {
		t.Fatal("expected key to be removed")
	}
	q.Insert(pair.Pair{Key: k, Cost: 20})

	p, _ := q.PopMin()
	if p.Key != pair.NewKey(2, 3) {
		t.Errorf("expected the untouched pair to pop first after reinsertion raised the other's cost, got %v", p.Key)
	}
}

func TestPopMinEmpty(t *testing.T) {
	q := New()
	if _, ok := q.PopMin(); ok {
		t.Fatal("expected PopMin on empty queue to report false")
	}
}
