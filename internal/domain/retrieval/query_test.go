package retrieval

import (
	"strings"
	"testing"
)

func TestNewQuery_Defaults(t *testing.T) {
	q, err := NewQuery("how do I rotate a key", 0, 0, Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.TopK() != DefaultTopK {
		t.Errorf("expected default top_k %d, got %d", DefaultTopK, q.TopK())
	}
}

func TestNewQuery_ClampsTopK(t *testing.T) {
	q, err := NewQuery("query", MaxTopK+100, 0, Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.TopK() != MaxTopK {
		t.Errorf("expected top_k clamped to %d, got %d", MaxTopK, q.TopK())
	}
}

func TestNewQuery_EmptyText(t *testing.T) {
	if _, err := NewQuery("", 10, 0, Filter{}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestNewQuery_TooLong(t *testing.T) {
	if _, err := NewQuery(strings.Repeat("q", MaxQueryLength+1), 10, 0, Filter{}); err == nil {
		t.Fatal("expected error for oversized query")
	}
}

func TestNewQuery_ThresholdRange(t *testing.T) {
	for _, th := range []float64{-0.1, 1.1} {
		if _, err := NewQuery("query", 10, th, Filter{}); err == nil {
			t.Errorf("expected error for threshold %f", th)
		}
	}
	if _, err := NewQuery("query", 10, 1.0, Filter{}); err != nil {
		t.Errorf("threshold 1.0 should be accepted: %v", err)
	}
}

func TestNewQuery_NegativeTopK(t *testing.T) {
	if _, err := NewQuery("query", -1, 0, Filter{}); err == nil {
		t.Fatal("expected error for negative top_k")
	}
}

func TestNewFilter_TooManyConditions(t *testing.T) {
	conds := make([]Condition, MaxConditions+1)
	for i := range conds {
		conds[i], _ = NewMatch("category", "faq", MatchExact)
	}
	if _, err := NewFilter(conds, nil, nil); err == nil {
		t.Fatal("expected error for too many conditions")
	}
}

func TestNewMatch_Modes(t *testing.T) {
	c, err := NewMatch("category", "faq", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Mode() != MatchExact {
		t.Errorf("expected default mode exact, got %s", c.Mode())
	}

	if _, err := NewMatch("category", "faq", MatchMode("regex")); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestNewRangeBounds_Validation(t *testing.T) {
	v := 1.0
	if _, err := NewRangeBounds(nil, nil, nil, nil); err == nil {
		t.Fatal("expected error for empty range")
	}
	if _, err := NewRangeBounds(&v, &v, nil, nil); err == nil {
		t.Fatal("expected error for both gt and gte")
	}
	if _, err := NewRangeBounds(nil, nil, &v, &v); err == nil {
		t.Fatal("expected error for both lt and lte")
	}
	if _, err := NewRangeBounds(&v, nil, nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
