package retrieval

import "fmt"

// MaxConditions is the maximum number of metadata conditions per query.
const MaxConditions = 32

// MatchMode controls how a tag match condition compares values.
type MatchMode string

const (
	// MatchExact matches the whole tag value.
	MatchExact MatchMode = "exact"
	// MatchContains matches the value as an infix.
	MatchContains MatchMode = "contains"
)

// Filter is a structured metadata pre-filter with must/should/must_not
// boolean semantics, applied by the search index before scoring.
type Filter struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewFilter validates and creates a Filter.
func NewFilter(must, should, mustNot []Condition) (Filter, error) {
	if len(must)+len(should)+len(mustNot) > MaxConditions {
		return Filter{}, fmt.Errorf("too many metadata conditions (max %d)", MaxConditions)
	}
	return Filter{must: must, should: should, mustNot: mustNot}, nil
}

// Must returns the must conditions.
func (f Filter) Must() []Condition { return f.must }

// Should returns the should conditions.
func (f Filter) Should() []Condition { return f.should }

// MustNot returns the must-not conditions.
func (f Filter) MustNot() []Condition { return f.mustNot }

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool {
	return len(f.must) == 0 && len(f.should) == 0 && len(f.mustNot) == 0
}

// Condition is a single filter clause: either a tag match or a numeric range.
type Condition struct {
	key       string
	match     string
	matchMode MatchMode
	rangeExpr *Range
}

// NewMatch creates a tag match condition.
func NewMatch(key, value string, mode MatchMode) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	if mode == "" {
		mode = MatchExact
	}
	if mode != MatchExact && mode != MatchContains {
		return Condition{}, fmt.Errorf("invalid match mode %q for key %q", mode, key)
	}
	return Condition{key: key, match: value, matchMode: mode}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the metadata field name.
func (c Condition) Key() string { return c.key }

// Match returns the tag match value.
func (c Condition) Match() string { return c.match }

// Mode returns the tag match mode.
func (c Condition) Mode() MatchMode { return c.matchMode }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a tag match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a numeric range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeBounds validates and creates a Range.
// At least one boundary is required. gt/gte and lt/lte are mutually exclusive.
func NewRangeBounds(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }
