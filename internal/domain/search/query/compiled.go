package query

// BoostModeSum adds function scores to the query score.
const BoostModeSum = "sum"

// Compiled is the immutable output of one compile call.
type Compiled struct {
	root      Clause
	bool      Bool
	filters   []Clause
	functions []Function
	sort      []SortKey
	minScore  float64
}

// New assembles a Compiled query. Filters are merged into the bool's filter list;
// when functions are present the bool is wrapped in a function-score envelope.
// An empty query with no functions becomes match-all.
func New(b Bool, filters []Clause, functions []Function, sort []SortKey, minScore, functionMinScore float64) Compiled {
	b.Filter = append(append([]Clause(nil), b.Filter...), filters...)

	var root Clause
	switch {
	case len(functions) > 0:
		fs := FunctionScore{Query: b, Functions: functions, BoostMode: BoostModeSum}
		if functionMinScore > 0 {
			ms := functionMinScore
			fs.MinScore = &ms
		}
		root = fs
	case b.IsEmpty():
		root = MatchAll{}
	default:
		root = b
	}

	return Compiled{
		root:      root,
		bool:      b,
		filters:   filters,
		functions: functions,
		sort:      sort,
		minScore:  minScore,
	}
}

// Root returns the top-level clause sent to the backend.
func (c *Compiled) Root() Clause { return c.root }

// Bool returns the boolean tree, filters included.
func (c *Compiled) Bool() Bool { return c.bool }

// Filters returns the hard constraints independent of scoring.
func (c *Compiled) Filters() []Clause { return c.filters }

// Functions returns the scoring functions.
func (c *Compiled) Functions() []Function { return c.functions }

// Sort returns the sort keys; empty means backend relevance order.
func (c *Compiled) Sort() []SortKey { return c.sort }

// MinScore returns the top-level minimum score, zero meaning none.
func (c *Compiled) MinScore() float64 { return c.minScore }
