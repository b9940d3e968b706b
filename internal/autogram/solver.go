package autogram

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/verte-zerg/autogram/internal/numerals"
)

// maxRandomizeLevel bounds the widening of the randomization window. Past MaxCount the window
// covers the whole spellable range, so the extra levels are plain retries.
const maxRandomizeLevel = 4 * numerals.MaxCount

// StepResult reports the outcome of one Advance call.
type StepResult struct {
	// Success is set once the proposed counts reproduce themselves.
	Success bool
	// Randomized is set when the damped candidate had been tried before.
	Randomized bool
	// Reordered is set when the computed counts were a permutation of the proposal.
	Reordered bool
}

// Solver searches a Model for a fixed point. A Solver is not safe for concurrent use; run
// independent solvers to search in parallel.
type Solver struct {
	model *Model
	table *FrequencyTable
	seed  *uint64
	rnd   *rand.Rand

	floor    []int
	baseline []int

	proposed []int
	last     []int
	computed []int
	seen     *SeenSet

	converged  bool
	iterations int
}

// NewSolver returns a solver positioned at the model's minimum counts. A nil seed seeds the
// random source from the clock.
func NewSolver(m *Model, seed *uint64) *Solver {
	s := &Solver{
		model:    m,
		table:    m.table,
		baseline: m.VariableBaseline(),
		floor:    m.VariableMinimum(),
	}
	if seed != nil {
		v := *seed
		s.seed = &v
	}
	for i, f := range s.floor {
		if f < 0 {
			s.floor[i] = 0
		}
	}
	s.rnd = newRand(s.seed)
	s.Reset(false)
	return s
}

func newRand(seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(int64(*seed)))
}

// Reset discards the search state. When resetRandom is set the random source restarts from the
// solver's seed, so a seeded solver replays the same search.
func (s *Solver) Reset(resetRandom bool) {
	if resetRandom {
		s.rnd = newRand(s.seed)
	}
	s.proposed = slices.Clone(s.floor)
	s.last = make([]int, len(s.floor))
	s.computed = s.recompute()
	s.seen = NewSeenSet()
	s.converged = false
	s.iterations = 0
}

// Advance performs one search step.
func (s *Solver) Advance() (StepResult, error) {
	if s.converged {
		return StepResult{Success: true}, nil
	}
	if err := s.checkComputed(); err != nil {
		return StepResult{}, err
	}

	var result StepResult
	candidate := s.candidate()
	if s.seen.Contains(candidate) {
		randomized, err := s.randomize()
		if err != nil {
			return StepResult{}, err
		}
		candidate = randomized
		result.Randomized = true
	}
	s.seen.Add(candidate)
	s.propose(candidate)
	s.iterations++

	if !sameMultiset(s.proposed, s.computed) {
		return result, nil
	}
	if !slices.Equal(s.proposed, s.computed) {
		result.Reordered = true
		s.propose(slices.Clone(s.computed))
		if !slices.Equal(s.proposed, s.computed) {
			return result, nil
		}
	}
	s.converged = true
	result.Success = true
	return result, nil
}

// candidate moves every mismatched slot halfway toward its computed count, rounding up.
func (s *Solver) candidate() []int {
	out := make([]int, len(s.proposed))
	for j, p := range s.proposed {
		c := s.computed[j]
		if c == p {
			out[j] = c
			continue
		}
		out[j] = (c + p + 1) / 2
	}
	return out
}

func (s *Solver) randomize() ([]int, error) {
	out := make([]int, len(s.proposed))
	for level := 1; level <= maxRandomizeLevel; level++ {
		for j, p := range s.proposed {
			c := s.computed[j]
			if c == p {
				out[j] = c
				continue
			}
			lo := max(s.floor[j], c-level)
			hi := min(numerals.MaxCount, c+level)
			if hi < lo {
				hi = lo
			}
			out[j] = lo + s.rnd.Intn(hi-lo+1)
		}
		if !s.seen.Contains(out) {
			return out, nil
		}
	}
	return nil, ErrSearchExhausted
}

// propose installs next as the proposal and updates the computed counts of changed slots only.
func (s *Solver) propose(next []int) {
	copy(s.last, s.proposed)
	s.proposed = next
	for i, q := range s.proposed {
		prev := s.last[i]
		if prev == q {
			continue
		}
		add := s.table.Row(i, q)
		sub := s.table.Row(i, prev)
		for j := range s.computed {
			s.computed[j] += add[j] - sub[j]
		}
	}
}

func (s *Solver) recompute() []int {
	out := slices.Clone(s.baseline)
	for i, q := range s.proposed {
		if q == 0 {
			continue
		}
		row := s.table.Row(i, q)
		for j := range out {
			out[j] += row[j]
		}
	}
	return out
}

func (s *Solver) checkComputed() error {
	for j, c := range s.computed {
		if !numerals.InRange(c) {
			return fmt.Errorf("%w: %q would need %d occurrences", ErrCountOutOfRange, s.model.VariableSlot(j).Char, c)
		}
	}
	return nil
}

func sameMultiset(proposed, computed []int) bool {
	if len(proposed) != len(computed) {
		return false
	}
	var tally [numerals.MaxCount + 1]int
	for _, p := range proposed {
		tally[p]++
	}
	for _, c := range computed {
		if !numerals.InRange(c) {
			return false
		}
		tally[c]--
		if tally[c] < 0 {
			return false
		}
	}
	return true
}

// Model returns the model being searched.
func (s *Solver) Model() *Model {
	return s.model
}

// Seed returns the seed the solver was created with, or nil.
func (s *Solver) Seed() *uint64 {
	if s.seed == nil {
		return nil
	}
	v := *s.seed
	return &v
}

// Converged reports whether the search found a fixed point.
func (s *Solver) Converged() bool {
	return s.converged
}

// Iterations returns the number of steps taken since the last reset.
func (s *Solver) Iterations() int {
	return s.iterations
}

// SeenCount returns the number of distinct proposals tried since the last reset.
func (s *Solver) SeenCount() int {
	return s.seen.Len()
}

// Proposed returns a copy of the current proposal, one count per variable slot.
func (s *Solver) Proposed() []int {
	return slices.Clone(s.proposed)
}

// Computed returns a copy of the counts the current proposal produces.
func (s *Solver) Computed() []int {
	return slices.Clone(s.computed)
}

// Counts returns the count of every slot: the proposal for variable slots, the fixed minimum
// for invariant ones.
func (s *Solver) Counts() []int {
	out := make([]int, len(s.model.slots))
	for i, slot := range s.model.slots {
		if slot.Variable {
			out[i] = s.proposed[slot.VariableIndex]
		} else {
			out[i] = slot.Minimum
		}
	}
	return out
}

// GuessError returns proposed minus computed for every variable slot.
func (s *Solver) GuessError() []int {
	out := make([]int, len(s.proposed))
	for j, p := range s.proposed {
		out[j] = p - s.computed[j]
	}
	return out
}

// Distance returns the total absolute guess error.
func (s *Solver) Distance() int {
	total := 0
	for _, d := range s.GuessError() {
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}

// Sentence renders the current proposal. It is an autogram only once the solver converged.
func (s *Solver) Sentence() string {
	return Render(s.model, s.Counts())
}
