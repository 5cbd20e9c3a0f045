package providers

// Effort is a caller-supplied hint controlling how much of a model's
// extended-thinking budget to allocate. Vendors without reasoning
// support ignore it.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
	EffortMax    Effort = "max"
)

// effortRatios is the fraction of max_tokens allocated to thinking
// per effort level.
var effortRatios = map[Effort]float64{
	EffortLow:    0.2,
	EffortMedium: 0.4,
	EffortHigh:   0.6,
	EffortMax:    0.8,
}

// effortFloors is the minimum thinking budget per effort level, in
// tokens. The floor applies regardless of max_tokens so small requests
// still get a usable budget.
var effortFloors = map[Effort]int{
	EffortLow:    1024,
	EffortMedium: 4096,
	EffortHigh:   10240,
	EffortMax:    10240,
}

// IsValid reports whether e is one of the four defined levels.
func (e Effort) IsValid() bool {
	_, ok := effortRatios[e]
	return ok
}

// ParseEffort converts a string to an Effort, defaulting to medium for
// empty or unknown values.
func ParseEffort(s string) Effort {
	e := Effort(s)
	if !e.IsValid() {
		return EffortMedium
	}
	return e
}

// ThinkingBudget maps an effort level and generation cap to a thinking
// token budget: ratio(effort) x maxTokens, raised to the level's floor.
// The result is non-decreasing in effort for any fixed maxTokens.
// Unknown efforts are treated as medium.
func ThinkingBudget(effort Effort, maxTokens int) int {
	if !effort.IsValid() {
		effort = EffortMedium
	}

	budget := int(effortRatios[effort] * float64(maxTokens))
	if floor := effortFloors[effort]; budget < floor {
		budget = floor
	}
	return budget
}
