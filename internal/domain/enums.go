package domain

import "strings"

// Difficulty labels target puzzle generation & grading.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
	Expert
)

// StrategyTier limits hinting/logic complexity used.
type StrategyTier int

const (
	StrategySingles StrategyTier = iota // singles / sole candidates
	StrategyPairs                       // naked/hidden pairs
	StrategyAdvanced                    // pointing/claiming, triples, etc.
	StrategyXWing                       // advanced fish (placeholder for cap)
)

// Variant is one of the fixed board-size configurations.
type Variant int

const (
	Classic9 Variant = iota
	Mini4
	Mega16
)

// Variants lists every variant in selector order.
var Variants = []Variant{Mini4, Classic9, Mega16}

// Key returns the stable selector key of the variant.
func (v Variant) Key() string {
	switch v {
	case Mini4:
		return "mini4"
	case Mega16:
		return "mega16"
	default:
		return "classic9"
	}
}

func (v Variant) String() string { return v.Key() }

// Size is the board dimension N.
func (v Variant) Size() int {
	switch v {
	case Mini4:
		return 4
	case Mega16:
		return 16
	default:
		return 9
	}
}

// Box returns the block rows and block cols; br*bc == Size().
func (v Variant) Box() (br, bc int) {
	switch v {
	case Mini4:
		return 2, 2
	case Mega16:
		return 4, 4
	default:
		return 3, 3
	}
}

// ParseVariant maps a selector key to a Variant.
func ParseVariant(key string) (Variant, bool) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "mini4":
		return Mini4, true
	case "classic9":
		return Classic9, true
	case "mega16":
		return Mega16, true
	}
	return Classic9, false
}

// VariantForSize returns the variant whose board dimension is n.
func VariantForSize(n int) (Variant, bool) {
	for _, v := range Variants {
		if v.Size() == n {
			return v, true
		}
	}
	return Classic9, false
}

// ParseDifficulty maps a name to a Difficulty. Unknown names report false
// and Medium.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, true
	case "medium":
		return Medium, true
	case "hard":
		return Hard, true
	case "expert":
		return Expert, true
	default:
		return Medium, false
	}
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Hard:
		return "hard"
	case Expert:
		return "expert"
	default:
		return "medium"
	}
}

// ParseStrategyTier maps a name to a tier, defaulting to singles.
func ParseStrategyTier(s string) StrategyTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pairs":
		return StrategyPairs
	case "advanced":
		return StrategyAdvanced
	case "xwing":
		return StrategyXWing
	default:
		return StrategySingles
	}
}
