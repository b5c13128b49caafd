package chain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Complexity is a named tier used to scale a chain's base gas fee.
type Complexity string

const (
	Simple  Complexity = "simple"
	Medium  Complexity = "medium"
	Complex Complexity = "complex"
)

// Levels lists the known tiers, cheapest first.
var Levels = []Complexity{Simple, Medium, Complex}

var levelExamples = map[Complexity]string{
	Simple:  "view balance",
	Medium:  "transfer ownership",
	Complex: "mint NFT, DAO vote",
}

// ParseComplexity normalises a tier name. It accepts the bare tier
// ("medium") and the long labels produced by Label ("Medium Call (e.g. …)").
// Unknown names are returned lower-cased so Fee can fall back to multiplier 1.
func ParseComplexity(s string) Complexity {
	s = strings.TrimSpace(strings.ToLower(s))
	if i := strings.IndexAny(s, " -("); i > 0 {
		s = s[:i]
	}
	return Complexity(s)
}

// Label is the human description of a tier, e.g. "Simple Call (e.g. view balance)".
func (l Complexity) Label() string {
	if l == "" {
		return "Call"
	}
	name := strings.ToUpper(string(l[:1])) + string(l[1:]) + " Call"
	if ex, ok := levelExamples[l]; ok {
		return fmt.Sprintf("%s (e.g. %s)", name, ex)
	}
	return name
}

// Multiplier returns the chain's multiplier for level, or 1 when the chain
// defines none for it.
func (c *Chain) Multiplier(level Complexity) decimal.Decimal {
	if m, ok := c.ContractMultipliers[level]; ok {
		return m
	}
	return decimal.NewFromInt(1)
}

// Fee is the simulated gas cost of a call of the given complexity on c:
// base gas fee times the tier multiplier.
func Fee(c *Chain, level Complexity) decimal.Decimal {
	return c.GasFee.Mul(c.Multiplier(level))
}

// LevelFee pairs a tier with its computed fee.
type LevelFee struct {
	Level      Complexity
	Multiplier decimal.Decimal
	Fee        decimal.Decimal
}

// FeeSchedule returns the fee for every known tier on c, cheapest tier first.
func FeeSchedule(c *Chain) []LevelFee {
	out := make([]LevelFee, 0, len(Levels))
	for _, l := range Levels {
		out = append(out, LevelFee{Level: l, Multiplier: c.Multiplier(l), Fee: Fee(c, l)})
	}
	return out
}

// FormatUSD renders an amount the way the dashboard shows money: $1.25.
func FormatUSD(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
