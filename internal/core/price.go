package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RandomSource is satisfied by *rand.Rand from math/rand/v2.
type RandomSource interface {
	IntN(n int) int
}

const pricePlaces = 2

// PriceBand bounds the simulated market price random walk.
type PriceBand struct {
	Floor   decimal.Decimal
	Ceiling decimal.Decimal
	// MaxStepBps is the largest move per step, in basis points of the price.
	MaxStepBps int
}

func (b PriceBand) Validate() error {
	if !b.Floor.IsPositive() {
		return fmt.Errorf("price floor must be > 0, got %s", b.Floor)
	}
	if b.Ceiling.LessThan(b.Floor) {
		return fmt.Errorf("price ceiling %s below floor %s", b.Ceiling, b.Floor)
	}
	if b.MaxStepBps < 0 || b.MaxStepBps > 10000 {
		return fmt.Errorf("max step must be within [0, 10000] bps, got %d", b.MaxStepBps)
	}
	return nil
}

func (b PriceBand) Clamp(p decimal.Decimal) decimal.Decimal {
	if p.LessThan(b.Floor) {
		return b.Floor
	}
	if p.GreaterThan(b.Ceiling) {
		return b.Ceiling
	}
	return p
}

// Step moves price by a uniformly drawn number of basis points in
// [-MaxStepBps, +MaxStepBps], then rounds and clamps the result.
// Rounding goes toward the previous price, so a move never exceeds the bound.
func (b PriceBand) Step(price decimal.Decimal, r RandomSource) decimal.Decimal {
	bps := r.IntN(2*b.MaxStepBps+1) - b.MaxStepBps
	next := price.Add(price.Mul(decimal.New(int64(bps), -4)))
	if bps < 0 {
		next = next.RoundCeil(pricePlaces)
	} else {
		next = next.RoundFloor(pricePlaces)
	}
	return b.Clamp(next)
}
