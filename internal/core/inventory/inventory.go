// Package inventory contains the pure stock rules applied when manufacturing orders
// are confirmed and completed.
package inventory

import (
	"fmt"
	"sort"
)

// MovementType classifies a stock ledger entry.
type MovementType string

const (
	MovementConsumption MovementType = "MO_CONSUMPTION"
	MovementProduction  MovementType = "MO_PRODUCTION"
	MovementAdjustment  MovementType = "ADJUSTMENT"
)

// Requirement is the quantity of a component an order needs.
type Requirement struct {
	ProductID string
	PerUnit   float64
	Total     float64
}

// Shortage describes a component that is not sufficiently stocked.
type Shortage struct {
	ProductID string
	Required  float64
	Available float64
}

func (s Shortage) String() string {
	return fmt.Sprintf("%s needs %g, has %g", s.ProductID, s.Required, s.Available)
}

// Movement is a planned stock ledger entry. Change is signed.
type Movement struct {
	ProductID string
	Change    float64
	Type      MovementType
	Reference string
}

// CompletionInput contains everything needed to plan the stock effects of completing an order.
type CompletionInput struct {
	OrderID        string
	FinishedGoodID string
	Quantity       int
	Requirements   []Requirement
}

// FindShortages compares requirements against current stock levels.
// Products missing from stock count as zero. Results are sorted by product id.
func FindShortages(reqs []Requirement, stock map[string]float64) []Shortage {
	var out []Shortage
	for _, r := range reqs {
		if have := stock[r.ProductID]; have < r.Total {
			out = append(out, Shortage{ProductID: r.ProductID, Required: r.Total, Available: have})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// PlanCompletion returns one consumption movement per component followed by one
// production movement for the finished good.
func PlanCompletion(input CompletionInput) []Movement {
	moves := make([]Movement, 0, len(input.Requirements)+1)
	for _, r := range input.Requirements {
		moves = append(moves, Movement{
			ProductID: r.ProductID,
			Change:    -r.Total,
			Type:      MovementConsumption,
			Reference: input.OrderID,
		})
	}
	moves = append(moves, Movement{
		ProductID: input.FinishedGoodID,
		Change:    float64(input.Quantity),
		Type:      MovementProduction,
		Reference: input.OrderID,
	})
	return moves
}

// ApplyMovements returns the stock levels after moves, failing if any product
// would go negative. The input map is not modified.
func ApplyMovements(stock map[string]float64, moves []Movement) (map[string]float64, error) {
	out := make(map[string]float64, len(stock))
	for k, v := range stock {
		out[k] = v
	}
	for _, m := range moves {
		next := out[m.ProductID] + m.Change
		if next < 0 {
			return nil, fmt.Errorf("insufficient stock for %s: need %g, have %g", m.ProductID, -m.Change, out[m.ProductID])
		}
		out[m.ProductID] = next
	}
	return out, nil
}
