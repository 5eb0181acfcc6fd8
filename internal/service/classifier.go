package service

import (
	"fmt"
	"sort"

	"vetpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outcome of classifying one customer against the rank table.
type Outcome string

const (
	OutcomeUpgrade   Outcome = "upgrade"
	OutcomeMaintain  Outcome = "maintain"
	OutcomeDowngrade Outcome = "downgrade"
)

// Classification is the tagged result: either stay, jump to the highest
// qualified rank, or drop exactly one tier.
type Classification struct {
	NewRankID uuid.UUID
	Outcome   Outcome
}

// Classify is a pure function mapping (yearly spend, current rank, rank table)
// to a new rank. The rules, in priority order:
//
//  1. Upgrade when the spend meets the upgrade condition of a rank above the
//     current one; the customer jumps straight to the highest such rank.
//  2. Maintain when the spend meets the current rank's maintain threshold —
//     deliberately more lenient than the upgrade condition (hysteresis).
//  3. Downgrade exactly ONE tier otherwise, regardless of how far spend fell;
//     the damping is one step per review cycle.
//
// A customer at the lowest rank can never downgrade: the outcome is forced to
// maintain.
func Classify(spend decimal.Decimal, currentRankID uuid.UUID, table []model.MembershipRank) (Classification, error) {
	if len(table) == 0 {
		return Classification{}, ErrRankTableEmpty
	}

	ranks := make([]model.MembershipRank, len(table))
	copy(ranks, table)
	sort.Slice(ranks, func(i, j int) bool {
		return ranks[i].UpgradeCondition.LessThan(ranks[j].UpgradeCondition)
	})

	current := -1
	for i, r := range ranks {
		if r.ID == currentRankID {
			current = i
			break
		}
	}
	if current < 0 {
		return Classification{}, fmt.Errorf("rank %s not present in rank table", currentRankID)
	}

	// Highest rank whose upgrade condition the spend satisfies. The base rank
	// has condition 0, so every customer is eligible for something.
	eligible := 0
	for i := len(ranks) - 1; i >= 0; i-- {
		if spend.GreaterThanOrEqual(ranks[i].UpgradeCondition) {
			eligible = i
			break
		}
	}

	switch {
	case eligible > current:
		return Classification{NewRankID: ranks[eligible].ID, Outcome: OutcomeUpgrade}, nil
	case spend.GreaterThanOrEqual(ranks[current].MaintainThreshold):
		return Classification{NewRankID: currentRankID, Outcome: OutcomeMaintain}, nil
	case current == 0:
		// Floor rank: nothing below to drop to.
		return Classification{NewRankID: currentRankID, Outcome: OutcomeMaintain}, nil
	default:
		return Classification{NewRankID: ranks[current-1].ID, Outcome: OutcomeDowngrade}, nil
	}
}
