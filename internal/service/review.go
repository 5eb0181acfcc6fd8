package service

import (
	"context"
	"sync"

	"vetpos/internal/dto"
	"vetpos/internal/model"
	"vetpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReviewService runs the yearly membership review: every customer's ledgered
// spend for the review year is classified against the rank table and the rank
// updated accordingly. One customer failing never aborts the run; only an
// unusable rank table does.
type ReviewService interface {
	Run(ctx context.Context, year int) (*dto.ReviewResult, error)
}

type reviewService struct {
	customers repository.CustomerRepository
	ranks     repository.RankRepository
	spending  repository.SpendingRepository
	workers   int
}

func NewReviewService(
	customers repository.CustomerRepository,
	ranks repository.RankRepository,
	spending repository.SpendingRepository,
	workers int,
) ReviewService {
	if workers < 1 {
		workers = 4
	}
	return &reviewService{customers: customers, ranks: ranks, spending: spending, workers: workers}
}

type reviewOutcome struct {
	row     dto.ReviewRow
	outcome Outcome
}

func (s *reviewService) Run(ctx context.Context, year int) (*dto.ReviewResult, error) {
	ranks, err := s.ranks.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}
	if len(ranks) == 0 {
		return nil, ErrRankTableEmpty
	}
	rankNames := make(map[uuid.UUID]string, len(ranks))
	for _, r := range ranks {
		rankNames[r.ID] = r.Name
	}

	customers, err := s.customers.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	spendByCustomer, err := s.spending.MapByYear(ctx, year)
	if err != nil {
		return nil, err
	}

	log.Info().Int("year", year).Int("customers", len(customers)).
		Int("workers", s.workers).Msg("membership review started")

	var (
		mu       sync.Mutex
		outcomes []reviewOutcome
		failures []dto.ReviewFailure
	)

	jobs := make(chan model.Customer)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				spend, ok := spendByCustomer[c.ID]
				if !ok {
					spend = decimal.Zero
				}
				out, err := s.reviewOne(ctx, c, year, spend, ranks, rankNames)
				mu.Lock()
				if err != nil {
					log.Warn().Err(err).Str("customer_id", c.ID.String()).
						Msg("membership review: customer skipped")
					failures = append(failures, dto.ReviewFailure{
						CustomerID: c.ID.String(),
						Reason:     err.Error(),
					})
				} else {
					outcomes = append(outcomes, *out)
				}
				mu.Unlock()
			}
		}()
	}

	for _, c := range customers {
		select {
		case jobs <- c:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	result := partition(year, outcomes, failures)
	log.Info().Int("year", year).
		Int("upgraded", result.Summary.TotalUpgrades).
		Int("maintained", result.Summary.TotalMaintained).
		Int("downgraded", result.Summary.TotalDowngrades).
		Int("failed", result.Summary.TotalFailures).
		Msg("membership review finished")
	return result, nil
}

// reviewOne classifies and updates a single customer inside its own
// transaction. The customer row is re-read under lock so a review worker never
// races a concurrent rank change.
func (s *reviewService) reviewOne(
	ctx context.Context,
	customer model.Customer,
	year int,
	spend decimal.Decimal,
	ranks []model.MembershipRank,
	rankNames map[uuid.UUID]string,
) (*reviewOutcome, error) {
	var out reviewOutcome
	err := runTx(ctx, s.customers.DB(), func(tx *gorm.DB) error {
		locked, err := s.customers.FindForUpdateTx(tx, customer.ID)
		if err != nil {
			return err
		}

		cls, err := Classify(spend, locked.MembershipRankID, ranks)
		if err != nil {
			return err
		}
		if cls.Outcome != OutcomeMaintain {
			if err := s.customers.UpdateRankTx(tx, customer.ID, cls.NewRankID); err != nil {
				return err
			}
		}

		// Seed next year's ledger row so the following review reads an explicit
		// zero instead of a missing row.
		if err := s.spending.SeedYearTx(tx, customer.ID, year+1); err != nil {
			return err
		}

		out = reviewOutcome{
			row: dto.ReviewRow{
				CustomerID:   customer.ID.String(),
				CustomerName: customer.Name,
				OldRank:      rankNames[locked.MembershipRankID],
				NewRank:      rankNames[cls.NewRankID],
				MoneySpent:   spend,
			},
			outcome: cls.Outcome,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func partition(year int, outcomes []reviewOutcome, failures []dto.ReviewFailure) *dto.ReviewResult {
	result := &dto.ReviewResult{
		Upgrades:   []dto.ReviewRow{},
		Downgrades: []dto.ReviewRow{},
		Maintained: []dto.ReviewRow{},
		Failures:   failures,
	}
	if result.Failures == nil {
		result.Failures = []dto.ReviewFailure{}
	}
	for _, o := range outcomes {
		switch o.outcome {
		case OutcomeUpgrade:
			result.Upgrades = append(result.Upgrades, o.row)
		case OutcomeDowngrade:
			result.Downgrades = append(result.Downgrades, o.row)
		default:
			result.Maintained = append(result.Maintained, o.row)
		}
	}
	result.Summary = dto.ReviewSummary{
		Year:            year,
		TotalCustomers:  len(outcomes) + len(failures),
		TotalUpgrades:   len(result.Upgrades),
		TotalDowngrades: len(result.Downgrades),
		TotalMaintained: len(result.Maintained),
		TotalFailures:   len(failures),
	}
	return result
}
