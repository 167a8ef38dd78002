package scoring

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// batchCounts are whole-batch totals built before any lead is scored
type batchCounts struct {
	phones       map[string]int
	emails       map[string]int
	fingerprints map[uint64]int
}

func countBatch(leads []Lead) *batchCounts {
	c := &batchCounts{
		phones:       make(map[string]int),
		emails:       make(map[string]int),
		fingerprints: make(map[uint64]int),
	}
	for _, lead := range leads {
		c.phones[lead.Phone]++
		c.emails[lead.Email]++
		c.fingerprints[fingerprintHash(lead)]++
	}
	return c
}

func (c *batchCounts) signalsFor(lead Lead) signals {
	return signals{
		phoneRepeated: c.phones[lead.Phone] >= RepeatThreshold,
		emailRepeated: c.emails[lead.Email] >= RepeatThreshold,
		duplicate:     c.fingerprints[fingerprintHash(lead)] > 1,
	}
}

// ScoreBatchConcurrent scores leads in parallel after a counting pre-pass.
//
// Unlike ScoreBatch no occurrence is privileged: every copy of a duplicated
// lead is flagged, and every lead sharing a phone or email seen
// RepeatThreshold times in the batch is flagged, including the first ones.
// Results keep the input order.
func (s *Scorer) ScoreBatchConcurrent(ctx context.Context, leads []Lead, workers int) ([]ScoreResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	counts := countBatch(leads)
	results := make([]ScoreResult, len(leads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range leads {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.score(leads[i], counts.signalsFor(leads[i]))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
