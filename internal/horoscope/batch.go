package horoscope

import (
	"context"
	"sync"

	"github.com/papapumpkin/kundali/internal/birth"
)

// DefaultWorkers bounds ComputeAll when the caller passes zero.
const DefaultWorkers = 4

// Result pairs a record with its horoscope or the error computing it.
type Result struct {
	Record    birth.Record
	Horoscope *Horoscope
	Err       error
}

// ComputeAll computes every record using at most workers goroutines.
// Results are returned in input order; one failure does not stop the rest.
func (e *Engine) ComputeAll(ctx context.Context, recs []birth.Record, workers int) []Result {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]Result, len(recs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, rec := range recs {
		results[i].Record = rec
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		sem <- struct{}{} // block if at worker capacity
		wg.Add(1)
		go func(i int, rec birth.Record) {
			defer func() {
				<-sem
				wg.Done()
			}()
			results[i].Horoscope, results[i].Err = e.Compute(ctx, rec)
		}(i, rec)
	}
	wg.Wait()
	return results
}
