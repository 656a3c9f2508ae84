// Package worker runs verification jobs for multiple claims concurrently.
// Each job already fans out internally to its validators, so the pool caps
// how many claims are in flight, not how many validator calls run.
package worker

import (
	"context"
	"sync"

	"github.com/lumensyntax-org/truthgit/internal/object"
	"github.com/lumensyntax-org/truthgit/internal/repo"
	"github.com/lumensyntax-org/truthgit/internal/validator"
)

// Verifier is the slice of the repository the pool needs.
type Verifier interface {
	RequestVerification(ctx context.Context, claimHash string, validators []validator.Validator, opts repo.VerifyOptions) (*object.Verification, string, error)
}

// Job verifies one claim with a validator set.
type Job struct {
	ClaimHash  string
	Validators []validator.Validator
	Opts       repo.VerifyOptions
}

// Result reports one finished job.
type Result struct {
	ClaimHash    string
	Hash         string
	Verification *object.Verification
	Err          error
}

// Pool executes jobs with a bounded number of workers.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given worker count.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run verifies every job and returns one result per job, in input order.
// It waits for all jobs to settle; a failed job yields a Result with Err
// set rather than aborting the batch.
func (p *Pool) Run(ctx context.Context, verifier Verifier, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	queue := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range queue {
				job := jobs[idx]
				v, hash, err := verifier.RequestVerification(ctx, job.ClaimHash, job.Validators, job.Opts)
				results[idx] = Result{
					ClaimHash:    job.ClaimHash,
					Hash:         hash,
					Verification: v,
					Err:          err,
				}
			}
		}()
	}

	for i := range jobs {
		select {
		case <-ctx.Done():
			results[i] = Result{ClaimHash: jobs[i].ClaimHash, Err: ctx.Err()}
		case queue <- i:
		}
	}
	close(queue)
	wg.Wait()
	return results
}
