package validator

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

// Runner fans a claim out to a set of validators concurrently and waits for
// every call to settle before returning. A timed-out call becomes a
// TIMED_OUT result and any other failure a FAILED result; neither cancels
// sibling calls, and nothing arriving after the join point is incorporated.
type Runner struct {
	maxParallel int
	timeout     time.Duration

	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewRunner creates a runner with a per-call timeout and a per-validator
// rate limit. rps <= 0 disables limiting.
func NewRunner(maxParallel int, timeout time.Duration, rps float64, burst int) *Runner {
	if maxParallel <= 0 {
		maxParallel = 8
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if burst <= 0 {
		burst = 1
	}
	return &Runner{
		maxParallel: maxParallel,
		timeout:     timeout,
		limiters:    make(map[string]*rate.Limiter),
		rps:         rate.Limit(rps),
		burst:       burst,
	}
}

// RunAll executes every validator against the claim and returns one result
// per validator, in input order.
func (r *Runner) RunAll(ctx context.Context, content, domain string, validators []Validator) []object.ValidatorResult {
	results := make([]object.ValidatorResult, len(validators))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, r.maxParallel)

	for i, v := range validators {
		wg.Add(1)
		go func(idx int, val Validator) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = failedResult(val.Name(), "cancelled before dispatch")
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = r.runOne(ctx, content, domain, val)
		}(i, v)
	}

	wg.Wait()
	return results
}

// runOne gives one validator call its own deadline, derived from the parent
// context so a caller-level cancel still applies, but an individual timeout
// touches only this call.
func (r *Runner) runOne(ctx context.Context, content, domain string, val Validator) object.ValidatorResult {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.rps > 0 {
		if err := r.limiter(val.Name()).Wait(callCtx); err != nil {
			return timedOutResult(val.Name())
		}
	}

	judgment, err := val.Verify(callCtx, content, domain)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() == context.DeadlineExceeded {
			return timedOutResult(val.Name())
		}
		return failedResult(val.Name(), err.Error())
	}

	confidence := object.Quantize(object.Clamp(judgment.Confidence))
	if confidence != confidence { // NaN: treat as failure, not as 0.0
		return failedResult(val.Name(), "non-finite confidence")
	}
	return object.ValidatorResult{
		Validator:  val.Name(),
		Confidence: object.Confidence(confidence),
		Rationale:  judgment.Rationale,
		Status:     object.StatusOK,
	}
}

func (r *Runner) limiter(name string) *rate.Limiter {
	r.mu.RLock()
	l, ok := r.limiters[name]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.limiters[name]; ok {
		return l
	}
	l = rate.NewLimiter(r.rps, r.burst)
	r.limiters[name] = l
	return l
}

func failedResult(name, reason string) object.ValidatorResult {
	return object.ValidatorResult{
		Validator: name,
		Rationale: reason,
		Status:    object.StatusFailed,
	}
}

func timedOutResult(name string) object.ValidatorResult {
	return object.ValidatorResult{
		Validator: name,
		Rationale: "deadline exceeded",
		Status:    object.StatusTimedOut,
	}
}
