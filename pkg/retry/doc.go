// Package retry repeats an operation with exponential backoff until it
// succeeds, fails permanently, runs out of attempts or its context ends.
//
//	err := retry.Do(ctx, retry.Config{
//	    MaxAttempts:  0, // until ctx is done
//	    InitialDelay: 500 * time.Millisecond,
//	    MaxDelay:     5 * time.Second,
//	}, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// Wrap an error with Permanent to stop immediately.
package retry
