package nursery

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRunWaitsForEveryGoroutine(t *testing.T) {
	ctx := context.Background()

	// Three replicas reporting their final kinetic energy, mirroring how
	// sim.RunParallel waits for every replica's round to finish before the
	// caller is allowed to look at any of their state.
	results := make(chan float64, 3)
	energies := []float64{1.0, 1.5, 2.0}

	Run(ctx, func(_ context.Context, n *Nursery) {
		for _, e := range energies {
			e := e
			n.Go(func() error {
				results <- e
				return nil
			})
		}
	})
	close(results)

	var got []float64
	for e := range results {
		got = append(got, e)
	}
	sort.Float64s(got)

	if diff := cmp.Diff(got, energies); diff != "" {
		t.Errorf("Run did not wait for every goroutine (-got +want): %s", diff)
	}
}

func TestRunPropagatesFirstError(t *testing.T) {
	ctx := context.Background()
	wantErr := fmt.Errorf("replica 1 diverged")

	err := Run(ctx, func(_ context.Context, n *Nursery) {
		n.Go(func() error { return nil })
		n.Go(func() error { return wantErr })
	})

	if err == nil {
		t.Fatal("Run returned nil error, want the failing goroutine's error wrapped")
	}
}

func TestRunCancelsSiblingsOnError(t *testing.T) {
	// One replica fails immediately; its sibling should observe the
	// resulting context cancellation rather than run to completion,
	// the same guarantee RunParallel depends on to avoid leaking a
	// goroutine past the round it was spawned for.
	var mu sync.Mutex
	sawCancel := false

	err := Run(context.Background(), func(ctx context.Context, n *Nursery) {
		n.Go(func() error { return fmt.Errorf("boom") })
		n.Go(func() error {
			<-ctx.Done()
			mu.Lock()
			sawCancel = true
			mu.Unlock()
			return nil
		})
	})

	if err == nil {
		t.Fatal("Run returned nil error, want the failing goroutine's error")
	}
	mu.Lock()
	defer mu.Unlock()
	if !sawCancel {
		t.Error("sibling goroutine never observed context cancellation")
	}
}
