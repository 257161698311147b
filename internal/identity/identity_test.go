package identity

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom_OutsideAnyScope(t *testing.T) {
	ident, ok := From(context.Background())
	assert.False(t, ok)
	assert.True(t, ident.IsZero())
}

func TestWithFrom_RoundTrip(t *testing.T) {
	want := Identity{ID: "64f0c0ffee0000000000aaaa", Name: "Ada", IsAdmin: true}
	ctx := With(context.Background(), want)

	got, ok := From(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRun_BindsIdentityForCallChain(t *testing.T) {
	want := Identity{ID: "64f0c0ffee0000000000bbbb", Name: "Grace"}

	err := Run(context.Background(), want, func(ctx context.Context) error {
		// A nested call sees the same identity without it being passed.
		nested := func(ctx context.Context) error {
			got, ok := From(ctx)
			require.True(t, ok)
			assert.Equal(t, want, got)
			return nil
		}
		return nested(ctx)
	})
	require.NoError(t, err)
}

func TestRun_NestedScopesDoNotLeak(t *testing.T) {
	outer := Identity{ID: "64f0c0ffee0000000000cccc", Name: "Outer"}
	inner := Identity{ID: "64f0c0ffee0000000000dddd", Name: "Inner"}

	err := Run(context.Background(), outer, func(ctx context.Context) error {
		if err := Run(ctx, inner, func(ctx context.Context) error {
			got, _ := From(ctx)
			assert.Equal(t, inner, got)
			return nil
		}); err != nil {
			return err
		}

		// Back in the outer scope the outer identity is intact.
		got, _ := From(ctx)
		assert.Equal(t, outer, got)
		return nil
	})
	require.NoError(t, err)
}

func TestRun_ConcurrentScopesAreIsolated(t *testing.T) {
	const goroutines = 50

	var wg sync.WaitGroup
	errs := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		ident := Identity{ID: fmt.Sprintf("%024d", i), Name: fmt.Sprintf("user-%d", i)}
		go func() {
			defer wg.Done()
			errs <- Run(context.Background(), ident, func(ctx context.Context) error {
				// Cross a suspension point, then check the binding held.
				done := make(chan struct{})
				go func() { close(done) }()
				<-done

				got, ok := From(ctx)
				if !ok || got != ident {
					return fmt.Errorf("identity leaked: want %v, got %v", ident, got)
				}
				return nil
			})
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
