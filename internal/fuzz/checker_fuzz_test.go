package fuzztests

import (
	"context"
	"testing"
	"time"

	"escheck/internal/ecma"
	"escheck/internal/syntax"
	"escheck/internal/testkit"
)

// checkTimeout bounds a single parse; exceeding it means the checker hangs.
const checkTimeout = 5 * time.Second

func FuzzCheckerPositions(f *testing.F) {
	addScriptSeeds(f)
	c := syntax.NewChecker()
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		for _, v := range []ecma.Version{ecma.ES5, ecma.ES2017, ecma.Latest} {
			failure := c.TryParse(context.Background(), input, v)
			if err := testkit.CheckFailure(input, failure); err != nil {
				t.Fatalf("%s: %v", v, err)
			}
		}
	})
}

// FuzzCheckerMonotonic checks that a source accepted by an edition is
// accepted by every newer one.
func FuzzCheckerMonotonic(f *testing.F) {
	addScriptSeeds(f)
	c := syntax.NewChecker()
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		ctx := context.Background()
		if c.TryParse(ctx, input, ecma.ES2015) != nil {
			return
		}
		if failure := c.TryParse(ctx, input, ecma.Latest); failure != nil {
			t.Fatalf("accepted by es2015 but rejected by %s: %s", ecma.Latest, failure)
		}
	})
}

func FuzzCheckerNoHang(f *testing.F) {
	addScriptSeeds(f)
	f.Add([]byte("((((((((((((((((((((a"))
	f.Add([]byte("a?.b?.c?.d?.e?.f?.g?.h"))
	f.Add([]byte("`${`${`${`${`${`"))
	c := syntax.NewChecker()
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = c.TryParse(context.Background(), input, ecma.ES5)
		}()
		select {
		case <-done:
		case <-time.After(checkTimeout):
			t.Fatalf("checker did not finish within %v on %d bytes", checkTimeout, len(input))
		}
	})
}
