// Package strategy implements the quoting strategies: the spread reconciler
// that maintains a ladder of resting orders around the oracle price, and the
// volume quoter that adds matched liquidity inside the live spread.
package strategy

import "context"

// Strategy is one quoting behavior, executed round by round under a Runner.
type Strategy interface {
	Name() string
	// Run executes a single round. A returned error fails this round only;
	// the caller decides whether and when to run again.
	Run(ctx context.Context) error
}
