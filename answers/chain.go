package answers

import (
	"context"

	"github.com/kirtilabs/kirti/interfaces"
)

// Chain tries the local table first and falls back to the generative
// source. A fallback failure yields the fixed apology line instead of an
// error; the interaction cycle should never crash on a vendor outage.
type Chain struct {
	table    *Table
	cutoff   float64
	fallback interfaces.ReplySource
}

// NewChain builds the lookup chain.
func NewChain(table *Table, cutoff float64, fallback interfaces.ReplySource) *Chain {
	return &Chain{table: table, cutoff: cutoff, fallback: fallback}
}

// Reply resolves the query to a short reply string.
func (c *Chain) Reply(ctx context.Context, query string) (string, error) {
	if c.table != nil {
		if answer, ok := c.table.Lookup(query, c.cutoff); ok {
			return answer, nil
		}
	}
	if c.fallback == nil {
		return ApologyReply, nil
	}
	reply, err := c.fallback.Reply(ctx, query)
	if err != nil {
		return ApologyReply, nil
	}
	return reply, nil
}
