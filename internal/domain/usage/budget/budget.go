package budget

// Budget is a point-in-time view of the LLM token budget.
// A zero limit means the period is unlimited.
type Budget struct {
	tokensLimit     int64
	tokensRemaining int64
	resetsAt        int64 // unix millis, rendered as RFC 3339 by the transport
}

// New creates a Budget snapshot. Negative remaining values are treated as unlimited.
func New(limit, remaining, resetsAt int64) Budget {
	if limit == 0 || remaining < 0 {
		remaining = 0
	}
	return Budget{
		tokensLimit:     limit,
		tokensRemaining: remaining,
		resetsAt:        resetsAt,
	}
}

// TokensLimit returns the token cap, 0 when unlimited.
func (b Budget) TokensLimit() int64 { return b.tokensLimit }

// TokensRemaining returns tokens left, 0 when unlimited or spent.
func (b Budget) TokensRemaining() int64 { return b.tokensRemaining }

// Unlimited reports whether no cap applies.
func (b Budget) Unlimited() bool { return b.tokensLimit == 0 }

// IsExhausted reports whether a capped budget is spent.
func (b Budget) IsExhausted() bool { return b.tokensLimit > 0 && b.tokensRemaining <= 0 }

// ResetsAt returns the reset timestamp (unix millis).
func (b Budget) ResetsAt() int64 { return b.resetsAt }
