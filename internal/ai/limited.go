package ai

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/keshon/chatter/pkg/retrylimit"
)

// Limited paces calls to another generator with an adaptive rate limit.
// Overload answers slow it down; successes speed it back up.
type Limited struct {
	next     Generator
	limiter  *retrylimit.AdaptiveLimiter
	classify retrylimit.ErrorClassifier
}

// NewLimited wraps next. rps is the starting rate; the limiter may move
// between a tenth of it and twice it.
func NewLimited(next Generator, rps float64, classify retrylimit.ErrorClassifier) *Limited {
	if rps <= 0 {
		rps = 1
	}
	if classify == nil {
		classify = retrylimit.DefaultClassifier
	}
	r := rate.Limit(rps)
	return &Limited{
		next:     next,
		limiter:  retrylimit.NewAdaptiveLimiter(r, r/10, r*2, r/5, 0.5),
		classify: classify,
	}
}

// Generate implements Generator.
func (l *Limited) Generate(ctx context.Context, req Request) (Response, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	resp, err := l.next.Generate(ctx, req)
	l.limiter.Observe(err, l.classify)
	return resp, err
}

// CurrentLimit exposes the limiter's current rate.
func (l *Limited) CurrentLimit() float64 { return l.limiter.CurrentLimit() }
