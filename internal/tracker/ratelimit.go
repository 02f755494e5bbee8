package tracker

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited throttles calls to the wrapped tracker
type RateLimited struct {
	inner   Tracker
	limiter *rate.Limiter
}

// NewRateLimited allows perSecond calls per second with the given burst
func NewRateLimited(inner Tracker, perSecond float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{inner: inner, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Unwrap returns the wrapped tracker
func (r *RateLimited) Unwrap() Tracker { return r.inner }

// Name implements Tracker
func (r *RateLimited) Name() string { return r.inner.Name() }

// ListTeams implements Tracker
func (r *RateLimited) ListTeams(ctx context.Context) ([]Team, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.ListTeams(ctx)
}

// CreateProject implements Tracker
func (r *RateLimited) CreateProject(ctx context.Context, in ProjectInput) (*Project, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.CreateProject(ctx, in)
}

// CreateIssue implements Tracker
func (r *RateLimited) CreateIssue(ctx context.Context, in IssueInput) (*Issue, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.CreateIssue(ctx, in)
}

// CreateComment implements Tracker
func (r *RateLimited) CreateComment(ctx context.Context, in CommentInput) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.inner.CreateComment(ctx, in)
}
