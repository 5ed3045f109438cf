package domain

import (
	"fmt"
	"time"
)

// FrecencyBucket applies Multiplier to records whose age is at most MaxAge.
type FrecencyBucket struct {
	MaxAge     time.Duration
	Multiplier float64
}

// FrecencyPolicy turns a visit count and an age into a score.
// Buckets are checked in order; Older applies past the last bucket.
type FrecencyPolicy struct {
	Buckets []FrecencyBucket
	Older   float64
}

// DefaultFrecencyPolicy returns the zoxide-style buckets:
// 4x within an hour, 2x within a day, 0.5x within a week, 0.25x after.
func DefaultFrecencyPolicy() FrecencyPolicy {
	return NewFrecencyPolicy(4, 2, 0.5, 0.25)
}

// NewFrecencyPolicy builds the hour/day/week/older bucket policy.
func NewFrecencyPolicy(hour, day, week, older float64) FrecencyPolicy {
	return FrecencyPolicy{
		Buckets: []FrecencyBucket{
			{MaxAge: time.Hour, Multiplier: hour},
			{MaxAge: 24 * time.Hour, Multiplier: day},
			{MaxAge: 7 * 24 * time.Hour, Multiplier: week},
		},
		Older: older,
	}
}

// Validate checks that bucket ages grow and multipliers never do.
func (p FrecencyPolicy) Validate() error {
	prevAge := time.Duration(-1)
	prevMult := -1.0
	for i, b := range p.Buckets {
		if b.MaxAge <= prevAge {
			return fmt.Errorf("frecency bucket %d: max age %v must be greater than %v", i, b.MaxAge, prevAge)
		}
		if b.Multiplier < 0 {
			return fmt.Errorf("frecency bucket %d: negative multiplier %v", i, b.Multiplier)
		}
		if prevMult >= 0 && b.Multiplier > prevMult {
			return fmt.Errorf("frecency bucket %d: multiplier %v increases with age (previous %v)", i, b.Multiplier, prevMult)
		}
		prevAge, prevMult = b.MaxAge, b.Multiplier
	}
	if p.Older < 0 {
		return fmt.Errorf("frecency: negative multiplier %v for old records", p.Older)
	}
	if prevMult >= 0 && p.Older > prevMult {
		return fmt.Errorf("frecency: multiplier %v for old records exceeds %v", p.Older, prevMult)
	}
	return nil
}

// Multiplier returns the recency multiplier for age. Negative ages
// (clock skew) count as zero.
func (p FrecencyPolicy) Multiplier(age time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	for _, b := range p.Buckets {
		if age <= b.MaxAge {
			return b.Multiplier
		}
	}
	return p.Older
}

// Score computes visitCount × recency multiplier.
func (p FrecencyPolicy) Score(visitCount int64, lastAccessed, now time.Time) float64 {
	return float64(visitCount) * p.Multiplier(now.Sub(lastAccessed))
}
