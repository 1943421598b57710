// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"

	"golang.org/x/time/rate"
)

// TokenLimiter enforces a tokens-per-minute budget across embedding calls.
// The zero value admits everything immediately. Safe for concurrent use.
type TokenLimiter struct {
	limiter *rate.Limiter
	burst   int
}

// NewTokenLimiter creates a limiter admitting tokensPerMinute tokens per
// minute, with a full minute's budget as burst. tokensPerMinute <= 0 means
// no limit.
func NewTokenLimiter(tokensPerMinute int) *TokenLimiter {
	if tokensPerMinute <= 0 {
		return &TokenLimiter{}
	}
	return &TokenLimiter{
		limiter: rate.NewLimiter(rate.Limit(float64(tokensPerMinute)/60.0), tokensPerMinute),
		burst:   tokensPerMinute,
	}
}

// Wait blocks until the given token count fits the budget. A batch larger
// than a full minute's budget drains the budget and proceeds rather than
// being rejected.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	if l == nil || l.limiter == nil || tokens <= 0 {
		return ctx.Err()
	}
	if tokens > l.burst {
		tokens = l.burst
	}
	return l.limiter.WaitN(ctx, tokens)
}
