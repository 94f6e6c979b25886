package ratelimit

import "go.uber.org/fx"

// Module provides the optional redis client together with the login limiter
// and the lease locker built on it.
var Module = fx.Module("ratelimit",
	fx.Provide(
		NewRedisClient,
		NewLocker,
		NewLoginLimiter,
	),
)
