// Package ratelimit provides a token-bucket request throttle.
//
// requests_per_second sets the sustained rate and burst the bucket
// size. Requests arriving with no token available are rejected with
// 429 and a Retry-After hint rather than queued: the conf-driven
// deployments this serves prefer shedding load at the edge over
// building an unbounded backlog.
package ratelimit
