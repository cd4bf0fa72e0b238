// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Beyond the ports they only rely on
// small concurrency and identifier libraries (LRU cache, singleflight, uuid).
package services
