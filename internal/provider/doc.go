// Package provider defines the uniform contract for translation model
// backends and the prioritized failover cascade across them. Providers
// are tried strictly cheapest-first; the first success wins. Every
// provider call is guarded by a circuit breaker so a flapping backend
// is skipped quickly on later requests.
package provider
