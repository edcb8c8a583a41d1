// ABOUTME: Package-level documentation for pkg/ring
// ABOUTME: States the SPSC contract the render loop and device sink rely on

// Package ring is the lock-free single-producer/single-consumer frame
// queue between the render loop (producer) and the device sink (consumer).
// It is the only synchronization primitive the device callback thread is
// allowed to touch.
package ring
