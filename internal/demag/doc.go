// Package demag provides the core contracts for the three-temperature-model
// simulation of ultrafast laser-induced demagnetization.
//
// The package defines the fundamental types shared by the physics kernel,
// the integrators and the run driver:
//
//   - [State]: packed per-layer state vector (Te, Tp, M)
//   - [System]: interface for the coupled ODE system (dX/dt = f(X, t))
//   - [Integrator], [AdaptiveIntegrator]: time steppers
//   - [Result]: spatiotemporal fields handed to the caller after a run
//
// # Thread Safety
//
// A run is single-threaded; no shared mutable state survives across runs.
// Each run builds fresh Structure and Result instances.
package demag
