// Package setting validates the declarative configuration of tunable
// parameters and the runtime values supplied for them.
//
// A Range is a numeric parameter quantized by a step. Its construction merges
// class-level Defaults with the user-supplied configuration into one immutable
// effective value and enforces every structural invariant up front: bounds
// ordering, step reachability, frozen ranges, and relaxation policy. Runtime
// values are checked separately through ValidateValue, which re-snaps accepted
// values onto the min+step grid so that numerically equal positions reached
// through different floating-point paths compare exactly equal.
//
// All checks are pure functions of the setting and its input; a constructed
// Range is safe for concurrent use.
package setting
