// Package encoding converts sets of logical setting values to and from one
// application-specific encoded primitive, such as a command-line flags string.
//
// Encoders are interchangeable strategies resolved by name against an explicit
// registry populated at process start. An encoder is instantiated fresh from
// its configuration on every Encode or Describe call and holds no state beyond
// that call, so concurrent callers never share anything.
//
// The Encode and Describe orchestration functions validate the encoder
// configuration, restrict the supplied value set to the settings the encoder
// declares, and invoke the encoder contract. All failures are synchronous and
// classified through the setting package sentinels.
package encoding
