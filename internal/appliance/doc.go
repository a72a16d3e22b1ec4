// Package appliance models the characteristic state machine of a single
// air purifier accessory.
//
// The package is split the way the accessory is described to controllers:
//
//   - CharacteristicStore holds the writable flags (active, mode) and
//     enforces their value domains.
//   - DerivationEngine computes the read-only characteristics
//     (currentState, targetState) from the store without mutating it.
//   - Appliance owns one store, one engine and the immutable identity
//     record, and exposes the property protocol (Get/Set by name) plus
//     Identify.
//
// Nothing in this package locks. Hosts must serialize calls per appliance;
// the service layer does so with a single mutex.
package appliance
