// Package billing contains the subscription tier, billing account and
// usage metering domain model.
//
// A Tier is a named bundle of resource ceilings and feature flags. A
// BillingAccount is the paying entity; it holds at most one active
// Subscription at a time. UsageCounter rows record windowed per-user
// resource consumption and are only ever written through the atomic
// increment operations on UsageCounterRepository.
package billing
