// Package tenancy resolves the per-request tenant/identity snapshot and
// evaluates endpoint permission policies inside paygrid.
//
// Layering:
// - domain: snapshot entity, role-permission map, errors
// - application: resolver + policy evaluation using explicit ports
// - ports: stable boundaries for token verification and permission caching
// - adapters: redis and memory permission cache implementations
//
// Boundary notes:
// - Keep this module self-contained under identity-access context.
// - Do not import other context adapters into domain/application.
// - The snapshot travels on context.Context, never in package globals.
package tenancy
