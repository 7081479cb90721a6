// Package identity reconciles session identity tokens with the persisted user
// record on every authentication event.
//
// Components:
//   - SanitizeAccount strips provider protocol fields (not-before-policy,
//     refresh_expires_in) from a token exchange response before the account is
//     linked to a user through an AccountLinker.
//   - UserStore is the gateway to the persisted user record. The repository
//     package ships a Bun implementation for Postgres and SQLite.
//   - Reconciler computes the next Token for a sign-in, sign-up or refresh.
//     It fills incomplete tokens from the store, stamps lastSignedIn at most
//     once per interval, and lets a trusted federation provider (google by
//     default) force email verification. A verified email is never reset.
//   - ProjectSession maps a reconciled Token into the Session handed to the
//     rest of the application.
//   - SignInGate runs before reconciliation. AllowAll is the default and
//     ExistingAccountsOnly rejects unknown profiles when signup is disabled.
//
// Service wires the components in order for callers that do not need to
// drive them one by one. Activity sinks receive best-effort audit events.
package identity
