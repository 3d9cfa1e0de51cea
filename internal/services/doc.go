// Package services defines the [Service] interface for remote photo servers and implements it for PhotoPrism-style APIs.
//
// # Service Interface
//
// All photo servers implement a common abstraction, so the batch engine works
// uniformly against any deployment exposing the item/label endpoints.
//
// # PhotoPrism Implementation
//
// [PhotoService] talks to a PhotoPrism-style HTTP API through [APIService].
// Authentication is a bearer-style session token injected via an
// [oauth2.StaticTokenSource]-backed http.Client; the engine never refreshes or
// acquires tokens itself.
//
// # Selection Sources
//
// A [SelectionSource] yields the identifiers and token for one batch. The
// engine treats it as an opaque collaborator: it returns a [Selection] or a
// typed failure.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrOriginDisabled] : origin not on the allow-list
//   - [shared.ErrNoAuthToken] : no session token available
//
// Non-2xx responses surface as [*StatusError] so callers can branch on the
// status code (the dispatcher treats 404 on label removal as success).
package services
