// Package classtop is the client-side session and request-authorization
// layer for the ClassTop management server.
//
// Session lifecycle:
//   - Store implementations (file, memory, bun) persist the bearer token and
//     the user profile together so a reload never observes a token without
//     its profile. SessionManager is the only writer; login and registration
//     persist both, Logout clears both.
//   - Authentication state is always derived from the store at the moment of
//     the check. Nothing caches "logged in".
//
// Request dispatch:
//   - Client is the single choke point for outbound requests. It attaches the
//     Authorization header whenever a token exists, unwraps the server's
//     {data}/{detail} envelope, and classifies failures into the go-errors
//     taxonomy (auth, rate limit, operation).
//   - A 401 response tears the session down before invoking the injected
//     unauthorized hook, and the error still propagates to the caller.
//
// Navigation:
//   - Guard decides per attempted transition whether to allow it, redirect to
//     the login view, or bounce an authenticated user away from it. The
//     decision is a pure function of the route metadata and the current
//     store contents; adapters exist for go-router and fiber hosts.
package classtop
