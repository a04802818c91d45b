// Package server provides HTTP routing, middleware, and OAuth handling
// for the CLI's authorization flows.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow
// for a single provider.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the resulting credential through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs an auth login command, a temporary HTTP server
// starts on the configured host and port, handles the callback, and
// shuts down after the credential is stored.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
