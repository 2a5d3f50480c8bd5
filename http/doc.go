// Package http serves a drivedav.Gateway over WebDAV.
//
// The router answers OPTIONS, GET, HEAD, PUT, DELETE, MKCOL, COPY, MOVE and
// PROPFIND on every path. Any other method gets 405 with the Allow header.
// LOCK and UNLOCK are not implemented.
//
// # Features
//
//   - Request path resolution with root confinement (unresolvable paths are 404)
//   - HTTP Basic authentication through a drivedav.Authenticator
//   - Optional per-user roots: each identity sees its own collection as "/"
//   - PROPFIND multistatus rendering with allprop semantics
//   - Range and conditional GET through http.ServeContent
//   - Upload size limits, configurable CORS, Prometheus request metrics
//   - JSON error bodies for every non-2xx response
//
// # Usage
//
//	gateway, _ := drivedav.NewGateway(backend, drivedav.GatewayConfig{})
//	auth := drivedav.NewBasicAuthenticator(store)
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    Authenticator: auth, // nil for anonymous access
//	    Realm:         "WebDAV",
//	    PerUserRoot:   true,
//	}, gateway)
//	http.ListenAndServe(":5708", handler.Router())
//
// # Status Codes
//
// PUT, COPY and MOVE answer 201 when they create the target and 204 when they
// replace it. MKCOL answers 201, DELETE 204 and PROPFIND 207. Gateway errors
// are mapped by HandleError.
package http
