// Package drivedav serves a hierarchical storage tree of files and
// collections over a WebDAV-flavored HTTP protocol.
//
// The root package holds the protocol-independent core: the path resolver,
// the Backend interface every store implements, and the Gateway that maps
// WebDAV operations (GET, PUT, DELETE, MKCOL, COPY, MOVE, PROPFIND) onto a
// Backend with the verb-specific preconditions.
//
// # Key Components
//
//   - Gateway: resource operations, the copy/move engine and PROPFIND enumeration
//   - Backend: interface for tree-shaped stores (filesystem, key-value maps)
//   - ResolvePath: percent-decoding, normalization and root confinement
//   - BasicAuthenticator: HTTP Basic credentials checked against a CredentialStore
//
// # Logical Paths
//
// Every path handed to a Backend is root-relative, '/'-separated, without a
// leading or trailing separator. The root collection is the empty string and
// always exists.
//
// # Example Usage
//
//	gateway, err := drivedav.NewGateway(backend, drivedav.GatewayConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	created, err := gateway.Put(ctx, "docs/readme.txt", body)
//
//	entries, err := gateway.Propfind(ctx, "docs", drivedav.DepthOne)
//
// See the http package for the WebDAV handler and the filesystem and keyvalue
// packages for the shipped backends.
package drivedav
