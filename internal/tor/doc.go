// Package tor provides the HTTP transports used to download memorial photos.
//
// Three modes are supported:
//   - direct: DirectHTTPClient, the default
//   - external SOCKS5 proxy: NewClient(addr).NewHTTPClient, for --proxy
//   - embedded Tor: EmbeddedTor started through tornago, for --tor
//
// Every client sets the configured User-Agent on all requests (redirects
// included), keeps cookies across a redirect chain and caps the chain at
// ten hops. The per-request timeout comes from the run configuration.
package tor
