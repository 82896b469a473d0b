// Package fetch implements page retrieval for the district boards.
//
// Every request goes out over a plain HTTP client first unless the source
// descriptor carries the ForceTor hint, in which case the Tor path is used
// from the first attempt. When a response looks like a block (WAF status
// codes, connection resets), the fetcher transparently retries the same
// request over the Tor SOCKS5 proxy before giving up. Terminal failure is
// an error value, never a panic.
package fetch
