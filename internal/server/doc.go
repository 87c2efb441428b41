// Package server exposes the Prometheus metrics of a running postchain
// process over HTTP. Only GET and HEAD are served; every response carries
// conservative security headers.
package server
