// Package requestlog provides structured access logging with request ID
// propagation.
package requestlog
