// Package catcherrors provides the outermost safety net of a pipeline:
// a panic anywhere downstream becomes a 500 response instead of a
// crashed process.
package catcherrors
