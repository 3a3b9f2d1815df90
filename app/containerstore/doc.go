// Package containerstore provides an in-memory container-record
// application: the terminal component of a container pipeline.
//
// It speaks a small REST dialect over /<account>/<container> paths:
// PUT creates a record, POST updates metadata, GET and HEAD report it,
// DELETE removes it when empty. Object rows under
// /<account>/<container>/<object> adjust the record's object count and
// byte usage. State lives in process memory only; durability is out of
// scope for this component.
package containerstore
