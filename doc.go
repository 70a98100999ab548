// Package mpform encodes nested parameter trees into multipart/form-data
// bodies.
//
// A [Tree] is an ordered list of fields whose values are scalars, nested
// trees or file sources. Nested keys are flattened using bracket notation, so
// the tree {a: {b: "x"}} produces a field named "a[b]". File sources are
// streamed into binary parts in fixed size chunks. The body is accumulated in
// a spooled sink that stays in memory for small payloads and spills to a
// temporary file for large ones.
//
// A [MultipartEncoder] is single use: [MultipartEncoder.Encode] may be called
// at most once per instance, and subsequent calls fail with
// [ErrAlreadyEncoded].
package mpform
