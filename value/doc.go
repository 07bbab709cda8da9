// Package value provides the variant scalar type shared by every other
// ormkit package: schema defaults, expression literals, row data, and
// primary-key components are all carried as value.Value rather than as
// Go's native `any`, so that NULL-ness, ordering, and SQL-literal
// rendering are defined in one place.
//
// # Tags
//
//	value.Null, value.Integer, value.LongInt, value.String, value.Decimal,
//	value.DateTime, value.Float, value.Blob
//
// A Value is cheaply copied: the payload is either stored inline (the
// numeric tags) or as a shared, effectively-immutable string/byte slice.
//
// # Null ordering
//
// Null compares less than any non-null Value; two non-null Values compare
// first by tag, then by the underlying payload. This mirrors the ordering
// contract used by the identity map's Key type and by ORDER BY rendering.
package value
