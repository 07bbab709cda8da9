// Package schema is the in-memory metamodel of an ormkit database: tables,
// columns, and relations, with the integrity checks and dependency
// analysis the rest of the library needs (flush ordering, join
// resolution, foreign-key defaulting).
//
// The runtime types here — [Column], [Table], [Relation], [Schema] — are
// built one of three ways: by hand with [NewTable]/[Table.AddColumn]/
// [NewRelation]/[Schema.AddTable]/[Schema.AddRelation], by reading an XML
// schema file with [github.com/ormkit/ormkit/schema/xmlschema.Parse], or
// by reverse-engineering a live database's catalog with
// [github.com/ormkit/ormkit/schema/introspect.Extract]. The runtime types
// are exported because all three paths, plus [github.com/ormkit/ormkit/
// schema/domaingen] and the engine/session packages, need direct access
// to them.
//
// # Building a schema
//
//	s := schema.New()
//	s.AddTable(orderTable)
//	s.AddRelation(orderItemsRelation)
//	if err := s.FillForeignKeys(); err != nil { ... }
//	if err := s.CheckCycles(); err != nil { ... }
//
// [Schema.FillForeignKeys] defaults unresolved FK column names to the
// target table's surrogate primary key and binds each [Relation]'s table
// pointers and FK field list. [Schema.CheckCycles] assigns every table a
// depth equal to its longest FK-ancestor chain, used by the session to
// order flush batches, and rejects cyclic schemas.
package schema
