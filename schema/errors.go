package schema

import "fmt"

// ErrMetaData is the sentinel every error returned by this package wraps.
// Callers test membership with errors.Is(err, schema.ErrMetaData).
var ErrMetaData = fmt.Errorf("schema: metadata error")

type metaDataError struct {
	msg string
}

func (e *metaDataError) Error() string { return e.msg }
func (e *metaDataError) Unwrap() error { return ErrMetaData }

func newMetaDataError(format string, args ...any) error {
	return &metaDataError{msg: fmt.Sprintf(format, args...)}
}

// BadColumnNameError reports a column name that fails the identifier
// grammar, or a key-part column that isn't actually a foreign key to the
// expected master table.
type BadColumnNameError struct {
	Table, Column string
}

func (e *BadColumnNameError) Error() string {
	return fmt.Sprintf("schema: bad column name %q while constructing metadata %q", e.Column, e.Table)
}
func (e *BadColumnNameError) Unwrap() error { return ErrMetaData }

// ColumnNotFoundError reports a lookup by name that didn't match any
// column of the table.
type ColumnNotFoundError struct {
	Table, Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("schema: column %q not found in metadata %q", e.Column, e.Table)
}
func (e *ColumnNotFoundError) Unwrap() error { return ErrMetaData }

// TableWithoutColumnsError reports a table registered with zero columns.
type TableWithoutColumnsError struct {
	Table string
}

func (e *TableWithoutColumnsError) Error() string {
	return fmt.Sprintf("schema: table %q has no columns in metadata", e.Table)
}
func (e *TableWithoutColumnsError) Unwrap() error { return ErrMetaData }

// BadTableNameError reports a table name that fails the identifier grammar.
type BadTableNameError struct {
	Table string
}

func (e *BadTableNameError) Error() string {
	return fmt.Sprintf("schema: bad table name %q", e.Table)
}
func (e *BadTableNameError) Unwrap() error { return ErrMetaData }

// TableNotFoundError reports a lookup by name or class that didn't match
// any registered table.
type TableNotFoundError struct {
	Table string
}

func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("schema: table %q not found in metadata", e.Table)
}
func (e *TableNotFoundError) Unwrap() error { return ErrMetaData }

// ClassNotFoundError reports a lookup by entity class name that matched
// no table.
type ClassNotFoundError struct {
	Class string
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("schema: class %q not found in metadata", e.Class)
}
func (e *ClassNotFoundError) Unwrap() error { return ErrMetaData }

// FkNotFoundError reports a one-to-many relation whose child table has
// no foreign-key columns pointing back at the parent's primary key.
type FkNotFoundError struct {
	MasterTable, SlaveTable string
}

func (e *FkNotFoundError) Error() string {
	return fmt.Sprintf("schema: foreign key from table %q to table %q not found in metadata", e.SlaveTable, e.MasterTable)
}
func (e *FkNotFoundError) Unwrap() error { return ErrMetaData }

// TableHasNoSurrogatePKError reports a table whose primary key is not a
// single auto-incrementable integer column, requested from an operation
// (get_surrogate_pk, mk_key(id)) that requires one.
type TableHasNoSurrogatePKError struct {
	Table string
}

func (e *TableHasNoSurrogatePKError) Error() string {
	return fmt.Sprintf("schema: table %q has no surrogate primary key", e.Table)
}
func (e *TableHasNoSurrogatePKError) Unwrap() error { return ErrMetaData }

// ReadOnlyColumnError reports an attempted write to a column flagged
// ReadOnly.
type ReadOnlyColumnError struct {
	Table, Column string
}

func (e *ReadOnlyColumnError) Error() string {
	return fmt.Sprintf("schema: column %q in table %q is read-only", e.Column, e.Table)
}
func (e *ReadOnlyColumnError) Unwrap() error { return ErrMetaData }

// ErrRowNotLinkedToTable reports an operation on a row that was built
// without reference to any Table (e.g. a zero-value Row used directly).
var ErrRowNotLinkedToTable = newMetaDataError("row is not linked to any table")

// IntegrityCheckFailedError reports a schema-wide consistency violation
// found by FillForeignKeys or CheckCycles: a dangling foreign key or a
// cyclic foreign-key graph.
type IntegrityCheckFailedError struct {
	Message string
}

func (e *IntegrityCheckFailedError) Error() string {
	return "schema: " + e.Message
}
func (e *IntegrityCheckFailedError) Unwrap() error { return ErrMetaData }
