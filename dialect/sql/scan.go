package sql

import (
	"database/sql"
	"fmt"

	"github.com/ormkit/ormkit/value"
)

// ScanRow reads the current row of rows (rows.Next must already have
// returned true) into a value.Value per column, using tags to pick a
// nullable scan destination appropriate to each column's type. The
// result is positional, matching tags' order.
func ScanRow(rows *Rows, tags []value.Tag) ([]value.Value, error) {
	dest := make([]any, len(tags))
	for i, tag := range tags {
		switch tag {
		case value.Integer, value.LongInt:
			dest[i] = new(sql.NullInt64)
		case value.Float:
			dest[i] = new(sql.NullFloat64)
		case value.DateTime:
			dest[i] = new(sql.NullTime)
		case value.Blob:
			dest[i] = new([]byte)
		default:
			dest[i] = new(sql.NullString)
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("dialect/sql: scan row: %w", err)
	}
	out := make([]value.Value, len(tags))
	for i, tag := range tags {
		out[i] = scanToValue(tag, dest[i])
	}
	return out, nil
}

func scanToValue(tag value.Tag, dest any) value.Value {
	switch tag {
	case value.Integer:
		d := dest.(*sql.NullInt64)
		if !d.Valid {
			return value.Nil
		}
		return value.NewInteger(int32(d.Int64))
	case value.LongInt:
		d := dest.(*sql.NullInt64)
		if !d.Valid {
			return value.Nil
		}
		return value.NewLongInt(d.Int64)
	case value.Float:
		d := dest.(*sql.NullFloat64)
		if !d.Valid {
			return value.Nil
		}
		return value.NewFloat(d.Float64)
	case value.DateTime:
		d := dest.(*sql.NullTime)
		if !d.Valid {
			return value.Nil
		}
		return value.NewDateTime(d.Time)
	case value.Blob:
		b := dest.(*[]byte)
		if *b == nil {
			return value.Nil
		}
		return value.NewBlob(*b)
	case value.Decimal:
		d := dest.(*sql.NullString)
		if !d.Valid {
			return value.Nil
		}
		v, err := value.NewString(d.String).FixType(value.Decimal)
		if err != nil {
			return value.Nil
		}
		return v
	default:
		d := dest.(*sql.NullString)
		if !d.Valid {
			return value.Nil
		}
		return value.NewString(d.String)
	}
}

