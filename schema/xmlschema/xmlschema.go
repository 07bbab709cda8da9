// Package xmlschema reads and writes the schema XML file format: a
// <schema> document whose <table>/<column> elements describe a
// schema.Schema and whose <relation> elements link them, the same
// shape a generator tool's --domain/--ddl/--populate-schema/
// --drop-schema/--extract-schema subcommands consume.
package xmlschema

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/shopspring/decimal"

	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/value"
)

type xmlDoc struct {
	XMLName   xml.Name      `xml:"schema"`
	Tables    []xmlTable    `xml:"table"`
	Relations []xmlRelation `xml:"relation"`
}

type xmlTable struct {
	Name     string      `xml:"name,attr"`
	Sequence string      `xml:"sequence,attr,omitempty"`
	AutoInc  bool        `xml:"autoinc,attr,omitempty"`
	XMLAttr  string      `xml:"xml-name,attr,omitempty"`
	Class    string      `xml:"class,attr,omitempty"`
	Columns  []xmlColumn `xml:"column"`
}

type xmlColumn struct {
	Name       string         `xml:"name,attr"`
	Type       string         `xml:"type,attr"`
	Size       int            `xml:"size,attr,omitempty"`
	Null       bool           `xml:"null,attr,omitempty"`
	Default    string         `xml:"default,attr,omitempty"`
	Property   string         `xml:"property,attr,omitempty"`
	XMLAttr    string         `xml:"xml-name,attr,omitempty"`
	PrimaryKey *struct{}      `xml:"primary-key"`
	ReadOnly   *struct{}      `xml:"read-only"`
	ForeignKey *xmlForeignKey `xml:"foreign-key"`
	Index      *xmlIndex      `xml:"index"`
}

type xmlForeignKey struct {
	Table string `xml:"table,attr"`
	Key   string `xml:"key,attr,omitempty"`
}

type xmlIndex struct {
	Name string `xml:"name,attr"`
}

type xmlRelation struct {
	Type    string  `xml:"type,attr"`
	Name    string  `xml:"name,attr,omitempty"`
	Cascade string  `xml:"cascade,attr,omitempty"`
	One     xmlOne  `xml:"one"`
	Many    xmlMany `xml:"many"`
}

type xmlOne struct {
	Class    string `xml:"class,attr"`
	Property string `xml:"property,attr,omitempty"`
	Key      string `xml:"key,attr,omitempty"`
}

type xmlMany struct {
	Class    string `xml:"class,attr"`
	Key      string `xml:"key,attr,omitempty"`
	Property string `xml:"property,attr,omitempty"`
	OrderBy  string `xml:"order-by,attr,omitempty"`
}

// Parse reads a schema XML document from r and builds the Schema it
// describes, resolving foreign keys and checking for relation cycles
// before returning — the same two calls a caller building a Schema by
// hand is expected to make itself.
func Parse(r io.Reader) (*schema.Schema, error) {
	var doc xmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("xmlschema: decode: %w", err)
	}

	s := schema.New()
	for _, xt := range doc.Tables {
		t, err := buildTable(xt)
		if err != nil {
			return nil, err
		}
		if err := s.AddTable(t); err != nil {
			return nil, fmt.Errorf("xmlschema: table %s: %w", xt.Name, err)
		}
	}
	for _, xr := range doc.Relations {
		rel, err := buildRelation(xr)
		if err != nil {
			return nil, err
		}
		s.AddRelation(rel)
	}
	if err := s.FillForeignKeys(); err != nil {
		return nil, fmt.Errorf("xmlschema: %w", err)
	}
	if err := s.CheckCycles(); err != nil {
		return nil, fmt.Errorf("xmlschema: %w", err)
	}
	return s, nil
}

func buildTable(xt xmlTable) (*schema.Table, error) {
	t := schema.NewTable(xt.Name, xt.Class)
	if xt.XMLAttr != "" {
		t.SetXMLName(xt.XMLAttr)
	}
	if xt.Sequence != "" {
		t.SetSeqName(xt.Sequence)
	}
	t.SetAutoIncrement(xt.AutoInc)

	for _, xc := range xt.Columns {
		col, err := buildColumn(xc)
		if err != nil {
			return nil, fmt.Errorf("xmlschema: table %s column %s: %w", xt.Name, xc.Name, err)
		}
		if err := t.AddColumn(col); err != nil {
			return nil, fmt.Errorf("xmlschema: table %s column %s: %w", xt.Name, xc.Name, err)
		}
	}
	return t, nil
}

func buildColumn(xc xmlColumn) (*schema.Column, error) {
	tag, err := value.ParseTag(xc.Type)
	if err != nil {
		return nil, err
	}

	var flags schema.ColumnFlag
	if xc.PrimaryKey != nil {
		flags |= schema.PK
	}
	if xc.ReadOnly != nil {
		flags |= schema.ReadOnly
	}
	if xc.Null {
		flags |= schema.Nullable
	}

	var opts []schema.ColumnOption
	if xc.Size > 0 {
		opts = append(opts, schema.WithSize(xc.Size))
	}
	if xc.Default != "" {
		dv, err := parseDefault(tag, xc.Default)
		if err != nil {
			return nil, fmt.Errorf("default %q: %w", xc.Default, err)
		}
		opts = append(opts, schema.WithDefault(dv))
	}
	if xc.ForeignKey != nil {
		opts = append(opts, schema.WithForeignKey(xc.ForeignKey.Table, xc.ForeignKey.Key))
	}
	if xc.Property != "" {
		opts = append(opts, schema.WithPropertyName(xc.Property))
	}
	if xc.XMLAttr != "" {
		opts = append(opts, schema.WithXMLName(xc.XMLAttr))
	}
	if xc.Index != nil {
		opts = append(opts, schema.WithIndexName(xc.Index.Name))
	}
	return schema.NewColumn(xc.Name, tag, flags, opts...), nil
}

func parseDefault(tag value.Tag, s string) (value.Value, error) {
	switch tag {
	case value.Integer:
		n, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return value.Nil, err
		}
		return value.NewInteger(int32(n)), nil
	case value.LongInt:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return value.Nil, err
		}
		return value.NewLongInt(n), nil
	case value.Float:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return value.Nil, err
		}
		return value.NewFloat(f), nil
	case value.Decimal:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return value.Nil, err
		}
		return value.NewDecimal(d), nil
	case value.DateTime:
		t, err := value.ParseDateTime(s)
		if err != nil {
			return value.Nil, err
		}
		return value.NewDateTime(t), nil
	case value.Blob:
		return value.NewBlob([]byte(s)), nil
	default:
		return value.NewString(s), nil
	}
}

// formatDefault is parseDefault's inverse: it renders a column default
// back to the plain-text form the "default=" attribute holds (not a SQL
// literal — no quoting, no NULL keyword).
func formatDefault(v value.Value) string {
	switch v.Tag() {
	case value.Integer:
		n, _ := v.AsInteger()
		return strconv.FormatInt(int64(n), 10)
	case value.LongInt:
		n, _ := v.AsLongInt()
		return strconv.FormatInt(n, 10)
	case value.Float:
		f, _ := v.AsFloat()
		return strconv.FormatFloat(f, 'g', -1, 64)
	case value.Decimal:
		d, _ := v.AsDecimal()
		return d.String()
	case value.DateTime:
		t, _ := v.AsDateTime()
		return value.FormatDateTime(t)
	case value.Blob:
		b, _ := v.AsBlob()
		return string(b)
	default:
		s, _ := v.AsString()
		return s
	}
}

func buildRelation(xr xmlRelation) (*schema.Relation, error) {
	kind, err := schema.ParseRelationType(xr.Type)
	if err != nil {
		return nil, fmt.Errorf("xmlschema: relation %s: %w", xr.Name, err)
	}
	var cascade schema.CascadeAction
	if xr.Cascade != "" {
		cascade, err = schema.ParseCascadeAction(xr.Cascade)
		if err != nil {
			return nil, fmt.Errorf("xmlschema: relation %s: %w", xr.Name, err)
		}
	}

	end1 := schema.RelationEnd{Class: xr.One.Class, Property: xr.One.Property}
	if xr.One.Key != "" {
		end1.Key = splitKey(xr.One.Key)
	}
	manyProperty := xr.Many.Property
	if manyProperty == "" {
		manyProperty = defaultManyPropertyName(xr.Many.Class)
	}
	end2 := schema.RelationEnd{Class: xr.Many.Class, Property: manyProperty, Cascade: cascade}
	if xr.Many.Key != "" {
		end2.Key = splitKey(xr.Many.Key)
	}
	return schema.NewRelation(kind, xr.Name, end1, end2), nil
}

// defaultManyPropertyName derives the accessor name a schema file omits
// for a relation's "many" side: the slave class name, pluralized, with
// its first letter lowered (Order -> orders, OrderItem -> orderItems).
func defaultManyPropertyName(class string) string {
	plural := inflect.Pluralize(class)
	if plural == "" {
		return plural
	}
	return strings.ToLower(plural[:1]) + plural[1:]
}

func splitKey(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Write renders s as a schema XML document to w, in a form Parse can
// read back to a structurally equal Schema.
func Write(w io.Writer, s *schema.Schema) error {
	doc := xmlDoc{}
	for _, t := range s.Tables() {
		doc.Tables = append(doc.Tables, renderTable(t))
	}
	for _, r := range s.Relations() {
		doc.Relations = append(doc.Relations, renderRelation(r))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("xmlschema: write header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("xmlschema: encode: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func renderTable(t *schema.Table) xmlTable {
	xt := xmlTable{
		Name:    t.Name(),
		Sequence: t.SeqName(),
		AutoInc: t.AutoIncrement(),
		Class:   t.ClassName(),
	}
	if t.XMLName() != defaultXMLName(t.Name()) {
		xt.XMLAttr = t.XMLName()
	}
	for _, c := range t.Columns() {
		xt.Columns = append(xt.Columns, renderColumn(c))
	}
	return xt
}

func renderColumn(c *schema.Column) xmlColumn {
	xc := xmlColumn{
		Name:     c.Name(),
		Type:     c.Tag().String(),
		Size:     c.Size(),
		Null:     c.IsNullable(),
		Property: c.PropertyName(),
	}
	if c.XMLName() != defaultXMLName(c.Name()) {
		xc.XMLAttr = c.XMLName()
	}
	if d := c.Default(); !d.IsNull() {
		xc.Default = formatDefault(d)
	}
	if c.IsPK() {
		xc.PrimaryKey = &struct{}{}
	}
	if c.IsReadOnly() {
		xc.ReadOnly = &struct{}{}
	}
	if c.HasFK() {
		xc.ForeignKey = &xmlForeignKey{Table: c.FKTableName(), Key: c.FKName()}
	}
	if c.IndexName() != "" {
		xc.Index = &xmlIndex{Name: c.IndexName()}
	}
	return xc
}

func renderRelation(r *schema.Relation) xmlRelation {
	one, many := r.End(0), r.End(1)
	xr := xmlRelation{
		Type: r.Type().String(),
		Name: r.Name(),
		One: xmlOne{
			Class:    one.Class,
			Property: one.Property,
			Key:      strings.Join(one.Key, ","),
		},
		Many: xmlMany{
			Class:    many.Class,
			Property: many.Property,
			Key:      strings.Join(many.Key, ","),
		},
	}
	if many.Cascade != schema.CascadeRestrict {
		xr.Cascade = many.Cascade.String()
		if many.Cascade == schema.CascadeNullify {
			xr.Cascade = "set-null"
		}
	}
	return xr
}

func defaultXMLName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}
