package schema

// RelationType distinguishes the three relation shapes a schema can
// describe.
type RelationType int

const (
	// OneToMany is a parent/children relation resolved through the
	// child table's foreign-key columns.
	OneToMany RelationType = iota
	// ManyToMany is resolved through an association table.
	ManyToMany
	// ParentToChild is a same-table hierarchy (e.g. category trees).
	ParentToChild
)

func (t RelationType) String() string {
	switch t {
	case OneToMany:
		return "one-to-many"
	case ManyToMany:
		return "many-to-many"
	case ParentToChild:
		return "parent-to-child"
	default:
		return "unknown"
	}
}

// ParseRelationType resolves a schema XML "type=" attribute into its
// RelationType.
func ParseRelationType(name string) (RelationType, error) {
	switch name {
	case "one-to-many":
		return OneToMany, nil
	case "many-to-many":
		return ManyToMany, nil
	case "parent-to-child":
		return ParentToChild, nil
	}
	return 0, newMetaDataError("unknown relation type %q", name)
}

// CascadeAction controls what happens to slave rows when a master row is
// deleted.
type CascadeAction int

const (
	// CascadeRestrict refuses the delete while slave rows still exist.
	CascadeRestrict CascadeAction = iota
	// CascadeNullify clears the slave rows' foreign key.
	CascadeNullify
	// CascadeDelete deletes dependent slave rows along with the master.
	CascadeDelete
)

// ParseCascadeAction resolves a schema XML "cascade=" attribute
// ("restrict", "set-null", or "delete" — the XML vocabulary predates
// CascadeAction.String()'s "nullify" spelling) into its CascadeAction.
func ParseCascadeAction(name string) (CascadeAction, error) {
	switch name {
	case "restrict":
		return CascadeRestrict, nil
	case "set-null":
		return CascadeNullify, nil
	case "delete":
		return CascadeDelete, nil
	}
	return 0, newMetaDataError("unknown cascade action %q", name)
}

func (a CascadeAction) String() string {
	switch a {
	case CascadeRestrict:
		return "restrict"
	case CascadeNullify:
		return "nullify"
	case CascadeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// RelationEnd carries the per-side metadata of a Relation: the property
// name an owning DomainObject exposes for this side, an optional
// explicit foreign-key column list ("key" attribute in the XML schema),
// and the cascade policy applied when the opposite side is deleted.
type RelationEnd struct {
	Class    string
	Property string
	Key      []string
	Cascade  CascadeAction
}

// Relation is a named association between two entity classes. Side 0 is
// the "one"/master side, side 1 is the "many"/slave side (for
// OneToMany); for ManyToMany both sides are master-like and are
// connected through an association table named by AssocTable.
type Relation struct {
	table1, table2 *Table

	kind        RelationType
	name        string
	ends        [2]RelationEnd
	assocTable  string
	fkFields    []string
	verifyChild bool
}

// NewRelation declares a relation of the given kind between two entity
// classes. end1/end2 give each side's property name, explicit key
// columns, and cascade policy; name is the relation's identifier in the
// XML schema, defaulting to "<class1>-<class2>" when empty.
func NewRelation(kind RelationType, name string, end1, end2 RelationEnd) *Relation {
	if name == "" {
		name = end1.Class + "-" + end2.Class
	}
	return &Relation{kind: kind, name: name, ends: [2]RelationEnd{end1, end2}}
}

func (r *Relation) Type() RelationType { return r.kind }
func (r *Relation) Name() string       { return r.name }
func (r *Relation) End(side int) RelationEnd { return r.ends[side] }
func (r *Relation) Side(side int) string     { return r.ends[side].Class }

// SetAssocTable names the association table a ManyToMany relation joins
// through.
func (r *Relation) SetAssocTable(name string) { r.assocTable = name }
func (r *Relation) AssocTable() string        { return r.assocTable }

// Table returns the resolved Table for side 0 (master) or side 1 (slave),
// populated by Schema.FillForeignKeys.
func (r *Relation) Table(side int) *Table {
	if side == 0 {
		return r.table1
	}
	return r.table2
}

func (r *Relation) setTables(t1, t2 *Table) {
	r.table1, r.table2 = t1, t2
}

// FKFields returns the slave-side foreign-key column names resolved by
// Schema.FillForeignKeys.
func (r *Relation) FKFields() []string { return r.fkFields }

func (r *Relation) setFKFields(fields []string) { r.fkFields = fields }

// Equal reports whether two relations describe the same association
// (used by Schema.AddRelation to de-duplicate repeated declarations).
func (r *Relation) Equal(o *Relation) bool {
	return r.kind == o.kind && r.name == o.name &&
		r.ends[0].Class == o.ends[0].Class && r.ends[1].Class == o.ends[1].Class
}

// ColumnPair is one equality term of a relation's join condition: the
// master table's key column paired with the slave table's matching
// foreign-key column. Package dialect/sql turns a slice of these into an
// AND-ed equality predicate when building a join.
type ColumnPair struct {
	MasterColumn string
	SlaveColumn  string
}

// JoinCondition returns the column-pair equalities that join this
// relation's two tables: master-side primary-key columns paired
// position-for-position with the slave-side foreign-key columns. Both
// table pointers and fkFields must already be resolved (see
// Schema.FillForeignKeys).
func (r *Relation) JoinCondition() []ColumnPair {
	if r.table1 == nil || r.table2 == nil {
		return nil
	}
	pk := r.table1.PKFields()
	fk := r.fkFields
	n := len(pk)
	if len(fk) < n {
		n = len(fk)
	}
	pairs := make([]ColumnPair, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, ColumnPair{MasterColumn: pk[i], SlaveColumn: fk[i]})
	}
	return pairs
}
