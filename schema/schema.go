package schema

// Schema is the full metamodel of a database: every Table and Relation,
// indexed for fast lookup by name and by entity class.
type Schema struct {
	tables       map[string]*Table // canonical name -> table
	tablesLookup map[string]*Table // name, UPPER, lower -> table, for case-insensitive lookup
	tableOrder   []string          // insertion order, for deterministic iteration

	relations []*Relation
}

// New returns an empty Schema ready for AddTable/AddRelation.
func New() *Schema {
	return &Schema{
		tables:       make(map[string]*Table),
		tablesLookup: make(map[string]*Table),
	}
}

// AddTable registers table, indexing it by its canonical, upper-cased,
// and lower-cased name. It returns an error if the name fails the
// identifier grammar or the table has no columns.
func (s *Schema) AddTable(t *Table) error {
	if !isIdentifier(t.name) {
		return &BadTableNameError{Table: t.name}
	}
	if t.Size() == 0 {
		return &TableWithoutColumnsError{Table: t.name}
	}
	if _, exists := s.tables[t.name]; !exists {
		s.tableOrder = append(s.tableOrder, t.name)
	}
	s.tables[t.name] = t
	s.tablesLookup[t.name] = t
	s.tablesLookup[upperIdent.String(t.name)] = t
	s.tablesLookup[lowerIdent.String(t.name)] = t
	t.setSchema(s)
	return nil
}

// Table looks up a table by name (original, upper, or lower case).
func (s *Schema) Table(name string) (*Table, error) {
	t, ok := s.tablesLookup[name]
	if !ok {
		return nil, &TableNotFoundError{Table: name}
	}
	return t, nil
}

// Tables returns every registered table in registration order.
func (s *Schema) Tables() []*Table {
	out := make([]*Table, 0, len(s.tableOrder))
	for _, name := range s.tableOrder {
		out = append(out, s.tables[name])
	}
	return out
}

// TableByClass finds the table backing the given entity class name.
func (s *Schema) TableByClass(className string) (*Table, error) {
	for _, name := range s.tableOrder {
		if s.tables[name].ClassName() == className {
			return s.tables[name], nil
		}
	}
	return nil, &ClassNotFoundError{Class: className}
}

// AddRelation registers rel, unless an equal relation is already
// present.
func (s *Schema) AddRelation(rel *Relation) {
	for _, existing := range s.relations {
		if existing.Equal(rel) {
			return
		}
	}
	s.relations = append(s.relations, rel)
}

// Relations returns every registered relation in registration order.
func (s *Schema) Relations() []*Relation {
	return s.relations
}

// FillForeignKeys defaults unresolved foreign-key column names to their
// target table's surrogate primary key, binds each relation's Table(0)/
// Table(1) pointers, and resolves each OneToMany relation's foreign-key
// field list. It returns an error if a OneToMany relation's slave table
// has no foreign key back to the master.
func (s *Schema) FillForeignKeys() error {
	for _, name := range s.tableOrder {
		t := s.tables[name]
		for _, c := range t.columns {
			if c.FKTableName() != "" && c.FKName() == "" {
				target, err := s.Table(c.FKTableName())
				if err != nil {
					continue
				}
				pk, err := target.SurrogatePK()
				if err != nil {
					continue
				}
				c.SetFKName(pk)
			}
		}
	}
	for _, rel := range s.relations {
		t0, err := s.TableByClass(rel.Side(0))
		if err != nil {
			return err
		}
		t1, err := s.TableByClass(rel.Side(1))
		if err != nil {
			return err
		}
		rel.setTables(t0, t1)

		fkParts, err := t1.FindFKFor(rel, rel.End(1).Key)
		if err != nil {
			return err
		}
		rel.setFKFields(fkParts)

		if rel.Type() == OneToMany {
			if len(fkParts) == 0 || len(fkParts) != len(t0.PKFields()) {
				return &FkNotFoundError{MasterTable: t0.Name(), SlaveTable: t1.Name()}
			}
		}
	}
	return nil
}

// CheckCycles assigns every table a depth equal to the length of its
// longest foreign-key ancestor chain (tables with no foreign keys get
// depth 0) and returns an *IntegrityCheckFailedError if the foreign-key
// graph contains a cycle or references an unknown table/column. A
// foreign key from a table to itself is not counted as a cycle.
//
// Depth drives flush ordering in the session: inserts run low-depth
// tables first, deletes run them last.
func (s *Schema) CheckCycles() error {
	parentToChildren := make(map[string][]string)
	for _, name := range s.tableOrder {
		t := s.tables[name]
		hasParent := false
		for _, c := range t.columns {
			if !c.HasFK() {
				continue
			}
			if err := s.checkForeignKey(t.Name(), c.FKTableName(), c.FKName()); err != nil {
				return err
			}
			if c.FKTableName() == t.Name() {
				continue
			}
			parentToChildren[c.FKTableName()] = append(parentToChildren[c.FKTableName()], t.Name())
			hasParent = true
		}
		if !hasParent {
			parentToChildren[""] = append(parentToChildren[""], t.Name())
		}
	}

	depths := make(map[string]int, len(s.tableOrder))
	for _, name := range s.tableOrder {
		depths[name] = 0
	}

	queue := []string{""}
	reached := map[string]bool{}
	totalEdges := 0
	for _, children := range parentToChildren {
		totalEdges += len(children)
	}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, child := range parentToChildren[parent] {
			newDepth := 0
			if parent != "" {
				newDepth = depths[parent] + 1
			}
			if newDepth > totalEdges {
				return &IntegrityCheckFailedError{Message: "cyclic references in DB schema found"}
			}
			if !reached[child] || newDepth > depths[child] {
				reached[child] = true
				depths[child] = newDepth
				queue = append(queue, child)
			}
		}
	}
	for _, name := range s.tableOrder {
		if !reached[name] {
			return &IntegrityCheckFailedError{Message: "cyclic references in DB schema found"}
		}
	}

	for name, depth := range depths {
		s.tables[name].setDepth(depth)
	}
	return nil
}

func (s *Schema) checkForeignKey(table, fkTable, fkField string) error {
	target, ok := s.tablesLookup[fkTable]
	if !ok {
		return &IntegrityCheckFailedError{Message: "table '" + fkTable + "' not found as foreign key for '" + table + "'"}
	}
	if _, err := target.Column(fkField); err != nil {
		return &IntegrityCheckFailedError{
			Message: "field " + fkField + " of table '" + fkTable +
				"' not found as foreign key-field of table '" + table + "'",
		}
	}
	return nil
}

// FindRelation finds the relation connecting class1 to class2 (or, if
// class2 is empty, the first relation naming class1 on either side),
// optionally filtered by the declared property name on the side
// matching propSide.
func (s *Schema) FindRelation(class1, relationName, class2 string, propSide int) *Relation {
	for _, rel := range s.relations {
		if rel.Side(0) != class1 && rel.Side(1) != class1 {
			continue
		}
		if class2 != "" {
			matches := (rel.Side(1) == class2 && rel.Side(0) == class1) ||
				(rel.Side(0) == class2 && rel.Side(1) == class1)
			if !matches {
				continue
			}
		}
		if relationName == "" || rel.End(propSide).Property == relationName {
			return rel
		}
	}
	return nil
}

// FindSingleRelationBetweenTables returns the relation connecting the
// entity classes backing tbl1 and tbl2, or nil if tables by those names
// aren't both registered or no relation connects their classes.
func (s *Schema) FindSingleRelationBetweenTables(tbl1, tbl2 string) *Relation {
	t1, err := s.Table(tbl1)
	if err != nil {
		return nil
	}
	t2, err := s.Table(tbl2)
	if err != nil {
		return nil
	}
	return s.FindRelation(t1.ClassName(), "", t2.ClassName(), 0)
}

// JoinPath describes one step of a multi-table join: the table being
// joined in, and the column-pair equalities connecting it to the
// previous table in the path.
type JoinPath struct {
	Table      string
	Conditions []ColumnPair
}

// JoinPlan resolves the sequence of pairwise relations needed to join
// the given tables left to right: tables[0] is the join's root, and each
// subsequent table must share a single relation with its predecessor.
// Package dialect/sql consumes this to build a SelectExpr's FROM clause.
func (s *Schema) JoinPlan(tables []string) ([]JoinPath, error) {
	if len(tables) == 0 {
		return nil, nil
	}
	plan := []JoinPath{{Table: tables[0]}}
	for i := 1; i < len(tables); i++ {
		rel := s.FindSingleRelationBetweenTables(tables[i-1], tables[i])
		if rel == nil {
			return nil, &IntegrityCheckFailedError{
				Message: "no relation found between tables '" + tables[i-1] + "' and '" + tables[i] + "'",
			}
		}
		plan = append(plan, JoinPath{Table: tables[i], Conditions: rel.JoinCondition()})
	}
	return plan, nil
}
