package dialect

import "sync"

var (
	registryMu sync.RWMutex
	registry   = map[string]SQLDialect{}
)

// Register adds a SQLDialect implementation under its Name() so engine
// and dialect/sql can resolve it purely from a data-source name prefix.
// Concrete dialect packages (dialect/postgres, dialect/mysql, ...) call
// this from an init func.
func Register(d SQLDialect) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[d.Name()] = d
}

// Lookup returns the registered SQLDialect for name, or false if no
// dialect package with that name has been imported.
func Lookup(name string) (SQLDialect, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	return d, ok
}
