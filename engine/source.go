package engine

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Source names one data source ready to open: the database/sql driver
// name to register under (the name a dialect package Register()s), and
// the driver-specific DSN sql.Open expects.
type Source struct {
	Driver string
	DSN    string
}

// ParseSourceURL decodes a connection URL of the form
// driver[+ext]://[user[:pass]@]host[:port]/db[?k=v(&k=v)*][#anchor],
// or the path-only sqlite://path/to/file.db variant, into a Source.
// The "+ext" suffix is accepted but otherwise ignored here — dialect
// variants that need it (e.g. a TLS mode) read it back off the query
// string instead.
func ParseSourceURL(raw string) (Source, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Source{}, fmt.Errorf("engine: parse source url: %w", err)
	}
	driverName, _, _ := strings.Cut(u.Scheme, "+")
	if driverName == "" {
		return Source{}, fmt.Errorf("engine: source url %q has no scheme", raw)
	}

	switch driverName {
	case "sqlite":
		path := u.Opaque
		if path == "" {
			path = u.Host + u.Path
		}
		if u.RawQuery != "" {
			path += "?" + u.RawQuery
		}
		return Source{Driver: driverName, DSN: path}, nil
	case "postgres", "postgresql":
		return Source{Driver: "postgres", DSN: u.String()}, nil
	case "mysql":
		return Source{Driver: "mysql", DSN: mysqlDSN(u)}, nil
	default:
		return Source{}, fmt.Errorf("engine: unrecognized driver %q", driverName)
	}
}

// mysqlDSN rewrites a parsed connection URL into the
// user:pass@tcp(host:port)/db?k=v DSN format go-sql-driver/mysql expects
// (it doesn't accept URLs directly the way lib/pq does).
func mysqlDSN(u *url.URL) string {
	var b strings.Builder
	if u.User != nil {
		b.WriteString(u.User.Username())
		if pass, ok := u.User.Password(); ok {
			b.WriteByte(':')
			b.WriteString(pass)
		}
		b.WriteByte('@')
	}
	if u.Host != "" {
		b.WriteString("tcp(")
		b.WriteString(u.Host)
		b.WriteByte(')')
	}
	b.WriteByte('/')
	b.WriteString(strings.TrimPrefix(u.Path, "/"))
	if u.RawQuery != "" {
		b.WriteByte('?')
		b.WriteString(u.RawQuery)
	}
	return b.String()
}

// SQLSourceFromEnv resolves a Source the way the original engine's
// sql_source_from_env(id) does: YBORM_URL[_id] takes priority, parsed
// through ParseSourceURL; otherwise YBORM_DRIVER (or YBORM_DBTYPE, read
// as the dialect name when no driver is set), YBORM_DB, YBORM_USER and
// YBORM_PASSWD are assembled into an equivalent URL first. A non-empty id
// suffixes only YBORM_URL; the other variables are always read unsuffixed.
func SQLSourceFromEnv(id string) (Source, error) {
	suffix := ""
	if id != "" {
		suffix = "_" + id
	}
	if raw := os.Getenv("YBORM_URL" + suffix); raw != "" {
		return ParseSourceURL(raw)
	}

	driverName := os.Getenv("YBORM_DRIVER")
	dbType := os.Getenv("YBORM_DBTYPE")
	if driverName == "" {
		driverName = dbType
	}
	if driverName == "" {
		return Source{}, fmt.Errorf("engine: neither YBORM_URL%s nor YBORM_DRIVER is set", suffix)
	}

	u := &url.URL{Scheme: driverName}
	if user := os.Getenv("YBORM_USER"); user != "" {
		if passwd := os.Getenv("YBORM_PASSWD"); passwd != "" {
			u.User = url.UserPassword(user, passwd)
		} else {
			u.User = url.User(user)
		}
	}
	db := os.Getenv("YBORM_DB")
	if driverName == "sqlite" {
		u.Opaque = db
	} else {
		u.Host = "localhost"
		u.Path = "/" + db
	}
	return ParseSourceURL(u.String())
}
