// Command ormkit is the schema-file generator tool: it reads an XML
// schema document and either emits Go domain wrappers, dumps DDL for a
// chosen dialect, pushes or drops that schema against a live database,
// or reverses a live database's own catalog back into a schema file.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/ormkit/ormkit/dialect"
	_ "github.com/ormkit/ormkit/dialect/mysql"
	_ "github.com/ormkit/ormkit/dialect/postgres"
	_ "github.com/ormkit/ormkit/dialect/sqlite"
	"github.com/ormkit/ormkit/dialect/sql"
	"github.com/ormkit/ormkit/engine"
	"github.com/ormkit/ormkit/schema"
	"github.com/ormkit/ormkit/schema/domaingen"
	"github.com/ormkit/ormkit/schema/introspect"
	"github.com/ormkit/ormkit/schema/xmlschema"
)

func main() {
	cmd := &cli.Command{
		Name:  "ormkit",
		Usage: "generate Go domain code, dump DDL, and manage schemas from an XML schema file",
		Commands: []*cli.Command{
			domainCommand(),
			ddlCommand(),
			populateSchemaCommand(),
			dropSchemaCommand(),
			extractSchemaCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadSchemaFile(path string) (*schema.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ormkit: open %s: %w", path, err)
	}
	defer f.Close()
	s, err := xmlschema.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("ormkit: parse %s: %w", path, err)
	}
	return s, nil
}

// domainCommand implements `--domain config.xml output_path [include_prefix]`:
// writes one generated Go source file covering every table, or only
// those whose class name starts with include_prefix when given.
func domainCommand() *cli.Command {
	return &cli.Command{
		Name:      "domain",
		Usage:     "generate Go domain wrappers from a schema file",
		ArgsUsage: "config.xml output_path [include_prefix]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) < 2 {
				return cli.Exit("usage: ormkit domain config.xml output_path [include_prefix]", 1)
			}
			s, err := loadSchemaFile(args[0])
			if err != nil {
				return cli.Exit(err, 1)
			}
			if len(args) >= 3 && args[2] != "" {
				s, err = filterByClassPrefix(s, args[2])
				if err != nil {
					return cli.Exit(err, 1)
				}
			}

			out, err := os.Create(args[1])
			if err != nil {
				return cli.Exit(fmt.Errorf("ormkit: create %s: %w", args[1], err), 1)
			}
			defer out.Close()

			if err := domaingen.Generate(out, "domain", s); err != nil {
				return cli.Exit(fmt.Errorf("ormkit: generate domain: %w", err), 1)
			}
			return nil
		},
	}
}

func filterByClassPrefix(s *schema.Schema, prefix string) (*schema.Schema, error) {
	filtered := schema.New()
	for _, t := range s.Tables() {
		if !strings.HasPrefix(t.ClassName(), prefix) {
			continue
		}
		if err := filtered.AddTable(t); err != nil {
			return nil, fmt.Errorf("ormkit: filter %s: %w", t.Name(), err)
		}
	}
	return filtered, nil
}

// ddlCommand implements `--ddl config.xml dialect_name [output.sql]`:
// renders every table's CREATE TABLE, in dependency order, followed by
// the deferred ALTER TABLE ADD FOREIGN KEY statements, without opening
// any database connection.
func ddlCommand() *cli.Command {
	return &cli.Command{
		Name:      "ddl",
		Usage:     "dump CREATE TABLE / ALTER TABLE DDL for a dialect",
		ArgsUsage: "config.xml dialect_name [output.sql]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) < 2 {
				return cli.Exit("usage: ormkit ddl config.xml dialect_name [output.sql]", 1)
			}
			s, err := loadSchemaFile(args[0])
			if err != nil {
				return cli.Exit(err, 1)
			}
			dialectName := args[1]
			if _, ok := dialect.Lookup(dialectName); !ok {
				return cli.Exit(fmt.Errorf("ormkit: unknown dialect %q", dialectName), 1)
			}

			out := os.Stdout
			if len(args) >= 3 {
				f, err := os.Create(args[2])
				if err != nil {
					return cli.Exit(fmt.Errorf("ormkit: create %s: %w", args[2], err), 1)
				}
				defer f.Close()
				out = f
			}

			tables := orderedByDepth(s.Tables())
			var fkStatements []string
			for _, t := range tables {
				for _, stmt := range sql.CreateTableStatements(dialectName, t) {
					if strings.HasPrefix(stmt, "ALTER TABLE") {
						fkStatements = append(fkStatements, stmt)
						continue
					}
					fmt.Fprintf(out, "%s;\n", stmt)
				}
			}
			for _, stmt := range fkStatements {
				fmt.Fprintf(out, "%s;\n", stmt)
			}
			return nil
		},
	}
}

func orderedByDepth(tables []*schema.Table) []*schema.Table {
	out := make([]*schema.Table, len(tables))
	copy(out, tables)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Depth() > out[j].Depth(); j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// populateSchemaCommand implements `--populate-schema config.xml connection_url`.
func populateSchemaCommand() *cli.Command {
	return &cli.Command{
		Name:      "populate-schema",
		Usage:     "create every table and foreign key in config.xml against a live database",
		ArgsUsage: "config.xml connection_url",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withOpenEngine(ctx, cmd, func(ctx context.Context, e *engine.Engine, s *schema.Schema) error {
				return e.CreateSchema(ctx, s, false)
			})
		},
	}
}

// dropSchemaCommand implements `--drop-schema config.xml connection_url`.
func dropSchemaCommand() *cli.Command {
	return &cli.Command{
		Name:      "drop-schema",
		Usage:     "drop every table in config.xml from a live database",
		ArgsUsage: "config.xml connection_url",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withOpenEngine(ctx, cmd, func(ctx context.Context, e *engine.Engine, s *schema.Schema) error {
				return e.DropSchema(ctx, s, false)
			})
		},
	}
}

func withOpenEngine(ctx context.Context, cmd *cli.Command, run func(context.Context, *engine.Engine, *schema.Schema) error) error {
	args := cmd.Args().Slice()
	if len(args) < 2 {
		return cli.Exit(fmt.Sprintf("usage: ormkit %s config.xml connection_url", cmd.Name), 1)
	}
	s, err := loadSchemaFile(args[0])
	if err != nil {
		return cli.Exit(err, 1)
	}
	src, err := engine.ParseSourceURL(args[1])
	if err != nil {
		return cli.Exit(err, 1)
	}
	e, err := engine.Open(engine.ReadWrite, src.Driver, src.DSN)
	if err != nil {
		return cli.Exit(fmt.Errorf("ormkit: open %s: %w", src.Driver, err), 1)
	}
	defer e.Close()

	if err := run(ctx, e, s); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

// extractSchemaCommand implements `--extract-schema config.xml connection_url`:
// reads a live database's catalog and writes it back as an XML schema
// file at the given path.
func extractSchemaCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract-schema",
		Usage:     "reverse-engineer a schema file from a live database's catalog",
		ArgsUsage: "config.xml connection_url",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args().Slice()
			if len(args) < 2 {
				return cli.Exit("usage: ormkit extract-schema config.xml connection_url", 1)
			}
			src, err := engine.ParseSourceURL(args[1])
			if err != nil {
				return cli.Exit(err, 1)
			}
			drv, err := sql.Open(src.Driver, src.DSN)
			if err != nil {
				return cli.Exit(fmt.Errorf("ormkit: open %s: %w", src.Driver, err), 1)
			}
			defer drv.Close()

			s, err := introspect.Extract(ctx, drv)
			if err != nil {
				return cli.Exit(err, 1)
			}

			out, err := os.Create(args[0])
			if err != nil {
				return cli.Exit(fmt.Errorf("ormkit: create %s: %w", args[0], err), 1)
			}
			defer out.Close()

			if err := xmlschema.Write(out, s); err != nil {
				return cli.Exit(fmt.Errorf("ormkit: write %s: %w", args[0], err), 1)
			}
			return nil
		},
	}
}
