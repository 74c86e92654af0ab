// Command shardctl inspects and manages shard tables in a SQLite database
// from the command line.
//
// Usage:
//
//	shardctl -db app.db list person
//	shardctl -db app.db clone [-data] person person_1
//	shardctl -db app.db exists person 1
//	shardctl -db app.db resolve person 1
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dreamware/tableshard"
)

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("shardctl: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("shardctl", flag.ContinueOnError)
	fs.SetOutput(out)
	dbPath := fs.String("db", getenv("TABLESHARD_DB", ""), "path to the SQLite database")
	sep := fs.String("sep", getenv("TABLESHARD_SEP", "_"), "separator between base name and shard suffix")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return fmt.Errorf("missing command (list, clone, exists, resolve)")
	}
	if *dbPath == "" {
		return fmt.Errorf("no database given (use -db or TABLESHARD_DB)")
	}

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", *dbPath, err)
	}
	defer db.Close()

	sharder := tableshard.New(db, tableshard.SQLite(), tableshard.WithSeparator(*sep))
	ctx := context.Background()

	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "list":
		return runList(ctx, sharder, cmdArgs, out)
	case "clone":
		return runClone(ctx, sharder, cmdArgs, out)
	case "exists":
		return runExists(ctx, sharder, cmdArgs, out)
	case "resolve":
		return runResolve(ctx, sharder, cmdArgs, out)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runList(ctx context.Context, s *tableshard.Sharder, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: list <base>")
	}
	shards, err := s.ListShards(ctx, args[0])
	if err != nil {
		return err
	}
	for _, suffix := range shards {
		fmt.Fprintln(out, suffix)
	}
	return nil
}

func runClone(ctx context.Context, s *tableshard.Sharder, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("clone", flag.ContinueOnError)
	fs.SetOutput(out)
	copyData := fs.Bool("data", false, "copy rows as well as schema")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: clone [-data] <source> <target>")
	}
	if err := s.CopyTable(ctx, fs.Arg(0), fs.Arg(1), *copyData); err != nil {
		return err
	}
	fmt.Fprintf(out, "cloned %s -> %s\n", fs.Arg(0), fs.Arg(1))
	return nil
}

func runExists(ctx context.Context, s *tableshard.Sharder, args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: exists <base> <suffix>")
	}
	exists, err := s.ShardExists(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(out, exists)
	return nil
}

func runResolve(ctx context.Context, s *tableshard.Sharder, args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: resolve <base> <suffix>")
	}
	name, err := s.ResolveTable(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(out, name)
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
