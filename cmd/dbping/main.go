package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"sheetloader/internal/dbenv"
	"sheetloader/internal/storage"

	_ "sheetloader/internal/storage/all"
)

// dbping checks that the environment resolves to a reachable backend. With
// -table it also lists the live columns, which is the quickest way to see
// whether a destination table matches expectations before a load.
func main() {
	table := flag.String("table", "", "also list the columns of this table")
	timeout := flag.Duration("timeout", 10*time.Second, "overall deadline")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := dbenv.ResolveEnv()
	if err != nil {
		fatalf("resolve backend: %v", err)
	}
	log.Printf("backend: %s", cfg.Redacted())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	repo, err := storage.New(ctx, storage.Config{Driver: cfg.Driver, DSN: cfg.DSN})
	if err != nil {
		fatalf("open: %v", err)
	}
	defer repo.Close()

	if err := repo.Ping(ctx); err != nil {
		fatalf("ping: %v", err)
	}
	log.Printf("ping ok")

	if *table != "" {
		cols, err := repo.TableColumns(ctx, *table)
		if err != nil {
			fatalf("columns of %s: %v", *table, err)
		}
		for i, c := range cols {
			fmt.Printf("%3d  %s\n", i+1, c)
		}
		count, err := repo.CountRows(ctx, *table)
		if err != nil {
			fatalf("count %s: %v", *table, err)
		}
		log.Printf("%s: %d columns, %d rows", *table, len(cols), count)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
