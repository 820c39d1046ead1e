package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/raine/kawthar-catalog/config"
	"github.com/raine/kawthar-catalog/internal/app"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var jsonOut string
	var dsn string
	var list int
	flag.StringVar(&jsonOut, "json", "", "Also write the catalog as JSON to this file")
	flag.StringVar(&dsn, "db", "", "Database DSN (overrides CATALOG_DB_DSN)")
	flag.IntVar(&list, "list", 0, "List the N most recent stored snapshots and exit")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config.LoadEnvFile()
	cfg := config.Load()
	if dsn != "" {
		cfg.DBDSN = dsn
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if list > 0 {
		if a.Store == nil {
			fmt.Fprintf(os.Stderr, "Error: -list requires CATALOG_DB_DSN or -db\n")
			os.Exit(1)
		}
		infos, err := a.Store.ListSnapshots(ctx, list)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing snapshots: %v\n", err)
			os.Exit(1)
		}
		if len(infos) == 0 {
			fmt.Println("No snapshots stored.")
			return
		}
		for _, info := range infos {
			fmt.Printf("%s  %s  rows=%d bad=%d dropped=%d  %s\n",
				info.LoadedAt.Format(time.RFC3339), info.LoadID,
				info.Diagnostics.SourceRows, info.Diagnostics.BadLines, info.Diagnostics.DroppedRows,
				info.Fingerprint)
		}
		return
	}

	c, err := a.Repository.EnsureLoaded(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		os.Exit(1)
	}

	if a.Store != nil {
		saved, err := a.Store.SaveSnapshot(ctx, c)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error saving snapshot: %v\n", err)
			os.Exit(1)
		}
		if !saved {
			log.Info().Str("fingerprint", c.SourceFingerprint).Msg("snapshot of this source already stored")
		}
	} else {
		log.Warn().Msg("CATALOG_DB_DSN not set, snapshot not saved")
	}

	if jsonOut != "" {
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding catalog: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(jsonOut, append(data, '\n'), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", jsonOut, err)
			os.Exit(1)
		}
	}

	fmt.Println(c.Summary())
}
