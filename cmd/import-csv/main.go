// Command import-csv loads verified prices from a CSV file straight into
// the store, bypassing the API server. Expected columns (header row
// required, order free): name, year, set, card_number, players, category,
// type, grade, min, max, source. Players is a semicolon separated list.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"cardvault/internal/store"
	"cardvault/pkg/database"
)

func main() {
	_ = godotenv.Load()

	path := flag.String("file", "", "CSV file to import")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: import-csv -file prices.csv [-dry-run]")
		os.Exit(1)
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("[import] failed to open %s: %v", *path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		log.Fatalf("[import] failed to read header: %v", err)
	}
	cols := indexHeader(header)
	for _, required := range []string{"grade", "min", "max"} {
		if _, ok := cols[required]; !ok {
			log.Fatalf("[import] missing required column %q", required)
		}
	}

	st := store.MustOpen(database.DefaultConfig())
	log.Printf("[import] store has %d cards before import", st.Count())

	imported, skipped := 0, 0
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			break
		}

		params, err := rowToParams(cols, row)
		if err != nil {
			log.Printf("[import] line %d skipped: %v", line, err)
			skipped++
			continue
		}

		if *dryRun {
			imported++
			continue
		}
		key, _, created, err := st.AddOrUpdate(params)
		if err != nil {
			log.Printf("[import] line %d failed: %v", line, err)
			skipped++
			continue
		}
		verb := "updated"
		if created {
			verb = "added"
		}
		log.Printf("[import] %s %s (%s)", verb, key, params.Grade)
		imported++
	}

	if *dryRun {
		log.Printf("[import] dry run: %d rows parsed, %d skipped", imported, skipped)
		return
	}
	log.Printf("[import] done: %d imported, %d skipped, store now has %d cards", imported, skipped, st.Count())
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func rowToParams(cols map[string]int, row []string) (store.UpsertParams, error) {
	get := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	min, err := strconv.ParseFloat(get("min"), 64)
	if err != nil {
		return store.UpsertParams{}, fmt.Errorf("bad min %q", get("min"))
	}
	max, err := strconv.ParseFloat(get("max"), 64)
	if err != nil {
		return store.UpsertParams{}, fmt.Errorf("bad max %q", get("max"))
	}

	year := 0
	if raw := get("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil {
			return store.UpsertParams{}, fmt.Errorf("bad year %q", raw)
		}
	}

	var players []string
	for _, p := range strings.Split(get("players"), ";") {
		if p = strings.TrimSpace(p); p != "" {
			players = append(players, p)
		}
	}

	source := get("source")
	if source == "" {
		source = "csv_import"
	}

	return store.UpsertParams{
		Name:       get("name"),
		Year:       year,
		Set:        get("set"),
		CardNumber: get("card_number"),
		Players:    players,
		Category:   get("category"),
		CardType:   get("type"),
		Grade:      get("grade"),
		Min:        min,
		Max:        max,
		Source:     source,
	}, nil
}
