// Command export-csv writes the verified store to CSV, one row per
// (card, grade) price band. It reads the store file directly so it works
// without a running API server.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"

	"github.com/joho/godotenv"

	"cardvault/internal/store"
	"cardvault/pkg/database"
)

func main() {
	_ = godotenv.Load()

	out := flag.String("out", "", "output file (default stdout)")
	flag.Parse()

	st := store.MustOpen(database.DefaultConfig())
	doc := st.ExportAll()

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("[export] failed to create %s: %v", *out, err)
		}
		defer f.Close()
		w = f
	}

	cw := csv.NewWriter(w)
	cw.Write([]string{"key", "name", "year", "set", "card_number", "players", "category", "grade", "min", "max", "avg", "last_verified", "confidence", "source"})

	keys := make([]string, 0, len(doc.Cards))
	for key := range doc.Cards {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := 0
	for _, key := range keys {
		rec := doc.Cards[key]

		grades := make([]string, 0, len(rec.Prices))
		for grade := range rec.Prices {
			grades = append(grades, grade)
		}
		sort.Strings(grades)

		players := ""
		for i, p := range rec.Players {
			if i > 0 {
				players += ";"
			}
			players += p
		}

		for _, grade := range grades {
			band := rec.Prices[grade]
			cw.Write([]string{
				key,
				rec.Name,
				strconv.Itoa(rec.Year),
				rec.Set,
				rec.CardNumber,
				players,
				rec.Category,
				grade,
				fmt.Sprintf("%.2f", band.Min),
				fmt.Sprintf("%.2f", band.Max),
				fmt.Sprintf("%.2f", band.Avg),
				band.LastVerified,
				fmt.Sprintf("%.2f", rec.Confidence),
				rec.Source,
			})
			rows++
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Fatalf("[export] write failed: %v", err)
	}
	log.Printf("[export] wrote %d rows for %d cards", rows, len(doc.Cards))
}
