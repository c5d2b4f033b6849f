// Command cli is a terminal client for the cardvault API server.
package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

var (
	apiBase string
	client  = &http.Client{Timeout: 15 * time.Second}
)

func main() {
	_ = godotenv.Load()

	flag.StringVar(&apiBase, "api", envOr("CARDVAULT_API", "http://localhost:8080"), "API server base URL")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "estimate":
		err = cmdEstimate(args[1:])
	case "grades":
		err = cmdGrades(args[1:])
	case "grading":
		err = cmdGrading(args[1:])
	case "cards":
		err = cmdCards(args[1:])
	case "stale":
		err = cmdStale(args[1:])
	case "stats":
		err = doJSON(http.MethodGet, "/stats", nil)
	case "export":
		err = cmdExport(args[1:])
	case "watch":
		err = cmdWatch(args[1:])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: cli [-api URL] <command> [args]

commands:
  estimate  -category C [-player P -year Y -set S -number N ...] [-grade G]
  grades    -category C [card flags]           estimate across all grades
  grading   -category C [card flags]           grading ROI report
  cards     search [-q text] [-limit N]
  cards     show <key>
  cards     add -name N -grade G -min X -max Y [card flags]
  cards     update-price <key> -grade G -min X -max Y
  cards     delete <key>
  stale     [-days N]
  stats
  export    [-format json|csv] [-out FILE]
  watch     [-transport tcp|ws]                follow the live price feed`)
}

func cardFlags(fs *flag.FlagSet) map[string]*string {
	fields := map[string]*string{}
	for _, name := range []string{"category", "player", "year", "manufacturer", "set", "number", "parallel", "serial", "memorabilia"} {
		fields[name] = fs.String(name, "", "")
	}
	return fields
}

func cardPayload(fields map[string]*string, rookie, auto bool) map[string]any {
	card := map[string]any{"category": *fields["category"]}
	keys := map[string]string{
		"player": "player", "year": "year", "manufacturer": "manufacturer",
		"set": "set_name", "number": "card_number", "parallel": "parallel",
		"serial": "serial_number", "memorabilia": "memorabilia",
	}
	for flagName, jsonName := range keys {
		if v := *fields[flagName]; v != "" {
			card[jsonName] = v
		}
	}
	if rookie {
		card["rookie"] = true
	}
	if auto {
		card["autograph"] = true
	}
	return card
}

func cmdEstimate(args []string) error {
	fs := flag.NewFlagSet("estimate", flag.ExitOnError)
	fields := cardFlags(fs)
	grade := fs.String("grade", "RAW", "target grade")
	rookie := fs.Bool("rookie", false, "")
	auto := fs.Bool("auto", false, "")
	fs.Parse(args)

	body := map[string]any{"card": cardPayload(fields, *rookie, *auto), "grade": *grade}
	return doJSON(http.MethodPost, "/estimate", body)
}

func cmdGrades(args []string) error {
	fs := flag.NewFlagSet("grades", flag.ExitOnError)
	fields := cardFlags(fs)
	rookie := fs.Bool("rookie", false, "")
	auto := fs.Bool("auto", false, "")
	fs.Parse(args)

	body := map[string]any{"card": cardPayload(fields, *rookie, *auto)}
	return doJSON(http.MethodPost, "/estimate/all", body)
}

func cmdGrading(args []string) error {
	fs := flag.NewFlagSet("grading", flag.ExitOnError)
	fields := cardFlags(fs)
	rookie := fs.Bool("rookie", false, "")
	auto := fs.Bool("auto", false, "")
	fs.Parse(args)

	body := map[string]any{"card": cardPayload(fields, *rookie, *auto)}
	return doJSON(http.MethodPost, "/estimate/grading", body)
}

func cmdCards(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("cards requires a subcommand: search, show, add, update-price, delete")
	}

	switch args[0] {
	case "search":
		fs := flag.NewFlagSet("cards search", flag.ExitOnError)
		q := fs.String("q", "", "search text")
		limit := fs.Int("limit", 10, "max results")
		fs.Parse(args[1:])
		params := url.Values{}
		if *q != "" {
			params.Set("q", *q)
		}
		params.Set("limit", fmt.Sprint(*limit))
		return doJSON(http.MethodGet, "/cards?"+params.Encode(), nil)

	case "show":
		if len(args) < 2 {
			return fmt.Errorf("cards show requires a key")
		}
		return doJSON(http.MethodGet, "/cards/"+url.PathEscape(args[1]), nil)

	case "add":
		fs := flag.NewFlagSet("cards add", flag.ExitOnError)
		name := fs.String("name", "", "display name")
		year := fs.Int("year", 0, "")
		set := fs.String("set", "", "")
		number := fs.String("number", "", "")
		players := fs.String("players", "", "comma separated")
		category := fs.String("category", "", "")
		cardType := fs.String("type", "", "")
		grade := fs.String("grade", "", "")
		min := fs.Float64("min", 0, "")
		max := fs.Float64("max", 0, "")
		fs.Parse(args[1:])

		body := map[string]any{
			"name": *name, "year": *year, "set": *set, "card_number": *number,
			"category": *category, "type": *cardType,
			"grade": *grade, "min": *min, "max": *max,
		}
		if *players != "" {
			body["players"] = strings.Split(*players, ",")
		}
		return doJSON(http.MethodPost, "/cards", body)

	case "update-price":
		if len(args) < 2 {
			return fmt.Errorf("cards update-price requires a key")
		}
		fs := flag.NewFlagSet("cards update-price", flag.ExitOnError)
		grade := fs.String("grade", "", "")
		min := fs.Float64("min", 0, "")
		max := fs.Float64("max", 0, "")
		fs.Parse(args[2:])
		path := "/cards/" + url.PathEscape(args[1]) + "/prices/" + url.PathEscape(*grade)
		return doJSON(http.MethodPut, path, map[string]any{"min": *min, "max": *max})

	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("cards delete requires a key")
		}
		return doJSON(http.MethodDelete, "/cards/"+url.PathEscape(args[1]), nil)
	}
	return fmt.Errorf("unknown cards subcommand %q", args[0])
}

func cmdStale(args []string) error {
	fs := flag.NewFlagSet("stale", flag.ExitOnError)
	days := fs.Int("days", 90, "staleness threshold in days")
	fs.Parse(args)
	return doJSON(http.MethodGet, fmt.Sprintf("/stale?days=%d", *days), nil)
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "json", "json or csv")
	out := fs.String("out", "", "output file (default stdout)")
	fs.Parse(args)

	resp, err := client.Get(apiBase + "/export")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var doc struct {
		Cards map[string]struct {
			Name   string `json:"name"`
			Prices map[string]struct {
				Min float64 `json:"min"`
				Max float64 `json:"max"`
			} `json:"prices"`
		} `json:"cards"`
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if *format == "json" {
		var pretty bytes.Buffer
		var raw json.RawMessage
		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			return err
		}
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			return err
		}
		_, err = w.Write(append(pretty.Bytes(), '\n'))
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Write([]string{"key", "name", "grade", "min", "max"})
	for key, rec := range doc.Cards {
		for grade, band := range rec.Prices {
			cw.Write([]string{key, rec.Name, grade, fmt.Sprint(band.Min), fmt.Sprint(band.Max)})
		}
	}
	cw.Flush()
	return cw.Error()
}

// cmdWatch follows the live price event feed over raw TCP or WebSocket.
func cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	transport := fs.String("transport", "tcp", "tcp or ws")
	addr := fs.String("addr", envOr("CARDVAULT_SYNC_ADDR", "localhost:7070"), "TCP feed address")
	fs.Parse(args)

	if *transport == "ws" {
		wsURL := strings.Replace(apiBase, "http", "ws", 1) + "/ws"
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			return fmt.Errorf("failed to connect to %s: %w", wsURL, err)
		}
		defer conn.Close()
		fmt.Println("watching", wsURL)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return nil
			}
			fmt.Print(string(msg))
		}
	}

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", *addr, err)
	}
	defer conn.Close()
	fmt.Println("watching", *addr)
	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		fmt.Println(sc.Text())
	}
	return sc.Err()
}

func doJSON(method, path string, body any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, apiBase+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf.Bytes(), "", "  "); err != nil {
		fmt.Println(buf.String())
		return nil
	}
	fmt.Println(pretty.String())

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
