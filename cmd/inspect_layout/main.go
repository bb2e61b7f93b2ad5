// Command inspect_layout dumps a persisted layout record for debugging.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/mcv-dev/mcvillage/village/layoutdb"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <layout-dir> <layout-name>\n", os.Args[0])
		os.Exit(2)
	}
	dir, name := os.Args[1], os.Args[2]

	db, err := layoutdb.Config{Log: slog.Default()}.Open(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()

	l, err := db.Layout(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	out, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
