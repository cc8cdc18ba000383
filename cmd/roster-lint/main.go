// roster-lint validates a character roster CSV export before it is published
// to the sheet the server reads. It checks the same constraints the server's
// parser enforces, but reports every bad row instead of dropping it silently.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var validClasses = map[string]bool{
	"Knight":   true,
	"Archer":   true,
	"Wizard":   true,
	"Assassin": true,
	"Bard":     true,
}

var requiredColumns = []string{"id", "name", "class"}

func main() {
	path := "./roster.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	file, err := os.Open(path)
	if err != nil {
		fmt.Printf("error: cannot open %s: %v\n", path, err)
		os.Exit(1)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		fmt.Printf("%s: cannot read header: %v\n", path, err)
		os.Exit(1)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	exitCode := 0
	for _, required := range requiredColumns {
		if _, ok := col[required]; !ok {
			fmt.Printf("%s: header missing required column %q\n", path, required)
			exitCode = 1
		}
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	seen := make(map[string]int)
	lineNum := 1
	bad := 0
	for {
		lineNum++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			fmt.Printf("%s:%d: unreadable row: %v\n", path, lineNum, err)
			bad++
			continue
		}

		id := field(row, "id")
		name := field(row, "name")
		class := field(row, "class")

		switch {
		case id == "":
			fmt.Printf("%s:%d: missing id\n", path, lineNum)
			bad++
		case name == "":
			fmt.Printf("%s:%d: missing name\n", path, lineNum)
			bad++
		case !validClasses[class]:
			fmt.Printf("%s:%d: unknown class %q\n", path, lineNum, class)
			bad++
		case seen[id] != 0:
			fmt.Printf("%s:%d: duplicate id %q (first seen on line %d)\n", path, lineNum, id, seen[id])
			bad++
		default:
			seen[id] = lineNum
			for _, stat := range []string{"hp", "mana", "speed"} {
				if raw := field(row, stat); raw != "" {
					if _, err := strconv.Atoi(raw); err != nil {
						fmt.Printf("%s:%d: %s is not a number: %q\n", path, lineNum, stat, raw)
						bad++
					}
				}
			}
			for _, pair := range strings.Split(field(row, "skills"), ",") {
				if pair != "" && !strings.Contains(pair, "|") {
					fmt.Printf("%s:%d: skill %q is not 'name|description'\n", path, lineNum, pair)
					bad++
				}
			}
		}
	}

	if bad == 0 {
		fmt.Printf("%s: OK (%d characters)\n", path, len(seen))
		return
	}
	fmt.Printf("%s: %d problem(s)\n", path, bad)
	os.Exit(1)
}
