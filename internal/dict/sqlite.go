package dict

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"stenotape/internal/suggest"
)

// loadSQLite reads a dictionary from an entries(outline, translation)
// table.
func loadSQLite(path string) (map[string][]suggest.Candidate, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT outline, translation FROM entries`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	byText := make(map[string][]suggest.Candidate)
	for rows.Next() {
		var outline, def string
		if err := rows.Scan(&outline, &def); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if outline == "" {
			continue
		}
		strokes := strings.Split(outline, "/")
		byText[def] = append(byText[def], suggest.Candidate{
			Outline: strokes,
			Strokes: len(strokes),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return byText, nil
}
