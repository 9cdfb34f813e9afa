package indexer

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/drift/internal/extraction"
)

// DataAccessDetector finds the places where code touches stored data: raw
// SQL embedded in string literals and common ORM call shapes. Detection is
// line-oriented and language-agnostic so one detector serves every parser.
type DataAccessDetector struct{}

// NewDataAccessDetector creates a detector.
func NewDataAccessDetector() *DataAccessDetector {
	return &DataAccessDetector{}
}

var (
	selectRe = regexp.MustCompile(`(?i)\bSELECT\s+(.+?)\s+FROM\s+["'\x60]?([a-zA-Z_][a-zA-Z0-9_]*)`)
	insertRe = regexp.MustCompile(`(?i)\bINSERT\s+INTO\s+["'\x60]?([a-zA-Z_][a-zA-Z0-9_]*)["'\x60]?\s*(\(([^)]*)\))?`)
	updateRe = regexp.MustCompile(`(?i)\bUPDATE\s+["'\x60]?([a-zA-Z_][a-zA-Z0-9_]*)["'\x60]?\s+SET\s+(.+)`)
	deleteRe = regexp.MustCompile(`(?i)\bDELETE\s+FROM\s+["'\x60]?([a-zA-Z_][a-zA-Z0-9_]*)`)

	// assignmentRe captures "col = ..." targets in UPDATE SET clauses.
	assignmentRe = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_]*)\s*=`)

	// ormCallRe matches Model.method(...) style ORM access, e.g. Django's
	// User.objects.filter(...) or ActiveRecord's User.where(...).
	ormCallRe = regexp.MustCompile(`\b([A-Z][a-zA-Z0-9]*)\.(?:objects\.)?(get|filter|find|find_by|where|all|first|last|count|create|save|insert|update|update_all|upsert|delete|destroy|destroy_all|remove)\b`)
)

// ormOperations maps ORM method names onto data operations.
var ormOperations = map[string]extraction.Operation{
	"get": extraction.OpRead, "filter": extraction.OpRead,
	"find": extraction.OpRead, "find_by": extraction.OpRead,
	"where": extraction.OpRead, "all": extraction.OpRead,
	"first": extraction.OpRead, "last": extraction.OpRead,
	"count": extraction.OpRead,
	"create": extraction.OpWrite, "save": extraction.OpWrite,
	"insert": extraction.OpWrite, "update": extraction.OpWrite,
	"update_all": extraction.OpWrite, "upsert": extraction.OpWrite,
	"delete": extraction.OpDelete, "destroy": extraction.OpDelete,
	"destroy_all": extraction.OpDelete, "remove": extraction.OpDelete,
}

// DetectFile scans source for data access and returns one point per hit,
// tagged with the file path and 1-based line.
func (d *DataAccessDetector) DetectFile(filePath string, source []byte) []extraction.DataAccessPoint {
	var points []extraction.DataAccessPoint

	for i, line := range strings.Split(string(source), "\n") {
		lineNo := i + 1

		if m := selectRe.FindStringSubmatch(line); m != nil {
			points = append(points, extraction.DataAccessPoint{
				Table:     strings.ToLower(m[2]),
				Fields:    splitColumns(m[1]),
				Operation: extraction.OpRead,
				File:      filePath,
				Line:      lineNo,
			})
		}
		if m := insertRe.FindStringSubmatch(line); m != nil {
			points = append(points, extraction.DataAccessPoint{
				Table:     strings.ToLower(m[1]),
				Fields:    splitColumns(m[3]),
				Operation: extraction.OpWrite,
				File:      filePath,
				Line:      lineNo,
			})
		}
		if m := updateRe.FindStringSubmatch(line); m != nil {
			var fields []string
			for _, assign := range assignmentRe.FindAllStringSubmatch(m[2], -1) {
				fields = append(fields, strings.ToLower(assign[1]))
			}
			points = append(points, extraction.DataAccessPoint{
				Table:     strings.ToLower(m[1]),
				Fields:    fields,
				Operation: extraction.OpWrite,
				File:      filePath,
				Line:      lineNo,
			})
		}
		if m := deleteRe.FindStringSubmatch(line); m != nil {
			points = append(points, extraction.DataAccessPoint{
				Table:     strings.ToLower(m[1]),
				Operation: extraction.OpDelete,
				File:      filePath,
				Line:      lineNo,
			})
		}

		for _, m := range ormCallRe.FindAllStringSubmatch(line, -1) {
			op, ok := ormOperations[m[2]]
			if !ok {
				continue
			}
			points = append(points, extraction.DataAccessPoint{
				Table:     modelToTable(m[1]),
				Operation: op,
				File:      filePath,
				Line:      lineNo,
			})
		}
	}

	return points
}

// splitColumns turns a SQL column list into lowercase field names. "*" and
// expressions yield no fields.
func splitColumns(list string) []string {
	var fields []string
	for _, col := range strings.Split(list, ",") {
		col = strings.TrimSpace(col)
		col = strings.Trim(col, "\"'`")
		// strip table qualifier
		if idx := strings.LastIndex(col, "."); idx >= 0 {
			col = col[idx+1:]
		}
		if col == "" || col == "*" || strings.ContainsAny(col, "() ") {
			continue
		}
		fields = append(fields, strings.ToLower(col))
	}
	return fields
}

// modelToTable maps an ORM model name onto its conventional table name:
// snake_case plural, e.g. UserProfile -> user_profiles.
func modelToTable(model string) string {
	var b strings.Builder
	for i, r := range model {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	table := b.String()
	if !strings.HasSuffix(table, "s") {
		table += "s"
	}
	return table
}
