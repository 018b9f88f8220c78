package load

import (
	"strings"

	"github.com/huangsam/seobench/schema"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var headerFolder = cases.Fold()

// NormalizeHeader reduces a source header to its lookup form: BOM removed, NFKC applied so that
// non-breaking spaces become spaces, case folded, punctuation turned into spaces and runs of
// whitespace collapsed. "P1M  Clicks" and "p1m_clicks" both become "p1m clicks".
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = norm.NFKC.String(h)
	h = headerFolder.String(h)
	h = strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ':', '(', ')', '[', ']', '.', '/':
			return ' '
		}
		return r
	}, h)
	return strings.Join(strings.Fields(h), " ")
}

// urlAliases are the accepted names of the URL column in performance files.
var urlAliases = []string{
	"url", "urls", "page", "pages", "page url", "page path", "landing page", "landing page url",
	"address", "top pages",
}

// metricAliases lists the metric names found in exports, keyed by the column stem.
// Misspellings seen in real exports are listed next to their intended spelling.
var metricAliases = map[string][]string{
	"clicks": {"clicks", "click", "clciks"},
	"impr":   {"impr", "impressions", "impression", "impresions", "imressions"},
	"users":  {"users", "new users", "new user", "newusers", "user"},
	"events": {"events", "key events", "key event", "key evnts", "keyevents", "conversions"},
}

// periodAliases lists the prefixes and suffixes that mark the current and prior period for a window.
type periodAliases struct {
	current []string
	prior   []string
}

var windowPeriods = map[schema.Window]periodAliases{
	schema.L3MWindow: {
		current: []string{"current", "l3m", "last 3 months", "last three months", "this period"},
		prior:   []string{"prior", "previous", "p3m", "previous 3 months", "prior 3 months", "previous period"},
	},
	schema.MoMWindow: {
		current: []string{"current", "l1m", "last month", "last 1 month", "this month", "current month"},
		prior:   []string{"prior", "previous", "p1m", "previous month", "prior month", "previous 1 month"},
	},
	schema.YoYWindow: {
		current: []string{"current", "l3m", "ty3m", "this year", "last 3 months"},
		prior:   []string{"prior", "previous", "ly3m", "py3m", "last year", "previous year", "prior year", "same period last year"},
	},
}

// HeaderTable maps normalized source headers to canonical columns for one window.
type HeaderTable map[string]schema.Column

// headerTables is built once for every window.
var headerTables = buildHeaderTables()

func buildHeaderTables() map[schema.Window]HeaderTable {
	tables := make(map[schema.Window]HeaderTable, len(schema.AllWindows))
	for _, w := range schema.AllWindows {
		table := make(HeaderTable)
		for _, alias := range urlAliases {
			table[alias] = schema.URLColumn
		}
		periods := windowPeriods[w]
		for stem, names := range metricAliases {
			current := schema.Column(stem + "_current")
			prior := schema.Column(stem + "_prior")
			for _, name := range names {
				addPeriodAliases(table, name, periods.current, current)
				addPeriodAliases(table, name, periods.prior, prior)
			}
		}
		tables[w] = table
	}
	return tables
}

func addPeriodAliases(table HeaderTable, name string, periods []string, col schema.Column) {
	for _, period := range periods {
		table[period+" "+name] = col
		table[name+" "+period] = col
	}
}

// TableFor returns the header-tolerance table for w.
func TableFor(w schema.Window) HeaderTable {
	return headerTables[w]
}

// Resolve maps a raw header to its canonical column.
func (t HeaderTable) Resolve(raw string) (schema.Column, bool) {
	col, ok := t[NormalizeHeader(raw)]
	return col, ok
}
