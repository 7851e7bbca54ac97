package template

import (
	"regexp"
	"strings"
)

// guardPatterns are suspicious SQL fragments the Guard flags inside a
// sqlsafe-marked literal — the one place raw text can reach rendered SQL
// without passing through a bind placeholder. Bound values are never
// checked against these patterns since they never appear inline.
var guardPatterns = []string{
	`(\b(?:or|and)\b\s+\d+\s*=\s*\d+)`, // boolean_tautology
	`(union\b\s+select)`,               // union_select
	`((?:--|#))`,                       // sql_comment
	`(;.*\b(?:select|update|insert|delete|drop|create|alter|truncate)\b)`, // piggyback_query
	`(\b(?:drop|alter|create|truncate)\b)`,                                // sql_command
	`(/\*.*?\*/)`,                                                         // inline_comment
	`(\bsleep\s*\()`,                                                      // sleep_function
	`(\binto\s+outfile\b)`,                                                // into_outfile
}

var guardPatternNames = []string{
	"boolean_tautology",
	"union_select",
	"sql_comment",
	"piggyback_query",
	"sql_command",
	"inline_comment",
	"sleep_function",
	"into_outfile",
}

var guardRegex = regexp.MustCompile("(?i)" + strings.Join(guardPatterns, "|"))

// Guard scans literal SQL fragments passed through the sqlsafe filter for
// patterns characteristic of injected SQL. It never runs against bound
// values — those are placeholders by construction and cannot carry injected
// SQL into the output.
type Guard struct{}

// NewGuard returns a ready-to-use Guard.
func NewGuard() *Guard { return &Guard{} }

// Scan reports the name of the suspicious pattern at the leftmost match in
// fragment, or nil if none matched. Matches further right are not reported.
func (g *Guard) Scan(fragment string) []string {
	match := guardRegex.FindStringSubmatch(strings.ToLower(fragment))
	if match == nil {
		return nil
	}
	var hits []string
	for i, group := range match[1:] {
		if group != "" {
			hits = append(hits, guardPatternNames[i])
		}
	}
	return hits
}
