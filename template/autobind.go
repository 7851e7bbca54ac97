package template

import (
	"regexp"
	"strconv"
)

// exprRE matches one "{{ expr }}" placeholder span, non-greedily, including
// jet's optional whitespace-trim markers ("{{-" / "-}}").
var exprRE = regexp.MustCompile(`\{\{-?\s*(.*?)\s*-?\}\}`)

// safeFilterRE recognizes an expression that already terminates in one of
// the three filters that are exempt from auto-bind because they either bind
// explicitly (bind, inclause) or deliberately opt out of binding (sqlsafe).
var safeFilterRE = regexp.MustCompile(`\|\s*(bind|inclause|sqlsafe)\b[^|]*$`)

// identNameRE extracts a leading dotted-identifier token ("task.Name",
// ".Name", "name") from an expression, used to derive a human-readable bind
// name when one is available.
var identNameRE = regexp.MustCompile(`^\.?[A-Za-z_][A-Za-z0-9_.]*`)

// autoBind rewrites every top-level "{{ expr }}" placeholder that does not
// already end in a safe filter into "{{ (expr) | bind("name") }}", so no
// expression value can reach the rendered SQL as raw text. This is the
// lexical-rewrite pass of spec §4.3/§9, realized as a text-level
// pre-processing pass over placeholder spans rather than a token-stream
// rewrite, since the pre-parse hook point of the underlying template engine
// is not exposed to callers.
func autoBind(src string) string {
	counter := 0
	return exprRE.ReplaceAllStringFunc(src, func(whole string) string {
		groups := exprRE.FindStringSubmatch(whole)
		inner := groups[1]
		if inner == "" {
			return whole
		}
		if safeFilterRE.MatchString(inner) {
			return whole
		}
		name := identNameRE.FindString(inner)
		if name == "" {
			name = "bind#" + strconv.Itoa(counter)
		}
		counter++
		return `{{ (` + inner + `) | bind("` + name + `") }}`
	})
}
