package redisearch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scriptorium-dev/quire/internal/domain"
	"github.com/scriptorium-dev/quire/internal/engine"
)

// vectorScoreField is the aliased KNN distance attribute in FT.SEARCH replies.
const vectorScoreField = "__vector_score"

// lexicalArgs translates the lexical clause into an FT.SEARCH argument list.
// Per-field boosts become query weight attributes.
func lexicalArgs(p *engine.Plan, returnFields []string) []string {
	query := lexicalQuery(p.Lexical, p.Filters)
	args := []string{p.Index, query, "WITHSCORES"}
	args = appendReturn(args, returnFields)
	args = append(args,
		"LIMIT", "0", strconv.Itoa(p.Pool),
		"DIALECT", "2",
	)
	return args
}

// browseArgs translates a scoreless plan into a filter-only query paginated
// engine-side in sequence order.
func browseArgs(p *engine.Plan, returnFields []string) []string {
	query := filterQuery(p.Filters)
	if query == "" {
		query = "*"
	}
	args := []string{p.Index, query}
	args = appendReturn(args, returnFields)
	args = append(args,
		"SORTBY", domain.OrderField, "ASC",
		"LIMIT", strconv.Itoa(p.From), strconv.Itoa(p.Size),
		"DIALECT", "2",
	)
	return args
}

// knnArgs translates the vector clause into an FT.SEARCH argument list. The
// filter acts as a hard pre-filter on the KNN candidate pool.
func knnArgs(p *engine.Plan, vector []float32, returnFields []string) []string {
	filterStr := filterQuery(p.Filters)
	knnPart := fmt.Sprintf("[KNN %d @%s $BLOB AS %s]", p.Semantic.K, p.Semantic.Field, vectorScoreField)

	var query string
	if filterStr != "" {
		query = fmt.Sprintf("(%s)=>%s", filterStr, knnPart)
	} else {
		query = "*=>" + knnPart
	}

	args := []string{p.Index, query}
	args = appendReturn(args, append(returnFields, vectorScoreField))
	args = append(args,
		"SORTBY", vectorScoreField, "ASC",
		"LIMIT", "0", strconv.Itoa(p.Semantic.K),
		"PARAMS", "2", "BLOB", vectorToBytes(vector),
		"DIALECT", "2",
	)
	return args
}

func appendReturn(args, fields []string) []string {
	if len(fields) == 0 {
		return args
	}
	args = append(args, "RETURN", strconv.Itoa(len(fields)))
	return append(args, fields...)
}

// lexicalQuery renders the weighted multi-field match. A neutral clause falls
// back to the filter alone (or match-all), which scores every document 1.
func lexicalQuery(c *engine.LexicalClause, filters []engine.FilterClause) string {
	filterStr := filterQuery(filters)
	if c == nil || c.Neutral() {
		if filterStr == "" {
			return "*"
		}
		return filterStr
	}

	escaped := make([]string, len(c.Terms))
	for i, t := range c.Terms {
		escaped[i] = escapeTerm(t)
	}
	terms := strings.Join(escaped, " ")

	groups := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		if f.Weight <= 0 {
			continue
		}
		groups = append(groups, fmt.Sprintf(
			"(@%s:(%s))=>{$weight: %s;}",
			f.Name, terms, formatWeight(f.Weight),
		))
	}
	clause := "(" + strings.Join(groups, " | ") + ")"

	if filterStr != "" {
		return filterStr + " " + clause
	}
	return clause
}

// filterQuery renders metadata predicates as a conjunction of hard
// constraints. Tag membership and numeric ranges only; never scored.
func filterQuery(filters []engine.FilterClause) string {
	if len(filters) == 0 {
		return ""
	}
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		if len(f.AnyOf) > 0 {
			parts = append(parts, tagFilter(f.Field, f.AnyOf))
			continue
		}
		parts = append(parts, numericFilter(f))
	}
	return strings.Join(parts, " ")
}

func tagFilter(field string, values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return fmt.Sprintf("@%s:{%s}", field, strings.Join(escaped, "|"))
}

func numericFilter(f engine.FilterClause) string {
	minBound := "-inf"
	maxBound := "+inf"
	if f.Min != nil {
		minBound = formatWeight(*f.Min)
	}
	if f.Max != nil {
		maxBound = formatWeight(*f.Max)
	}
	return fmt.Sprintf("@%s:[%s %s]", f.Field, minBound, maxBound)
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', -1, 64)
}

func escapeTerm(s string) string {
	return termEscaper.Replace(s)
}

var termEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
)

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
