package exec

import (
	"strings"
	"sync"
	"unicode"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// Classifier decides before submission whether a statement returns a row
// set. database/sql needs to know up front: QueryContext keeps the rows but
// drops the affected count, ExecContext does the opposite.
type Classifier struct {
	mu sync.Mutex
	p  *parser.Parser
}

func NewClassifier() *Classifier {
	return &Classifier{p: parser.New()}
}

// ReturnsRows parses query with the MySQL grammar and falls back to a
// keyword scan for statements in other dialects.
func (c *Classifier) ReturnsRows(query string) bool {
	if tableMaintenance(sqlTokens(query)) {
		return true
	}
	if stmt, ok := c.parse(query); ok {
		return stmtReturnsRows(stmt)
	}
	return keywordReturnsRows(query)
}

func (c *Classifier) parse(query string) (ast.StmtNode, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stmts, _, err := c.p.Parse(query, "", "")
	if err != nil || len(stmts) == 0 {
		return nil, false
	}
	return stmts[0], true
}

func stmtReturnsRows(stmt ast.StmtNode) bool {
	switch stmt.(type) {
	case *ast.SelectStmt, *ast.SetOprStmt, *ast.ShowStmt, *ast.ExplainStmt,
		*ast.ExplainForStmt, *ast.TraceStmt, *ast.CallStmt, *ast.AnalyzeTableStmt:
		return true
	default:
		return false
	}
}

// maintenanceVerbs are the MySQL "<verb> TABLE" statements that answer with a
// status row set.
var maintenanceVerbs = map[string]bool{
	"CHECK":    true,
	"ANALYZE":  true,
	"OPTIMIZE": true,
	"REPAIR":   true,
	"CHECKSUM": true,
}

func tableMaintenance(tokens []token) bool {
	return len(tokens) >= 2 && maintenanceVerbs[tokens[0].word] && tokens[1].word == "TABLE"
}

var rowKeywords = map[string]bool{
	"SELECT":   true,
	"SHOW":     true,
	"DESCRIBE": true,
	"DESC":     true,
	"EXPLAIN":  true,
	"VALUES":   true,
	"TABLE":    true,
	"PRAGMA":   true,
	"CALL":     true,
	"EXEC":     true,
	"EXECUTE":  true,
}

var dmlKeywords = map[string]bool{
	"INSERT":  true,
	"UPDATE":  true,
	"DELETE":  true,
	"MERGE":   true,
	"REPLACE": true,
}

func keywordReturnsRows(query string) bool {
	tokens := sqlTokens(query)
	if len(tokens) == 0 {
		return false
	}
	if tableMaintenance(tokens) {
		return true
	}

	verb := 0
	if tokens[0].word == "WITH" {
		verb = mainVerb(tokens)
		if verb < 0 {
			return false
		}
	}
	switch w := tokens[verb].word; {
	case rowKeywords[w]:
		return true
	case dmlKeywords[w]:
		return dmlReturnsRows(tokens[verb+1:])
	default:
		return false
	}
}

// mainVerb returns the index of the statement verb following a WITH clause.
// CTE bodies sit inside parentheses, so the verb is the first top-level
// SELECT, VALUES, TABLE or DML keyword.
func mainVerb(tokens []token) int {
	for i, t := range tokens[1:] {
		if t.depth != 0 {
			continue
		}
		if t.word == "SELECT" || t.word == "VALUES" || t.word == "TABLE" || dmlKeywords[t.word] {
			return i + 1
		}
	}
	return -1
}

// dmlReturnsRows looks for a top-level RETURNING clause, or a SQL Server
// OUTPUT clause that is not redirected INTO a table.
func dmlReturnsRows(tokens []token) bool {
	for i, t := range tokens {
		if t.depth != 0 {
			continue
		}
		switch t.word {
		case "RETURNING":
			return true
		case "OUTPUT":
			if i+1 < len(tokens) && (tokens[i+1].word == "INSERTED" || tokens[i+1].word == "DELETED") {
				return !outputInto(tokens[i+1:])
			}
		}
	}
	return false
}

func outputInto(tokens []token) bool {
	for _, t := range tokens {
		if t.depth != 0 {
			continue
		}
		switch t.word {
		case "INTO":
			return true
		case "VALUES", "SELECT", "FROM", "WHERE", "DEFAULT", "EXEC", "EXECUTE", "WHEN", "SET":
			return false
		}
	}
	return false
}

// token is an upper-cased bare word and its parenthesis depth.
type token struct {
	word  string
	depth int
}

// sqlWords returns the upper-cased bare words of query, skipping string
// literals, quoted identifiers and comments.
func sqlWords(query string) []string {
	tokens := sqlTokens(query)
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.word
	}
	return words
}

func sqlTokens(query string) []token {
	var (
		tokens []token
		cur    strings.Builder
		depth  int
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, token{word: strings.ToUpper(cur.String()), depth: depth})
			cur.Reset()
		}
	}

	rs := []rune(query)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '-' && i+1 < len(rs) && rs[i+1] == '-':
			flush()
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case r == '#':
			flush()
			for i < len(rs) && rs[i] != '\n' {
				i++
			}
		case r == '/' && i+1 < len(rs) && rs[i+1] == '*':
			flush()
			i += 2
			for i+1 < len(rs) && !(rs[i] == '*' && rs[i+1] == '/') {
				i++
			}
			i++
		case r == '\'' || r == '"' || r == '`':
			flush()
			i = skipQuoted(rs, i, r)
		case r == '[':
			flush()
			for i < len(rs) && rs[i] != ']' {
				i++
			}
		case r == '(':
			flush()
			depth++
		case r == ')':
			flush()
			if depth > 0 {
				depth--
			}
		case unicode.IsLetter(r) || r == '_':
			cur.WriteRune(r)
		case unicode.IsDigit(r) && cur.Len() > 0:
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// skipQuoted returns the index of the closing quote of the literal opened at
// start. Doubled quotes and backslash escapes stay inside the literal.
func skipQuoted(rs []rune, start int, quote rune) int {
	for i := start + 1; i < len(rs); i++ {
		switch rs[i] {
		case '\\':
			i++
		case quote:
			if i+1 < len(rs) && rs[i+1] == quote {
				i++
				continue
			}
			return i
		}
	}
	return len(rs)
}
