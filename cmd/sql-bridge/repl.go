package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"sql-bridge/internal/bridge"
	"sql-bridge/internal/exec"
	"sql-bridge/internal/export"
	"sql-bridge/internal/value"
)

const (
	promptMain = "sql> "
	promptCont = "...> "
)

// history keeps executed statements one per line in its own file.
type history struct {
	path  string
	lines []string
}

func newHistory(path string) *history {
	return &history{path: path}
}

func (h *history) load(max int) error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		h.lines = append(h.lines, s)
		if max > 0 && len(h.lines) > max {
			h.lines = h.lines[len(h.lines)-max:]
		}
	}
	return sc.Err()
}

func (h *history) append(stmt string) error {
	stmt = compactOneLine(stmt)
	if stmt == "" {
		return nil
	}
	h.lines = append(h.lines, stmt)
	if h.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintln(f, stmt)
	return err
}

func (h *history) print(w io.Writer, last int) {
	if last <= 0 || last > len(h.lines) {
		last = len(h.lines)
	}
	for i := len(h.lines) - last; i < len(h.lines); i++ {
		fmt.Fprintf(w, "%5d  %s\n", i+1, h.lines[i])
	}
}

// compactOneLine collapses all whitespace runs to single spaces.
func compactOneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// statementComplete reports whether buf holds a ';' outside string
// literals and quoted identifiers.
func statementComplete(buf string) bool {
	var quote rune
	escaped := false
	for _, r := range buf {
		if escaped {
			escaped = false
			continue
		}
		switch {
		case r == '\\' && quote != 0:
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == ';':
			return true
		}
	}
	return false
}

// trimStatement drops the terminating ';' so drivers that reject a trailing
// delimiter accept the statement.
func trimStatement(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	for strings.HasSuffix(stmt, ";") {
		stmt = strings.TrimSpace(strings.TrimSuffix(stmt, ";"))
	}
	return stmt
}

type session struct {
	bridge *bridge.Bridge
	hist   *history
	out    io.Writer
	// last is the most recent row set, kept for \export.
	last []value.Row
	// histWarned is set once a history write has failed and been reported.
	histWarned bool
}

// record appends stmt to the history file, reporting the first failure.
func (s *session) record(stmt string) {
	if err := s.hist.append(stmt); err != nil && !s.histWarned {
		s.histWarned = true
		fmt.Fprintf(s.out, "warning: history not saved: %v\n", err)
	}
}

// run executes one statement and prints its result or error.
func (s *session) run(ctx context.Context, stmt string) error {
	out, err := s.bridge.Execute(ctx, trimStatement(stmt))
	if err != nil {
		s.printError(err)
		return err
	}
	if out.Kind == exec.OutcomeRowSet {
		s.last = out.Rows
	}
	if len(out.Rows) > 0 {
		gridFromRows(out.Rows).writeTo(s.out)
		return nil
	}
	fmt.Fprintln(s.out, summarize(out))
	return nil
}

func (s *session) printError(err error) {
	if kind := bridge.KindOf(err); kind != "" {
		fmt.Fprintf(s.out, "%s: %v\n", kind, err)
		return
	}
	fmt.Fprintf(s.out, "error: %v\n", err)
}

// meta handles a backslash command; quit reports whether to leave the loop.
func (s *session) meta(ctx context.Context, line string) (quit bool) {
	switch strings.Fields(line)[0] {
	case `\q`, "quit", "exit":
		return true
	case `\help`:
		fmt.Fprintln(s.out, `meta commands:
  \q | quit | exit       quit
  \tables                list tables
  \columns <table>       describe a table
  \databases             list databases
  \use <database>        switch database
  \history               print history
  \export <file.xlsx>    save the last result
  \help                  show help

sql:
  end each statement with ';'
  a statement may span several lines`)
	case `\history`:
		s.hist.print(s.out, 50)
	case `\export`:
		fields := strings.Fields(line)
		if len(fields) < 2 {
			fmt.Fprintln(s.out, `usage: \export <file.xlsx>`)
			break
		}
		if err := s.export(fields[1]); err != nil {
			fmt.Fprintf(s.out, "export failed: %v\n", err)
		}
	case `\databases`:
		dbs, err := s.bridge.Databases(ctx)
		if err != nil {
			s.printError(err)
			break
		}
		for _, name := range dbs {
			fmt.Fprintln(s.out, name)
		}
		fmt.Fprintf(s.out, "(%d databases)\n", len(dbs))
	case `\use`:
		fields := strings.Fields(line)
		if len(fields) < 2 {
			fmt.Fprintln(s.out, `usage: \use <database>`)
			break
		}
		descriptor, err := s.bridge.UseDatabase(ctx, fields[1])
		if err != nil {
			s.printError(err)
			break
		}
		fmt.Fprintf(s.out, "connected to %s\n", descriptor)
	case `\columns`:
		fields := strings.Fields(line)
		if len(fields) < 2 {
			fmt.Fprintln(s.out, `usage: \columns <table>`)
			break
		}
		cols, err := s.bridge.Columns(ctx, fields[1])
		if err != nil {
			s.printError(err)
			break
		}
		g := grid{columns: []string{"column", "type", "null", "key"}}
		for _, c := range cols {
			g.cells = append(g.cells, []string{c.Name, c.Type, yesNo(c.Nullable), keyMark(c.PrimaryKey)})
		}
		g.writeTo(s.out)
	case `\tables`:
		tables, err := s.bridge.Tables(ctx)
		if err != nil {
			s.printError(err)
			break
		}
		for _, t := range tables {
			fmt.Fprintln(s.out, t)
		}
		fmt.Fprintf(s.out, "(%d tables)\n", len(tables))
	default:
		fmt.Fprintf(s.out, "unknown command: %s\n", line)
	}
	return false
}

// export writes the last row set to an .xlsx file.
func (s *session) export(path string) error {
	if s.last == nil {
		return errors.New("no result to export")
	}
	if err := export.XLSX(path, s.last); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "exported %d rows to %s\n", len(s.last), path)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func keyMark(pk bool) string {
	if pk {
		return "PRI"
	}
	return ""
}

func isMetaCommand(line string) bool {
	return strings.HasPrefix(line, `\`) || line == "quit" || line == "exit"
}

// repl reads statements until \q or EOF.
func (s *session) repl(ctx context.Context, descriptor string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptMain,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for _, line := range s.hist.lines {
		_ = rl.SaveHistory(line)
	}

	fmt.Fprintf(s.out, "connected to %s\n", descriptor)
	fmt.Fprintln(s.out, `type \help for help`)

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if buf.Len() > 0 {
				buf.Reset()
				rl.SetPrompt(promptMain)
			}
			continue
		}
		if err != nil {
			fmt.Fprintln(s.out)
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if buf.Len() == 0 && isMetaCommand(line) {
			if s.meta(ctx, line) {
				return nil
			}
			continue
		}

		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		if !statementComplete(buf.String()) {
			rl.SetPrompt(promptCont)
			continue
		}

		stmt := buf.String()
		buf.Reset()
		rl.SetPrompt(promptMain)

		s.record(stmt)
		_ = rl.SaveHistory(compactOneLine(stmt))
		_ = s.run(ctx, stmt)
	}
}
