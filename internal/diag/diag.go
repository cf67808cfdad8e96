package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"
)

// File and Span locate a byte range in a loaded source file well enough to
// report it. They live here, not in a standalone package, because the only
// thing either type is for is feeding a Loc to AddAt — internal/lexer and
// internal/ast carry Spans around purely as cargo on their way to one.
type File struct {
	Name        string
	Input       string
	lineOffsets []int // 0-based byte offsets of each line start
}

func NewFile(name, input string) *File {
	f := &File{Name: name, Input: input}
	f.lineOffsets = []int{0}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			f.lineOffsets = append(f.lineOffsets, i+1)
		}
	}
	return f
}

// LineCol returns 1-based line/column for a byte offset. Column is counted
// in runes, not bytes, so multi-byte symbols in string literals don't throw
// off the column a diagnostic points at.
func (f *File) LineCol(off int) (int, int) {
	if off < 0 {
		off = 0
	}
	if off > len(f.Input) {
		off = len(f.Input)
	}
	i := sort.Search(len(f.lineOffsets), func(i int) bool { return f.lineOffsets[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	lineStart := f.lineOffsets[i]
	col := 1
	pos := lineStart
	for pos < off {
		_, sz := utf8.DecodeRuneInString(f.Input[pos:])
		if sz <= 0 {
			sz = 1
		}
		if pos+sz > off {
			break
		}
		col++
		pos += sz
	}
	return i + 1, col
}

// Span is a byte range [Start, End) into File, attached to every lexer
// Token and ast.Node so a fatal error or parse diagnostic can report where
// it came from.
type Span struct {
	File       *File
	Start, End int
}

// Loc resolves s to the (filename, line, col) triple AddAt wants.
func (s Span) Loc() Loc {
	if s.File == nil {
		return Loc{}
	}
	line, col := s.File.LineCol(s.Start)
	return Loc{Filename: s.File.Name, Line: line, Col: col}
}

type Item struct {
	Filename string
	Line     int
	Col      int
	Msg      string
}

type Bag struct {
	Items []Item
}

func (b *Bag) Add(filename string, line int, col int, msg string) {
	b.Items = append(b.Items, Item{Filename: filename, Line: line, Col: col, Msg: msg})
}

func (b *Bag) AddAt(loc Loc, msg string) {
	b.Add(loc.Filename, loc.Line, loc.Col, msg)
}

type Loc struct {
	Filename string
	Line     int
	Col      int
}

func Print(w io.Writer, b *Bag) {
	if b == nil || len(b.Items) == 0 {
		return
	}
	items := make([]Item, 0, len(b.Items))
	items = append(items, b.Items...)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Filename != items[j].Filename {
			return items[i].Filename < items[j].Filename
		}
		if items[i].Line != items[j].Line {
			return items[i].Line < items[j].Line
		}
		return items[i].Col < items[j].Col
	})
	for _, it := range items {
		fmt.Fprintf(w, "%s:%d:%d: error: %s\n", it.Filename, it.Line, it.Col, it.Msg)
	}
}

// Traceback is a bounded ring buffer of (context tag, textual form) pairs,
// pushed once per call to the expression dispatcher. It is not safe for
// concurrent use by design: codegen is strictly single-threaded (see
// spec §5), and one Traceback is owned by one Compiler.
type Traceback struct {
	entries []tbEntry
}

type tbEntry struct {
	Context string
	Text    string
}

const (
	tracebackCap   = 100
	tracebackShown = 5
	tracebackTrunc = 120
)

// Push records a dispatched expression, evicting the oldest entry once the
// buffer reaches its cap.
func (t *Traceback) Push(context, text string) {
	if len(t.entries) >= tracebackCap {
		t.entries = t.entries[1:]
	}
	t.entries = append(t.entries, tbEntry{Context: context, Text: truncate(text, tracebackTrunc)})
}

// Render formats the last few pushed entries for a fatal diagnostic.
func (t *Traceback) Render() string {
	if len(t.entries) == 0 {
		return ""
	}
	start := 0
	if len(t.entries) > tracebackShown {
		start = len(t.entries) - tracebackShown
	}
	var sb strings.Builder
	sb.WriteString("Expressions traceback:\n")
	for _, e := range t.entries[start:] {
		fmt.Fprintf(&sb, "    %-8s %s\n", e.Context, e.Text)
	}
	return sb.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Fatal is a compile-time error that aborts the compilation (§7). It
// carries the offending expression's textual form and a traceback snapshot
// taken at the point of failure.
type Fatal struct {
	Msg       string
	Expr      string
	Traceback string
}

func (f *Fatal) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "fatal: %s\n", f.Msg)
	if f.Expr != "" {
		fmt.Fprintf(&sb, "  in: %s\n", f.Expr)
	}
	if f.Traceback != "" {
		sb.WriteString(f.Traceback)
	}
	return sb.String()
}

// NewFatal builds a Fatal from the current traceback. Callers in
// internal/codegen panic with the result; the module emitter recovers it
// at the top level and returns it as an ordinary error.
func NewFatal(msg, expr string, tb *Traceback) *Fatal {
	f := &Fatal{Msg: msg, Expr: expr}
	if tb != nil {
		f.Traceback = tb.Render()
	}
	return f
}

// Warn prints a non-fatal warning to w and does not alter control flow.
func Warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "warning: %s\n", fmt.Sprintf(format, args...))
}
