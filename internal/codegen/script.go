package codegen

import (
	"scenestudio/internal/engine"
	"sort"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
)

const (
	readyFunc  = "ready"
	updateFunc = "update"

	defaultUpdateParam = "dt"
)

// ScriptParts is a script body split into the code run once at construction
// and the two lifecycle sections.
type ScriptParts struct {
	Setup       string
	Ready       string
	Update      string
	UpdateParam string
	HasReady    bool
	HasUpdate   bool
	ReadyAsync  bool
	UpdateAsync bool
	// Opaque is set when the body could not be parsed; all of it is Setup.
	Opaque bool
}

// HasLifecycle reports whether a lifecycle wrapper has to be emitted.
func (p ScriptParts) HasLifecycle() bool {
	return p.HasReady || p.HasUpdate
}

// span is a half-open byte range of the script source.
type span struct{ start, end int }

// ExtractScript locates top-level "function ready() {...}" and
// "function update(dt) {...}" declarations with a JavaScript parser. Sections
// disabled in meta stay in the setup code as ordinary functions. Functions
// nested inside other functions are never treated as sections.
func ExtractScript(code string, meta engine.ScriptMeta) ScriptParts {
	if strings.TrimSpace(code) == "" {
		return ScriptParts{}
	}
	program, err := parser.ParseFile(nil, "", code, 0)
	if err != nil {
		return ScriptParts{Setup: trimBlankLines(code), Opaque: true}
	}

	var parts ScriptParts
	var cut []span
	for _, stmt := range program.Body {
		decl, ok := stmt.(*ast.FunctionDeclaration)
		if !ok || decl.Function == nil || decl.Function.Name == nil || decl.Function.Body == nil {
			continue
		}
		fn := decl.Function
		name := string(fn.Name.Name)
		if (name == readyFunc && (!meta.IncludeReady || parts.HasReady)) ||
			(name == updateFunc && (!meta.IncludeUpdate || parts.HasUpdate)) ||
			(name != readyFunc && name != updateFunc) {
			continue
		}

		whole, body, ok := functionSpans(code, fn)
		if !ok {
			return ScriptParts{Setup: trimBlankLines(code), Opaque: true}
		}
		cut = append(cut, whole)
		switch name {
		case readyFunc:
			parts.HasReady = true
			parts.ReadyAsync = fn.Async
			parts.Ready = trimBlankLines(code[body.start:body.end])
		case updateFunc:
			parts.HasUpdate = true
			parts.UpdateAsync = fn.Async
			parts.Update = trimBlankLines(code[body.start:body.end])
			parts.UpdateParam = firstParam(code, fn)
		}
	}

	parts.Setup = trimBlankLines(removeSpans(code, cut))
	return parts
}

// offset converts a parser index into a byte offset. Files parsed without a
// file set start at base 1.
func offset(idx file.Idx) int {
	return int(idx) - 1
}

// functionSpans returns the whole declaration and the text between its body
// braces. ok is false when the indices do not land on the expected braces.
func functionSpans(code string, fn *ast.FunctionLiteral) (whole, body span, ok bool) {
	start := offset(fn.Function)
	lb := offset(fn.Body.LeftBrace)
	rb := offset(fn.Body.RightBrace)
	if start < 0 || lb <= start || rb < lb || rb >= len(code) || code[lb] != '{' || code[rb] != '}' {
		return span{}, span{}, false
	}
	if fn.Async {
		if i := strings.LastIndex(code[:start], "async"); i >= 0 && strings.TrimSpace(code[i+len("async"):start]) == "" {
			start = i
		}
	}
	return span{start, rb + 1}, span{lb + 1, rb}, true
}

func firstParam(code string, fn *ast.FunctionLiteral) string {
	if fn.ParameterList == nil {
		return defaultUpdateParam
	}
	open, closing := offset(fn.ParameterList.Opening), offset(fn.ParameterList.Closing)
	if open < 0 || closing <= open || closing > len(code) {
		return defaultUpdateParam
	}
	params := strings.TrimSpace(code[open+1 : closing])
	if params == "" {
		return defaultUpdateParam
	}
	if i := strings.IndexByte(params, ','); i >= 0 {
		params = strings.TrimSpace(params[:i])
	}
	return params
}

func removeSpans(code string, spans []span) string {
	if len(spans) == 0 {
		return code
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	var b strings.Builder
	pos := 0
	for _, s := range spans {
		b.WriteString(code[pos:s.start])
		pos = s.end
	}
	b.WriteString(code[pos:])
	return b.String()
}

// trimBlankLines drops leading and trailing blank lines and trailing spaces
// on every line, and removes the indentation common to all lines.
func trimBlankLines(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return dedent(lines)
}

func dedent(lines []string) string {
	prefix := ""
	first := true
	for _, l := range lines {
		if l == "" {
			continue
		}
		indent := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			prefix, first = indent, false
			continue
		}
		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(l, prefix)
	}
	return strings.Join(lines, "\n")
}
