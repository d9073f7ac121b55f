package feather

import (
	"fmt"
	"strconv"
	"strings"
)

// tokenKind identifies what a parsed token contributes to a script.
type tokenKind int

const (
	tokSep       tokenKind = iota // intra-line whitespace
	tokEOL                        // newline or ;
	tokCmd                        // [...] command substitution body (raw text, re-evaluated)
	tokVar                        // $name
	tokDictSugar                  // $name(key) -- key is itself substitutable text
	tokStr                        // literal run from a braced group; no escape processing
	tokEsc                        // any other run; backslash escapes applied at materialization
)

// token is one lexeme produced by the script/list parser.
type token struct {
	kind tokenKind
	text string
	line int
}

// parser is the shared byte-at-a-time tokenizer context for the script,
// list, and expression dialects (spec §4.C). Script and list parsing share
// this type; the expression dialect is layered on top in exprcompile.go.
type parser struct {
	src      string
	pos      int
	line     int
	lastKind tokenKind
	haveLast bool
}

func newParser(src string) *parser {
	return &parser{src: src, line: 1}
}

func (p *parser) eof() bool        { return p.pos >= len(p.src) }
func (p *parser) peek() byte       { return p.src[p.pos] }
func (p *parser) peekAt(n int) byte {
	if p.pos+n >= len(p.src) {
		return 0
	}
	return p.src[p.pos+n]
}
func (p *parser) advance() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
	}
	return c
}

// atCommandStart reports whether the parser sits where a new command may
// begin: the very start of input, or right after an EOL token. This is
// what gates `#` as a comment marker.
func (p *parser) atCommandStart() bool {
	return !p.haveLast || p.lastKind == tokEOL
}

// parseScriptTokens tokenizes an entire script into its token array,
// collapsing adjacent SEP/EOL tokens as the script cache builder requires
// (spec §4.D).
func parseScriptTokens(src string) ([]token, error) {
	p := newParser(src)
	var toks []token
	for !p.eof() {
		startLine := p.line
		if p.atCommandStart() && p.peek() == '#' {
			p.skipComment()
			continue
		}
		switch c := p.peek(); {
		case c == '\n' || c == ';':
			p.advance()
			toks = appendCollapsed(toks, token{kind: tokEOL, text: string(c), line: startLine})
			p.lastKind, p.haveLast = tokEOL, true
		case c == ' ' || c == '\t' || c == '\r':
			for !p.eof() {
				c := p.peek()
				if c != ' ' && c != '\t' && c != '\r' {
					break
				}
				p.advance()
			}
			toks = appendCollapsed(toks, token{kind: tokSep, text: " ", line: startLine})
			p.lastKind, p.haveLast = tokSep, true
		default:
			wordToks, err := p.parseWord()
			if err != nil {
				return nil, err
			}
			toks = append(toks, wordToks...)
			if len(wordToks) > 0 {
				p.lastKind = wordToks[len(wordToks)-1].kind
				p.haveLast = true
			}
		}
	}
	return toks, nil
}

// appendCollapsed appends tok unless it's a SEP/EOL immediately following
// another SEP/EOL, per the script cache builder's deduplication rule.
func appendCollapsed(toks []token, tok token) []token {
	if len(toks) > 0 {
		last := toks[len(toks)-1]
		if (tok.kind == tokSep || tok.kind == tokEOL) && (last.kind == tokSep || last.kind == tokEOL) {
			if tok.kind == tokEOL {
				toks[len(toks)-1] = tok // EOL wins over a preceding bare SEP
			}
			return toks
		}
	}
	return append(toks, tok)
}

func (p *parser) skipComment() {
	for !p.eof() && p.peek() != '\n' {
		if p.peek() == '\\' && p.peekAt(1) == '\n' {
			p.advance()
			p.advance()
			continue
		}
		p.advance()
	}
}

// parseWord tokenizes one space-delimited command argument, which may be a
// single braced group (one STR token), a quoted group (a sequence of
// ESC/VAR/DICTSUGAR/CMD tokens terminated by an unescaped "), or a bare
// word (the same sequence terminated by whitespace/;/newline).
func (p *parser) parseWord() ([]token, error) {
	if p.peek() == '{' {
		return p.parseBraced()
	}
	if p.peek() == '"' {
		return p.parseQuoted()
	}
	return p.parseBareOrSubst(wordTerminators)
}

func wordTerminators(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == ';'
}

// parseBraced consumes a {...} group as a single literal STR token. A
// backslash escapes the following character only for the purpose of brace
// counting (so \{ and \} never change nesting depth); content is kept
// verbatim, no escape substitution.
func (p *parser) parseBraced() ([]token, error) {
	line := p.line
	p.advance() // consume '{'
	depth := 1
	start := p.pos
	for {
		if p.eof() {
			return nil, fmt.Errorf("missing close brace")
		}
		c := p.advance()
		switch c {
		case '\\':
			if !p.eof() {
				p.advance()
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				text := p.src[start : p.pos-1]
				return []token{{kind: tokStr, text: text, line: line}}, nil
			}
		}
	}
}

// parseQuoted consumes a "..." group, honoring $ and [ substitution the
// same way a bare word does, terminating on an unescaped closing quote.
func (p *parser) parseQuoted() ([]token, error) {
	p.advance() // consume opening '"'
	toks, err := p.parseBareOrSubst(func(c byte) bool { return c == '"' })
	if err != nil {
		return nil, err
	}
	if p.eof() || p.peek() != '"' {
		return nil, fmt.Errorf("missing close quote")
	}
	p.advance()
	return toks, nil
}

// parseBareOrSubst scans a run of text until isTerminator matches the
// current byte, splitting into ESC runs, $var / $var(key) substitutions,
// and [command] substitutions. Backslash escapes are kept raw in ESC
// tokens and resolved later (see unescape in this file).
func (p *parser) parseBareOrSubst(isTerminator func(byte) bool) ([]token, error) {
	var toks []token
	var esc strings.Builder
	line := p.line
	flushEsc := func() {
		if esc.Len() > 0 {
			toks = append(toks, token{kind: tokEsc, text: esc.String(), line: line})
			esc.Reset()
		}
	}
	for !p.eof() {
		c := p.peek()
		if isTerminator(c) {
			break
		}
		switch c {
		case '\\':
			esc.WriteByte(p.advance())
			if !p.eof() {
				esc.WriteByte(p.advance())
			}
		case '$':
			flushEsc()
			tok, err := p.parseVarSubst()
			if err != nil {
				return nil, err
			}
			if tok != nil {
				toks = append(toks, *tok)
			} else {
				esc.WriteByte(p.advance()) // lone '$', treat as literal
			}
		case '[':
			flushEsc()
			tok, err := p.parseCmdSubst()
			if err != nil {
				return nil, err
			}
			toks = append(toks, *tok)
		default:
			esc.WriteByte(p.advance())
		}
	}
	flushEsc()
	return toks, nil
}

// parseVarSubst parses a $name or $name(key) substitution starting at '$'.
// Returns nil, nil if '$' is not followed by a valid name (treated as a
// literal dollar by the caller).
func (p *parser) parseVarSubst() (*token, error) {
	line := p.line
	start := p.pos
	p.advance() // consume '$'
	nameStart := p.pos
	for !p.eof() && isNameByte(p.peek()) {
		p.advance()
	}
	if p.pos == nameStart {
		p.pos = start
		return nil, nil
	}
	name := p.src[nameStart:p.pos]
	if !p.eof() && p.peek() == '(' {
		p.advance()
		keyStart := p.pos
		depth := 1
		for {
			if p.eof() {
				return nil, fmt.Errorf("missing close paren in variable substitution")
			}
			c := p.advance()
			if c == '(' {
				depth++
			} else if c == ')' {
				depth--
				if depth == 0 {
					break
				}
			}
		}
		key := p.src[keyStart : p.pos-1]
		return &token{kind: tokDictSugar, text: name + "(" + key + ")", line: line}, nil
	}
	return &token{kind: tokVar, text: name, line: line}, nil
}

func isNameByte(c byte) bool {
	return c == '_' || c == ':' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// parseCmdSubst consumes a [...] command-substitution body, respecting
// nested brackets, braces, and quotes so that embedded `]` characters don't
// terminate it prematurely.
func (p *parser) parseCmdSubst() (*token, error) {
	line := p.line
	p.advance() // consume '['
	start := p.pos
	depth := 1
	for {
		if p.eof() {
			return nil, fmt.Errorf("missing close bracket")
		}
		c := p.peek()
		switch c {
		case '\\':
			p.advance()
			if !p.eof() {
				p.advance()
			}
			continue
		case '{':
			if _, err := p.parseBraced(); err != nil {
				return nil, err
			}
			continue
		case '"':
			if _, err := p.parseQuoted(); err != nil {
				return nil, err
			}
			continue
		case '[':
			depth++
			p.advance()
			continue
		case ']':
			depth--
			p.advance()
			if depth == 0 {
				text := p.src[start : p.pos-1]
				return &token{kind: tokCmd, text: text, line: line}, nil
			}
			continue
		default:
			p.advance()
		}
	}
}

// unescape applies the backslash substitutions of spec §4.C to a raw ESC
// token body: \a \b \f \n \r \t \v, \xHH (1-2 hex digits), \NNN (1-3
// octal digits), and any other \c -> c. The result is never longer than
// the input.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch nc := s[i]; nc {
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case 'x':
			j := i + 1
			end := j
			for end < len(s) && end < j+2 && isHexByte(s[end]) {
				end++
			}
			if end > j {
				v, _ := strconv.ParseUint(s[j:end], 16, 8)
				b.WriteByte(byte(v))
				i = end - 1
			} else {
				b.WriteByte('x')
			}
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			end := j
			for end < len(s) && end < j+3 && isOctalByte(s[end]) {
				end++
			}
			v, _ := strconv.ParseUint(s[j:end], 8, 16)
			b.WriteByte(byte(v))
			i = end - 1
		default:
			b.WriteByte(nc)
		}
	}
	return b.String()
}

func isHexByte(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
func isOctalByte(c byte) bool { return c >= '0' && c <= '7' }
