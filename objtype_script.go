package feather

// cmdLayout describes one command within a compiled script: the slice of
// the script's token array that makes up each of its argument words, plus
// whether that word is subject to `{*}` expansion.
type cmdLayout struct {
	argTokens [][]token // one []token per argument word, pre-split at word boundaries
	expand    []bool    // expand[i] true if argTokens[i] came from `{*}word`
	line      int
}

// ScriptType is the compiled form of a script body: the per-command layout
// of its tokens, each command holding its own argument-word token slices.
// inUse counts the evaluations currently walking this structure (the
// evaluator bumps it around body execution; see eval.go); nothing else
// reads it.
type ScriptType struct {
	source   string
	prov     *Obj // carries file/line provenance via SourceType, if any (spec §4.D)
	commands []cmdLayout
	inUse    int
}

func (t *ScriptType) Name() string         { return "script" }
func (t *ScriptType) UpdateString() string { return t.source }

func (t *ScriptType) Dup() ObjType {
	// Compiled layout is immutable once built and safe to share; only the
	// inUse guard is per-owner.
	return &ScriptType{source: t.source, prov: t.prov, commands: t.commands}
}

// scriptFile returns the source file a compiled script was read from, or ""
// for scripts built from ad hoc text (e.g. `eval`, `expr`).
func (t *ScriptType) scriptFile() string {
	file, _, ok := SourceLocation(t.prov)
	if !ok {
		return ""
	}
	return file
}

// compileScript tokenizes src and groups its tokens into commands, splitting
// each command into argument words (runs of VAR/DICTSUGAR/CMD/STR/ESC tokens
// separated by SEP) and detecting a leading `{*}` expansion marker on each
// word (spec §4.D). file tags every command's error trace with source
// provenance when the script was read from disk (empty for ad hoc `eval`).
func compileScript(src, file string) (*ScriptType, error) {
	toks, err := parseScriptTokens(src)
	if err != nil {
		return nil, err
	}
	st := &ScriptType{source: src}
	if file != "" {
		st.prov = withSource(NewString(""), file, 1)
	}
	var words [][]token
	var expand []bool
	var cur []token
	flush := func() {
		if len(cur) == 0 {
			return
		}
		word, e := detectExpand(cur)
		words = append(words, word)
		expand = append(expand, e)
		cur = nil
	}
	commitCmd := func(line int) {
		flush()
		if len(words) > 0 {
			st.commands = append(st.commands, cmdLayout{argTokens: words, expand: expand, line: line})
		}
		words, expand = nil, nil
	}
	line := 1
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		line = tok.line
		switch tok.kind {
		case tokSep:
			flush()
		case tokEOL:
			commitCmd(line)
		default:
			cur = append(cur, tok)
		}
	}
	commitCmd(line)
	return st, nil
}

// detectExpand reports whether an argument word starts with a `{*}` marker:
// a braced STR token whose content is exactly "*" (not "{ * }", which is a
// literal string), immediately followed by more tokens in the same word.
// The expansion flag is reported with that leading token stripped.
func detectExpand(word []token) ([]token, bool) {
	if len(word) < 2 {
		return word, false
	}
	first := word[0]
	if first.kind == tokStr && first.text == "*" {
		return word[1:], true
	}
	return word, false
}
