// Package highlight provides regex-based syntax highlighting for the
// editor pane. One Lexer per language, resolved by file extension.
package highlight

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// TokenType is the semantic class of a token.
type TokenType uint8

const (
	TokenNone TokenType = iota
	TokenComment
	TokenString
	TokenNumber
	TokenKeyword
	TokenTypeName
	TokenBuiltin
	TokenConstant
	TokenPreproc
	TokenIdentifier
)

// Token is a highlighted span on a single line. Start and End are byte
// offsets, End exclusive.
type Token struct {
	Type  TokenType
	Start int
	End   int
}

// State carries lexer state across lines for multi-line constructs.
type State uint8

const (
	StateNormal State = iota
	StateBlockComment
	StateTripleDouble
	StateTripleSingle
)

// rule matches a single-line pattern.
type rule struct {
	re  *regexp.Regexp
	typ TokenType
}

// span is a multi-line construct delimited by start/end markers.
type span struct {
	start string
	end   string
	typ   TokenType
	state State
}

// Lexer is a simple pattern-driven tokenizer for one language.
type Lexer struct {
	language   string
	extensions []string
	rules      []rule
	keywords   map[string]TokenType
	spans      []span
}

// NewLexer creates an empty lexer for the named language.
func NewLexer(language string, extensions ...string) *Lexer {
	return &Lexer{
		language:   language,
		extensions: extensions,
		keywords:   make(map[string]TokenType),
	}
}

// Rule adds a single-line regex pattern.
func (l *Lexer) Rule(pattern string, typ TokenType) *Lexer {
	l.rules = append(l.rules, rule{re: regexp.MustCompile(pattern), typ: typ})
	return l
}

// Keywords registers words that classify as typ.
func (l *Lexer) Keywords(typ TokenType, words ...string) *Lexer {
	for _, w := range words {
		l.keywords[w] = typ
	}
	return l
}

// Span adds a multi-line construct.
func (l *Lexer) Span(start, end string, typ TokenType, state State) *Lexer {
	l.spans = append(l.spans, span{start: start, end: end, typ: typ, state: state})
	return l
}

// Language returns the language name.
func (l *Lexer) Language() string { return l.language }

// Extensions returns the file extensions this lexer handles.
func (l *Lexer) Extensions() []string { return l.extensions }

// Line tokenizes one line given the state left by the previous line and
// returns the tokens plus the state at end of line.
func (l *Lexer) Line(text string, prev State) ([]Token, State) {
	if prev != StateNormal {
		sp, ok := l.spanForState(prev)
		if !ok {
			return nil, StateNormal
		}
		idx := strings.Index(text, sp.end)
		if idx < 0 {
			return []Token{{Type: sp.typ, Start: 0, End: len(text)}}, prev
		}
		close := idx + len(sp.end)
		tokens := []Token{{Type: sp.typ, Start: 0, End: close}}
		rest, state := l.scan(text, close)
		return append(tokens, rest...), state
	}
	return l.scan(text, 0)
}

// candidate is a potential token before overlap resolution.
type candidate struct {
	start, end int
	typ        TokenType
	state      State // non-normal for an unterminated span
	prio       int
}

// scan tokenizes text from offset on, assuming normal state at offset.
// Overlapping matches are resolved leftmost-first, so a comment marker
// inside a string literal stays part of the string.
func (l *Lexer) scan(text string, offset int) ([]Token, State) {
	var cands []candidate

	for pi, sp := range l.spans {
		from := offset
		for {
			idx := strings.Index(text[from:], sp.start)
			if idx < 0 {
				break
			}
			start := from + idx
			endIdx := strings.Index(text[start+len(sp.start):], sp.end)
			if endIdx < 0 {
				cands = append(cands, candidate{
					start: start, end: len(text),
					typ: sp.typ, state: sp.state, prio: pi,
				})
				break
			}
			end := start + len(sp.start) + endIdx + len(sp.end)
			cands = append(cands, candidate{start: start, end: end, typ: sp.typ, prio: pi})
			from = end
		}
	}

	for ri, r := range l.rules {
		for _, m := range r.re.FindAllStringIndex(text, -1) {
			if m[0] < offset || m[1] <= m[0] {
				continue
			}
			cands = append(cands, candidate{
				start: m[0], end: m[1],
				typ: r.typ, prio: len(l.spans) + ri,
			})
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].start != cands[j].start {
			return cands[i].start < cands[j].start
		}
		return cands[i].prio < cands[j].prio
	})

	var tokens []Token
	covered := make([]bool, len(text))
	mark(covered, 0, offset)
	state := StateNormal

	cursor := offset
	for _, c := range cands {
		if c.start < cursor {
			continue
		}
		tokens = append(tokens, Token{Type: c.typ, Start: c.start, End: c.end})
		mark(covered, c.start, c.end)
		cursor = c.end
		if c.state != StateNormal {
			state = c.state
			break
		}
	}

	tokens = append(tokens, l.words(text, covered)...)

	sort.Slice(tokens, func(i, j int) bool { return tokens[i].Start < tokens[j].Start })
	return tokens, state
}

// words classifies identifier-shaped runs against the keyword table.
func (l *Lexer) words(text string, covered []bool) []Token {
	var tokens []Token
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if covered[i] || !wordStart(r) {
			i += size
			continue
		}
		start := i
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if !wordPart(r) {
				break
			}
			i += size
		}
		if taken(covered, start, i) {
			continue
		}
		typ, ok := l.keywords[text[start:i]]
		if !ok {
			continue
		}
		tokens = append(tokens, Token{Type: typ, Start: start, End: i})
		mark(covered, start, i)
	}
	return tokens
}

func (l *Lexer) spanForState(s State) (span, bool) {
	for _, sp := range l.spans {
		if sp.state == s {
			return sp, true
		}
	}
	return span{}, false
}

func wordStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func wordPart(r rune) bool  { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }

func taken(covered []bool, start, end int) bool {
	for i := start; i < end && i < len(covered); i++ {
		if covered[i] {
			return true
		}
	}
	return false
}

func mark(covered []bool, start, end int) {
	for i := start; i < end && i < len(covered); i++ {
		covered[i] = true
	}
}

// Registry resolves lexers by file extension.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]*Lexer
}

// NewRegistry creates a registry with the built-in lexers registered.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]*Lexer)}
	r.Register(PythonLexer())
	r.Register(CLexer())
	r.Register(CppLexer())
	r.Register(JavaLexer())
	return r
}

// Register adds a lexer for its extensions.
func (r *Registry) Register(l *Lexer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range l.Extensions() {
		r.byExt[strings.ToLower(ext)] = l
	}
}

// ForFile returns the lexer for a file path, or nil when the extension
// has no registered lexer.
func (r *Registry) ForFile(path string) *Lexer {
	dot := strings.LastIndex(path, ".")
	if dot < 0 {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byExt[strings.ToLower(path[dot:])]
}
