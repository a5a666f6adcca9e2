package lex

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dekarrin/solfront/internal/source"
)

// TokenStream is a stream of tokens read from source text. Lex-time errors
// (malformed escapes, odd-length hex strings, unknown input) are reported
// on Errors() rather than raised; per spec, a bad token is still emitted
// and scanning continues.
type TokenStream interface {
	Next() Token
	Peek() Token
	HasNext() bool

	// Errors returns every recoverable lex error produced so far. The slice
	// grows as Next() is called; call it after fully draining the stream
	// for a complete list.
	Errors() []Diagnostic

	// Comments returns every comment (including doc comments) encountered
	// so far, in source order, on the side channel described in spec.md
	// §4.1.
	Comments() []Comment
}

// Diagnostic is a single recoverable lexer problem.
type Diagnostic struct {
	Span    source.Span
	Message string
}

func (d Diagnostic) Error() string { return d.Message }

type patAct struct {
	src string
	pat *regexp.Regexp
	act Action
}

// Lexer builds a TokenStream from source text according to a table of
// patterns and classes registered with AddClass/AddPattern, one state
// machine per lex state (the default state plus "assembly" for Yul
// blocks and "string"/"hex"/"unicode" sub-states are all just named
// states in the same table).
type Lexer interface {
	Lex(fileID source.FileID, input io.Reader) (TokenStream, error)
	AddClass(cl TokenClass, forState string)
	AddPattern(pat string, action Action, forState string) error
	StartingState() string
	SetStartingState(s string)
}

type lexerTemplate struct {
	patterns   map[string][]patAct
	startState string
	classes    map[string]map[string]TokenClass
}

// NewLexer returns an empty Lexer template ready to have classes and
// patterns registered on it. See BuildLexer for the fully-populated lexer
// for this language.
func NewLexer() Lexer {
	return &lexerTemplate{
		patterns: map[string][]patAct{},
		classes:  map[string]map[string]TokenClass{},
	}
}

func (lx *lexerTemplate) StartingState() string     { return lx.startState }
func (lx *lexerTemplate) SetStartingState(s string) { lx.startState = s }

func (lx *lexerTemplate) AddClass(cl TokenClass, forState string) {
	stateClasses, ok := lx.classes[forState]
	if !ok {
		stateClasses = map[string]TokenClass{}
	}
	stateClasses[cl.ID()] = cl
	lx.classes[forState] = stateClasses
}

func (lx *lexerTemplate) AddPattern(pat string, action Action, forState string) error {
	statePatterns := lx.patterns[forState]
	stateClasses := lx.classes[forState]

	compiled, err := regexp.Compile(pat)
	if err != nil {
		return fmt.Errorf("cannot compile regex %q: %w", pat, err)
	}

	if action.Type == ActionScan || action.Type == ActionScanAndState {
		if _, ok := stateClasses[action.ClassID]; !ok {
			return fmt.Errorf("%q is not a defined token class on state %q; add it with AddClass first", action.ClassID, forState)
		}
	}
	if action.Type == ActionState || action.Type == ActionScanAndState {
		if action.State == "" {
			return fmt.Errorf("action includes state shift but does not name a target state")
		}
	}

	lx.patterns[forState] = append(statePatterns, patAct{src: pat, pat: compiled, act: action})
	return nil
}

// Lex composes the registered per-state patterns into one "super regex"
// per state (GNU-lex style: alternation of every pattern, longest match
// wins, ties broken by declaration order) and returns a lazily-evaluated
// TokenStream over input.
func (lx *lexerTemplate) Lex(fileID source.FileID, input io.Reader) (TokenStream, error) {
	active := &lazyLex{
		r:        NewRegexReader(input),
		file:     fileID,
		patterns: make(map[string]*regexp.Regexp),
		actions:  make(map[string][]Action),
		classes:  make(map[string]map[string]TokenClass),
		state:    lx.startState,
	}

	for k, statePats := range lx.patterns {
		var superRegex strings.Builder
		superRegex.WriteString("^(?:")
		lazyActs := make([]Action, len(statePats))
		for i, p := range statePats {
			superRegex.WriteString("(" + p.src + ")")
			if i+1 < len(statePats) {
				superRegex.WriteRune('|')
			}
			lazyActs[i] = p.act
		}
		superRegex.WriteRune(')')

		compiled, err := regexp.Compile(superRegex.String())
		if err != nil {
			return nil, fmt.Errorf("composing token regexes for state %q: %w", k, err)
		}
		active.patterns[k] = compiled
		active.actions[k] = lazyActs
	}

	for k, stateClasses := range lx.classes {
		cp := make(map[string]TokenClass, len(stateClasses))
		for id, c := range stateClasses {
			cp[id] = c
		}
		active.classes[k] = cp
	}

	active.curLine = 1
	active.curPos = 1
	return active, nil
}

type lazyLex struct {
	r    *regexReader
	file source.FileID
	state string

	curLine     int
	curPos      int
	curFullLine string
	done        bool
	panicMode   bool

	classes  map[string]map[string]TokenClass
	actions  map[string][]Action
	patterns map[string]*regexp.Regexp

	errs     []Diagnostic
	comments []Comment
}

func (lx *lazyLex) Errors() []Diagnostic { return lx.errs }
func (lx *lazyLex) Comments() []Comment  { return lx.comments }

func (lx *lazyLex) Next() Token {
	if lx.done {
		return lx.makeEOTToken()
	}

	pat := lx.patterns[lx.state]
	stateActions := lx.actions[lx.state]
	stateClasses := lx.classes[lx.state]

	var matches []string
	var readError error
	for {
		startOffset := lx.r.Offset()

		if lx.panicMode {
			for lx.panicMode {
				var ch rune
				ch, _, readError = lx.r.ReadRune()
				if readError != nil {
					return lx.tokenForIOError(readError)
				}
				lx.advancePos(ch)

				matches, readError = lx.r.SearchAndAdvance(pat)
				if readError != nil {
					return lx.tokenForIOError(readError)
				}
				if len(matches) > 0 {
					lx.panicMode = false
				}
			}
		} else {
			matches, readError = lx.r.SearchAndAdvance(pat)
			if readError != nil {
				return lx.tokenForIOError(readError)
			}
			if len(matches) < 1 {
				lx.panicMode = true
				lx.report(startOffset, startOffset+1, "unrecognized input")
				return lx.makeErrorTokenf("unknown input")
			}
		}

		actionIdx, lexeme := lx.selectMatch(matches)
		for _, ch := range lexeme {
			lx.advancePos(ch)
		}
		endOffset := lx.r.Offset()
		span := source.Span{File: lx.file, Start: int(startOffset), End: int(endOffset)}

		action := stateActions[actionIdx]
		switch action.Type {
		case ActionNone:
			// discard, keep lexing
		case ActionComment, ActionDocComment:
			kind := CommentLine
			switch {
			case action.Type == ActionComment && strings.HasPrefix(lexeme, "/*"):
				kind = CommentBlock
			case action.Type == ActionDocComment && strings.HasPrefix(lexeme, "/*"):
				kind = CommentDocBlock
			case action.Type == ActionDocComment:
				kind = CommentDocLine
			}
			lx.comments = append(lx.comments, Comment{Kind: kind, Span: span, Text: stripCommentMarkers(lexeme)})
		case ActionScan:
			class := stateClasses[action.ClassID]
			lx.validateLiteral(class, lexeme, span)
			return lx.makeToken(class, lexeme, span)
		case ActionState:
			lx.state = action.State
		case ActionScanAndState:
			class := stateClasses[action.ClassID]
			lx.validateLiteral(class, lexeme, span)
			tok := lx.makeToken(class, lexeme, span)
			lx.state = action.State
			return tok
		}
	}
}

// validateLiteral runs the eager, non-fatal escape/hex-parity/normalization
// checks spec.md §4.1 requires, appending any problems to lx.errs. It never
// changes the emitted lexeme.
func (lx *lazyLex) validateLiteral(class TokenClass, lexeme string, span source.Span) {
	var problems []string
	switch class.ID() {
	case TokenStringLiteral.ID():
		problems = validateStringEscapes(lexeme)
	case TokenUnicodeLiteral.ID():
		problems = validateUnicodeStringLiteral(lexeme)
	case TokenHexLiteral.ID():
		problems = validateHexStringLiteral(lexeme)
	}
	for _, p := range problems {
		lx.report(int64(span.Start), int64(span.End), p)
	}
}

func (lx *lazyLex) report(start, end int64, msg string) {
	lx.errs = append(lx.errs, Diagnostic{
		Span:    source.Span{File: lx.file, Start: int(start), End: int(end)},
		Message: msg,
	})
}

func (lx *lazyLex) advancePos(ch rune) {
	if ch == '\n' {
		lx.curLine++
		lx.curPos = 0
		lx.curFullLine = ""
	}
	lx.curPos++
	lx.curFullLine += string(ch)
}

func (lx *lazyLex) Peek() Token {
	lx.r.Mark("peek")
	oldState := lx.state
	oldFullLine := lx.curFullLine
	oldLine := lx.curLine
	oldPos := lx.curPos
	oldDone := lx.done
	oldPanic := lx.panicMode
	oldErrs := len(lx.errs)
	oldComments := len(lx.comments)

	tok := lx.Next()

	lx.r.Restore("peek")
	lx.state = oldState
	lx.curFullLine = oldFullLine
	lx.curLine = oldLine
	lx.curPos = oldPos
	lx.done = oldDone
	lx.panicMode = oldPanic
	// Peek must not have lasting side effects on the diagnostic/comment
	// side channels either, since Next() will re-run the same scan.
	lx.errs = lx.errs[:oldErrs]
	lx.comments = lx.comments[:oldComments]

	return tok
}

func (lx *lazyLex) HasNext() bool {
	return !lx.done
}

func (lx *lazyLex) makeToken(class TokenClass, lexeme string, span source.Span) Token {
	return token{class: class, lexed: lexeme, span: span, line: lx.curFullLine, linePos: lx.curPos, lineNum: lx.curLine}
}

func (lx *lazyLex) makeEOTToken() Token {
	return lx.makeToken(TokenEndOfText, "", source.Span{File: lx.file, Start: int(lx.r.Offset()), End: int(lx.r.Offset())})
}

func (lx *lazyLex) makeErrorTokenf(formatMsg string, args ...any) Token {
	msg := fmt.Sprintf(formatMsg, args...)
	return lx.makeToken(TokenError, msg, source.Span{File: lx.file, Start: int(lx.r.Offset()), End: int(lx.r.Offset())})
}

func (lx *lazyLex) tokenForIOError(err error) Token {
	lx.done = true
	if err == io.EOF {
		lx.panicMode = false
		return lx.makeEOTToken()
	}
	return lx.makeErrorTokenf("I/O error: %s", err.Error())
}

// selectMatch implements GNU-lex-style disambiguation: of every
// alternative that matched at the current position, prefer the longest
// lexeme, and if several are tied for longest, prefer the one declared
// first (lowest pattern index).
func (lx *lazyLex) selectMatch(candidates []string) (int, string) {
	subExprMatches := map[int]string{}
	for i := 1; i < len(candidates); i++ {
		if candidates[i] != "" {
			subExprMatches[i-1] = candidates[i]
		}
	}

	if len(subExprMatches) > 1 {
		var longest int
		for _, m := range subExprMatches {
			if n := utf8.RuneCountInString(m); n > longest {
				longest = n
			}
		}
		keep := map[int]string{}
		for i, m := range subExprMatches {
			if utf8.RuneCountInString(m) == longest {
				keep[i] = m
			}
		}
		subExprMatches = keep

		if len(subExprMatches) > 1 {
			lowestIndex := math.MaxInt
			for i := range subExprMatches {
				if i < lowestIndex {
					lowestIndex = i
				}
			}
			subExprMatches = map[int]string{lowestIndex: subExprMatches[lowestIndex]}
		}
	}

	var matchIndex int
	var matchText string
	for i, m := range subExprMatches {
		matchIndex = i
		matchText = m
		break
	}
	return matchIndex, matchText
}

func stripCommentMarkers(lexeme string) string {
	switch {
	case strings.HasPrefix(lexeme, "///"):
		return strings.TrimPrefix(lexeme, "///")
	case strings.HasPrefix(lexeme, "//"):
		return strings.TrimPrefix(lexeme, "//")
	case strings.HasPrefix(lexeme, "/**"):
		return strings.TrimSuffix(strings.TrimPrefix(lexeme, "/**"), "*/")
	case strings.HasPrefix(lexeme, "/*"):
		return strings.TrimSuffix(strings.TrimPrefix(lexeme, "/*"), "*/")
	default:
		return lexeme
	}
}
