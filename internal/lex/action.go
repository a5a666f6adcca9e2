package lex

// ActionType is the kind of side effect a matched pattern has on the lexer:
// scan out a token, shift lex state, both, or neither (discard, used for
// whitespace and for patterns that only exist to change state).
type ActionType int

const (
	ActionNone ActionType = iota
	ActionScan
	ActionState
	ActionScanAndState

	// ActionComment and ActionDocComment route the matched lexeme to the
	// comment side channel instead of the token stream (spec.md §4.1).
	// They never carry a ClassID; state remains unchanged.
	ActionComment
	ActionDocComment
)

type Action struct {
	Type    ActionType
	ClassID string
	State   string
}

func SwapState(toState string) Action {
	return Action{
		Type:  ActionState,
		State: toState,
	}
}

func LexAs(classID string) Action {
	return Action{
		Type:    ActionScan,
		ClassID: classID,
	}
}

func LexAndSwapState(classID string, newState string) Action {
	return Action{
		Type:    ActionScanAndState,
		ClassID: classID,
		State:   newState,
	}
}

func Discard() Action {
	return Action{}
}

// Comment routes the match to the plain-comment side channel.
func Comment() Action {
	return Action{Type: ActionComment}
}

// DocComment routes the match to the doc-comment side channel, where the
// resolver will later attach it to the following top-level declaration.
func DocComment() Action {
	return Action{Type: ActionDocComment}
}
