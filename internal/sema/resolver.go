package sema

import (
	"fmt"

	"github.com/dekarrin/solfront/internal/ast"
	"github.com/dekarrin/solfront/internal/lex"
	"github.com/dekarrin/solfront/internal/namespace"
	"github.com/dekarrin/solfront/internal/parse"
	"github.com/dekarrin/solfront/internal/source"
)

// Resolver drives the two type passes (spec.md §4.4) plus body resolution
// for one file against a shared Namespace. Multiple Resolvers (one per
// file) may run in sequence against the same Namespace, matching spec.md
// §5's "parsing multiple files is sequential in the order dictated by the
// import graph."
type Resolver struct {
	NS   *namespace.Namespace
	File source.FileID
	doc  *docCursor

	// pending holds the (tree, id) pairs Pass A created so Pass B can fill
	// them in without re-walking the tree from scratch.
	pendingContracts []pendingContract
	pendingStructs   []pendingStruct
	pendingEnums     []pendingEnum
	pendingErrors    []pendingError
	pendingEvents    []pendingEvent

	scopeTop     *scope
	usedVars     map[int]bool
	declaredVars map[int]localVar
}

type pendingContract struct {
	id   namespace.ID
	tree *parse.Tree
}
type pendingStruct struct {
	id       namespace.ID
	tree     *parse.Tree
	contract namespace.ID
}
type pendingEnum struct {
	id       namespace.ID
	tree     *parse.Tree
	contract namespace.ID
}
type pendingError struct {
	id       namespace.ID
	tree     *parse.Tree
	contract namespace.ID
}
type pendingEvent struct {
	id       namespace.ID
	tree     *parse.Tree
	contract namespace.ID
}

// NewResolver creates a Resolver for one file's worth of declarations.
func NewResolver(ns *namespace.Namespace, file source.FileID, comments []lex.Comment) *Resolver {
	return &Resolver{NS: ns, File: file, doc: newDocCursor(comments)}
}

// childByValue returns the first immediate child of t whose Value matches
// (terminal token-class ID or non-terminal symbol name), or nil.
func childByValue(t *parse.Tree, value string) *parse.Tree {
	for _, c := range t.Children {
		if c.Value == value {
			return c
		}
	}
	return nil
}

// firstIdentifier returns the first terminal "identifier" child of t.
func firstIdentifier(t *parse.Tree) *parse.Tree {
	for _, c := range t.Children {
		if c.Terminal && c.Value == "identifier" {
			return c
		}
	}
	return nil
}

// ResolveFile runs Pass A (type-name registration) over a whole
// source-unit tree. Call ResolveBodies afterward, once every file sharing
// this Namespace has had Pass A run, so mutually-recursive cross-type
// references resolve regardless of declaration order (spec.md §4.4).
func (r *Resolver) ResolveFile(tree *parse.Tree) {
	r.passA(tree, namespace.InvalidID)
}

func (r *Resolver) passA(scope *parse.Tree, contract namespace.ID) {
	for _, decl := range scope.Children {
		switch decl.Value {
		case "contract-definition":
			r.registerContract(decl)
		case "struct-definition":
			r.registerStruct(decl, contract)
		case "enum-definition":
			r.registerEnum(decl, contract)
		case "error-definition":
			r.registerError(decl, contract)
		case "event-definition":
			r.registerEvent(decl, contract)
		}
	}
}

func (r *Resolver) registerContract(decl *parse.Tree) {
	nameTok := firstIdentifier(decl)
	if nameTok == nil {
		return
	}
	name := nameTok.Source.Lexeme()
	doc := r.doc.Attach(decl.Span())

	c := &ast.Contract{Name: name, Span: decl.Span(), Doc: doc, AllFunctions: map[string]namespace.ID{}}
	for _, child := range decl.Children {
		switch child.Value {
		case "kw-abstract":
			c.IsAbstract = true
		case "kw-interface":
			c.IsInterface = true
		case "kw-library":
			c.IsLibrary = true
		}
	}

	id := r.NS.Add(namespace.KindContract, c)
	if err := r.NS.AddSymbol(r.File, namespace.InvalidID, name, namespace.Symbol{Kind: namespace.KindContract, ID: id, Name: name}); err != nil {
		r.reportDuplicate(decl.Span(), err)
	}

	r.pendingContracts = append(r.pendingContracts, pendingContract{id: id, tree: decl})

	// Recurse into the contract body so nested declarations (structs,
	// enums, events, errors) are visible by name before Pass B runs,
	// exactly as top-level ones are.
	if body := childByValue(decl, "contract-body"); body != nil {
		r.passA(body, id)
	}
}

func (r *Resolver) registerStruct(decl *parse.Tree, contract namespace.ID) {
	nameTok := firstIdentifier(decl)
	if nameTok == nil {
		return
	}
	name := nameTok.Source.Lexeme()
	doc := r.doc.Attach(decl.Span())
	s := &ast.Struct{Name: name, Span: decl.Span(), Doc: doc, Contract: contract}
	id := r.NS.Add(namespace.KindStruct, s)
	if err := r.NS.AddSymbol(r.File, contract, name, namespace.Symbol{Kind: namespace.KindStruct, ID: id, Name: name}); err != nil {
		r.reportDuplicate(decl.Span(), err)
	}
	r.pendingStructs = append(r.pendingStructs, pendingStruct{id: id, tree: decl, contract: contract})
	if contract != namespace.InvalidID {
		c := r.NS.Get(namespace.KindContract, contract).(*ast.Contract)
		c.Structs = append(c.Structs, id)
	}
}

func (r *Resolver) registerEnum(decl *parse.Tree, contract namespace.ID) {
	nameTok := firstIdentifier(decl)
	if nameTok == nil {
		return
	}
	name := nameTok.Source.Lexeme()
	doc := r.doc.Attach(decl.Span())
	var values []string
	for _, c := range decl.Children {
		if c.Terminal && c.Value == "identifier" && c != nameTok {
			values = append(values, c.Source.Lexeme())
		}
	}
	e := &ast.Enum{Name: name, Span: decl.Span(), Doc: doc, Contract: contract, Values: values}
	id := r.NS.Add(namespace.KindEnum, e)
	if err := r.NS.AddSymbol(r.File, contract, name, namespace.Symbol{Kind: namespace.KindEnum, ID: id, Name: name}); err != nil {
		r.reportDuplicate(decl.Span(), err)
	}
	if contract != namespace.InvalidID {
		c := r.NS.Get(namespace.KindContract, contract).(*ast.Contract)
		c.Enums = append(c.Enums, id)
	}
}

func (r *Resolver) registerError(decl *parse.Tree, contract namespace.ID) {
	nameTok := firstIdentifier(decl)
	if nameTok == nil {
		return
	}
	name := nameTok.Source.Lexeme()
	doc := r.doc.Attach(decl.Span())
	e := &ast.ErrorDecl{Name: name, Span: decl.Span(), Doc: doc, Contract: contract}
	id := r.NS.Add(namespace.KindError, e)
	if err := r.NS.AddSymbol(r.File, contract, name, namespace.Symbol{Kind: namespace.KindError, ID: id, Name: name}); err != nil {
		r.reportDuplicate(decl.Span(), err)
	}
	r.pendingErrors = append(r.pendingErrors, pendingError{id: id, tree: decl, contract: contract})
	if contract != namespace.InvalidID {
		c := r.NS.Get(namespace.KindContract, contract).(*ast.Contract)
		c.Errors = append(c.Errors, id)
	}
}

func (r *Resolver) registerEvent(decl *parse.Tree, contract namespace.ID) {
	nameTok := firstIdentifier(decl)
	if nameTok == nil {
		return
	}
	name := nameTok.Source.Lexeme()
	doc := r.doc.Attach(decl.Span())
	ev := &ast.Event{Name: name, Span: decl.Span(), Doc: doc, Contract: contract}
	for _, c := range decl.Children {
		if c.Terminal && c.Value == "kw-anonymous" {
			ev.Anonymous = true
		}
	}
	id := r.NS.Add(namespace.KindEvent, ev)
	if err := r.NS.AddSymbol(r.File, contract, name, namespace.Symbol{Kind: namespace.KindEvent, ID: id, Name: name}); err != nil {
		r.reportDuplicate(decl.Span(), err)
	}
	r.pendingEvents = append(r.pendingEvents, pendingEvent{id: id, tree: decl, contract: contract})
	if contract != namespace.InvalidID {
		c := r.NS.Get(namespace.KindContract, contract).(*ast.Contract)
		c.Events = append(c.Events, id)
	}
}

func (r *Resolver) reportDuplicate(sp source.Span, err error) {
	r.NS.Diagnose(namespace.SeverityError, sp, err.Error())
}

// errorf pushes a SeverityError diagnostic with a formatted message.
func (r *Resolver) errorf(sp source.Span, format string, args ...interface{}) {
	r.NS.Diagnose(namespace.SeverityError, sp, fmt.Sprintf(format, args...))
}

// warnf pushes a SeverityWarning diagnostic with a formatted message.
func (r *Resolver) warnf(sp source.Span, format string, args ...interface{}) {
	r.NS.Diagnose(namespace.SeverityWarning, sp, fmt.Sprintf(format, args...))
}
