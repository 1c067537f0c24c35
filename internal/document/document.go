// Package document ties the parser, renderer, range operations and history
// into the edit loop a host surface drives.
package document

import (
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/kobzarvs/qdoc/internal/ast"
	"github.com/kobzarvs/qdoc/internal/config"
	"github.com/kobzarvs/qdoc/internal/history"
	"github.com/kobzarvs/qdoc/internal/logger"
	"github.com/kobzarvs/qdoc/internal/markup"
	"github.com/kobzarvs/qdoc/internal/rangeop"
	"github.com/kobzarvs/qdoc/internal/treediff"
)

type Options struct {
	Parser config.ParserOptions
	Render config.RenderOptions
	// Initial is parsed into the starting forest. It is not an undoable
	// change.
	Initial string
	// Logger defaults to the "document" child of the global logger.
	Logger *zap.Logger
}

// OptionsFromConfig takes the parser and renderer settings from cfg.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{Parser: cfg.Parser, Render: cfg.Render}
}

type ChangeKind string

const (
	ChangeEdit   ChangeKind = "edit"
	ChangeFormat ChangeKind = "format"
	ChangeInsert ChangeKind = "insert"
	ChangeUndo   ChangeKind = "undo"
	ChangeRedo   ChangeKind = "redo"
)

// Change describes one state transition of a Document.
type Change struct {
	Kind   ChangeKind
	Patch  treediff.Patch
	Forest ast.Forest
}

type Document struct {
	mu       sync.Mutex
	parser   *markup.Parser
	renderer *markup.Renderer
	history  *history.Manager
	log      *zap.Logger
	last     treediff.Patch

	observers []subscriber
	nextID    int
}

type subscriber struct {
	id int
	fn func(Change)
}

func New(opts Options) *Document {
	log := opts.Logger
	if log == nil {
		log = logger.Named("document")
	}
	parser := markup.NewParser(opts.Parser)
	initial := parser.Parse(opts.Initial)
	log.Debug("document created", zap.Int("nodes", len(initial)))
	return &Document{
		parser:   parser,
		renderer: markup.NewRenderer(opts.Render, opts.Parser),
		history:  history.New(initial),
		log:      log,
	}
}

// Subscribe registers fn to run after every committed change, undo and
// redo. fn runs outside the document lock and may call back into d. The
// returned function removes the subscription.
func (d *Document) Subscribe(fn func(Change)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	id := d.nextID
	d.observers = append(d.observers, subscriber{id: id, fn: fn})
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.observers = slices.DeleteFunc(d.observers, func(o subscriber) bool { return o.id == id })
	}
}

func (d *Document) notify(c Change) {
	d.mu.Lock()
	observers := slices.Clone(d.observers)
	d.mu.Unlock()
	for _, o := range observers {
		o.fn(c)
	}
}

// Edit replaces the document with the parse of markup. The returned patch
// describes the change; an unchanged document yields an empty patch and
// commits nothing.
func (d *Document) Edit(markup string) (treediff.Patch, error) {
	next := d.parser.Parse(markup)
	if err := next.Validate(); err != nil {
		d.log.Error("parser produced malformed forest", zap.Error(err))
		return nil, err
	}
	return d.apply(ChangeEdit, func(ast.Forest) (ast.Forest, error) { return next, nil })
}

// Format applies a style change to the selection.
func (d *Document) Format(sel rangeop.Selection, format rangeop.Format) (treediff.Patch, error) {
	return d.apply(ChangeFormat, func(cur ast.Forest) (ast.Forest, error) {
		return rangeop.ApplyFormat(cur, sel, format)
	})
}

// Insert adds an inline node at the start of the selection.
func (d *Document) Insert(sel rangeop.Selection, kind ast.Kind, payload rangeop.Payload) (treediff.Patch, error) {
	return d.apply(ChangeInsert, func(cur ast.Forest) (ast.Forest, error) {
		return rangeop.InsertInlineNode(cur, sel, kind, payload)
	})
}

func (d *Document) apply(kind ChangeKind, op func(ast.Forest) (ast.Forest, error)) (treediff.Patch, error) {
	d.mu.Lock()
	cur := d.history.Current()
	next, err := op(cur)
	if err != nil {
		d.mu.Unlock()
		d.log.Warn("operation rejected", zap.String("op", string(kind)), zap.Error(err))
		return nil, err
	}
	patch := treediff.Diff(cur, next)
	if len(patch) == 0 {
		d.mu.Unlock()
		d.log.Debug("no change", zap.String("op", string(kind)))
		return patch, nil
	}
	d.history.Commit(next)
	d.last = patch
	undo, _ := d.history.Depths()
	d.mu.Unlock()

	d.log.Debug("committed",
		zap.String("op", string(kind)),
		zap.Int("patch_ops", len(patch)),
		zap.Int("undo_depth", undo),
	)
	d.notify(Change{Kind: kind, Patch: patch, Forest: next})
	return patch, nil
}

// Undo restores the previous state. With nothing to undo it returns
// ast.ErrHistoryUnderflow and changes nothing.
func (d *Document) Undo() error {
	return d.step(ChangeUndo, d.history.Undo)
}

// Redo re-applies the last undone state. With nothing to redo it returns
// ast.ErrHistoryUnderflow and changes nothing.
func (d *Document) Redo() error {
	return d.step(ChangeRedo, d.history.Redo)
}

func (d *Document) step(kind ChangeKind, move func() error) error {
	d.mu.Lock()
	before := d.history.Current()
	if err := move(); err != nil {
		d.mu.Unlock()
		d.log.Debug("history step ignored", zap.String("op", string(kind)), zap.Error(err))
		return err
	}
	after := d.history.Current()
	patch := treediff.Diff(before, after)
	d.last = patch
	d.mu.Unlock()

	d.log.Debug("history step", zap.String("op", string(kind)), zap.Int("patch_ops", len(patch)))
	d.notify(Change{Kind: kind, Patch: patch, Forest: after})
	return nil
}

// Forest returns the current forest.
func (d *Document) Forest() ast.Forest {
	return d.history.Current()
}

// Markup renders the current forest.
func (d *Document) Markup() string {
	return d.renderer.Render(d.history.Current())
}

// LastPatch returns the patch of the most recent change.
func (d *Document) LastPatch() treediff.Patch {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

func (d *Document) CanUndo() bool { return d.history.CanUndo() }

func (d *Document) CanRedo() bool { return d.history.CanRedo() }

// Dump renders the current forest and both history stacks as YAML.
func (d *Document) Dump() (string, error) {
	return ast.YAML(d.history.Stacks())
}
