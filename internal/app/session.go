package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qdoc/internal/ast"
	"github.com/kobzarvs/qdoc/internal/config"
	"github.com/kobzarvs/qdoc/internal/document"
	"github.com/kobzarvs/qdoc/internal/highlight"
	"github.com/kobzarvs/qdoc/internal/logger"
	"github.com/kobzarvs/qdoc/internal/preview"
	"github.com/kobzarvs/qdoc/internal/rangeop"
)

// session is one open document with its caret and selection. caret and
// anchor are flat caret offsets; the selection is the range between them.
type session struct {
	doc    *document.Document
	view   *preview.View
	path   string
	keymap map[string]string
	insert config.InsertOptions

	caret  int
	anchor int

	dirty       bool
	quitArmed   bool
	status      string
	styleStatus tcell.Style
}

func newSession(cfg config.Config, hl *highlight.Engine, path, initial string) *session {
	opts := document.OptionsFromConfig(cfg)
	opts.Initial = initial
	fg := preview.ParseColor(cfg.Theme.StatuslineForeground, tcell.ColorDefault)
	bg := preview.ParseColor(cfg.Theme.StatuslineBackground, tcell.ColorDefault)
	s := &session{
		doc:         document.New(opts),
		view:        preview.New(cfg.Theme, hl),
		path:        path,
		keymap:      cfg.Keymap.Normal,
		insert:      cfg.Insert,
		styleStatus: tcell.StyleDefault.Foreground(fg).Background(bg),
	}
	s.doc.Subscribe(func(c document.Change) {
		s.dirty = true
		n := rangeop.Length(c.Forest)
		s.caret = min(s.caret, n)
		s.anchor = min(s.anchor, n)
	})
	return s
}

// selection returns the selected caret range in document order.
func (s *session) selection() (int, int) {
	return min(s.caret, s.anchor), max(s.caret, s.anchor)
}

// HandleKey runs the action bound to ev and reports whether to quit.
func (s *session) HandleKey(ev *tcell.EventKey) bool {
	key := keyString(ev)
	action, ok := s.keymap[key]
	if !ok {
		if key != "" {
			s.status = key + " is not bound"
		}
		return false
	}
	return s.do(action)
}

func (s *session) do(action string) bool {
	if action != "quit" {
		s.quitArmed = false
	}
	s.status = ""
	length := rangeop.Length(s.doc.Forest())
	switch action {
	case "move_left":
		s.moveTo(s.caret-1, false, length)
	case "move_right":
		s.moveTo(s.caret+1, false, length)
	case "extend_left":
		s.moveTo(s.caret-1, true, length)
	case "extend_right":
		s.moveTo(s.caret+1, true, length)
	case "doc_start":
		s.moveTo(0, false, length)
	case "doc_end":
		s.moveTo(length, false, length)
	case "collapse_selection":
		s.anchor = s.caret
	case "select_all":
		s.anchor, s.caret = 0, length
	case "bold":
		s.format(ast.StyleBold)
	case "italic":
		s.format(ast.StyleItalic)
	case "underline":
		s.format(ast.StyleUnderline)
	case "insert_mention":
		s.insertNode(ast.KindMention, rangeop.Payload{Content: s.insert.MentionContent, ID: s.insert.MentionID})
	case "insert_custom":
		s.insertNode(ast.KindCustom, rangeop.Payload{Content: s.insert.CustomContent, CustomData: s.insert.CustomData})
	case "undo":
		if err := s.doc.Undo(); err != nil {
			s.status = "nothing to undo"
		}
	case "redo":
		if err := s.doc.Redo(); err != nil {
			s.status = "nothing to redo"
		}
	case "save":
		s.save()
	case "quit":
		if s.dirty && !s.quitArmed {
			s.quitArmed = true
			s.status = "unsaved changes, quit again to discard"
			return false
		}
		return true
	default:
		s.status = "unknown action " + action
	}
	return false
}

func (s *session) moveTo(pos int, extend bool, length int) {
	s.caret = max(0, min(pos, length))
	if !extend {
		s.anchor = s.caret
	}
}

func (s *session) format(key ast.StyleKey) {
	from, to := s.selection()
	if from == to {
		s.status = "nothing selected"
		return
	}
	sel, err := rangeop.SelectionFromRange(s.doc.Forest(), from, to)
	if err != nil {
		s.status = err.Error()
		return
	}
	patch, err := s.doc.Format(sel, rangeop.Toggle(key))
	if err != nil {
		s.status = err.Error()
		return
	}
	if len(patch) == 0 {
		s.status = "no text to " + string(key)
	}
}

// insertNode puts an atomic node at the caret and moves the caret past it.
func (s *session) insertNode(kind ast.Kind, payload rangeop.Payload) {
	f := s.doc.Forest()
	path, off, err := rangeop.Locate(f, s.caret)
	if err != nil {
		s.status = err.Error()
		return
	}
	sel := rangeop.Caret(path, off)
	at, err := rangeop.InsertedPath(f, sel)
	if err != nil {
		s.status = err.Error()
		return
	}
	if _, err := s.doc.Insert(sel, kind, payload); err != nil {
		s.status = err.Error()
		return
	}
	caret, err := rangeop.Offset(s.doc.Forest(), at, 1)
	if err != nil {
		logger.Warn("inserted node not found", "path", at.String(), "err", err)
		return
	}
	s.caret, s.anchor = caret, caret
}

func (s *session) save() {
	if s.path == "" {
		s.status = "no file name"
		return
	}
	if err := os.WriteFile(s.path, []byte(s.doc.Markup()+"\n"), 0o644); err != nil {
		logger.Error("save failed", "path", s.path, "err", err)
		s.status = err.Error()
		return
	}
	logger.Info("saved", "path", s.path)
	s.dirty = false
	s.status = "written " + filepath.Base(s.path)
}

// Render draws the document above a one-line statusline.
func (s *session) Render(scr tcell.Screen) {
	w, h := scr.Size()
	from, to := s.selection()
	s.view.Draw(scr, s.doc.Forest(), 0, 0, w, h-1, s.caret, from, to)
	s.renderStatusline(scr, w, h-1)
	scr.Show()
}

func (s *session) renderStatusline(scr tcell.Screen, w, y int) {
	if y < 0 {
		return
	}
	name := s.path
	if name == "" {
		name = "[No Name]"
	} else {
		name = filepath.Base(name)
	}
	dirty := ""
	if s.dirty {
		dirty = "*"
	}
	status := fmt.Sprintf(" %s%s ", name, dirty)
	if s.status != "" {
		status = fmt.Sprintf(" %s%s | %s ", name, dirty, s.status)
	}

	length := rangeop.Length(s.doc.Forest())
	right := fmt.Sprintf(" %d/%d ", s.caret, length)
	if from, to := s.selection(); from < to {
		right = fmt.Sprintf(" sel %d | %d/%d ", to-from, s.caret, length)
	}

	for x, r := range composeStatusLine(status, right, w) {
		scr.SetContent(x, y, r, nil, s.styleStatus)
	}
}

func composeStatusLine(left, right string, width int) []rune {
	if width <= 0 {
		return nil
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	if len(leftRunes)+len(rightRunes) > width {
		if len(rightRunes) >= width {
			rightRunes = rightRunes[len(rightRunes)-width:]
			leftRunes = nil
		} else {
			leftRunes = leftRunes[:width-len(rightRunes)]
		}
	}
	line := make([]rune, width)
	for i := range line {
		line[i] = ' '
	}
	copy(line, leftRunes)
	copy(line[width-len(rightRunes):], rightRunes)
	return line
}
