package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qdoc/internal/ast"
	"github.com/kobzarvs/qdoc/internal/config"
	"github.com/kobzarvs/qdoc/internal/highlight"
	"github.com/kobzarvs/qdoc/internal/logger"
	"github.com/kobzarvs/qdoc/internal/markup"
	"github.com/kobzarvs/qdoc/internal/treediff"
)

// App is the top-level runtime for qdoc.
type App struct {
	args []string
	out  io.Writer
}

func New(args []string) *App {
	return &App{args: args, out: os.Stdout}
}

func (a *App) Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return err
	}
	defer logger.Close()

	if len(a.args) > 0 {
		switch a.args[0] {
		case "ast", "json":
			if len(a.args) != 2 {
				return fmt.Errorf("usage: qdoc %s FILE", a.args[0])
			}
			return a.dump(cfg, a.args[0], a.args[1])
		case "diff":
			if len(a.args) != 3 {
				return errors.New("usage: qdoc diff OLD NEW")
			}
			return a.diff(cfg, a.args[1], a.args[2])
		}
	}
	return a.edit(cfg)
}

func readForest(cfg config.Config, path string) (ast.Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return markup.NewParser(cfg.Parser).Parse(string(data)), nil
}

// dump prints the forest of a file as YAML ("ast") or JSON ("json").
func (a *App) dump(cfg config.Config, format, path string) error {
	f, err := readForest(cfg, path)
	if err != nil {
		return err
	}
	var out string
	if format == "json" {
		out, err = f.JSON()
		out += "\n"
	} else {
		out, err = ast.YAML(f)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	_, err = io.WriteString(a.out, out)
	return err
}

// diff prints the JSON patch that turns the forest of oldPath into the
// forest of newPath.
func (a *App) diff(cfg config.Config, oldPath, newPath string) error {
	from, err := readForest(cfg, oldPath)
	if err != nil {
		return err
	}
	to, err := readForest(cfg, newPath)
	if err != nil {
		return err
	}
	patch := treediff.Diff(from, to)
	logger.Debug("diff", "old", oldPath, "new", newPath, "ops", len(patch))
	out, err := patch.JSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, out)
	return err
}

// edit runs the interactive preview on the file named by the first argument.
// A missing file starts an empty document that save creates.
func (a *App) edit(cfg config.Config) error {
	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}

	path := ""
	initial := ""
	if len(a.args) > 0 {
		path = a.args[0]
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			initial = string(data)
		case os.IsNotExist(err):
			logger.Info("new file", "path", path)
		default:
			return err
		}
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()

	sess := newSession(cfg, highlight.New(langs), path, initial)
	for {
		sess.Render(s)
		switch ev := s.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			if sess.HandleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			s.Sync()
		}
	}
}
