package app

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/multierr"

	"github.com/kobzarvs/rut/internal/config"
	"github.com/kobzarvs/rut/internal/editor"
	"github.com/kobzarvs/rut/internal/logger"
	"github.com/kobzarvs/rut/internal/persist"
)

// App is the top-level runtime for rut: one file, one editor, one screen.
type App struct {
	path      string
	newScreen func() (tcell.Screen, error)
}

func New(path string) *App {
	return &App{path: path, newScreen: tcell.NewScreen}
}

// saveEvent wakes the event loop after a background save finished. The
// result itself waits in saveResults.
type saveEvent struct {
	tcell.EventTime
}

// saveResults queues finished saves until the loop drains them. A wakeup
// that cannot be posted loses nothing: the loop drains after every event.
type saveResults struct {
	mu sync.Mutex
	q  []persist.Result
}

func (r *saveResults) push(res persist.Result) {
	r.mu.Lock()
	r.q = append(r.q, res)
	r.mu.Unlock()
}

func (r *saveResults) drain() []persist.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := r.q
	r.q = nil
	return q
}

func (a *App) Run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Logging is best effort; without it the helpers are no-ops.
	logErr := initLogger(cfg)
	defer func() {
		if err != nil {
			logger.Error("fatal", "error", err)
		}
		err = multierr.Append(err, logger.Close())
	}()

	file, err := persist.Open(a.path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, file.Close()) }()

	buf, err := file.Load()
	if err != nil {
		return err
	}
	logger.Info("file loaded", "path", a.path, "chars", buf.Len(), "lines", buf.LineCount())

	s, err := a.newScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer s.Fini()

	results := &saveResults{}
	saver := persist.NewSaver(file, func(res persist.Result) {
		results.push(res)
		ev := &saveEvent{}
		ev.SetEventNow()
		if perr := s.PostEvent(ev); perr != nil {
			logger.Debug("save wakeup not posted", "seq", res.Seq, "error", perr)
		}
	})
	// Runs before Fini so a save requested right before quitting still lands.
	defer func() {
		if werr := saver.Wait(); werr != nil && err == nil {
			err = fmt.Errorf("save %s: %w", a.path, werr)
		}
	}()

	ed := editor.New(cfg, buf, a.path)
	if logErr != nil {
		ed.SetStatusMessage("logging disabled: " + logErr.Error())
	}
	ed.Render(s)
	for {
		ev := s.PollEvent()
		switch ev := ev.(type) {
		case nil:
			// screen finalized
			return nil
		case *tcell.EventKey:
			res := ed.HandleKey(ev)
			if res.Save {
				seq := saver.SaveAsync(ed.Snapshot())
				logger.Debug("save requested", "seq", seq, "version", buf.Version())
			}
			if res.Exit {
				return nil
			}
		case *tcell.EventResize:
			s.Sync()
		case *saveEvent:
			// handled by the drain below
		}
		for _, res := range results.drain() {
			if res.Err != nil {
				return fmt.Errorf("save %s: %w", a.path, res.Err)
			}
			ed.SaveFinished(res.Version, res.Chars, res.Skipped)
		}
		if serr := saver.Err(); serr != nil {
			return fmt.Errorf("save %s: %w", a.path, serr)
		}
		ed.Render(s)
	}
}

func initLogger(cfg config.Config) error {
	logPath, err := cfg.LogPath()
	if err != nil {
		return fmt.Errorf("log path: %w", err)
	}
	if err := logger.Init(logPath, cfg.Log.Level); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}
