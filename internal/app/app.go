package app

import (
	"os"
	"path/filepath"

	"github.com/dshills/buildpad/internal/config"
	"github.com/dshills/buildpad/internal/console"
	"github.com/dshills/buildpad/internal/task"
	"github.com/dshills/buildpad/internal/toolchain"
)

// Options configures application startup.
type Options struct {
	// ConfigPath is the config file path; empty uses the default location.
	ConfigPath string

	// Workspace is the directory shown in the file explorer. Empty means
	// the current working directory.
	Workspace string

	// Files are opened at startup.
	Files []string

	// LogLevel overrides the configured log level when non-empty.
	LogLevel string

	// LogOutput overrides the log destination (used by tests). When nil
	// the configured log file is opened.
	LogOutput *os.File
}

// Application owns the non-UI state of buildpad: configuration, open
// documents, the build console, and the task subsystem. It has no
// knowledge of the terminal; the UI layer drives it and registers the
// post function that carries task completions back to the UI goroutine.
type Application struct {
	cfg       *config.Config
	log       *Logger
	logFile   *os.File
	workspace string

	docs       *DocumentManager
	console    *console.Console
	registry   *toolchain.Registry
	pipeline   *task.Pipeline
	dispatcher *task.Dispatcher
}

// New creates the application: loads configuration, opens the log file,
// and wires the toolchain registry, console, pipeline, and dispatcher.
func New(opts Options) (*Application, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}

	logFile := opts.LogOutput
	if logFile == nil {
		// Logging failures must not block startup; run silent instead.
		logFile, _ = OpenLogFile(cfg.Log.File)
	}
	log := NewLogger(LoggerConfig{
		Level:  ParseLogLevel(level),
		Output: logFile,
	})

	workspace := opts.Workspace
	if workspace == "" {
		workspace, err = os.Getwd()
		if err != nil {
			workspace = "."
		}
	}
	workspace, err = filepath.Abs(workspace)
	if err != nil {
		return nil, NewOperationError("open", opts.Workspace, err)
	}

	overrides, err := cfg.Overrides()
	if err != nil {
		return nil, err
	}

	cons := console.New(cfg.Build.Scrollback)
	registry := toolchain.NewRegistry(overrides)
	pipeline := task.NewPipeline(registry, cons)

	a := &Application{
		cfg:        cfg,
		log:        log,
		logFile:    logFile,
		workspace:  workspace,
		docs:       NewDocumentManager(),
		console:    cons,
		registry:   registry,
		pipeline:   pipeline,
		dispatcher: task.NewDispatcher(nil),
	}

	for _, f := range opts.Files {
		if _, err := a.OpenFile(f); err != nil {
			a.log.Warn("open %s: %v", f, err)
			cons.Writeline("Could not open "+f+": "+err.Error(), console.TagStderr)
		}
	}
	if a.docs.Count() == 0 {
		a.docs.CreateScratch()
	}

	a.log.Info("buildpad started, workspace %s", workspace)
	return a, nil
}

// SetUIPost registers the function that marshals task completions onto
// the UI goroutine. Must be called before the first dispatch.
func (a *Application) SetUIPost(post func(func())) {
	a.dispatcher.SetPost(post)
}

// Config returns the loaded configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Log returns the application logger.
func (a *Application) Log() *Logger { return a.log }

// Workspace returns the absolute workspace directory.
func (a *Application) Workspace() string { return a.workspace }

// Documents returns the document manager.
func (a *Application) Documents() *DocumentManager { return a.docs }

// Console returns the build console.
func (a *Application) Console() *console.Console { return a.console }

// Registry returns the toolchain registry.
func (a *Application) Registry() *toolchain.Registry { return a.registry }

// Busy reports whether a build task is in flight.
func (a *Application) Busy() bool { return a.dispatcher.Busy() }

// OpenFile opens a file and makes it the active document.
func (a *Application) OpenFile(path string) (*Document, error) {
	doc, err := a.docs.Open(path)
	if err != nil {
		return nil, err
	}
	a.log.Debug("opened %s", doc.Path)
	return doc, nil
}

// SaveActive saves the active document.
func (a *Application) SaveActive() error {
	doc := a.docs.Active()
	if doc == nil {
		return ErrNoActiveDocument
	}
	if err := doc.Save(); err != nil {
		a.log.Error("save %s: %v", doc.Path, err)
		return err
	}
	a.log.Debug("saved %s", doc.Path)
	return nil
}

// SaveActiveAs saves the active document under a new path.
func (a *Application) SaveActiveAs(path string) error {
	doc := a.docs.Active()
	if doc == nil {
		return ErrNoActiveDocument
	}
	if err := a.docs.SaveAs(doc, path); err != nil {
		a.log.Error("save %s: %v", path, err)
		return err
	}
	a.log.Debug("saved %s", doc.Path)
	return nil
}

// CompileActive dispatches a compile of the active document. Returns
// task.ErrBusy when another task is running, ErrUntitled for a scratch
// buffer. done runs on the UI goroutine via the registered post function.
func (a *Application) CompileActive(done func(task.Run)) error {
	return a.dispatchActive("compile", a.pipeline.Compile, done)
}

// RunActive dispatches a run of the active document.
func (a *Application) RunActive(done func(task.Run)) error {
	return a.dispatchActive("run", a.pipeline.Run, done)
}

func (a *Application) dispatchActive(label string, op func(string) error, done func(task.Run)) error {
	doc := a.docs.Active()
	if doc == nil {
		return ErrNoActiveDocument
	}
	if doc.IsScratch() {
		return ErrUntitled
	}

	path := doc.Path
	a.log.Info("dispatch %s %s", label, path)
	return a.dispatcher.Dispatch(label, func() error {
		return op(path)
	}, done)
}

// Shutdown waits for any in-flight task and releases resources.
func (a *Application) Shutdown() {
	a.dispatcher.Wait()
	a.log.Info("buildpad shutting down")
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
