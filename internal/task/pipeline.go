package task

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dshills/buildpad/internal/console"
	"github.com/dshills/buildpad/internal/toolchain"
)

// Sink receives the user-visible output of a pipeline. *console.Console
// satisfies it.
type Sink interface {
	Write(text string, tag console.Tag)
	Writeline(text string, tag console.Tag)
}

// ToolMissingError reports a compiler or runtime absent from PATH,
// distinct from a compile or run failure exit code.
type ToolMissingError struct {
	// Tool is the executable that could not be found.
	Tool string
}

func (e *ToolMissingError) Error() string {
	return fmt.Sprintf("%s not found in PATH", e.Tool)
}

// ErrUnsupported is returned when no toolchain handles the file type.
var ErrUnsupported = fmt.Errorf("unsupported file type")

// Pipeline composes the resolver, command builder, and executor against a
// sink. It performs no UI work and holds no mutable state; every method
// call receives a resolved path snapshot and runs to completion.
type Pipeline struct {
	registry *toolchain.Registry
	sink     Sink

	// execute and lookPath are swappable for tests.
	execute  func(toolchain.Command) Result
	lookPath func(string) (string, error)
}

// NewPipeline creates a pipeline over the given registry and sink.
func NewPipeline(registry *toolchain.Registry, sink Sink) *Pipeline {
	return &Pipeline{
		registry: registry,
		sink:     sink,
		execute:  Execute,
		lookPath: exec.LookPath,
	}
}

// Compile builds a source file and reports the outcome to the sink.
func (p *Pipeline) Compile(path string) error {
	p.sink.Writeline("========== Compile ==========", console.TagSystem)
	p.sink.Writeline("File: "+path, console.TagSystem)

	tc, ok := p.registry.Resolve(path)
	if !ok {
		p.sink.Writeline("Unsupported file type for compile: "+extOf(path), console.TagStderr)
		return ErrUnsupported
	}

	return p.compileStep(tc, path)
}

// Run executes a source file, compiling first when the artifact is
// missing, and reports the outcome to the sink.
func (p *Pipeline) Run(path string) error {
	p.sink.Writeline("========== Run ==========", console.TagSystem)
	p.sink.Writeline("File: "+path, console.TagSystem)

	tc, ok := p.registry.Resolve(path)
	if !ok {
		p.sink.Writeline("Unsupported file type for run: "+extOf(path), console.TagStderr)
		return ErrUnsupported
	}

	if tc.CompileBeforeRun {
		if err := p.ensureArtifact(tc, path); err != nil {
			return err
		}
	}

	cmd, err := p.registry.BuildRun(tc, path)
	if err != nil {
		p.sink.Writeline("Error: "+err.Error(), console.TagStderr)
		return err
	}
	return p.spawn(cmd)
}

// compileStep runs a single compile invocation: tool check, build dir,
// echo, spawn, report.
func (p *Pipeline) compileStep(tc *toolchain.Toolchain, path string) error {
	cmd, err := p.registry.BuildCompile(tc, path)
	if err != nil {
		p.sink.Writeline("Error: "+err.Error(), console.TagStderr)
		return err
	}

	if artifact := p.registry.ArtifactPath(tc, path); artifact != "" && tc.Artifact == toolchain.ArtifactBuildDir {
		if err := os.MkdirAll(filepath.Dir(artifact), 0o755); err != nil {
			p.sink.Writeline("Error: "+err.Error(), console.TagStderr)
			return fmt.Errorf("create build directory: %w", err)
		}
	}

	return p.spawn(cmd)
}

// ensureArtifact compiles exactly once iff the artifact is missing, and
// refuses to run when it is still missing afterwards.
func (p *Pipeline) ensureArtifact(tc *toolchain.Toolchain, path string) error {
	artifact := p.registry.ArtifactPath(tc, path)
	if artifact == "" {
		return nil
	}

	if fileExists(artifact) {
		return nil
	}

	p.sink.Writeline("Artifact not found. Compiling first...", console.TagSystem)
	if err := p.compileStep(tc, path); err != nil {
		return err
	}

	if !fileExists(artifact) {
		p.sink.Writeline("Artifact still missing after compile; run aborted.", console.TagStderr)
		return fmt.Errorf("artifact missing after compile: %s", artifact)
	}
	return nil
}

// spawn checks tool presence, echoes the command, executes it, and
// reports streams and exit code.
func (p *Pipeline) spawn(cmd toolchain.Command) error {
	tool := cmd.Argv[0]
	if _, err := p.lookPath(tool); err != nil {
		missing := &ToolMissingError{Tool: tool}
		p.sink.Writeline(missing.Error(), console.TagStderr)
		return missing
	}

	p.sink.Writeline("$ "+cmd.String(), console.TagSystem)

	res := p.execute(cmd)

	if res.Stdout != "" {
		p.sink.Write(res.Stdout, console.TagStdout)
	}
	if res.Stderr != "" {
		p.sink.Write(res.Stderr, console.TagStderr)
	}

	if res.Err != nil {
		p.sink.Writeline("Execution failed: "+res.Err.Error(), console.TagStderr)
		return fmt.Errorf("execute %s: %w", tool, res.Err)
	}

	p.sink.Writeline(fmt.Sprintf("[exit %d]", res.ExitCode), console.TagSystem)
	return nil
}

// extOf returns the extension for error messages, or a placeholder when
// the file has none.
func extOf(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "(no extension)"
	}
	return ext
}

// fileExists reports whether path exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
