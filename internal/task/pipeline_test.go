package task

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dshills/buildpad/internal/console"
	"github.com/dshills/buildpad/internal/toolchain"
)

// recordingSink captures writes for assertions.
type recordingSink struct {
	mu     sync.Mutex
	chunks []console.Chunk
}

func (s *recordingSink) Write(text string, tag console.Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, console.Chunk{Text: text, Tag: tag})
}

func (s *recordingSink) Writeline(text string, tag console.Tag) {
	s.Write(text+"\n", tag)
}

func (s *recordingSink) text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for _, c := range s.chunks {
		b.WriteString(c.Text)
	}
	return b.String()
}

func (s *recordingSink) tagged(tag console.Tag) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var b strings.Builder
	for _, c := range s.chunks {
		if c.Tag == tag {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

// testPipeline returns a pipeline with a fake executor. Each executed
// command is recorded; results come from the results function.
func testPipeline(sink Sink, results func(toolchain.Command) Result) (*Pipeline, *[]toolchain.Command) {
	reg := toolchain.NewRegistry(toolchain.Overrides{})
	p := NewPipeline(reg, sink)

	var executed []toolchain.Command
	p.execute = func(cmd toolchain.Command) Result {
		executed = append(executed, cmd)
		return results(cmd)
	}
	p.lookPath = func(tool string) (string, error) { return tool, nil }
	return p, &executed
}

func okResult(stdout string) func(toolchain.Command) Result {
	return func(toolchain.Command) Result {
		return Result{Stdout: stdout}
	}
}

func TestPipeline_CompilePython(t *testing.T) {
	sink := &recordingSink{}
	p, executed := testPipeline(sink, okResult(""))

	if err := p.Compile("/work/hello.py"); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if len(*executed) != 1 {
		t.Fatalf("executed %d commands, want 1", len(*executed))
	}
	argv := (*executed)[0].Argv
	if argv[0] != "python3" || argv[1] != "-m" || argv[2] != "py_compile" {
		t.Errorf("argv = %v", argv)
	}

	out := sink.text()
	if !strings.Contains(out, "========== Compile ==========") {
		t.Error("missing compile header")
	}
	if !strings.Contains(out, "$ python3 -m py_compile") {
		t.Error("missing command echo")
	}
	if !strings.Contains(out, "[exit 0]") {
		t.Error("missing exit line")
	}
}

func TestPipeline_RunPythonNoCompileStep(t *testing.T) {
	sink := &recordingSink{}
	p, executed := testPipeline(sink, okResult("hi\n"))

	if err := p.Run("/work/hello.py"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Python runs the interpreter directly, never a compile step.
	if len(*executed) != 1 {
		t.Fatalf("executed %d commands, want 1", len(*executed))
	}
	if got := (*executed)[0].Argv; got[0] != "python3" || got[1] != "/work/hello.py" {
		t.Errorf("argv = %v", got)
	}

	if got := sink.tagged(console.TagStdout); got != "hi\n" {
		t.Errorf("stdout chunks = %q, want %q", got, "hi\n")
	}
	if !strings.Contains(sink.tagged(console.TagSystem), "[exit 0]") {
		t.Error("missing [exit 0] system line")
	}
}

func TestPipeline_Unsupported(t *testing.T) {
	sink := &recordingSink{}
	p, executed := testPipeline(sink, okResult(""))

	err := p.Compile("/work/readme.md")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("err = %v, want ErrUnsupported", err)
	}
	if len(*executed) != 0 {
		t.Errorf("executed %d commands, want 0", len(*executed))
	}
	if !strings.Contains(sink.tagged(console.TagStderr), "Unsupported file type") {
		t.Error("missing unsupported message")
	}
}

func TestPipeline_ToolMissing(t *testing.T) {
	sink := &recordingSink{}
	p, executed := testPipeline(sink, okResult(""))
	p.lookPath = func(tool string) (string, error) {
		return "", fmt.Errorf("not found")
	}

	err := p.Compile("/work/hello.py")

	var missing *ToolMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want *ToolMissingError", err)
	}
	if missing.Tool != "python3" {
		t.Errorf("Tool = %q, want python3", missing.Tool)
	}
	if len(*executed) != 0 {
		t.Errorf("executed %d commands, want 0 (no spawn for missing tool)", len(*executed))
	}
	if !strings.Contains(sink.tagged(console.TagStderr), "python3 not found in PATH") {
		t.Error("missing tool-missing message")
	}
}

func TestPipeline_CompileFailureSurfacesStderr(t *testing.T) {
	sink := &recordingSink{}
	p, _ := testPipeline(sink, func(toolchain.Command) Result {
		return Result{Stderr: "prog.c:3: error: expected ';'\n", ExitCode: 1}
	})

	dir := t.TempDir()
	src := filepath.Join(dir, "prog.c")
	writeFile(t, src, "int main( {}")

	// Non-zero exit is a normal result, not a pipeline error.
	if err := p.Compile(src); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if !strings.Contains(sink.tagged(console.TagStderr), "expected ';'") {
		t.Error("compiler stderr not surfaced under stderr tag")
	}
	if !strings.Contains(sink.tagged(console.TagSystem), "[exit 1]") {
		t.Error("missing [exit 1] line")
	}
}

func TestPipeline_RunCompilesMissingArtifactOnce(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.c")
	writeFile(t, src, "int main(void){return 0;}")

	sink := &recordingSink{}
	reg := toolchain.NewRegistry(toolchain.Overrides{})
	tc, _ := reg.Resolve(src)
	artifact := reg.ArtifactPath(tc, src)

	p := NewPipeline(reg, sink)
	p.lookPath = func(tool string) (string, error) { return tool, nil }

	var executed []toolchain.Command
	p.execute = func(cmd toolchain.Command) Result {
		executed = append(executed, cmd)
		if cmd.Argv[0] == "gcc" {
			// Compile produces the artifact.
			writeFile(t, artifact, "")
		}
		return Result{}
	}

	if err := p.Run(src); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(executed) != 2 {
		t.Fatalf("executed %d commands, want 2 (compile then run)", len(executed))
	}
	if executed[0].Argv[0] != "gcc" {
		t.Errorf("first command = %v, want gcc compile", executed[0].Argv)
	}
	if executed[1].Argv[0] != artifact {
		t.Errorf("second command = %v, want artifact %s", executed[1].Argv, artifact)
	}
	if !strings.Contains(sink.tagged(console.TagSystem), "Compiling first") {
		t.Error("missing compile-first notice")
	}
}

func TestPipeline_RunSkipsCompileWhenArtifactPresent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.c")
	writeFile(t, src, "int main(void){return 0;}")

	reg := toolchain.NewRegistry(toolchain.Overrides{})
	tc, _ := reg.Resolve(src)
	writeFile(t, reg.ArtifactPath(tc, src), "")

	sink := &recordingSink{}
	p := NewPipeline(reg, sink)
	p.lookPath = func(tool string) (string, error) { return tool, nil }

	var executed []toolchain.Command
	p.execute = func(cmd toolchain.Command) Result {
		executed = append(executed, cmd)
		return Result{}
	}

	if err := p.Run(src); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(executed) != 1 {
		t.Fatalf("executed %d commands, want 1 (run only)", len(executed))
	}
}

func TestPipeline_RunAbortsWhenArtifactStillMissing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.cpp")
	writeFile(t, src, "int main( {}")

	sink := &recordingSink{}
	// Compile fails: never produces the artifact.
	p, executed := testPipeline(sink, func(toolchain.Command) Result {
		return Result{Stderr: "error\n", ExitCode: 1}
	})

	err := p.Run(src)
	if err == nil {
		t.Fatal("Run succeeded despite missing artifact")
	}

	// Compile ran once; the run step never did.
	if len(*executed) != 1 {
		t.Errorf("executed %d commands, want 1", len(*executed))
	}
	if !strings.Contains(sink.tagged(console.TagStderr), "still missing") {
		t.Error("missing abort message")
	}
}

func TestPipeline_RunJavaChecksClassArtifact(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "Main.java")
	writeFile(t, src, "public class Main {}")

	reg := toolchain.NewRegistry(toolchain.Overrides{})
	sink := &recordingSink{}
	p := NewPipeline(reg, sink)
	p.lookPath = func(tool string) (string, error) { return tool, nil }

	var executed []toolchain.Command
	p.execute = func(cmd toolchain.Command) Result {
		executed = append(executed, cmd)
		if cmd.Argv[0] == "javac" {
			writeFile(t, filepath.Join(dir, "Main.class"), "")
		}
		return Result{}
	}

	if err := p.Run(src); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(executed) != 2 {
		t.Fatalf("executed %d commands, want 2", len(executed))
	}
	runArgv := executed[1].Argv
	want := []string{"java", "-cp", dir, "Main"}
	for i := range want {
		if runArgv[i] != want[i] {
			t.Errorf("run argv = %v, want %v", runArgv, want)
			break
		}
	}
}

func TestPipeline_SpawnFailure(t *testing.T) {
	sink := &recordingSink{}
	p, _ := testPipeline(sink, func(toolchain.Command) Result {
		return Result{ExitCode: -1, Err: fmt.Errorf("permission denied")}
	})

	err := p.Run("/work/hello.py")
	if err == nil {
		t.Fatal("Run: want spawn error")
	}
	if !strings.Contains(sink.tagged(console.TagStderr), "Execution failed: permission denied") {
		t.Error("missing execution-failure message")
	}
	// No [exit N] line for a process that never ran.
	if strings.Contains(sink.tagged(console.TagSystem), "[exit") {
		t.Error("unexpected exit line for spawn failure")
	}
}

func TestPipeline_CompileCreatesBuildDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.c")
	writeFile(t, src, "int main(void){return 0;}")

	sink := &recordingSink{}
	p, _ := testPipeline(sink, okResult(""))

	if err := p.Compile(src); err != nil {
		t.Fatalf("Compile: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "build"))
	if err != nil || !info.IsDir() {
		t.Errorf("build directory not created: %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
