package toolchain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Command is a ready-to-spawn argument vector with its working directory.
type Command struct {
	// Argv is the executable followed by its arguments.
	Argv []string

	// Dir is the working directory, always the source file's directory
	// so relative artifact names resolve correctly.
	Dir string
}

// String renders the command the way it is echoed to the console,
// quoting arguments containing whitespace.
func (c Command) String() string {
	parts := make([]string, len(c.Argv))
	for i, a := range c.Argv {
		parts[i] = quoteArg(a)
	}
	return strings.Join(parts, " ")
}

// quoteArg wraps an argument in double quotes if it contains whitespace.
func quoteArg(a string) string {
	if strings.ContainsAny(a, " \t") {
		return `"` + a + `"`
	}
	return a
}

// BuildCompile produces the compile command for a source file.
func (r *Registry) BuildCompile(tc *Toolchain, path string) (Command, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Command{}, fmt.Errorf("resolve path %s: %w", path, err)
	}

	argv := []string{tc.Compiler}
	argv = append(argv, r.expand(tc, abs, tc.CompileArgs)...)

	return Command{Argv: argv, Dir: filepath.Dir(abs)}, nil
}

// BuildRun produces the run command for a source file. For toolchains
// without a runtime executable the artifact itself is the command.
func (r *Registry) BuildRun(tc *Toolchain, path string) (Command, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Command{}, fmt.Errorf("resolve path %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	if tc.Runtime == "" {
		return Command{Argv: []string{r.ArtifactPath(tc, abs)}, Dir: dir}, nil
	}

	argv := []string{tc.Runtime}
	argv = append(argv, r.expand(tc, abs, tc.RunArgs)...)

	return Command{Argv: argv, Dir: dir}, nil
}

// ArtifactPath returns the absolute path of the compile artifact for a
// source file, or "" when the toolchain produces none.
func (r *Registry) ArtifactPath(tc *Toolchain, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	dir := filepath.Dir(abs)
	stem := stemOf(abs)

	switch tc.Artifact {
	case ArtifactBuildDir:
		return filepath.Join(dir, r.buildDir, stem)
	case ArtifactClassFile:
		return filepath.Join(dir, stem+".class")
	default:
		return ""
	}
}

// ClassName returns the Java class name derived from the file's base name.
// It is not verified against the declared public class; a mismatch
// surfaces as a runtime error from the java tool.
func ClassName(path string) string {
	return stemOf(path)
}

// expand substitutes argument placeholders for one source file.
func (r *Registry) expand(tc *Toolchain, abs string, args []string) []string {
	repl := strings.NewReplacer(
		phSource, abs,
		phArtifact, r.ArtifactPath(tc, abs),
		phDir, filepath.Dir(abs),
		phClass, ClassName(abs),
	)

	out := make([]string, len(args))
	for i, a := range args {
		out[i] = repl.Replace(a)
	}
	return out
}

// stemOf returns the file base name with its extension stripped.
func stemOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
