// Package toolchain maps source files to the external compiler and runtime
// commands that build and run them. The mapping is pure: resolving a path
// never touches the file system or the process table.
package toolchain

import (
	"path/filepath"
	"strings"
)

// ArtifactRule describes where a toolchain places its compiled output.
type ArtifactRule int

const (
	// ArtifactNone means the language produces no artifact buildpad tracks
	// (interpreted languages).
	ArtifactNone ArtifactRule = iota
	// ArtifactBuildDir means the artifact is the source stem inside a
	// dedicated build directory next to the source file.
	ArtifactBuildDir
	// ArtifactClassFile means the artifact is a .class file beside the
	// source, as javac leaves it.
	ArtifactClassFile
)

// Argument placeholders expanded by the command builder.
const (
	phSource   = "{source}"   // absolute source file path
	phArtifact = "{artifact}" // absolute artifact path
	phDir      = "{dir}"      // source file directory
	phClass    = "{class}"    // Java class name (file stem)
)

// Toolchain describes how one language is compiled and run.
// Instances are built once at startup and never mutated afterwards.
type Toolchain struct {
	// ID is the language identifier ("python", "c", "cpp", "java").
	ID string

	// Name is the human-readable language name.
	Name string

	// Extensions are the file extensions handled, lowercase with dot.
	Extensions []string

	// Compiler is the executable for the compile step.
	Compiler string

	// CompileArgs are the compile argument templates after the compiler.
	CompileArgs []string

	// Runtime is the executable for the run step. Empty means the
	// artifact itself is executed.
	Runtime string

	// RunArgs are the run argument templates after the runtime.
	RunArgs []string

	// Artifact selects the artifact placement rule.
	Artifact ArtifactRule

	// CompileBeforeRun reports whether run must ensure the artifact
	// exists, compiling first when it is missing. False for interpreted
	// languages, where the compile step is only an advisory check.
	CompileBeforeRun bool
}

// Overrides carries user configuration applied to the default toolchains.
// Zero values leave the defaults in place.
type Overrides struct {
	// Python is the Python interpreter executable.
	Python string

	// CC and CXX are the C and C++ compiler executables.
	CC  string
	CXX string

	// Javac and Java are the Java compiler and runtime executables.
	Javac string
	Java  string

	// CFlags and CXXFlags are extra compile arguments appended after the
	// defaults.
	CFlags   []string
	CXXFlags []string

	// BuildDir is the name of the build output directory for C and C++.
	BuildDir string
}

// DefaultBuildDir is the build output directory name used when the
// configuration does not override it.
const DefaultBuildDir = "build"

// Registry resolves file paths to toolchains.
type Registry struct {
	byExt    map[string]*Toolchain
	buildDir string
}

// NewRegistry builds the toolchain set for Python, C, C++, and Java with
// the given overrides applied.
func NewRegistry(ov Overrides) *Registry {
	pick := func(v, def string) string {
		if v != "" {
			return v
		}
		return def
	}

	buildDir := pick(ov.BuildDir, DefaultBuildDir)

	python := &Toolchain{
		ID:          "python",
		Name:        "Python",
		Extensions:  []string{".py"},
		Compiler:    pick(ov.Python, "python3"),
		CompileArgs: []string{"-m", "py_compile", phSource},
		Runtime:     pick(ov.Python, "python3"),
		RunArgs:     []string{phSource},
		Artifact:    ArtifactNone,
	}

	cc := &Toolchain{
		ID:          "c",
		Name:        "C",
		Extensions:  []string{".c", ".h"},
		Compiler:    pick(ov.CC, "gcc"),
		CompileArgs: append([]string{phSource, "-O2", "-Wall", "-o", phArtifact}, ov.CFlags...),
		Artifact:    ArtifactBuildDir,

		CompileBeforeRun: true,
	}

	cxx := &Toolchain{
		ID:          "cpp",
		Name:        "C++",
		Extensions:  []string{".cpp", ".cc", ".cxx", ".hpp"},
		Compiler:    pick(ov.CXX, "g++"),
		CompileArgs: append([]string{phSource, "-std=c++17", "-O2", "-Wall", "-o", phArtifact}, ov.CXXFlags...),
		Artifact:    ArtifactBuildDir,

		CompileBeforeRun: true,
	}

	java := &Toolchain{
		ID:          "java",
		Name:        "Java",
		Extensions:  []string{".java"},
		Compiler:    pick(ov.Javac, "javac"),
		CompileArgs: []string{phSource},
		Runtime:     pick(ov.Java, "java"),
		RunArgs:     []string{"-cp", phDir, phClass},
		Artifact:    ArtifactClassFile,

		CompileBeforeRun: true,
	}

	r := &Registry{
		byExt:    make(map[string]*Toolchain),
		buildDir: buildDir,
	}
	for _, tc := range []*Toolchain{python, cc, cxx, java} {
		for _, ext := range tc.Extensions {
			r.byExt[ext] = tc
		}
	}
	return r
}

// Resolve returns the toolchain for a file path, keyed on the lowercase
// extension. The second return is false when the extension is not
// supported; that is an answer, not an error.
func (r *Registry) Resolve(path string) (*Toolchain, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	tc, ok := r.byExt[ext]
	return tc, ok
}

// Supported reports whether the path maps to any toolchain.
func (r *Registry) Supported(path string) bool {
	_, ok := r.Resolve(path)
	return ok
}

// BuildDir returns the configured build output directory name.
func (r *Registry) BuildDir() string {
	return r.buildDir
}
