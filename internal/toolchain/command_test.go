package toolchain

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildCompile_Python(t *testing.T) {
	r := NewRegistry(Overrides{})
	tc, _ := r.Resolve("/work/demo/hello.py")

	cmd, err := r.BuildCompile(tc, "/work/demo/hello.py")
	if err != nil {
		t.Fatalf("BuildCompile: %v", err)
	}

	want := []string{"python3", "-m", "py_compile", "/work/demo/hello.py"}
	assertArgv(t, cmd.Argv, want)
	if cmd.Dir != "/work/demo" {
		t.Errorf("Dir = %q, want /work/demo", cmd.Dir)
	}
}

func TestBuildRun_Python(t *testing.T) {
	r := NewRegistry(Overrides{})
	tc, _ := r.Resolve("/work/demo/hello.py")

	cmd, err := r.BuildRun(tc, "/work/demo/hello.py")
	if err != nil {
		t.Fatalf("BuildRun: %v", err)
	}
	assertArgv(t, cmd.Argv, []string{"python3", "/work/demo/hello.py"})
}

func TestBuildCompile_C(t *testing.T) {
	r := NewRegistry(Overrides{})
	tc, _ := r.Resolve("/src/prog.c")

	cmd, err := r.BuildCompile(tc, "/src/prog.c")
	if err != nil {
		t.Fatalf("BuildCompile: %v", err)
	}

	artifact := filepath.Join("/src", "build", "prog")
	want := []string{"gcc", "/src/prog.c", "-O2", "-Wall", "-o", artifact}
	assertArgv(t, cmd.Argv, want)
	if cmd.Dir != "/src" {
		t.Errorf("Dir = %q, want /src", cmd.Dir)
	}
}

func TestBuildCompile_CPP(t *testing.T) {
	r := NewRegistry(Overrides{})
	tc, _ := r.Resolve("/src/prog.cpp")

	cmd, err := r.BuildCompile(tc, "/src/prog.cpp")
	if err != nil {
		t.Fatalf("BuildCompile: %v", err)
	}

	artifact := filepath.Join("/src", "build", "prog")
	want := []string{"g++", "/src/prog.cpp", "-std=c++17", "-O2", "-Wall", "-o", artifact}
	assertArgv(t, cmd.Argv, want)
}

func TestBuildRun_CompiledArtifact(t *testing.T) {
	r := NewRegistry(Overrides{})
	tc, _ := r.Resolve("/src/prog.c")

	cmd, err := r.BuildRun(tc, "/src/prog.c")
	if err != nil {
		t.Fatalf("BuildRun: %v", err)
	}

	want := []string{filepath.Join("/src", "build", "prog")}
	assertArgv(t, cmd.Argv, want)
	// Working directory stays at the source dir, not the build dir.
	if cmd.Dir != "/src" {
		t.Errorf("Dir = %q, want /src", cmd.Dir)
	}
}

func TestBuildCompile_Java(t *testing.T) {
	r := NewRegistry(Overrides{})
	tc, _ := r.Resolve("/proj/Main.java")

	cmd, err := r.BuildCompile(tc, "/proj/Main.java")
	if err != nil {
		t.Fatalf("BuildCompile: %v", err)
	}
	assertArgv(t, cmd.Argv, []string{"javac", "/proj/Main.java"})
}

func TestBuildRun_Java(t *testing.T) {
	r := NewRegistry(Overrides{})
	tc, _ := r.Resolve("/proj/Main.java")

	cmd, err := r.BuildRun(tc, "/proj/Main.java")
	if err != nil {
		t.Fatalf("BuildRun: %v", err)
	}
	assertArgv(t, cmd.Argv, []string{"java", "-cp", "/proj", "Main"})
}

func TestArtifactPath(t *testing.T) {
	r := NewRegistry(Overrides{})

	tests := []struct {
		path string
		want string
	}{
		{"/src/prog.c", filepath.Join("/src", "build", "prog")},
		{"/src/prog.cpp", filepath.Join("/src", "build", "prog")},
		{"/proj/Main.java", "/proj/Main.class"},
		{"/work/hello.py", ""},
	}

	for _, tt := range tests {
		tc, ok := r.Resolve(tt.path)
		if !ok {
			t.Fatalf("Resolve(%q) failed", tt.path)
		}
		if got := r.ArtifactPath(tc, tt.path); got != tt.want {
			t.Errorf("ArtifactPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestArtifactPath_CustomBuildDir(t *testing.T) {
	r := NewRegistry(Overrides{BuildDir: "out"})
	tc, _ := r.Resolve("/src/prog.c")

	want := filepath.Join("/src", "out", "prog")
	if got := r.ArtifactPath(tc, "/src/prog.c"); got != want {
		t.Errorf("ArtifactPath = %q, want %q", got, want)
	}
}

func TestClassName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/proj/Main.java", "Main"},
		{"HelloWorld.java", "HelloWorld"},
		{"/a/b/lowercase.java", "lowercase"},
	}
	for _, tt := range tests {
		if got := ClassName(tt.path); got != tt.want {
			t.Errorf("ClassName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCommand_String(t *testing.T) {
	cmd := Command{Argv: []string{"gcc", "/my dir/a.c", "-o", "out"}}
	got := cmd.String()
	if !strings.Contains(got, `"/my dir/a.c"`) {
		t.Errorf("String() = %q, want path with spaces quoted", got)
	}
	if !strings.HasPrefix(got, "gcc ") {
		t.Errorf("String() = %q, want gcc prefix", got)
	}
}

func assertArgv(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("argv = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
