package convert

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Usuiensan/xml-markdown/config"
	"github.com/Usuiensan/xml-markdown/lawxml"
	"github.com/Usuiensan/xml-markdown/state"
)

func testEnv(t *testing.T) *state.LocalEnv {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("unable to load default configuration: %v", err)
	}
	return &state.LocalEnv{Cfg: cfg, Log: zaptest.NewLogger(t)}
}

func testLaw() *lawxml.Law {
	return &lawxml.Law{
		Era:     "Showa",
		Year:    "35",
		LawType: "Act",
		LawNum:  "昭和三十五年法律第百五号",
		Title:   "道路交通法",
	}
}

func TestBuildOutputPathDefaultName(t *testing.T) {
	env := testEnv(t)
	got := buildOutputPath(testLaw(), "335AC0000000105", "335AC0000000105.xml", "/out", env)
	want := filepath.Join("/out", "道路交通法.md")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildOutputPathFallsBackToSource(t *testing.T) {
	env := testEnv(t)
	law := testLaw()
	law.Title = ""
	got := buildOutputPath(law, "", "laws/somefile.xml", "/out", env)
	want := filepath.Join("/out", "laws", "somefile.md")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildOutputPathKeepsSourceDirs(t *testing.T) {
	env := testEnv(t)
	got := buildOutputPath(testLaw(), "", filepath.Join("a", "b", "law.xml"), "/out", env)
	want := filepath.Join("/out", "a", "b", "道路交通法.md")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildOutputPathNoDirs(t *testing.T) {
	env := testEnv(t)
	env.NoDirs = true
	got := buildOutputPath(testLaw(), "", filepath.Join("a", "b", "law.xml"), "/out", env)
	want := filepath.Join("/out", "道路交通法.md")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildOutputPathTemplate(t *testing.T) {
	env := testEnv(t)
	env.Cfg.Document.OutputNameTemplate = "{{.Era}}/{{.Title}}"
	got := buildOutputPath(testLaw(), "335AC0000000105", "law.xml", "/out", env)
	want := filepath.Join("/out", "Showa", "道路交通法.md")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildOutputPathBadTemplateFallsBack(t *testing.T) {
	env := testEnv(t)
	env.Cfg.Document.OutputNameTemplate = "{{.NoSuchField"
	got := buildOutputPath(testLaw(), "", "law.xml", "/out", env)
	want := filepath.Join("/out", "道路交通法.md")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildOutputPathTransliterate(t *testing.T) {
	env := testEnv(t)
	env.Cfg.Document.FileNameTransliterate = true
	got := buildOutputPath(testLaw(), "", "law.xml", "/out", env)
	base := filepath.Base(got)
	if base == "道路交通法.md" {
		t.Errorf("file name was not transliterated: %q", got)
	}
	if filepath.Ext(base) != ".md" {
		t.Errorf("unexpected extension: %q", got)
	}
}

func TestExpandTemplateValues(t *testing.T) {
	out, err := expandTemplate(testLaw(), "335AC0000000105", "dir/source.xml",
		config.OutputNameTemplateFieldName,
		"{{.LawID}}-{{.Year}}-{{.LawType}}-{{.SourceFile}}")
	if err != nil {
		t.Fatal(err)
	}
	want := "335AC0000000105-35-Act-source"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestExpandTemplateSprigFunctions(t *testing.T) {
	out, err := expandTemplate(testLaw(), "", "s.xml",
		config.OutputNameTemplateFieldName, `{{.Era | lower}}{{.Year}}`)
	if err != nil {
		t.Fatal(err)
	}
	if out != "showa35" {
		t.Errorf("got %q, want %q", out, "showa35")
	}
}

func TestExpandTemplateParseError(t *testing.T) {
	if _, err := expandTemplate(testLaw(), "", "s.xml",
		config.OutputNameTemplateFieldName, "{{.Broken"); err == nil {
		t.Error("expected parse error")
	}
}

func TestSplitAndCleanPath(t *testing.T) {
	got := splitAndCleanPath(filepath.Join("a", "b", "c"))
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("got %v, want [a b c]", got)
	}
	if got := splitAndCleanPath("single"); len(got) != 1 || got[0] != "single" {
		t.Errorf("got %v, want [single]", got)
	}
}
