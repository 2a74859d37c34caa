package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

type workspace struct {
	ledger  string
	storage string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	t.Setenv("TEMPLATES_PATH", "")
	dir := t.TempDir()
	return workspace{
		ledger:  filepath.Join(dir, "plugin_data.json"),
		storage: filepath.Join(dir, "uploads"),
	}
}

func (w workspace) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--ledger", w.ledger, "--storage", w.storage}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestInvalidFormatIsCommandError(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "--format", "yaml", "sessions")
	if err == nil {
		t.Fatalf("expected error for invalid format")
	}
	if code := GetExitCode(err); code != ExitCommandError {
		t.Fatalf("expected exit code %d, got %d", ExitCommandError, code)
	}
}

func TestAnalyzeThenListSessions(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t, "--format", "json", "analyze", "--text", "исковое заявление о разводе", "--category", "civil")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var analyzed struct {
		Status string              `json:"status"`
		Data   domain.IntakeResult `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &analyzed); err != nil {
		t.Fatalf("decode analyze output: %v\n%s", err, out)
	}
	if analyzed.Status != "ok" {
		t.Fatalf("unexpected status %q", analyzed.Status)
	}
	if got := strings.Join(analyzed.Data.Tags, ","); got != "исковое,заявление,о" {
		t.Fatalf("unexpected tags %q", got)
	}
	if len(analyzed.Data.MatchedTemplates) != 1 || analyzed.Data.MatchedTemplates[0].ID != "civil-1" {
		t.Fatalf("unexpected matches: %+v", analyzed.Data.MatchedTemplates)
	}

	out, err = ws.run(t, "--format", "json", "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	var listed struct {
		Data []domain.Session `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("decode sessions output: %v", err)
	}
	if len(listed.Data) != 1 || listed.Data[0].Category != "civil" {
		t.Fatalf("unexpected sessions: %+v", listed.Data)
	}
}

func TestAnalyzeWithFileExtractsFields(t *testing.T) {
	ws := newWorkspace(t)
	doc := filepath.Join(t.TempDir(), "жалоба.txt")
	if err := os.WriteFile(doc, []byte("ФИО: Иванов Иван Иванович\nДата: 01.02.2023"), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}

	out, err := ws.run(t, "analyze", "--text", "жалоба на постановление", "--category", "admin", "--file", doc)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{"Matched:  admin-1", "Name:     Иванов Иван Иванович", "Date:     01.02.2023", "File:     жалоба.txt -> "} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	out, err = ws.run(t, "files")
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if !strings.Contains(out, "-жалоба.txt") {
		t.Fatalf("expected stored upload in listing:\n%s", out)
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	ws := newWorkspace(t)
	_, err := ws.run(t, "analyze", "--text", "x", "--file", filepath.Join(t.TempDir(), "missing.pdf"))
	if GetExitCode(err) != ExitCommandError {
		t.Fatalf("expected command error, got %v", err)
	}
}

func TestSessionsEmptyLedger(t *testing.T) {
	ws := newWorkspace(t)
	out, err := ws.run(t, "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if strings.TrimSpace(out) != "No sessions recorded." {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestTemplatesListAndShow(t *testing.T) {
	ws := newWorkspace(t)

	out, err := ws.run(t, "templates")
	if err != nil {
		t.Fatalf("templates: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "civil-1\t") {
		t.Fatalf("unexpected listing:\n%s", out)
	}

	out, err = ws.run(t, "templates", "criminal-1")
	if err != nil {
		t.Fatalf("templates criminal-1: %v", err)
	}
	if !strings.HasPrefix(out, "criminal-1: ") {
		t.Fatalf("unexpected template output:\n%s", out)
	}

	_, err = ws.run(t, "templates", "nope")
	if GetExitCode(err) != ExitFailure {
		t.Fatalf("expected exit code %d for unknown template, got %v", ExitFailure, err)
	}
}

func TestGetExitCode(t *testing.T) {
	if GetExitCode(nil) != ExitSuccess {
		t.Fatalf("nil error must map to success")
	}
	if GetExitCode(os.ErrNotExist) != ExitFailure {
		t.Fatalf("plain error must map to failure")
	}
	wrapped := WrapExitError(ExitCommandError, "open", os.ErrNotExist)
	if GetExitCode(wrapped) != ExitCommandError {
		t.Fatalf("exit error code lost")
	}
	if wrapped.Error() != "open: file does not exist" {
		t.Fatalf("unexpected message %q", wrapped.Error())
	}
}
