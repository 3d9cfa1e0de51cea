package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thornmill/relabel/internal/services"
	"github.com/thornmill/relabel/internal/shared"
	tu "github.com/thornmill/relabel/internal/testing"
	"github.com/urfave/cli/v3"
)

// newTestRunner builds a Runner over a temp database with a mock service.
func newTestRunner(t *testing.T, svc services.Service, output io.Writer) *Runner {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "relabel.db")
	config.Server.Token = "sess12345"

	logger := shared.NewLogger(io.Discard)

	return NewRunner(RunnerOpts{
		Config:  config,
		Service: svc,
		Output:  output,
		Logger:  logger,
	})
}

// runCmd executes one CLI invocation against the runner's command tree.
func runCmd(t *testing.T, r *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{
		Name:     "relabel",
		Commands: r.register(),
	}
	return app.Run(context.Background(), append([]string{"relabel"}, args...))
}

func TestNewRunner(t *testing.T) {
	t.Run("with all dependencies provided", func(t *testing.T) {
		config := shared.DefaultConfig()
		logger := shared.NewLogger(nil)
		output := &bytes.Buffer{}
		httpClient := &http.Client{}
		svc := &tu.MockService{}

		runner := NewRunner(RunnerOpts{
			Config:     config,
			Logger:     logger,
			Output:     output,
			HTTPClient: httpClient,
			Service:    svc,
		})

		if runner.config != config {
			t.Error("expected config to be set")
		}
		if runner.service != services.Service(svc) {
			t.Error("expected service to be set")
		}
		if runner.output != output {
			t.Error("expected output to be set")
		}
	})

	t.Run("with defaults", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		if runner.config == nil {
			t.Error("expected default config")
		}
		if runner.logger == nil {
			t.Error("expected default logger")
		}
		if runner.output != os.Stdout {
			t.Error("expected stdout output")
		}
		if runner.httpClient != http.DefaultClient {
			t.Error("expected default HTTP client")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

		if err := runner.writeJSON(map[string]int{"count": 3}, false); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if output.String() != "{\"count\":3}\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("writeJSON with failing writer", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}, Logger: shared.NewLogger(io.Discard)})

		if err := runner.writeJSON(map[string]int{"count": 3}, false); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("writePlainHeader", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})

		runner.writePlainHeader("Batch Complete")
		if !strings.Contains(output.String(), "Batch Complete") {
			t.Errorf("header missing title: %q", output.String())
		}
	})
}

func TestResolveToken(t *testing.T) {
	runner := newTestRunner(t, &tu.MockService{}, io.Discard)

	t.Run("flag wins", func(t *testing.T) {
		token, err := runner.resolveToken("flagtok", "seltok")
		if err != nil || token != "flagtok" {
			t.Errorf("expected flagtok, got %q (%v)", token, err)
		}
	})

	t.Run("selection beats config", func(t *testing.T) {
		token, err := runner.resolveToken("", "seltok")
		if err != nil || token != "seltok" {
			t.Errorf("expected seltok, got %q (%v)", token, err)
		}
	})

	t.Run("config fallback", func(t *testing.T) {
		token, err := runner.resolveToken("", "")
		if err != nil || token != "sess12345" {
			t.Errorf("expected sess12345, got %q (%v)", token, err)
		}
	})

	t.Run("saved headers fallback", func(t *testing.T) {
		headersPath := filepath.Join(t.TempDir(), "headers.sh")
		curl := `curl 'https://photos.example.com/api/v1/photos' -H 'X-Session-ID: fromcurl'`
		if err := os.WriteFile(headersPath, []byte(curl), 0600); err != nil {
			t.Fatal(err)
		}

		r := newTestRunner(t, &tu.MockService{}, io.Discard)
		r.config.Server.Token = ""
		r.config.Server.HeadersPath = headersPath

		token, err := r.resolveToken("", "")
		if err != nil || token != "fromcurl" {
			t.Errorf("expected fromcurl, got %q (%v)", token, err)
		}
	})

	t.Run("no token anywhere", func(t *testing.T) {
		r := newTestRunner(t, &tu.MockService{}, io.Discard)
		r.config.Server.Token = ""

		if _, err := r.resolveToken("", ""); !errors.Is(err, shared.ErrNoAuthToken) {
			t.Errorf("expected ErrNoAuthToken, got %v", err)
		}
	})
}

func TestBatchCommands(t *testing.T) {
	t.Run("apply with explicit uids", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(t, &tu.MockService{}, output)

		if err := runCmd(t, runner, "apply", "--label", "sunset", "--uid", "x1", "--uid", "x2"); err != nil {
			t.Fatalf("apply failed: %v", err)
		}

		if !strings.Contains(output.String(), "Batch Complete") {
			t.Errorf("missing summary header: %s", output.String())
		}
		if !strings.Contains(output.String(), "2/2") {
			t.Errorf("missing success count: %s", output.String())
		}
	})

	t.Run("apply from selection file", func(t *testing.T) {
		selPath := filepath.Join(t.TempDir(), "selection.json")
		sel := `{"identifiers": ["x1"], "token": "sess-from-file"}`
		if err := os.WriteFile(selPath, []byte(sel), 0644); err != nil {
			t.Fatal(err)
		}

		output := &bytes.Buffer{}
		runner := newTestRunner(t, &tu.MockService{}, output)

		if err := runCmd(t, runner, "apply", "--label", "beach", "--selection", selPath); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
		if !strings.Contains(output.String(), "1/1") {
			t.Errorf("missing success count: %s", output.String())
		}
	})

	t.Run("remove resolves the label first", func(t *testing.T) {
		svc := &tu.MockService{
			Photos: map[string]*services.Photo{
				"x1": {UID: "x1", Labels: []services.Label{{ID: 4, Name: "Dog", Slug: "dog"}}},
			},
		}
		output := &bytes.Buffer{}
		runner := newTestRunner(t, svc, output)

		if err := runCmd(t, runner, "remove", "--label", "dog", "--uid", "x1"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if !strings.Contains(output.String(), "1/1") {
			t.Errorf("missing success count: %s", output.String())
		}
	})

	t.Run("failed batch feeds the retry flow", func(t *testing.T) {
		svc := &tu.MockService{AddErr: errors.New("boom")}
		output := &bytes.Buffer{}
		runner := newTestRunner(t, svc, output)

		if err := runCmd(t, runner, "apply", "--label", "cat", "--uid", "x1"); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
		if !strings.Contains(output.String(), "Failed") {
			t.Errorf("missing failure output: %s", output.String())
		}

		output.Reset()
		if err := runCmd(t, runner, "failures", "list"); err != nil {
			t.Fatalf("failures list failed: %v", err)
		}
		if !strings.Contains(output.String(), `add "cat"`) {
			t.Errorf("missing failure group: %s", output.String())
		}

		svc.AddErr = nil
		output.Reset()
		if err := runCmd(t, runner, "retry", "--group", "0"); err != nil {
			t.Fatalf("retry failed: %v", err)
		}
		if !strings.Contains(output.String(), "1/1") {
			t.Errorf("missing retry success: %s", output.String())
		}

		output.Reset()
		if err := runCmd(t, runner, "failures", "list"); err != nil {
			t.Fatalf("failures list failed: %v", err)
		}
		if !strings.Contains(output.String(), "No outstanding failures") {
			t.Errorf("expected empty failures: %s", output.String())
		}
	})
}

func TestStateCommands(t *testing.T) {
	t.Run("history records batches and exports", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(t, &tu.MockService{}, output)

		if err := runCmd(t, runner, "apply", "--label", "sunset", "--uid", "x1"); err != nil {
			t.Fatalf("apply failed: %v", err)
		}

		output.Reset()
		if err := runCmd(t, runner, "history", "list"); err != nil {
			t.Fatalf("history list failed: %v", err)
		}
		if !strings.Contains(output.String(), `add "sunset"`) {
			t.Errorf("missing history entry: %s", output.String())
		}

		exportPath := filepath.Join(t.TempDir(), "out.csv")
		output.Reset()
		if err := runCmd(t, runner, "history", "export", "--format", "csv", "--output", exportPath); err != nil {
			t.Fatalf("history export failed: %v", err)
		}
		tu.AssertFileExists(t, exportPath)

		content := tu.MustReadFile(t, exportPath)
		if !strings.Contains(content, "sunset") {
			t.Errorf("export missing record: %s", content)
		}
	})

	t.Run("labels recent tracks batch labels", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(t, &tu.MockService{}, output)

		if err := runCmd(t, runner, "apply", "--label", "harbor", "--uid", "x1"); err != nil {
			t.Fatalf("apply failed: %v", err)
		}

		output.Reset()
		if err := runCmd(t, runner, "labels", "recent"); err != nil {
			t.Fatalf("labels recent failed: %v", err)
		}
		if !strings.Contains(output.String(), "harbor") {
			t.Errorf("missing recent label: %s", output.String())
		}
	})

	t.Run("clear wipes everything", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(t, &tu.MockService{}, output)

		if err := runCmd(t, runner, "apply", "--label", "cat", "--uid", "x1"); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
		if err := runCmd(t, runner, "clear"); err != nil {
			t.Fatalf("clear failed: %v", err)
		}

		output.Reset()
		if err := runCmd(t, runner, "history", "list"); err != nil {
			t.Fatalf("history list failed: %v", err)
		}
		if !strings.Contains(output.String(), "No executions recorded") {
			t.Errorf("expected empty history: %s", output.String())
		}
	})

	t.Run("labels scan seeds suggestions", func(t *testing.T) {
		svc := &tu.MockService{
			Photos: map[string]*services.Photo{
				"x1": {UID: "x1", Labels: []services.Label{{ID: 1, Name: "Sunset", Slug: "sunset"}}},
			},
		}
		output := &bytes.Buffer{}
		runner := newTestRunner(t, svc, output)

		if err := runCmd(t, runner, "labels", "scan", "--uid", "x1", "--rate", "100"); err != nil {
			t.Fatalf("labels scan failed: %v", err)
		}
		if !strings.Contains(output.String(), "Scan Complete") {
			t.Errorf("missing scan summary: %s", output.String())
		}

		output.Reset()
		if err := runCmd(t, runner, "labels", "all"); err != nil {
			t.Fatalf("labels all failed: %v", err)
		}
		if !strings.Contains(output.String(), "Sunset") {
			t.Errorf("missing scanned label: %s", output.String())
		}
	})
}

func TestSetupToken(t *testing.T) {
	t.Run("extracts token from curl file", func(t *testing.T) {
		dir := t.TempDir()
		curlPath := filepath.Join(dir, "req.sh")
		curl := `curl 'https://photos.example.com/api/v1/photos' -H 'X-Session-ID: abc123' -H 'Accept: application/json'`
		if err := os.WriteFile(curlPath, []byte(curl), 0600); err != nil {
			t.Fatal(err)
		}

		outPath := filepath.Join(dir, "headers.sh")
		output := &bytes.Buffer{}
		runner := newTestRunner(t, &tu.MockService{}, output)

		if err := runCmd(t, runner, "setup", "token", "--curl-file", curlPath, "--output", outPath); err != nil {
			t.Fatalf("setup token failed: %v", err)
		}

		tu.AssertFileExists(t, outPath)
		if !strings.Contains(output.String(), "Session token extracted") {
			t.Errorf("missing confirmation: %s", output.String())
		}
	})

	t.Run("rejects missing arguments", func(t *testing.T) {
		runner := newTestRunner(t, &tu.MockService{}, io.Discard)

		err := runCmd(t, runner, "setup", "token")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
