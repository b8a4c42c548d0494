package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

type smokeCommand struct {
	Name        string
	Args        []string
	Description string
	ExpectJSON  bool
	Check       func(map[string]any) error
	Fixture     string
}

type commandReport struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Args        []string       `json:"args"`
	ExitCode    int            `json:"exit_code"`
	DurationMS  int64          `json:"duration_ms"`
	Stdout      string         `json:"stdout"`
	Stderr      string         `json:"stderr,omitempty"`
	ParsedJSON  map[string]any `json:"parsed_json,omitempty"`
	Err         string         `json:"error,omitempty"`
}

type runReport struct {
	RanAt      time.Time       `json:"ran_at"`
	BaseURL    string          `json:"base_url"`
	Commands   []commandReport `json:"commands"`
	Failures   int             `json:"failures"`
	OutputDir  string          `json:"output_dir,omitempty"`
	BinaryPath string          `json:"binary_path"`
}

func main() {
	var (
		baseURL   = flag.String("base-url", "", "LibreTranslate base URL (falls back to RUSTLATOR_BASE_URL)")
		binary    = flag.String("binary", "", "Path to rl binary (defaults to temporary build)")
		outputDir = flag.String("output", "testdata/smoke/latest", "Directory for recorded fixtures")
		failFast  = flag.Bool("fail-fast", true, "Stop after the first failing command")
		record    = flag.Bool("record", true, "Persist stdout to fixture files")
		timeout   = flag.Duration("timeout", 60*time.Second, "Per-command timeout")
	)
	flag.Parse()

	if *baseURL == "" {
		*baseURL = strings.TrimSpace(os.Getenv("RUSTLATOR_BASE_URL"))
	}
	if *baseURL == "" {
		fmt.Fprintln(os.Stderr, "error: base URL is required (flag or RUSTLATOR_BASE_URL)")
		os.Exit(2)
	}

	binPath, cleanup, err := resolveBinary(*binary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	configDir, err := os.MkdirTemp("", "rl-smoke-config-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(configDir)

	commands := []smokeCommand{
		{
			Name:        "set-api",
			Args:        []string{"--json", "--api", *baseURL},
			Description: "Create the config file with the service URL",
			ExpectJSON:  true,
			Check:       expectField("api_url", *baseURL),
			Fixture:     "set-api.json",
		},
		{
			Name:        "status",
			Args:        []string{"--json", "--status"},
			Description: "Probe the service root",
			ExpectJSON:  true,
			Check:       expectField("reachable", true),
			Fixture:     "status.json",
		},
		{
			Name:        "languages",
			Args:        []string{"--json", "--list"},
			Description: "List languages from /languages",
			ExpectJSON:  true,
			Check:       expectLanguage("fi"),
			Fixture:     "languages.json",
		},
		{
			Name:        "set-languages",
			Args:        []string{"--json", "--from", "en", "--to", "fi"},
			Description: "Store default languages",
			ExpectJSON:  true,
			Check:       expectField("to", "fi"),
			Fixture:     "set-languages.json",
		},
		{
			Name:        "translate",
			Args:        []string{"--json", "hello"},
			Description: "Translate a word with the stored languages",
			ExpectJSON:  true,
			Check:       expectNonEmpty("translated"),
			Fixture:     "translate.json",
		},
	}

	report := runReport{
		RanAt:      time.Now().UTC(),
		BaseURL:    *baseURL,
		BinaryPath: binPath,
	}

	if *record {
		if err := os.MkdirAll(*outputDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "error: unable to create output directory: %v\n", err)
			os.Exit(1)
		}
		report.OutputDir = *outputDir
	}

	for _, cmd := range commands {
		res := runSmokeCommand(binPath, configDir, *timeout, cmd)
		report.Commands = append(report.Commands, res)
		if res.ExitCode != 0 {
			report.Failures++
			if *failFast {
				break
			}
		}

		if *record {
			if err := writeFixture(*outputDir, cmd, res); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to write fixture for %s: %v\n", cmd.Name, err)
			}
		}
	}

	if err := emitReport(*record, *outputDir, report); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write report: %v\n", err)
	}

	for _, cmd := range report.Commands {
		fmt.Printf("[%s] exit=%d duration=%dms\n", cmd.Name, cmd.ExitCode, cmd.DurationMS)
		if cmd.Err != "" {
			fmt.Printf("  error: %s\n", cmd.Err)
		}
		if strings.TrimSpace(cmd.Stderr) != "" {
			fmt.Printf("  stderr: %s\n", strings.TrimSpace(cmd.Stderr))
		}
	}

	if report.Failures > 0 {
		fmt.Fprintf(os.Stderr, "%d smoke command(s) failed\n", report.Failures)
		os.Exit(1)
	}
}

func resolveBinary(userPath string) (string, func(), error) {
	if userPath != "" {
		if _, err := os.Stat(userPath); err != nil {
			return "", nil, err
		}
		return userPath, nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "rl-smoke-*")
	if err != nil {
		return "", nil, err
	}
	binPath := filepath.Join(tmpDir, "rl-smoke")

	build := exec.Command("go", "build", "-o", binPath, "./cmd/rl")
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	build.Env = os.Environ()
	if err := build.Run(); err != nil {
		os.RemoveAll(tmpDir)
		return "", nil, fmt.Errorf("failed to build rl: %w", err)
	}

	cleanup := func() {
		_ = os.RemoveAll(tmpDir)
	}
	return binPath, cleanup, nil
}

func runSmokeCommand(binary, configDir string, timeout time.Duration, cmd smokeCommand) commandReport {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	execCmd := exec.CommandContext(ctx, binary, cmd.Args...)
	execCmd.Env = append(os.Environ(), "RUSTLATOR_CONFIG_DIR="+configDir)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	start := time.Now()
	err := execCmd.Run()
	duration := time.Since(start)

	report := commandReport{
		Name:        cmd.Name,
		Description: cmd.Description,
		Args:        cmd.Args,
		DurationMS:  duration.Milliseconds(),
		Stdout:      stdout.String(),
		Stderr:      stderr.String(),
	}

	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		report.Err = "command timed out"
		report.ExitCode = -1
		return report
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			report.ExitCode = exitErr.ExitCode()
		} else {
			report.ExitCode = -1
		}
		report.Err = err.Error()
		return report
	}

	if cmd.ExpectJSON {
		var decoded map[string]any
		if parseErr := json.Unmarshal(stdout.Bytes(), &decoded); parseErr != nil {
			report.Err = "json decode error: " + parseErr.Error()
			report.ExitCode = -1
			return report
		}
		report.ParsedJSON = decoded
		if cmd.Check != nil {
			if checkErr := cmd.Check(decoded); checkErr != nil {
				report.Err = checkErr.Error()
				report.ExitCode = -1
			}
		}
	}

	return report
}

func expectField(key string, want any) func(map[string]any) error {
	return func(payload map[string]any) error {
		if got := payload[key]; got != want {
			return fmt.Errorf("expected %s=%v, got %v", key, want, got)
		}
		return nil
	}
}

func expectNonEmpty(key string) func(map[string]any) error {
	return func(payload map[string]any) error {
		if s, _ := payload[key].(string); strings.TrimSpace(s) == "" {
			return fmt.Errorf("expected non-empty %s", key)
		}
		return nil
	}
}

func expectLanguage(code string) func(map[string]any) error {
	return func(payload map[string]any) error {
		langs, _ := payload["languages"].([]any)
		for _, l := range langs {
			if entry, ok := l.(map[string]any); ok && entry["code"] == code {
				return nil
			}
		}
		return fmt.Errorf("language %q missing from listing of %d entries", code, len(langs))
	}
}

func writeFixture(dir string, cmd smokeCommand, report commandReport) error {
	if report.ParsedJSON == nil {
		return os.WriteFile(filepath.Join(dir, cmd.Fixture), []byte(report.Stdout), 0o644)
	}

	data, err := json.MarshalIndent(report.ParsedJSON, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, cmd.Fixture), append(data, '\n'), 0o644)
}

func emitReport(record bool, dir string, report runReport) error {
	if !record {
		return nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "report.json"), append(data, '\n'), 0o644)
}
