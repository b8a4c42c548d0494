package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	containertypes "github.com/docker/docker/api/types/container"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultImage = "libretranslate/libretranslate:latest"
	servicePort  = "5000/tcp"
)

func init() {
	ensureDockerHost()
	if os.Getenv("TESTCONTAINERS_DOCKER_SOCKET_OVERRIDE") != "" {
		return
	}

	if dockerHost := os.Getenv("DOCKER_HOST"); strings.HasPrefix(dockerHost, "unix://") {
		socket := strings.TrimPrefix(dockerHost, "unix://")
		if socket != "" && !strings.HasPrefix(socket, "/var/run/") {
			_ = os.Setenv("TESTCONTAINERS_DOCKER_SOCKET_OVERRIDE", "/var/run/docker.sock")
		}
	}
}

func ensureDockerHost() {
	if os.Getenv("DOCKER_HOST") != "" {
		return
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}

	candidates := []string{
		filepath.Join(home, ".colima", "default", "docker.sock"),
		filepath.Join(home, ".colima", "docker.sock"),
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			_ = os.Setenv("DOCKER_HOST", "unix://"+candidate)
			return
		}
	}
}

// TestSmokeAgainstLibreTranslateContainer starts LibreTranslate with only the
// en and fi models and runs the rl smoke harness against it. Requires Docker.
func TestSmokeAgainstLibreTranslateContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("rl e2e smoke skipped in short mode")
	}
	if os.Getenv("RUSTLATOR_E2E_DISABLE") == "1" {
		t.Skip("rl e2e smoke disabled via RUSTLATOR_E2E_DISABLE")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker binary not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	h, err := newHarness(ctx)
	if err != nil {
		t.Fatalf("failed to create libretranslate e2e harness: %v", err)
	}
	defer func() {
		if err := h.Close(context.Background()); err != nil {
			t.Fatalf("failed to tear down harness: %v", err)
		}
	}()

	t.Logf("running smoke tests against %s", h.baseURL)

	if err := runSmoke(ctx, h.repoRoot, h.baseURL); err != nil {
		t.Fatalf("smoke harness failed: %v", err)
	}
}

type harness struct {
	container tc.Container
	baseURL   string
	repoRoot  string
}

func newHarness(ctx context.Context) (*harness, error) {
	repoRoot, err := repoRoot()
	if err != nil {
		return nil, err
	}

	image := defaultImage
	if override := strings.TrimSpace(os.Getenv("RUSTLATOR_E2E_IMAGE")); override != "" {
		image = override
	}
	modelCache := strings.TrimSpace(os.Getenv("RUSTLATOR_E2E_MODEL_CACHE"))

	req := tc.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{servicePort},
		Env: map[string]string{
			"LT_LOAD_ONLY": "en,fi",
		},
		HostConfigModifier: func(hc *containertypes.HostConfig) {
			// Reuse downloaded argos models between runs when a cache dir is given.
			if modelCache != "" {
				hc.Binds = append(hc.Binds, fmt.Sprintf("%s:/home/libretranslate/.local", modelCache))
			}
		},
		WaitingFor: wait.ForHTTP("/languages").
			WithPort(servicePort).
			WithStatusCodeMatcher(func(status int) bool { return status == http.StatusOK }).
			WithStartupTimeout(10 * time.Minute),
	}

	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("start libretranslate container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx) // best effort
		return nil, fmt.Errorf("resolve container host: %w", err)
	}
	mappedPort, err := container.MappedPort(ctx, servicePort)
	if err != nil {
		_ = container.Terminate(ctx) // best effort
		return nil, fmt.Errorf("resolve mapped port: %w", err)
	}

	h := &harness{
		container: container,
		baseURL:   fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
		repoRoot:  repoRoot,
	}

	if err := h.ensureReady(ctx); err != nil {
		_ = h.Close(ctx)
		return nil, err
	}
	return h, nil
}

// ensureReady waits until /languages lists the models we asked for; the
// endpoint answers before every model has finished loading.
func (h *harness) ensureReady(ctx context.Context) error {
	client := &http.Client{Timeout: 5 * time.Second}
	deadline := time.Now().Add(5 * time.Minute)
	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/languages", nil)
		if err != nil {
			return err
		}

		resp, err := client.Do(req)
		if err == nil {
			var langs []languageCode
			decodeErr := json.NewDecoder(resp.Body).Decode(&langs)
			resp.Body.Close()
			if decodeErr == nil && resp.StatusCode == http.StatusOK && hasCodes(langs, "en", "fi") {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return errors.New("libretranslate did not list en and fi before timeout")
}

type languageCode struct {
	Code string `json:"code"`
}

func hasCodes(langs []languageCode, codes ...string) bool {
	seen := map[string]bool{}
	for _, l := range langs {
		seen[l.Code] = true
	}
	for _, c := range codes {
		if !seen[c] {
			return false
		}
	}
	return true
}

func (h *harness) Close(ctx context.Context) error {
	if h.container == nil {
		return nil
	}
	return h.container.Terminate(ctx)
}

func repoRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("determine repo root: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

func runSmoke(ctx context.Context, repoRoot, baseURL string) error {
	tmpDir, err := os.MkdirTemp("", "rl-smoke-output-*")
	if err != nil {
		return fmt.Errorf("create smoke output dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	args := []string{
		"run", "./tools/smoke",
		"--base-url", baseURL,
		"--output", tmpDir,
		"--record=false",
	}
	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Dir = repoRoot
	cmd.Env = append(os.Environ(), fmt.Sprintf("RUSTLATOR_BASE_URL=%s", baseURL))
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("go run ./tools/smoke failed: %w\n%s", err, string(out))
	}
	return nil
}
