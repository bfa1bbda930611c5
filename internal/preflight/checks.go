package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"voice2sign/internal/config"
	"voice2sign/internal/deps"
	"voice2sign/internal/emotion"
	"voice2sign/internal/services/llm"
)

// Access modes accepted by CheckDirectoryAccess.
const (
	ReadOnly  = unix.R_OK | unix.X_OK
	ReadWrite = unix.R_OK | unix.W_OK | unix.X_OK
)

const llmPingPrompt = `Reply with the JSON object {"ok": true}.`

// CheckLLM verifies that the chat-completions API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt.
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:         cfg.APIKey,
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		Referer:        cfg.Referer,
		Title:          cfg.Title,
		TimeoutSeconds: cfg.TimeoutSeconds,
	}, llm.WithRetry(1, 0, 0))

	if _, err := client.CompleteJSON(checkCtx, llmPingPrompt, "ping"); err != nil {
		return Result{Name: name, Detail: summarizeRemoteError("LLM API", err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable (" + client.Model() + ")"}
}

// CheckEmotionService classifies a probe sentence against the emotion service.
func CheckEmotionService(ctx context.Context, baseURL string, timeout time.Duration) Result {
	const name = "Emotion service"

	base := strings.TrimSpace(baseURL)
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	score, err := emotion.NewHTTPClassifier(base, timeout).Classify(checkCtx, "I am happy to see you")
	if err != nil {
		return Result{Name: name, Detail: summarizeRemoteError("emotion service", err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("Reachable (probe: %s)", score.Label)}
}

// CheckDirectoryAccess verifies that the directory exists and grants mode.
func CheckDirectoryAccess(name, path string, mode uint32) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	if mode&unix.W_OK != 0 {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read ok)", path)}
}

// CheckSystemDeps evaluates the external binaries required by cfg.
// The web server and the CLI status command share this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.PipelineRequirements(cfg))
}

func summarizeRemoteError(service string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("check timed out (%s unresponsive)", service)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Sprintf("check timed out (%s unreachable)", service)
	}
	return err.Error()
}
