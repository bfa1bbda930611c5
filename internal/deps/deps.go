package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"voice2sign/internal/config"
)

// Requirement defines an external binary the pipeline shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Install     string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// PipelineRequirements lists the binaries an analysis run needs under cfg.
// Whisper is only required for the local transcription backend.
func PipelineRequirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Tools.YTDLP,
			Description: "Required for audio download",
			Install:     "pip install yt-dlp",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Required for WAV extraction",
			Install:     "apt install ffmpeg",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Reports audio duration and format",
			Install:     "apt install ffmpeg",
			Optional:    true,
		},
	}
	if strings.EqualFold(cfg.Transcription.Backend, "whisper") {
		reqs = append(reqs, Requirement{
			Name:        "Whisper",
			Command:     cfg.Transcription.WhisperCommand,
			Description: "Required for local transcription",
			Install:     "pip install openai-whisper",
		})
	}
	return reqs
}

// CheckBinaries resolves every requirement on PATH. Detail holds the
// resolved path when it differs from the configured command, or the reason
// and install hint when the binary is missing.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, check(req))
	}
	return results
}

func check(req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		if req.Install != "" {
			status.Detail += " (" + req.Install + ")"
		}
		return status
	}
	status.Available = true
	if path != cmd {
		status.Detail = path
	}
	return status
}

// Missing returns the names of required binaries that were not found.
func Missing(statuses []Status) []string {
	var names []string
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			names = append(names, s.Name)
		}
	}
	return names
}
