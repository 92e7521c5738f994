package video

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ResolveYouTube asks yt-dlp for a direct, OpenCV-readable stream URL.
func ResolveYouTube(ctx context.Context, pageURL string) (string, error) {
	ytdlp, err := exec.LookPath("yt-dlp")
	if err != nil {
		return "", fmt.Errorf("yt-dlp not found in PATH: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, ytdlp, "-g", "-f", "best[ext=mp4]/best", pageURL)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("yt-dlp failed for %s: %w: %s", pageURL, err, strings.TrimSpace(stderr.String()))
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("yt-dlp returned no stream for %s", pageURL)
}
