// Package camera captures single frames from a local video device by
// shelling out to ffmpeg.
package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Capture grabs JPEG frames from a v4l2 device.
type Capture struct {
	device string
}

// New returns a capture source for the given device, e.g. /dev/video0.
func New(device string) *Capture {
	return &Capture{device: device}
}

// Capture grabs one frame, scaled to 480x360, as JPEG bytes. The context
// bounds the whole ffmpeg run; callers should set a timeout.
func (c *Capture) Capture(ctx context.Context) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-f", "v4l2",
		"-i", c.device,
		"-frames:v", "1",
		"-vf", "scale=480:360",
		"-q:v", "5",
		"-f", "image2",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("camera capture on %s failed: %w (%s)", c.device, err, lastLine(&stderr))
	}
	if stdout.Len() == 0 {
		return nil, errors.New("camera produced no frame")
	}
	return stdout.Bytes(), nil
}

// lastLine keeps errors readable; ffmpeg is chatty on stderr.
func lastLine(buf *bytes.Buffer) string {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
