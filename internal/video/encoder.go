package video

import (
	"os/exec"
	"strings"
)

// BestH264Encoder prefers hardware encoders that the local ffmpeg reports:
// VideoToolbox on macOS, then NVENC, then libx264.
func BestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	return pickEncoder(string(out))
}

func pickEncoder(encoders string) string {
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(encoders, name) {
			return name
		}
	}
	return "libx264"
}

// DefaultQuality is the quality setting used when none is given.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // bitrate = Q*100 kbit/s
	case "h264_nvenc":
		return 28
	default:
		return 23 // CRF
	}
}
