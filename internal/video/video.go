package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strings"
)

var ErrFrameSize = errors.New("frame size changed mid-stream")

// FrameSink receives display frames in presentation order.
type FrameSink interface {
	WriteFrame(img image.Image) error
	Close() error
}

// FFmpegSink pipes raw RGBA frames into ffmpeg and produces an H.264 file.
// ffmpeg is started on the first frame, once the frame size is known.
type FFmpegSink struct {
	Path    string
	FPS     float64
	Encoder string
	Quality int

	ctx    context.Context
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	size   image.Point
	frames int
}

func NewFFmpegSink(ctx context.Context, path string, fps float64, encoder string, quality int) *FFmpegSink {
	if encoder == "" {
		encoder = "libx264"
	}
	if quality == 0 {
		quality = DefaultQuality(encoder)
	}
	return &FFmpegSink{
		Path:    path,
		FPS:     fps,
		Encoder: encoder,
		Quality: quality,
		ctx:     ctx,
	}
}

func (s *FFmpegSink) WriteFrame(img image.Image) error {
	size := img.Bounds().Size()
	if s.cmd == nil {
		if err := s.start(size); err != nil {
			return err
		}
	} else if size != s.size {
		return fmt.Errorf("%w: %v, stream is %v", ErrFrameSize, size, s.size)
	}

	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	s.frames++
	return nil
}

func (s *FFmpegSink) start(size image.Point) error {
	args := buildArgs(size.X, size.Y, s.FPS, s.Path, s.Encoder, s.Quality)
	cmd := exec.CommandContext(s.ctx, "ffmpeg", args...)
	cmd.Stderr = &s.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.size = size
	return nil
}

// Frames is the number of frames written so far.
func (s *FFmpegSink) Frames() int { return s.frames }

// Close flushes the stream and waits for ffmpeg to finish the file.
func (s *FFmpegSink) Close() error {
	if s.cmd == nil {
		return nil
	}
	s.stdin.Close()
	err := s.cmd.Wait()
	s.cmd = nil
	if err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, strings.TrimSpace(s.stderr.String()))
	}
	return nil
}

func buildArgs(width, height int, fps float64, path, encoder string, quality int) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-framerate", fmt.Sprintf("%g", fps),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", encoder,
	}

	switch encoder {
	case "h264_videotoolbox":
		bitrate := quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	// yuv420p needs even dimensions.
	if width%2 != 0 || height%2 != 0 {
		args = append(args, "-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2")
	}

	args = append(args, path)
	return args
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix[:bounds.Dx()*bounds.Dy()*4])
	return err
}
