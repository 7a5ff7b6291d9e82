package stitch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/cubegrab/internal/model"
	"github.com/nao1215/cubegrab/internal/tileinfo"
)

// outputName is the file {out} points to.
const outputName = "equirectangular.jpg"

// Command runs an external program to project the cube.
//
// Every argument may contain the placeholders {back}, {right}, {front},
// {left}, {top}, {bottom} (paths of the face images), {dir} (the working
// directory holding them), {out} (the path the program must write), and
// {yaw}, {pitch}, {roll}.
type Command struct {
	args   []string
	env    []string
	logger *slog.Logger
}

// CommandOption configures a Command projector.
type CommandOption func(*Command)

// WithEnv appends environment variables for the program.
func WithEnv(env ...string) CommandOption {
	return func(c *Command) {
		c.env = append(c.env, env...)
	}
}

// WithCommandLogger sets the logger.
func WithCommandLogger(logger *slog.Logger) CommandOption {
	return func(c *Command) {
		c.logger = logger
	}
}

// NewCommand creates a projector running args[0] with args[1:].
func NewCommand(args []string, opts ...CommandOption) (*Command, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil, ErrNoCommand
	}
	c := &Command{args: append([]string(nil), args...)}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// CubemapToEquirectangular implements the projector contract.
func (c *Command) CubemapToEquirectangular(ctx context.Context, cube *model.CubeSet, rot model.Rotation) (*model.Artifact, error) {
	if !cube.IsSingleTile() {
		return nil, ErrNotStitched
	}

	dir, err := os.MkdirTemp("", "cubegrab-stitch-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer os.RemoveAll(dir)

	replacements := []string{
		"{dir}", dir,
		"{out}", filepath.Join(dir, outputName),
		"{yaw}", strconv.FormatFloat(rot.Yaw(), 'f', -1, 64),
		"{pitch}", strconv.FormatFloat(rot.Pitch(), 'f', -1, 64),
		"{roll}", strconv.FormatFloat(rot.Roll(), 'f', -1, 64),
	}
	for _, f := range model.AllFaces() {
		tile := cube.Face(f).At(0, 0)
		path := filepath.Join(dir, f.String()+"."+tile.Extension())
		if err := os.WriteFile(path, tile.Data, 0o600); err != nil {
			return nil, fmt.Errorf("failed to write face %s: %w", f, err)
		}
		replacements = append(replacements, "{"+f.String()+"}", path)
	}

	r := strings.NewReplacer(replacements...)
	args := make([]string, len(c.args))
	for i, a := range c.args {
		args[i] = r.Replace(a)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // the command comes from user configuration
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), c.env...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.logger.Debug("running stitch command", "program", args[0], "dir", dir)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", args[0], err, msg)
		}
		return nil, fmt.Errorf("%s: %w", args[0], err)
	}

	data, err := os.ReadFile(filepath.Join(dir, outputName))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoOutput, err)
	}
	return &model.Artifact{
		Name:     outputName,
		Data:     data,
		MIMEType: tileinfo.MIMEType("", data),
	}, nil
}
