// Package launcher runs every bot listed in a manifest as a child process
// of the same binary.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nuvix-market/nuvix-suite/internal/config"
)

// ErrNothingToLaunch is returned when every bot was skipped.
var ErrNothingToLaunch = errors.New("launcher: no bot has a token")

// CommandFunc builds the child command. It mirrors exec.CommandContext.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Process is one planned child.
type Process struct {
	Name string
	Port int
	Env  map[string]string
}

// Options tune a Launcher. Zero values fall back to the real process
// environment.
type Options struct {
	Executable string
	Args       []string
	LookupEnv  func(string) (string, bool)
	Command    CommandFunc
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *zap.Logger
}

// Launcher supervises the bot processes of a manifest.
type Launcher struct {
	manifest   *config.Manifest
	executable string
	args       []string
	lookupEnv  func(string) (string, bool)
	command    CommandFunc
	stdout     io.Writer
	stderr     io.Writer
	logger     *zap.Logger
}

var palette = []color.Attribute{color.FgCyan, color.FgMagenta, color.FgGreen, color.FgYellow, color.FgBlue, color.FgRed}

// New builds a launcher for manifest.
func New(manifest *config.Manifest, opts Options) (*Launcher, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	l := &Launcher{
		manifest:   manifest,
		executable: opts.Executable,
		args:       opts.Args,
		lookupEnv:  opts.LookupEnv,
		command:    opts.Command,
		stdout:     opts.Stdout,
		stderr:     opts.Stderr,
		logger:     opts.Logger,
	}
	if l.executable == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("resolve executable: %w", err)
		}
		l.executable = exe
	}
	if l.args == nil {
		l.args = []string{"bot"}
	}
	if l.lookupEnv == nil {
		l.lookupEnv = os.LookupEnv
	}
	if l.command == nil {
		l.command = exec.CommandContext
	}
	if l.stdout == nil {
		l.stdout = os.Stdout
	}
	if l.stderr == nil {
		l.stderr = os.Stderr
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	return l, nil
}

// Plan resolves which bots run and with what environment. Bots whose token
// variable is unset are skipped with a warning.
func (l *Launcher) Plan() []Process {
	var out []Process
	for i, bot := range l.manifest.Bots {
		token, ok := l.lookupEnv(bot.TokenEnv)
		if !ok || token == "" {
			l.logger.Warn("skipping bot, token variable missing",
				zap.String("bot", bot.Name),
				zap.String("token_env", bot.TokenEnv))
			continue
		}
		port := l.manifest.PortFor(i)
		env := map[string]string{
			"TOKEN":    token,
			"PORT":     strconv.Itoa(port),
			"BOT_NAME": bot.Name,
			"DATA_DIR": filepath.Join(l.manifest.DataDir, bot.Name),
		}
		for k, v := range bot.Env {
			env[k] = v
		}
		out = append(out, Process{Name: bot.Name, Port: port, Env: env})
	}
	return out
}

// Run starts the planned bots, staggered, and waits for all of them.
// Cancelling ctx stops every child.
func (l *Launcher) Run(ctx context.Context) error {
	plan := l.Plan()
	if len(plan) == 0 {
		return ErrNothingToLaunch
	}

	g, ctx := errgroup.WithContext(ctx)
	for i, proc := range plan {
		if i > 0 && l.manifest.Stagger > 0 {
			select {
			case <-ctx.Done():
				return g.Wait()
			case <-time.After(l.manifest.Stagger):
			}
		}
		cmd, err := l.start(ctx, i, proc)
		if err != nil {
			l.logger.Error("bot failed to start", zap.String("bot", proc.Name), zap.Error(err))
			continue
		}
		l.logger.Info("bot launched", zap.String("bot", proc.Name), zap.Int("port", proc.Port), zap.Int("pid", cmd.Process.Pid))
		name := proc.Name
		g.Go(func() error {
			err := cmd.Wait()
			if err != nil && ctx.Err() == nil {
				l.logger.Error("bot exited", zap.String("bot", name), zap.Error(err))
				return nil
			}
			l.logger.Info("bot stopped", zap.String("bot", name))
			return nil
		})
	}
	return g.Wait()
}

func (l *Launcher) start(ctx context.Context, i int, proc Process) (*exec.Cmd, error) {
	cmd := l.command(ctx, l.executable, l.args...)
	cmd.Env = mergeEnv(os.Environ(), proc.Env)
	prefix := color.New(palette[i%len(palette)], color.Bold).Sprintf("[%s]", proc.Name)
	cmd.Stdout = newPrefixWriter(l.stdout, prefix)
	cmd.Stderr = newPrefixWriter(l.stderr, prefix)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// mergeEnv overrides base KEY=VALUE pairs with overrides, in stable order.
func mergeEnv(base []string, overrides map[string]string) []string {
	out := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, replaced := overrides[key]; replaced {
			continue
		}
		out = append(out, kv)
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+overrides[k])
	}
	return out
}
