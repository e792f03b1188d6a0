//go:build linux
// +build linux

package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// InhibitCommand represents a detected way to keep the screen awake
type InhibitCommand struct {
	Name        string
	Binary      string
	Args        []string // Arguments that start inhibition
	Hold        bool     // If true, inhibition lasts while the process runs
	ReleaseArgs []string // For one-shot commands, arguments that undo Args
}

var (
	// Ordered list of inhibitors to try (highest priority first)
	inhibitCommands = []InhibitCommand{
		// GNOME session manager
		{Name: "gnome", Binary: "gnome-session-inhibit", Args: []string{"--inhibit", "idle", "--reason", "Showing now playing", "sleep", "infinity"}, Hold: true},
		// logind, honored by most Wayland compositors and KDE
		{Name: "systemd", Binary: "systemd-inhibit", Args: []string{"--what=idle", "--who=standby", "--why=Showing now playing", "--mode=block", "sleep", "infinity"}, Hold: true},
		// Generic X11 - screensaver and DPMS
		{Name: "xset", Binary: "xset", Args: []string{"s", "off", "-dpms"}, ReleaseArgs: []string{"s", "on", "+dpms"}},
	}

	lookPath = exec.LookPath

	errNoInhibitor = errors.New("no supported idle inhibitor found on this system")
)

// LinuxInhibitor keeps the display from dimming while the standby screen is shown
type LinuxInhibitor struct {
	logger  *zap.Logger
	command InhibitCommand

	mu     sync.Mutex
	holder *exec.Cmd
	done   chan error
	active bool
}

// NewIdleInhibitor creates a platform-specific idle inhibitor (Linux implementation).
// A missing inhibitor is not fatal: Inhibit reports it when keep-awake is requested.
func NewIdleInhibitor(logger *zap.Logger) *LinuxInhibitor {
	cmd := detectCommand(logger)
	if cmd.Binary == "" {
		logger.Warn("No idle inhibitor found, the screen may dim while showing now playing")
	} else {
		logger.Info("Idle inhibitor detected",
			zap.String("name", cmd.Name),
			zap.String("binary", cmd.Binary))
	}

	return &LinuxInhibitor{
		logger:  logger,
		command: cmd,
	}
}

// detectCommand analyzes the environment to choose the best inhibitor
func detectCommand(logger *zap.Logger) InhibitCommand {
	desktop := os.Getenv("XDG_CURRENT_DESKTOP")
	session := os.Getenv("XDG_SESSION_TYPE")
	display := os.Getenv("DISPLAY")

	logger.Debug("Detecting idle inhibitor",
		zap.String("desktop", desktop),
		zap.String("session", session),
		zap.String("display", display))

	if strings.Contains(strings.ToLower(desktop), "gnome") {
		if cmd, ok := findCommand("gnome"); ok {
			return cmd
		}
	}

	if cmd, ok := findCommand("systemd"); ok {
		return cmd
	}

	// xset only works against an X server
	if display != "" && session != "wayland" {
		if cmd, ok := findCommand("xset"); ok {
			logger.Info("Using fallback idle inhibitor", zap.String("name", cmd.Name))
			return cmd
		}
	}

	return InhibitCommand{} // No command found
}

func findCommand(name string) (InhibitCommand, bool) {
	for _, cmd := range inhibitCommands {
		if cmd.Name == name && commandExists(cmd.Binary) {
			return cmd, true
		}
	}
	return InhibitCommand{}, false
}

// commandExists checks if a binary exists in PATH
func commandExists(binary string) bool {
	_, err := lookPath(binary)
	return err == nil
}

// Inhibit starts suppressing idle dimming. Calling it while active is a no-op.
func (e *LinuxInhibitor) Inhibit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return nil
	}
	if e.command.Binary == "" {
		return errNoInhibitor
	}

	e.logger.Debug("Inhibiting idle",
		zap.String("command", e.command.Binary),
		zap.Strings("args", e.command.Args))

	if e.command.Hold {
		// The holder outlives ctx, which only bounds startup; Release stops it.
		// Its own process group lets Release reach the child it wraps.
		cmd := exec.Command(e.command.Binary, e.command.Args...)
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("failed to start %s: %w", e.command.Name, err)
		}
		done := make(chan error, 1)
		go func() { done <- cmd.Wait() }()
		e.holder = cmd
		e.done = done
	} else if err := e.run(ctx, e.command.Args); err != nil {
		return err
	}

	e.active = true
	e.logger.Info("Idle inhibited", zap.String("command", e.command.Name))
	return nil
}

// Release restores the system's idle behavior. Calling it while inactive is a no-op.
func (e *LinuxInhibitor) Release(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return nil
	}
	e.active = false

	var err error
	if e.holder != nil {
		err = e.stopHolder(ctx)
	} else {
		err = e.run(ctx, e.command.ReleaseArgs)
	}

	e.logger.Info("Idle inhibition released", zap.String("command", e.command.Name), zap.Error(err))
	return err
}

func (e *LinuxInhibitor) stopHolder(ctx context.Context) error {
	holder, done := e.holder, e.done
	e.holder, e.done = nil, nil

	select {
	case <-done:
		// Already exited on its own; nothing left to stop
		return nil
	default:
	}

	// Negative pid signals the whole group, including "sleep infinity"
	err := syscall.Kill(-holder.Process.Pid, syscall.SIGKILL)
	if err != nil {
		err = multierr.Append(
			fmt.Errorf("failed to signal %s process group: %w", e.command.Name, err),
			holder.Process.Kill(),
		)
	}
	select {
	case <-done: // Exit status after Kill is expected to be non-nil
	case <-ctx.Done():
		err = multierr.Append(err, fmt.Errorf("waiting for %s to exit: %w", e.command.Name, ctx.Err()))
	}
	return err
}

func (e *LinuxInhibitor) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, e.command.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to run %s: %w (output: %s)",
			e.command.Name, err, string(output))
	}
	return nil
}
