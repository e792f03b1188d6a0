//go:build linux

package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

// stubLookPath makes only the given binaries appear installed
func stubLookPath(t *testing.T, installed ...string) {
	t.Helper()
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	lookPath = func(file string) (string, error) {
		for _, name := range installed {
			if name == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", exec.ErrNotFound
	}
}

func TestDetectCommand(t *testing.T) {
	tests := []struct {
		name      string
		installed []string
		desktop   string
		session   string
		display   string
		expected  string
	}{
		{"GNOME prefers session inhibit", []string{"gnome-session-inhibit", "systemd-inhibit", "xset"}, "ubuntu:GNOME", "wayland", "", "gnome"},
		{"KDE uses systemd", []string{"gnome-session-inhibit", "systemd-inhibit"}, "KDE", "wayland", "", "systemd"},
		{"X11 falls back to xset", []string{"xset"}, "i3", "x11", ":0", "xset"},
		{"Wayland never uses xset", []string{"xset"}, "sway", "wayland", ":0", ""},
		{"Nothing installed", nil, "GNOME", "x11", ":0", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubLookPath(t, tt.installed...)
			t.Setenv("XDG_CURRENT_DESKTOP", tt.desktop)
			t.Setenv("XDG_SESSION_TYPE", tt.session)
			t.Setenv("DISPLAY", tt.display)

			cmd := detectCommand(zap.NewNop())
			if cmd.Name != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, cmd.Name)
			}
		})
	}
}

func TestInhibit_NoCommand(t *testing.T) {
	stubLookPath(t)
	inhibitor := NewIdleInhibitor(zap.NewNop())

	if err := inhibitor.Inhibit(context.Background()); !errors.Is(err, errNoInhibitor) {
		t.Errorf("expected errNoInhibitor, got %v", err)
	}
	if err := inhibitor.Release(context.Background()); err != nil {
		t.Errorf("Release without Inhibit should be a no-op, got %v", err)
	}
}

func TestInhibit_HolderProcess(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	inhibitor := &LinuxInhibitor{
		logger:  zap.NewNop(),
		command: InhibitCommand{Name: "test", Binary: "sleep", Args: []string{"60"}, Hold: true},
	}

	if err := inhibitor.Inhibit(context.Background()); err != nil {
		t.Fatalf("Inhibit failed: %v", err)
	}
	holder := inhibitor.holder
	if holder == nil || holder.Process == nil {
		t.Fatal("expected a running holder process")
	}

	// Second Inhibit must not spawn another holder
	if err := inhibitor.Inhibit(context.Background()); err != nil {
		t.Fatalf("second Inhibit failed: %v", err)
	}
	if inhibitor.holder != holder {
		t.Error("second Inhibit replaced the holder process")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := inhibitor.Release(ctx); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if holder.ProcessState == nil {
		t.Error("expected holder process to have exited")
	}
	if err := inhibitor.Release(ctx); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}
}

// processGone reports whether pid has exited (missing or a zombie)
func processGone(pid int) bool {
	stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return true
	}
	// Format: pid (comm) state ...
	fields := strings.Fields(string(stat[strings.LastIndexByte(string(stat), ')')+1:]))
	return len(fields) > 0 && (fields[0] == "Z" || fields[0] == "X")
}

func TestInhibit_HolderChildStopped(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	// Mirrors gnome-session-inhibit and systemd-inhibit, which fork the held command
	pidFile := filepath.Join(t.TempDir(), "child.pid")
	inhibitor := &LinuxInhibitor{
		logger: zap.NewNop(),
		command: InhibitCommand{
			Name:   "wrapper",
			Binary: "sh",
			Args:   []string{"-c", "sleep 60 & echo $! > " + pidFile + "; wait"},
			Hold:   true,
		},
	}

	if err := inhibitor.Inhibit(context.Background()); err != nil {
		t.Fatalf("Inhibit failed: %v", err)
	}

	var childPid int
	deadline := time.Now().Add(2 * time.Second)
	for childPid == 0 && time.Now().Before(deadline) {
		if data, err := os.ReadFile(pidFile); err == nil {
			childPid, _ = strconv.Atoi(strings.TrimSpace(string(data)))
		}
		if childPid == 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}
	if childPid == 0 {
		t.Fatal("wrapper never reported its child")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := inhibitor.Release(ctx); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	deadline = time.Now().Add(2 * time.Second)
	for !processGone(childPid) {
		if time.Now().After(deadline) {
			t.Fatalf("child process %d survived Release", childPid)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestInhibit_OneShot(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}

	inhibitor := &LinuxInhibitor{
		logger:  zap.NewNop(),
		command: InhibitCommand{Name: "test", Binary: "true", Args: []string{"off"}, ReleaseArgs: []string{"on"}},
	}

	if err := inhibitor.Inhibit(context.Background()); err != nil {
		t.Fatalf("Inhibit failed: %v", err)
	}
	if inhibitor.holder != nil {
		t.Error("one-shot command must not keep a holder")
	}
	if err := inhibitor.Release(context.Background()); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
}

func TestInhibit_CommandFails(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}

	inhibitor := &LinuxInhibitor{
		logger:  zap.NewNop(),
		command: InhibitCommand{Name: "test", Binary: "false"},
	}

	if err := inhibitor.Inhibit(context.Background()); err == nil {
		t.Fatal("expected failing command to return an error")
	}
	if inhibitor.active {
		t.Error("failed Inhibit must not mark the inhibitor active")
	}
}
