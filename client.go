package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"syscall"
	"time"
)

// Client is the attach-side relay: the editor plugin talks msgpack-rpc on
// our stdin/stdout and we forward it to the shared daemon's socket
type Client struct {
	socketPath string
}

func NewClient() *Client {
	return &Client{socketPath: socketPath()}
}

// Connect bridges stdin/stdout and the daemon socket until either side
// closes
func (c *Client) Connect() error {
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	defer conn.Close()

	go func() {
		io.Copy(conn, os.Stdin)
		conn.Close()
	}()

	io.Copy(os.Stdout, conn)
	return nil
}

// EnsureDaemonRunning spawns the daemon if no live one is recorded in the
// pid file
func (c *Client) EnsureDaemonRunning() error {
	if running, _ := isDaemonRunning(); running {
		return nil
	}
	return c.startDaemon()
}

func (c *Client) startDaemon() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}

	_, err = os.StartProcess(exe, []string{exe, "daemon"}, &os.ProcAttr{
		Env:   os.Environ(),
		Files: []*os.File{nil, nil, nil},
	})
	if err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}
	return c.waitForDaemon()
}

func (c *Client) waitForDaemon() error {
	for i := 0; i < 50; i++ {
		if running, _ := isDaemonRunning(); running {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("daemon failed to start within timeout")
}

// isDaemonRunning checks the pid file and probes the recorded process
func isDaemonRunning() (bool, int) {
	data, err := os.ReadFile(pidPath())
	if err != nil {
		return false, 0
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil {
		return false, 0
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0
	}
	// signal 0 probes for existence without delivering anything
	return process.Signal(syscall.Signal(0)) == nil, pid
}
