package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/neovim/go-client/nvim"

	"ollamaedit/logger"
	"ollamaedit/provider"
)

// idleShutdownDelay is how long the daemon lingers with no clients before
// exiting
const idleShutdownDelay = 30 * time.Second

// Daemon owns the unix socket serving editor connections. Each connection
// is one editor instance speaking msgpack-rpc through the attach relay and
// gets its own edit service; the provider is shared.
type Daemon struct {
	config      Config
	provider    provider.Provider
	listener    net.Listener
	clientCount int64
	ctx         context.Context
	cancel      context.CancelFunc
}

func runDaemon() error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logger.Open(logPath(), logger.ParseLevel(config.LogLevel))
	if err != nil {
		return err
	}
	defer log.Close()

	daemon, err := NewDaemon(config)
	if err != nil {
		return err
	}
	return daemon.Start()
}

func NewDaemon(config Config) (*Daemon, error) {
	p, err := provider.New(config.providerConfig())
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		config:   config,
		provider: p,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start listens on the socket and serves until shut down by signal or idle
// timeout
func (d *Daemon) Start() error {
	d.writePidFile()
	defer d.removePidFile()

	// a stale socket from a crashed daemon would block the listen
	os.Remove(socketPath())
	listener, err := net.Listen("unix", socketPath())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", socketPath(), err)
	}
	d.listener = listener
	defer os.Remove(socketPath())

	logger.Info("daemon listening on %s, provider %s", socketPath(), d.provider.Name())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		d.Stop()
	}()

	go d.acceptConnections()
	go d.monitorIdleShutdown()

	<-d.ctx.Done()
	logger.Info("daemon shutting down")
	return nil
}

func (d *Daemon) Stop() {
	if d.listener != nil {
		d.listener.Close()
	}
	d.cancel()
}

func (d *Daemon) acceptConnections() {
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.ctx.Done():
				return
			default:
				logger.Error("accept connection: %v", err)
				continue
			}
		}

		atomic.AddInt64(&d.clientCount, 1)
		logger.Info("client connected, total %d", atomic.LoadInt64(&d.clientCount))
		go d.handleConnection(conn)
	}
}

func (d *Daemon) handleConnection(conn net.Conn) {
	defer conn.Close()
	defer func() {
		atomic.AddInt64(&d.clientCount, -1)
		logger.Info("client disconnected, remaining %d", atomic.LoadInt64(&d.clientCount))
	}()

	n, err := nvim.New(conn, conn, conn, logger.Debug)
	if err != nil {
		logger.Error("create nvim client: %v", err)
		return
	}

	service := newService(n, d.provider, d.config)
	if err := service.register(); err != nil {
		logger.Error("register rpc handlers: %v", err)
		return
	}

	if err := n.Serve(); err != nil && err != io.EOF {
		logger.Error("serve connection: %v", err)
	}
}

// monitorIdleShutdown exits the daemon once no clients have been connected
// for the idle delay, so closed editors do not leave a daemon behind
func (d *Daemon) monitorIdleShutdown() {
	delay := idleShutdownDelay
	if d.config.DebugImmediateShutdown {
		delay = time.Second
	}

	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			if atomic.LoadInt64(&d.clientCount) == 0 {
				logger.Info("no clients connected, shutting down")
				d.Stop()
				return
			}
		}
	}
}

func (d *Daemon) writePidFile() {
	if err := os.WriteFile(pidPath(), []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		logger.Warn("write pid file: %v", err)
	}
	logger.Info("daemon started with pid %d", os.Getpid())
}

func (d *Daemon) removePidFile() {
	if err := os.Remove(pidPath()); err != nil && !os.IsNotExist(err) {
		logger.Warn("remove pid file: %v", err)
	}
}
