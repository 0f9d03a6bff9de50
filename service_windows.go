//go:build windows

// Package main provides Windows service support so the monitor can run as a
// background service via github.com/kardianos/service.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go_client/core"
	"go_client/db"
	"go_client/logging"
	"go_client/workflow"

	"github.com/kardianos/service"
)

// Program implements service.Interface. When run as a service the client
// stays in monitor mode against the configured backend.
type Program struct {
	ctx    context.Context
	cancel context.CancelFunc
	exit   chan struct{}
}

// Start begins the monitor in a goroutine and returns immediately.
func (p *Program) Start(s service.Service) error {
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.exit = make(chan struct{})
	go p.run()
	return nil
}

// Stop signals shutdown and waits for a clean exit.
func (p *Program) Stop(s service.Service) error {
	p.cancel()
	select {
	case <-p.exit:
	case <-time.After(30 * time.Second):
		return fmt.Errorf("timeout waiting for service to stop")
	}
	return nil
}

func (p *Program) run() {
	defer close(p.exit)

	config, err := core.LoadConfig()
	if err != nil {
		return
	}
	logger, err := logging.NewLogger(false, config.LogFile)
	if err != nil {
		return
	}
	defer logger.Sync()

	var journal *db.Journal
	if config.JournalPath != "" {
		if j, err := db.OpenJournal(config.JournalPath, logger); err == nil {
			journal = j
			defer journal.Close()
		}
	}

	app := &App{
		config:  config,
		logger:  logger,
		journal: journal,
		gateway: workflow.NewGateway(config, logger),
	}
	app.runMonitor(p.ctx)
}

// ServiceConfig returns the Windows service definition.
func ServiceConfig() *service.Config {
	return &service.Config{
		Name:        "DatasetMonitor",
		DisplayName: "Dataset Generation Monitor",
		Description: "Monitors synthetic dataset generation jobs and journals activity",
		Option: service.KeyValue{
			"StartType": "automatic",
		},
	}
}

// InstallService installs the application as a Windows service.
func InstallService() error {
	s, err := service.New(&Program{}, ServiceConfig())
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	if err := s.Install(); err != nil {
		return fmt.Errorf("failed to install service: %w", err)
	}
	fmt.Println("Service installed successfully")
	return nil
}

// UninstallService removes the Windows service.
func UninstallService() error {
	s, err := service.New(&Program{}, ServiceConfig())
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	if err := s.Uninstall(); err != nil {
		return fmt.Errorf("failed to uninstall service: %w", err)
	}
	fmt.Println("Service uninstalled successfully")
	return nil
}

// StartService starts the Windows service.
func StartService() error {
	s, err := service.New(&Program{}, ServiceConfig())
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	if err := s.Start(); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	fmt.Println("Service started successfully")
	return nil
}

// StopService stops the Windows service.
func StopService() error {
	s, err := service.New(&Program{}, ServiceConfig())
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	if err := s.Stop(); err != nil {
		return fmt.Errorf("failed to stop service: %w", err)
	}
	fmt.Println("Service stopped successfully")
	return nil
}

// ServiceStatus returns the current service status.
func ServiceStatus() (service.Status, error) {
	s, err := service.New(&Program{}, ServiceConfig())
	if err != nil {
		return service.StatusUnknown, fmt.Errorf("failed to create service: %w", err)
	}
	status, err := s.Status()
	if err != nil {
		return service.StatusUnknown, fmt.Errorf("failed to get service status: %w", err)
	}
	return status, nil
}

// HandleServiceCommand handles service-related command-line arguments.
// Returns true if a service command was handled.
func HandleServiceCommand(args []string) bool {
	if len(args) == 0 {
		return false
	}

	var err error
	switch args[0] {
	case "install":
		err = InstallService()
	case "uninstall", "remove":
		err = UninstallService()
	case "start":
		err = StartService()
	case "stop":
		err = StopService()
	case "status":
		status, statusErr := ServiceStatus()
		if statusErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", statusErr)
			os.Exit(1)
		}
		switch status {
		case service.StatusRunning:
			fmt.Println("Service is running")
		case service.StatusStopped:
			fmt.Println("Service is stopped")
		default:
			fmt.Println("Service status unknown")
		}
		return true
	default:
		return false
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return true
}
