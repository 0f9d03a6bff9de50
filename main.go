// Command go_client is a console client for the synthetic-dataset generation
// backend: it monitors generation jobs live over the push channel, drives the
// generate -> edit -> upload workflow, and manages dataset artifacts.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"go_client/core"
	"go_client/db"
	"go_client/logging"
	"go_client/syncview"
	"go_client/uploads"
	"go_client/workflow"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Exit codes.
const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

func main() {
	// run owns all defers; keeping os.Exit out here lets them fire
	os.Exit(run())
}

func run() int {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Use fmt here since the logger isn't initialized yet
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	pageSize := pflag.Int("page-size", 0, "records per page (overrides PAGE_SIZE)")
	noJournal := pflag.Bool("no-journal", false, "disable the local activity journal")
	pflag.Parse()

	// Service control (install/uninstall/start/stop) short-circuits everything
	if HandleServiceCommand(pflag.Args()) {
		return ExitCodeSuccess
	}

	isDevelopment := os.Getenv("DEV_MODE") == "true"

	config, err := core.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return ExitCodeError
	}
	if *pageSize > 0 {
		config.PageSize = *pageSize
	}

	logger, err := logging.NewLogger(isDevelopment, config.LogFile)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return ExitCodeError
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("api_base_url", config.APIBaseURL),
		zap.String("ws_base_url", config.WSBaseURL),
		zap.Int("page_size", config.PageSize),
		zap.Duration("http_timeout", config.HTTPTimeout),
		zap.String("downloads_dir", config.DownloadsDir),
		zap.Bool("allow_self_signed_certs", config.AllowSelfSignedCerts),
		zap.Bool("dev_mode", isDevelopment),
	)

	var journal *db.Journal
	if !*noJournal && config.JournalPath != "" {
		journal, err = db.OpenJournal(config.JournalPath, logger)
		if err != nil {
			// The journal is diagnostics only; run without it
			logger.Warn("Continuing without activity journal", zap.Error(err))
		} else {
			defer journal.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Received interrupt signal. Shutting down...")
		cancel()
	}()

	app := &App{
		config:  config,
		logger:  logger,
		journal: journal,
		gateway: workflow.NewGateway(config, logger),
	}

	args := pflag.Args()
	command := "monitor"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	exitCode := app.Run(ctx, command, args)
	logger.Info("Goodbye!")
	return exitCode
}

// App wires the client's components for the console commands.
type App struct {
	config  *core.Config
	logger  *logging.Logger
	journal *db.Journal
	gateway *workflow.Gateway
}

// Run dispatches one console command.
func (a *App) Run(ctx context.Context, command string, args []string) int {
	switch command {
	case "monitor":
		return a.runMonitor(ctx)
	case "watch":
		if len(args) != 1 {
			fmt.Println("Usage: go_client watch <config-id>")
			return ExitCodeError
		}
		return a.runWatch(ctx, args[0])
	case "generate":
		if len(args) == 0 {
			fmt.Println("Usage: go_client generate <description...>")
			return ExitCodeError
		}
		return a.runGenerate(ctx, strings.Join(args, " "))
	case "upload":
		if len(args) == 0 {
			fmt.Println("Usage: go_client upload <file.yaml> [more files...]")
			return ExitCodeError
		}
		return a.runUpload(ctx, args)
	case "dataset":
		if len(args) != 1 {
			fmt.Println("Usage: go_client dataset <config-id>")
			return ExitCodeError
		}
		return a.runDataset(ctx, args[0])
	case "download":
		if len(args) != 1 {
			fmt.Println("Usage: go_client download <config-id>")
			return ExitCodeError
		}
		return a.runDownload(ctx, args[0])
	case "history":
		return a.runHistory()
	default:
		fmt.Printf("Unknown command %q\n", command)
		fmt.Println("Commands: monitor, watch, generate, upload, dataset, download, history")
		return ExitCodeError
	}
}

// runMonitor mounts the config list view and renders every push until
// interrupted. Console input drives pagination and live mode.
func (a *App) runMonitor(ctx context.Context) int {
	manager := syncview.NewManagerWithConfig(a.logger, syncview.ManagerConfig{
		AllowSelfSignedCerts: a.config.AllowSelfSignedCerts,
	})

	view, err := syncview.OpenConfigListView(ctx, a.config.WSBaseURL, syncview.ViewOptions{
		Manager:  manager,
		PageSize: a.config.PageSize,
		Logger:   a.logger,
		Recorder: a.journal,
	})
	if err != nil {
		a.logger.Error("Failed to open config list view", zap.Error(err))
		fmt.Printf("Could not connect to %s: %v\n", a.config.WSBaseURL, err)
		return ExitCodeError
	}
	defer view.Close()

	dashboard := NewDashboard(os.Stdout)
	dashboard.RenderConfigs(view.Snapshot())
	printMonitorHelp()

	input := readLines(ctx)
	for {
		select {
		case <-ctx.Done():
			return ExitCodeSuccess
		case <-view.Updates():
			dashboard.RenderConfigs(view.Snapshot())
		case line, ok := <-input:
			if !ok {
				// stdin closed (service mode); keep rendering pushes
				input = nil
				continue
			}
			if quit := a.handleViewCommand(line, viewControls{
				next: view.NextPage, prev: view.PrevPage,
				page: view.RequestPage, toggle: view.ToggleLiveMode,
			}); quit {
				return ExitCodeSuccess
			}
		}
	}
}

// runWatch mounts one config's sample view and renders pushes.
func (a *App) runWatch(ctx context.Context, configID string) int {
	manager := syncview.NewManagerWithConfig(a.logger, syncview.ManagerConfig{
		AllowSelfSignedCerts: a.config.AllowSelfSignedCerts,
	})

	view, err := syncview.OpenSampleView(ctx, a.config.WSBaseURL, configID, syncview.ViewOptions{
		Manager:  manager,
		PageSize: a.config.PageSize,
		Logger:   a.logger,
		Recorder: a.journal,
	})
	if err != nil {
		a.logger.Error("Failed to open sample view",
			zap.String("config_id", configID),
			zap.Error(err))
		fmt.Printf("Could not connect to %s: %v\n", a.config.WSBaseURL, err)
		return ExitCodeError
	}
	defer view.Close()

	dashboard := NewDashboard(os.Stdout)
	dashboard.RenderSamples(view.Snapshot())
	printMonitorHelp()

	input := readLines(ctx)
	for {
		select {
		case <-ctx.Done():
			return ExitCodeSuccess
		case <-view.Updates():
			dashboard.RenderSamples(view.Snapshot())
		case line, ok := <-input:
			if !ok {
				// stdin closed (service mode); keep rendering pushes
				input = nil
				continue
			}
			if quit := a.handleViewCommand(line, viewControls{
				next: view.NextPage, prev: view.PrevPage,
				page: view.RequestPage, toggle: view.ToggleLiveMode,
			}); quit {
				return ExitCodeSuccess
			}
		}
	}
}

// viewControls are the navigation hooks shared by both monitored views.
type viewControls struct {
	next   func() bool
	prev   func() bool
	page   func(int) bool
	toggle func() bool
}

// handleViewCommand interprets one console line. Returns true on quit.
func (a *App) handleViewCommand(line string, c viewControls) bool {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "q", "quit", "exit":
		return true
	case "n", "next":
		c.next()
	case "p", "prev":
		c.prev()
	case "page":
		if len(fields) == 2 {
			if n, err := strconv.Atoi(fields[1]); err == nil {
				c.page(n)
			}
		}
	case "live", "l":
		c.toggle()
	case "h", "help":
		printMonitorHelp()
	}
	return false
}

// runGenerate drives a full workflow item from the command line: generate,
// print the document, and optionally save or upload it.
func (a *App) runGenerate(ctx context.Context, description string) int {
	machine := workflow.NewMachine(a.gateway, a.logger, a.journal)

	if err := machine.Generate(ctx, description); err != nil {
		fmt.Printf("Generation failed: %s\n", machine.Err())
		return ExitCodeError
	}

	doc := machine.Document()
	fmt.Println("--- generated config ---")
	fmt.Println(doc)
	fmt.Println("------------------------")

	// Stage the document for editing before upload
	name := workflow.ExtractConfigName(doc)
	stagePath := filepath.Join(a.config.DownloadsDir, core.ArtifactFileName(name))
	if err := os.MkdirAll(a.config.DownloadsDir, 0o755); err == nil {
		if err := os.WriteFile(stagePath, []byte(doc), 0o644); err == nil {
			fmt.Printf("Saved to %s - edit it, then run: go_client upload %s\n", stagePath, stagePath)
		}
	}
	return ExitCodeSuccess
}

// runUpload offers local files to the upload gateway and waits for every task
// to settle.
func (a *App) runUpload(ctx context.Context, paths []string) int {
	gw := uploads.NewGateway(a.gateway, uploads.GatewayOptions{
		MaxFileSize:  a.config.MaxFileSize,
		DownloadsDir: a.config.DownloadsDir,
		Logger:       a.logger,
		Recorder:     a.journal,
	})

	files := make([]uploads.File, 0, len(paths))
	var open []*os.File
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			fmt.Printf("Cannot open %s: %v\n", p, err)
			return ExitCodeError
		}
		open = append(open, f)
		info, err := f.Stat()
		if err != nil {
			fmt.Printf("Cannot stat %s: %v\n", p, err)
			return ExitCodeError
		}
		files = append(files, uploads.File{Name: filepath.Base(p), Size: info.Size(), Content: f})
	}
	defer func() {
		for _, f := range open {
			f.Close()
		}
	}()

	gw.OfferFiles(ctx, files)
	gw.Wait()

	NewDashboard(os.Stdout).RenderTasks(gw.Tasks())

	for _, t := range gw.Tasks() {
		if t.State == uploads.TaskFailed {
			return ExitCodeError
		}
	}
	return ExitCodeSuccess
}

func (a *App) runDataset(ctx context.Context, configID string) int {
	gw := uploads.NewGateway(a.gateway, uploads.GatewayOptions{
		DownloadsDir: a.config.DownloadsDir,
		Logger:       a.logger,
		Recorder:     a.journal,
	})
	if err := gw.TriggerDatasetUpload(ctx, configID); err != nil {
		fmt.Printf("Dataset upload failed: %v\n", err)
		return ExitCodeError
	}
	fmt.Printf("Dataset upload triggered for %s\n", configID)
	return ExitCodeSuccess
}

func (a *App) runDownload(ctx context.Context, configID string) int {
	path, err := a.gateway.DownloadArtifact(ctx, configID, a.config.DownloadsDir)
	if err != nil {
		fmt.Printf("Download failed: %v\n", err)
		return ExitCodeError
	}
	fmt.Printf("Downloaded %s\n", path)
	return ExitCodeSuccess
}

// runHistory prints the journal's recent activity.
func (a *App) runHistory() int {
	repo := a.journal.Repository()
	if repo == nil {
		fmt.Println("Activity journal is disabled")
		return ExitCodeError
	}

	if entries, err := repo.RecentWorkflow(20); err == nil && len(entries) > 0 {
		fmt.Println("Workflow:")
		for _, e := range entries {
			fmt.Printf("  %s  %-8s %-9s %s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Action, e.Outcome, e.Detail)
		}
	}
	if entries, err := repo.RecentUploads(20); err == nil && len(entries) > 0 {
		fmt.Println("Uploads:")
		for _, e := range entries {
			fmt.Printf("  %s  %-30s %-9s %s\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Filename, e.Outcome, e.Detail)
		}
	}
	if entries, err := repo.RecentSessions(20); err == nil && len(entries) > 0 {
		fmt.Println("Sessions:")
		for _, e := range entries {
			fmt.Printf("  %s  %-12s %s %s\n",
				e.ClosedAt.Local().Format("2006-01-02 15:04:05"), e.CloseReason, e.Endpoint, e.Error)
		}
	}
	return ExitCodeSuccess
}

// readLines pumps stdin lines into a channel so the monitor loop can select
// over input, pushes, and cancellation together.
func readLines(ctx context.Context) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case out <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func printMonitorHelp() {
	fmt.Println("Commands: [n]ext, [p]rev, page <n>, [l]ive (toggle), [q]uit")
}
