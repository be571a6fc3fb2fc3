package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kartoza/boolnet-studio/internal/config"
	"github.com/kartoza/boolnet-studio/internal/export"
	"github.com/kartoza/boolnet-studio/internal/server"
	webview "github.com/webview/webview_go"
	"k8s.io/klog/v2"
)

var version = "dev"

func main() {
	klog.InitFlags(nil)

	// Parse command-line flags
	port := flag.Int("port", 8080, "HTTP server port")
	trainURL := flag.String("train-url", "", "Training service endpoint (default: saved setting or "+config.DefaultTrainURL+")")
	trainTimeout := flag.Duration("train-timeout", 0, "Give up on a training request after this long (0 waits indefinitely)")
	saveSettings := flag.Bool("save-settings", false, "Remember -train-url for later runs")
	headless := flag.Bool("headless", false, "Run in headless mode (no GUI window)")
	exportFile := flag.String("export", "", "Train the default configuration once, write the plot to this HTML file and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()
	defer klog.Flush()

	if *showVersion {
		fmt.Printf("BoolNet Studio v%s\n", version)
		os.Exit(0)
	}

	// Resolve the training endpoint:
	// 1. Explicit flag takes priority
	// 2. Otherwise, the saved setting
	// 3. Fall back to the local default
	resolvedTrainURL := *trainURL
	if resolvedTrainURL == "" {
		settings, err := config.LoadSettings()
		if err != nil {
			klog.Warningf("Could not load settings: %v", err)
		} else if settings.TrainURL != "" {
			resolvedTrainURL = settings.TrainURL
			klog.Infof("Using saved training endpoint: %s", resolvedTrainURL)
		}
	}
	if resolvedTrainURL == "" {
		resolvedTrainURL = config.DefaultTrainURL
	}

	if *saveSettings {
		if err := config.SaveSettings(config.Settings{TrainURL: resolvedTrainURL}); err != nil {
			klog.Warningf("Could not save settings: %v", err)
		}
	}

	cfg := config.Config{
		Port:         *port,
		TrainURL:     resolvedTrainURL,
		TrainTimeout: *trainTimeout,
		Version:      version,
	}

	if *exportFile != "" {
		if err := export.Run(os.Stdout, os.Stderr, cfg, *exportFile); err != nil {
			klog.Errorf("Export failed: %+v", err)
			klog.Flush()
			os.Exit(1)
		}
		return
	}

	// Find an available port (try up to 10 ports starting from the requested one)
	availablePort, err := findAvailablePort(*port, 10)
	if err != nil {
		klog.Fatalf("Failed to find available port: %v", err)
	}
	if availablePort != *port {
		klog.Infof("Port %d in use, using port %d instead", *port, availablePort)
	}
	cfg.Port = availablePort

	klog.Infof("BoolNet Studio v%s starting on port %d", version, cfg.Port)
	klog.Infof("Training endpoint: %s", cfg.TrainURL)

	// Create and start the server
	srv, err := server.New(cfg)
	if err != nil {
		klog.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Wait for server to be ready
	serverURL := fmt.Sprintf("http://localhost:%d", cfg.Port)
	waitForServer(serverURL, 10*time.Second)

	if *headless {
		// Headless mode: wait for signal or error
		select {
		case err := <-errCh:
			if err != nil {
				klog.Fatalf("Server error: %v", err)
			}
		case sig := <-stop:
			klog.Infof("Received %v signal, shutting down...", sig)
			if err := srv.Stop(); err != nil {
				klog.Errorf("Error during shutdown: %v", err)
			}
		}
		return
	}

	// GUI mode: open embedded WebView window
	klog.Infof("Opening application window...")
	w := webview.New(false)
	defer w.Destroy()

	w.SetTitle("BoolNet Studio")
	w.SetSize(1280, 800, webview.HintNone)
	w.Navigate(serverURL)

	// When the webview window closes, shut down the server
	go func() {
		select {
		case err := <-errCh:
			if err != nil {
				klog.Errorf("Server error: %v", err)
			}
		case sig := <-stop:
			klog.Infof("Received %v signal, shutting down...", sig)
			w.Terminate()
		}
	}()

	// Run blocks until the window is closed
	w.Run()

	klog.Infof("Window closed, shutting down server...")
	if err := srv.Stop(); err != nil {
		klog.Errorf("Error during shutdown: %v", err)
	}
}

// waitForServer polls until the server is accepting connections
func waitForServer(url string, timeout time.Duration) {
	addr := url[len("http://"):]
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	klog.Warningf("Server may not be ready at %s", url)
}

// findAvailablePort finds an available port, starting from the given port.
// If the port is in use, it tries subsequent ports up to maxAttempts times.
func findAvailablePort(startPort int, maxAttempts int) (int, error) {
	for i := 0; i < maxAttempts; i++ {
		port := startPort + i
		addr := fmt.Sprintf(":%d", port)
		listener, err := net.Listen("tcp", addr)
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port found after %d attempts starting from %d", maxAttempts, startPort)
}
