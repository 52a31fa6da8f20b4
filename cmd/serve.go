package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/relview/internal/server"
)

var (
	servePort int
	serveOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve <source> <relations>",
	Short: "Preview a rendered document in the browser",
	Long: `Renders the document once and serves it on a local port, together with
the canonical relations as JSON at /relations.json.`,
	Args: cobra.ExactArgs(2),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the browser once the server is up")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}
	page, err := p.render(args[0], args[1], args[0])
	p.Close()
	if err != nil {
		return err
	}

	port := cfg.Serve.Port
	if servePort != 0 {
		port = servePort
	}

	srv := server.New(server.Config{
		Port:     port,
		AllowAll: cfg.Serve.AllowAllOrigins,
	}, server.Page{
		Filename:  page.Filename,
		Document:  page.Document,
		Relations: page.Relations,
		Stats:     page.Stats,
		Digest:    page.Digest,
	}, logger)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down preview server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "relview %s serving %s at %s\n", Version, page.Filename, srv.URL())
	if serveOpen || cfg.Serve.Open {
		server.OpenBrowser(srv.URL())
	}

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("preview server: %w", err)
	}
	return nil
}
