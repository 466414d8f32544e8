package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/haloguard/haloguard-cli/internal/adapters/media"
	"github.com/haloguard/haloguard-cli/internal/adapters/metrics"
	"github.com/haloguard/haloguard-cli/internal/adapters/render/report"
	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/spf13/cobra"
)

const metricsShutdownTimeout = 2 * time.Second

type streamOptions struct {
	framesDir     string
	duration      time.Duration
	asJSON        bool
	metricsListen string
}

func newStreamCmd(app *app) *cobra.Command {
	var opts streamOptions

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream frames to the live detector and print results as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStream(cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.framesDir, "frames", "", "Directory of JPEG/PNG/WebP stills replayed as the live feed")
	cmd.Flags().DurationVar(&opts.duration, "duration", 0, "Stop after this long (default: until interrupted)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print one JSON result per line")
	cmd.Flags().StringVar(&opts.metricsListen, "metrics-listen", "", "Serve Prometheus metrics on this address while streaming")
	_ = cmd.MarkFlagRequired("frames")

	return cmd
}

func runStream(cmd *cobra.Command, app *app, opts streamOptions) error {
	source, err := media.NewDirectorySource(opts.framesDir, media.WithMaxWidth(app.config.Stream.MaxWidth))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	if opts.metricsListen != "" {
		shutdown, err := serveMetrics(app, opts.metricsListen)
		if err != nil {
			_ = source.Close()
			return err
		}
		defer shutdown()
	}

	app.session.Restore(ctx)

	handle, err := app.stream.Open(ctx, source, resultPrinter(cmd.OutOrStdout(), opts.asJSON))
	if err != nil {
		return err
	}

	<-handle.Done()
	closeErr := handle.Close()
	if streamErr := handle.Err(); streamErr != nil {
		if errors.Is(streamErr, domain.ErrStreamClosedByPeer) {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "stream closed by server")
			return nil
		}
		return errors.Join(fmt.Errorf("stream ended: %w", streamErr), closeErr)
	}

	return closeErr
}

// resultPrinter serializes writes; results arrive on the receiver goroutine.
func resultPrinter(out io.Writer, asJSON bool) func(domain.DetectionResult) {
	var mu sync.Mutex
	enc := json.NewEncoder(out)

	return func(result domain.DetectionResult) {
		mu.Lock()
		defer mu.Unlock()

		if asJSON {
			_ = enc.Encode(result)
			return
		}
		_, _ = fmt.Fprintln(out, report.StreamLine(result))
	}
}

func serveMetrics(app *app, addr string) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen for metrics on %s: %w", addr, err)
	}

	server := &http.Server{
		Handler:           metrics.Handler(app.registry),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("metrics server stopped", slog.Any("err", err))
		}
	}()
	app.logger.Info("serving metrics", slog.String("addr", listener.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}
