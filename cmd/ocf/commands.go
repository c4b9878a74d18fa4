package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/ocf/internal/export"
	"github.com/ajitpratap0/ocf/pkg/beans"
	"github.com/ajitpratap0/ocf/pkg/compression"
	"github.com/ajitpratap0/ocf/pkg/connectedasset"
	jsonpool "github.com/ajitpratap0/ocf/pkg/json"
	"github.com/ajitpratap0/ocf/pkg/metrics"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
	"github.com/ajitpratap0/ocf/pkg/propertyserver"
	"github.com/ajitpratap0/ocf/pkg/propertyserver/rest"
	"github.com/ajitpratap0/ocf/pkg/sink"
)

// withApp runs fn with an app built from the command's configuration.
func withApp(cmd *cobra.Command, v *viper.Viper, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, v)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))
	return fn(ctx, a)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ocf v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newBackendsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the available property server backends",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			for _, info := range propertyserver.List() {
				fmt.Fprintf(out, "%-10s %s [%s]\n", info.Name, info.Description, strings.Join(info.Capabilities, ", "))
			}
		},
	}
}

func newAssetCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "asset <guid>",
		Short: "Show an asset and the size of each collection attached to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				ca, err := a.connect(ctx, args[0])
				if err != nil {
					return err
				}
				counts, err := ca.Counts(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				enc := jsonpool.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(ca.Asset().Bean()); err != nil {
					return err
				}

				kinds := make([]string, 0, len(counts))
				for k := range counts {
					kinds = append(kinds, string(k))
				}
				sort.Strings(kinds)
				for _, k := range kinds {
					fmt.Fprintf(out, "%-26s %d\n", k, counts[beans.Kind(k)])
				}
				return nil
			})
		},
	}
}

func newBrowseCommand(v *viper.Viper) *cobra.Command {
	var limit int
	var owner string

	cmd := &cobra.Command{
		Use:   "browse <guid> <kind>",
		Short: "Page through one collection of an asset, one JSON line per element",
		Long: `Page through one collection of an asset. Kinds are listed by 'ocf asset'.
Comment replies and notes belong to a comment or note log; name it with --owner.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := beans.ParseKind(args[1])
			if !ok {
				return ocferrors.New(ocferrors.ErrorTypeInvalidParameter, "unknown kind").WithDetail("kind", args[1])
			}
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				ca, err := a.connect(ctx, args[0])
				if err != nil {
					return err
				}
				it, err := openKind(ctx, ca, kind, owner)
				if err != nil {
					return err
				}
				return browse(ctx, cmd.OutOrStdout(), it, limit)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many elements (0 = all)")
	cmd.Flags().StringVar(&owner, "owner", "", "GUID of the comment or note log for comment_replies and notes")
	return cmd
}

func openKind(ctx context.Context, ca *connectedasset.ConnectedAsset, kind beans.Kind, owner string) (connectedasset.Elements, error) {
	switch kind {
	case beans.KindCommentReplies:
		return ca.OpenChildren(ctx, kind, &beans.Comment{ElementHeader: beans.ElementHeader{GUID: owner}})
	case beans.KindNotes:
		return ca.OpenChildren(ctx, kind, &beans.NoteLog{ElementHeader: beans.ElementHeader{GUID: owner}})
	}
	return ca.Open(ctx, kind)
}

func browse(ctx context.Context, out io.Writer, it connectedasset.Elements, limit int) error {
	enc := jsonpool.NewEncoder(out)
	for n := 0; it.HasNext() && (limit <= 0 || n < limit); n++ {
		element, err := it.NextElement(ctx)
		if err != nil {
			return err
		}
		if err := enc.Encode(element); err != nil {
			return err
		}
	}
	return nil
}

func newExportCommand(v *viper.Viper) *cobra.Command {
	var kinds []string
	var noChildren bool

	cmd := &cobra.Command{
		Use:   "export <guid>",
		Short: "Write an asset and its elements as JSON lines to a file, S3 or GCS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := parseKinds(kinds)
			if err != nil {
				return err
			}
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				ca, err := a.connect(ctx, args[0])
				if err != nil {
					return err
				}
				alg, err := compression.ParseAlgorithm(a.cfg.Export.Compression)
				if err != nil {
					return err
				}
				s, err := sink.New(ctx, a.cfg.Export, a.log)
				if err != nil {
					return err
				}
				defer s.Close()

				opts := []export.Option{
					export.WithCompression(alg, compression.Default),
					export.WithLogger(a.log),
					export.WithMetrics(metrics.NewExportMetrics(a.registry)),
				}
				if noChildren {
					opts = append(opts, export.WithoutChildren())
				}
				summary, err := export.New(s, opts...).Export(ctx, ca, selected)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d elements (%d bytes) to %s in %s\n",
					summary.Total(), summary.Bytes, summary.URI, summary.Duration.Round(time.Millisecond))
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&kinds, "kinds", nil, "Kinds to export (default all)")
	f.BoolVar(&noChildren, "no-children", false, "Skip comment replies and notes")
	f.String("sink", "", "Export sink (file, s3, gcs)")
	f.String("path", "", "Output directory of the file sink")
	f.String("bucket", "", "Bucket of the s3 and gcs sinks")
	f.String("prefix", "", "Prefix of every object name")
	f.String("region", "", "AWS region of the s3 sink")
	f.String("endpoint", "", "S3 endpoint override, e.g. MinIO")
	f.String("compression", "", "Compression (none, gzip, zstd, s2, lz4, snappy, deflate)")
	_ = v.BindPFlags(f)
	return cmd
}

func parseKinds(names []string) ([]beans.Kind, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]beans.Kind, 0, len(names))
	for _, n := range names {
		k, ok := beans.ParseKind(n)
		if !ok {
			return nil, ocferrors.New(ocferrors.ErrorTypeInvalidParameter, "unknown kind").WithDetail("kind", n)
		}
		out = append(out, k)
	}
	return out, nil
}

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured backend over HTTP, with Prometheus metrics on /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, v, func(ctx context.Context, a *app) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				return serve(ctx, a)
			})
		},
	}
	cmd.Flags().String("listen", "", "Listen address (default observability.metrics_address)")
	_ = v.BindPFlags(cmd.Flags())
	return cmd
}

func newServeMux(a *app) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))
	mux.Handle("/", rest.NewHandler(a.server, a.log))
	return mux
}

func serve(ctx context.Context, a *app) error {
	srv := &http.Server{
		Addr:              a.cfg.Observability.MetricsAddress,
		Handler:           newServeMux(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("serving property server", zap.String("address", srv.Addr),
			zap.String("backend", a.cfg.PropertyServer.Type))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "server failed").
			WithDetail("address", srv.Addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	a.log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
