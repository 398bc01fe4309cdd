// Command bimgeo builds spatial indexes and LOD meshes from extractor
// output.
//
//	bimgeo build elements.json   index, generate LODs, report clashes
//	bimgeo clashes index.bgix    report clashes of a saved index
//	bimgeo clashes current       same, for the snapshot published to BIMGEO_STORE
//	bimgeo lod 42.5              print the tier selected for a viewing distance
//
// Configuration is read from BIMGEO_* environment variables; see Config.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/bimgeo"
	"github.com/hupe1980/bimgeo/blobstore"
	miniostore "github.com/hupe1980/bimgeo/blobstore/minio"
	s3store "github.com/hupe1980/bimgeo/blobstore/s3"
	"github.com/hupe1980/bimgeo/codec"
	"github.com/hupe1980/bimgeo/lod"
	"github.com/hupe1980/bimgeo/metrics/prom"
	"github.com/hupe1980/bimgeo/model"
	"github.com/hupe1980/bimgeo/spatial"
)

// ErrUsage is returned for malformed command lines.
var ErrUsage = errors.New("usage: bimgeo [-env file] build <elements.json> | clashes <snapshot|current> | lod <distance>")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "bimgeo:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("bimgeo", flag.ContinueOnError)
	envFile := fs.String("env", ".env", "dotenv file loaded before reading BIMGEO_* variables")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return ErrUsage
	}
	cmd, arg := fs.Arg(0), fs.Arg(1)

	if cmd == "lod" {
		return runLOD(arg, stdout)
	}

	cfg, err := LoadConfig(*envFile)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	switch cmd {
	case "build":
		return runBuild(ctx, cfg, logger, arg, stdout)
	case "clashes":
		return runClashes(ctx, cfg, logger, arg, stdout)
	default:
		return ErrUsage
	}
}

func newLogger(cfg *Config) *bimgeo.Logger {
	level, _ := parseLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		return bimgeo.NewJSONLogger(level)
	}
	return bimgeo.NewTextLogger(level)
}

func runLOD(arg string, stdout io.Writer) error {
	d, err := strconv.ParseFloat(arg, 64)
	if err != nil || d < 0 {
		return fmt.Errorf("%w: distance must be a non-negative number", ErrUsage)
	}
	_, err = fmt.Fprintln(stdout, lod.SelectTierForDistance(d, nil))
	return err
}

func metricsCollector(cfg *Config, logger *bimgeo.Logger) (bimgeo.MetricsCollector, error) {
	if cfg.MetricsAddr == "" {
		return &bimgeo.BasicMetricsCollector{}, nil
	}
	c, err := prom.New(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	return c, nil
}

func runBuild(ctx context.Context, cfg *Config, logger *bimgeo.Logger, path string, stdout io.Writer) error {
	c, _ := codec.ByName(cfg.Codec)
	comp, _ := spatial.ParseCompression(cfg.Compression)
	tiers, _ := cfg.LODTiers()

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	elements, err := model.DecodeElements(f, c)
	f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	mc, err := metricsCollector(cfg, logger)
	if err != nil {
		return err
	}

	p, err := bimgeo.New(
		bimgeo.WithLogger(logger),
		bimgeo.WithMetricsCollector(mc),
		bimgeo.WithTiers(tiers...),
		bimgeo.WithClashTolerance(cfg.ClashTolerance),
		bimgeo.WithIndexOptions(spatial.WithCodec(c), spatial.WithCompression(comp)),
		bimgeo.WithLODOptions(lod.WithWorkers(cfg.Workers), lod.WithCache(lod.NewCache(cfg.CacheSize))),
	)
	if err != nil {
		return err
	}

	res, err := p.Build(ctx, elements)
	if err != nil {
		return err
	}

	indexPath := filepath.Join(cfg.OutputDir, "index"+spatial.SnapshotExt)
	if err := res.Index.Save(indexPath); err != nil {
		return err
	}

	var exported int
	if cfg.ExportSTL {
		dir := filepath.Join(cfg.OutputDir, "lod")
		for _, elod := range res.LODs.Elements {
			files, err := lod.ExportSTL(dir, elod)
			if err != nil {
				return err
			}
			exported += len(files)
		}
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	var published string
	if store != nil {
		if published, err = res.Publish(ctx, store); err != nil {
			return err
		}
	}

	r := res.Report
	fmt.Fprintf(stdout, "run        %s\n", r.RunID)
	fmt.Fprintf(stdout, "elements   %d\n", r.Elements)
	fmt.Fprintf(stdout, "indexed    %d (%d failed)\n", r.Indexed, len(r.IndexFailed))
	fmt.Fprintf(stdout, "lod        %d (%d failed)\n", r.Generated, len(r.LODFailed))
	fmt.Fprintf(stdout, "index      %s\n", indexPath)
	if cfg.ExportSTL {
		fmt.Fprintf(stdout, "stl files  %d\n", exported)
	}
	if published != "" {
		fmt.Fprintf(stdout, "published  %s\n", published)
	}
	fmt.Fprintf(stdout, "duration   %s\n\n", r.Duration.Round(time.Millisecond))
	return printClashes(stdout, r.Clashes)
}

func runClashes(ctx context.Context, cfg *Config, logger *bimgeo.Logger, arg string, stdout io.Writer) error {
	opts := []spatial.Option{spatial.WithLogger(logger.Logger)}

	var (
		ix  *spatial.Index
		err error
	)
	if arg == "current" {
		store, serr := openStore(ctx, cfg)
		if serr != nil {
			return serr
		}
		if store == nil {
			return fmt.Errorf("%w: 'current' needs BIMGEO_STORE", ErrUsage)
		}
		ix, err = bimgeo.LoadIndex(ctx, store, opts...)
	} else {
		ix, err = spatial.Load(arg, opts...)
	}
	if err != nil {
		return err
	}

	clashes, err := ix.FindClashes(ctx, cfg.ClashTolerance,
		spatial.WithProgress(func(done, total int) {
			logger.Debug("clash scan progress", slog.Int("done", done), slog.Int("total", total))
		}),
	)
	if err != nil {
		return err
	}
	return printClashes(stdout, clashes)
}

func printClashes(w io.Writer, clashes []spatial.Clash) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "A\tTYPE\tB\tTYPE\tOVERLAP m3\n")
	for _, c := range clashes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.6f\n", c.A.ID, c.A.ElementType, c.B.ID, c.B.ElementType, c.OverlapVolume)
	}
	fmt.Fprintf(tw, "\n%d clashes\n", len(clashes))
	return tw.Flush()
}

func openStore(ctx context.Context, cfg *Config) (blobstore.Store, error) {
	switch cfg.Store {
	case "":
		return nil, nil
	case "local":
		return blobstore.NewLocalStore(filepath.Join(cfg.OutputDir, "store")), nil
	case "s3":
		st, err := s3store.NewFromConfig(ctx, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		if cfg.CommitTable == "" {
			return st, nil
		}
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		return s3store.NewDDBCommitStore(st, dynamodb.NewFromConfig(awsCfg), cfg.CommitTable, st.URI()), nil
	case "minio":
		st, err := miniostore.Dial(miniostore.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Secure:    cfg.MinioSecure,
		}, cfg.Bucket, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		if err := st.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, ErrInvalidStore
	}
}
