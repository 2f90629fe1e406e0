package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gorustyt/gonmgen/debug_utils"
	"github.com/gorustyt/gonmgen/mesh"
	"github.com/gorustyt/gonmgen/recast"
	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg := recast.DefaultConfig()
	var (
		configPath = flag.String("config", "", "yaml config file")
		meshSrc    = flag.String("mesh", "", "obj file path or go-getter source")
		outDir     = flag.String("out", ".", "output directory of the obj dumps")
		logPath    = flag.String("log", "", "json log file, rotated")
		scale      = flag.Float64("scale", 1, "input mesh scale")
	)
	flag.Float64Var(&cfg.CellSize, "cell_size", cfg.CellSize, "xz voxel size")
	flag.Float64Var(&cfg.CellHeight, "cell_height", cfg.CellHeight, "y voxel size")
	flag.Float64Var(&cfg.MinTraversableHeight, "min_traversable_height", cfg.MinTraversableHeight, "minimum floor to ceiling height")
	flag.Float64Var(&cfg.MaxTraversableStep, "max_traversable_step", cfg.MaxTraversableStep, "maximum ledge height that is still traversable")
	flag.Float64Var(&cfg.MaxTraversableSlope, "max_traversable_slope", cfg.MaxTraversableSlope, "maximum walkable slope in degrees")
	flag.BoolVar(&cfg.ClipLedges, "clip_ledges", cfg.ClipLedges, "mark ledge spans unwalkable")
	flag.Float64Var(&cfg.TraversableAreaBorderSize, "traversable_area_border_size", cfg.TraversableAreaBorderSize, "distance kept from obstructions")
	flag.IntVar(&cfg.SmoothingThreshold, "smoothing_threshold", cfg.SmoothingThreshold, "distance field blur threshold")
	flag.BoolVar(&cfg.UseConservativeExpansion, "use_conservative_expansion", cfg.UseConservativeExpansion, "avoid regions wrapping around obstacles")
	flag.IntVar(&cfg.MinUnconnectedRegionSize, "min_unconnected_region_size", cfg.MinUnconnectedRegionSize, "isolated regions smaller than this are removed")
	flag.IntVar(&cfg.MergeRegionSize, "merge_region_size", cfg.MergeRegionSize, "regions smaller than this are merged into neighbors")
	flag.Float64Var(&cfg.MaxEdgeLength, "max_edge_length", cfg.MaxEdgeLength, "maximum border edge length")
	flag.Float64Var(&cfg.EdgeMaxDeviation, "edge_max_deviation", cfg.EdgeMaxDeviation, "maximum border edge deviation")
	flag.IntVar(&cfg.MaxVertsPerPoly, "max_verts_per_poly", cfg.MaxVertsPerPoly, "maximum vertices per polygon")
	flag.Float64Var(&cfg.ContourSampleDistance, "contour_sample_distance", cfg.ContourSampleDistance, "detail mesh sample distance")
	flag.Float64Var(&cfg.ContourMaxDeviation, "contour_max_deviation", cfg.ContourMaxDeviation, "detail mesh maximum height deviation")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	logger := newLogger(*logPath)
	defer logger.Sync()
	log := logger.Sugar()

	if *meshSrc == "" {
		log.Error("-mesh is required")
		os.Exit(2)
	}
	if *configPath != "" {
		fromFile, err := loadConfigFile(*configPath)
		if err != nil {
			log.Errorw("load config", "error", err)
			os.Exit(1)
		}
		cfg.Merge(fromFile, explicit)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, *meshSrc, *outDir, *scale, log); err != nil {
		log.Errorw("generate navmesh", "error", err)
		os.Exit(1)
	}
}

func newLogger(logPath string) *zap.Logger {
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		zap.InfoLevel,
	)
	if logPath == "" {
		return zap.New(consoleCore)
	}
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}),
		zap.DebugLevel,
	)
	return zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller())
}

func loadConfigFile(p string) (*recast.Config, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	cfg, err := recast.LoadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *recast.Config, meshSrc, outDir string, scale float64, log *zap.SugaredLogger) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	src, err := mesh.Fetch(ctx, meshSrc, filepath.Join(outDir, "input"))
	if err != nil {
		return err
	}
	input, err := loadMesh(src, scale)
	if err != nil {
		return err
	}
	log.Infof("[nmgen][run] loaded %s: %d verts, %d tris", input.Name, input.VertCount(), input.TriCount())

	generator, err := recast.NewNavmeshGenerator(cfg, log)
	if err != nil {
		return err
	}
	data := recast.NewIntermediateData()
	result, err := generator.Build(input.Vertices, input.Indices, data)
	if err != nil {
		return err
	}
	debug_utils.LogBuildTimes(log, data)

	dumps := []struct {
		name string
		dump func(io.Writer) error
	}{
		{"polymesh.obj", func(w io.Writer) error { return debug_utils.DumpPolyMeshToObj(data.PolyMesh(), w) }},
		{"detail.obj", func(w io.Writer) error { return debug_utils.DumpTriangleMeshToObj(result, w) }},
		{"contours.obj", func(w io.Writer) error { return debug_utils.DumpContourSetToObj(data.Contours(), w) }},
	}
	for _, d := range dumps {
		if err := writeFile(filepath.Join(outDir, d.name), d.dump); err != nil {
			return err
		}
	}
	log.Infof("[nmgen][run] wrote %d triangles to %s", result.TriangleCount(), outDir)
	return nil
}

func loadMesh(p string, scale float64) (*mesh.ObjMesh, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("load obj %s: %w", p, err)
	}
	defer f.Close()
	m := mesh.NewObjMesh()
	m.SetScale(scale)
	if err := m.Load(f); err != nil {
		return nil, fmt.Errorf("load obj %s: %w", p, err)
	}
	m.Name = filepath.Base(p)
	return m, nil
}

func writeFile(p string, dump func(io.Writer) error) (err error) {
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return dump(f)
}
