package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/signalsfoundry/globe-quiz/core"
	"github.com/signalsfoundry/globe-quiz/internal/api"
	"github.com/signalsfoundry/globe-quiz/internal/config"
	"github.com/signalsfoundry/globe-quiz/internal/globe"
	"github.com/signalsfoundry/globe-quiz/internal/logging"
	"github.com/signalsfoundry/globe-quiz/internal/observability"
	"github.com/signalsfoundry/globe-quiz/internal/quiz"
	"github.com/signalsfoundry/globe-quiz/internal/stream"
	"github.com/signalsfoundry/globe-quiz/kb"
	"github.com/signalsfoundry/globe-quiz/timectrl"
)

// streamMinInterval caps the WebSocket frame rate independently of the
// driver's frame interval.
const streamMinInterval = time.Second / 20

// quizSweepInterval is how often idle quiz sessions are collected.
const quizSweepInterval = time.Minute

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (empty uses built-in defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.NewFromEnv().Error(context.Background(), "failed to load config",
			logging.String("path", *configPath), logging.Err(err))
		os.Exit(1)
	}
	log := logging.New(cfg.Log)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error(context.Background(), "failed to listen for gRPC", logging.String("addr", cfg.GRPCAddr), logging.Err(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, lis); err != nil {
		log.Error(context.Background(), "globe server exited", logging.Err(err))
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then shuts every listener down.
func run(ctx context.Context, cfg config.Config, log logging.Logger, lis net.Listener) error {
	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewGlobeCollector(nil)
	if err != nil {
		return err
	}
	metricsSrv := serveMetrics(cfg.MetricsAddr, collector, log)

	catalog, err := loadCatalog(cfg.CatalogPath, log)
	if err != nil {
		return err
	}
	collector.SetCatalogSize(catalog.Len())
	unsubscribe := catalog.Subscribe(func(kb.Event) { collector.SetCatalogSize(catalog.Len()) })
	defer unsubscribe()

	clock := timectrl.NewTimeController(time.Now().UTC(), cfg.FrameInterval, timectrl.RealTime)
	initial := core.RotationState{AxisTilt: cfg.AxisTilt()}
	driver := globe.NewDriver(catalog,
		globe.WithProjector(core.NewProjector(core.WithCamera(cfg.Camera.Core()))),
		globe.WithClock(clock),
		globe.WithLogger(log),
		globe.WithMetricsRecorder(collector),
		globe.WithSettleDelay(cfg.SettleDelay),
		globe.WithSpinRate(cfg.SpinRate),
		globe.WithTransitionRate(cfg.TransitionRate),
		globe.WithRotation(initial),
	)
	defer driver.Close()
	clock.AddListener(func(now time.Time) { driver.Tick(now) })

	hub := stream.NewHub(
		stream.WithLogger(log),
		stream.WithClientRecorder(collector),
		stream.WithMinInterval(streamMinInterval),
	)
	unsubscribeFrames := driver.Subscribe(hub.Publish)
	defer unsubscribeFrames()
	streamSrv := serveStream(cfg.StreamAddr, hub, log)

	quizzes := quiz.NewManager(catalog,
		quiz.WithRecorder(collector),
		quiz.WithClock(clock),
		quiz.WithIdleTimeout(cfg.QuizIdleTimeout),
	)
	lastSweep := clock.Now()
	clock.AddListener(func(now time.Time) {
		if now.Sub(lastSweep) < quizSweepInterval {
			return
		}
		lastSweep = now
		if n := quizzes.Expire(now); n > 0 {
			log.Debug(ctx, "expired idle quiz sessions", logging.Int("count", n), logging.Int("live", quizzes.Len()))
		}
	})

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			api.RequestIDUnaryServerInterceptor(log),
			api.TracingUnaryServerInterceptor(),
			collector.UnaryServerInterceptor(),
		),
	)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(server, healthSrv)
	api.RegisterGlobeServiceServer(server, api.NewGlobeService(catalog, driver, quizzes, log,
		api.WithSpinDuration(cfg.SpinDuration),
	))
	healthSrv.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)

	stopClock := make(chan struct{})
	clockDone := clock.StartUntil(0, stopClock)
	if cfg.SpinDuration > 0 {
		driver.Spin(cfg.SpinDuration)
	}

	serveErr := make(chan error, 1)
	log.Info(ctx, "starting globe gRPC server",
		logging.String("addr", lis.Addr().String()),
		logging.Int("countries", catalog.Len()),
	)
	go func() {
		serveErr <- server.Serve(lis)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			runErr = err
		}
	}

	log.Info(context.Background(), "shutting down globe server")
	healthSrv.Shutdown()
	server.GracefulStop()
	close(stopClock)
	<-clockDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range []*http.Server{metricsSrv, streamSrv} {
		if srv != nil {
			_ = srv.Shutdown(shutdownCtx)
		}
	}
	return runErr
}

func loadCatalog(path string, log logging.Logger) (*kb.Catalog, error) {
	if path == "" {
		return kb.NewDefaultCatalog(), nil
	}
	catalog := kb.NewCatalog()
	summary, err := kb.OpenCatalogFile(catalog, path)
	if err != nil {
		return nil, err
	}
	log.Info(context.Background(), "loaded country catalog",
		logging.String("path", path),
		logging.Int("count", len(summary.CountryIDs)),
	)
	return catalog, nil
}

func serveMetrics(addr string, collector *observability.GlobeCollector, log logging.Logger) *http.Server {
	if collector == nil || addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	return serveHTTP("metrics", addr, mux, log)
}

func serveStream(addr string, hub *stream.Hub, log logging.Logger) *http.Server {
	if hub == nil || addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler())
	return serveHTTP("stream", addr, mux, log)
}

func serveHTTP(name, addr string, handler http.Handler, log logging.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(context.Background(), name+" server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving "+name, logging.String("addr", addr))
	return srv
}
