package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-ticker/internal/clock"
	"stock-ticker/internal/config"
	"stock-ticker/internal/datafeed"
	"stock-ticker/internal/display"
	grpchandlers "stock-ticker/internal/grpc"
	"stock-ticker/internal/mirror"
	"stock-ticker/internal/pubsub"
	"stock-ticker/internal/quotes"
	"stock-ticker/internal/scroll"
	"stock-ticker/internal/ticker"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

const (
	loopInterval   = 5 * time.Millisecond
	requestTimeout = 10 * time.Second
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the ticker settings file")
	demo := flag.Bool("demo", false, "serve simulated quotes instead of calling Alpaca Markets")
	logFile := flag.String("log", "", "write logs to this file instead of stderr")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, loadErr := config.Load(*configPath, zap.NewNop())
	if loadErr != nil && !errors.Is(loadErr, fs.ErrNotExist) {
		zap.NewExample().Fatal("failed to load settings", zap.Error(loadErr))
	}

	logger, err := newLogger(cfg.Env, *logFile)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer logger.Sync()

	if loadErr != nil {
		logger.Warn("settings file not found, writing defaults", zap.String("path", *configPath))
		if err := config.WriteDefaults(*configPath); err != nil {
			logger.Fatal("failed to write default settings", zap.Error(err))
		}
	}
	if *demo && cfg.APIKeyID == "" && cfg.APISecretKey == "" {
		cfg.APIKeyID, cfg.APISecretKey = "demo", "demo"
	}

	modules, brightness, spacing := cfg.Panel()
	term := display.NewTerminal(modules, os.Stdout)
	term.SetIntensity(brightness)
	clk := clock.NewMonotonic()
	scrollPeriod := cfg.ScrollInterval()
	if scrollPeriod <= 0 {
		scrollPeriod = config.DefaultScrollPeriod * time.Millisecond
	}
	scroller := scroll.NewEngine(term, clk, scrollPeriod, spacing, logger.Named("scroll"))

	settingsChan := make(chan *config.Config, 1)
	config.Watch(*configPath, logger.Named("config"), func(next *config.Config, err error) {
		if err != nil {
			logger.Warn("ignoring invalid settings", zap.Error(err), zap.String("hint", config.Hint(err)))
			return
		}
		select {
		case <-settingsChan:
		default:
		}
		settingsChan <- next
	})

	if err := cfg.Validate(); err != nil {
		logger.Warn("settings need attention", zap.Error(err))
		var ok bool
		if cfg, ok = waitForSettings(ctx, scroller, config.Hint(err), settingsChan); !ok {
			return
		}
		applyPanel(term, scroller, cfg)
	}

	baseURL := cfg.BaseURL
	link := quotes.InterfaceUp
	if *demo {
		feedURL, err := startDemoFeed(logger.Named("datafeed"))
		if err != nil {
			logger.Fatal("failed to start demo feed", zap.Error(err))
		}
		baseURL = feedURL
		link = func() bool { return true }
	}
	network := quotes.NewHTTPNetwork(requestTimeout, link)

	quoteEngine := quotes.NewEngine(network, clk, baseURL, logger.Named("quotes"))
	quoteEngine.Configure(quoteSettings(cfg))

	broker := pubsub.NewBroker()
	if err := broker.Start(ctx); err != nil {
		logger.Fatal("failed to start broker", zap.Error(err))
	}

	tk := ticker.New(quoteEngine, scroller, term, network, broker, logger.Named("ticker"))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case next := <-settingsChan:
				if !tk.Reconfigure(ticker.Settings{
					Quotes:       quoteSettings(next),
					ScrollPeriod: next.ScrollInterval(),
					Panel: &ticker.PanelSettings{
						Modules:    next.DisplayModules,
						Brightness: next.DisplayBrightness,
						Spacing:    next.InterCharSpacing,
					},
				}) {
					logger.Warn("settings change dropped, save the file again to retry")
				}
			}
		}
	}()

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	grpcServer := grpc.NewServer()
	grpchandlers.RegisterTickerServiceServer(grpcServer, grpchandlers.NewTickerServer(broker, tk, logger.Named("grpc")))
	reflection.Register(grpcServer)

	go func() {
		logger.Info("gRPC server starting", zap.String("addr", lis.Addr().String()))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server stopped", zap.Error(err))
		}
	}()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mirror.NewMux(broker, logger.Named("mirror")),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("mirror server starting", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("mirror server stopped", zap.Error(err))
		}
	}()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, pingCancel := context.WithTimeout(ctx, 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis not reachable yet, mirroring anyway", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		pingCancel()
		go mirror.NewRedisPublisher(rdb, logger.Named("redis")).Run(ctx, broker)
	}

	go func() {
		if err := tk.Run(ctx, loopInterval); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("ticker loop stopped", zap.Error(err))
		}
	}()

	logger.Info("ticker started",
		zap.String("symbols", cfg.Symbols),
		zap.String("feed", cfg.SourceFeed),
		zap.Bool("demo", *demo))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	grpcServer.GracefulStop()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("mirror server shutdown", zap.Error(err))
	}
	broker.Stop()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("ticker stopped")
}

func newLogger(env, path string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if env == "dev" {
		zcfg = zap.NewDevelopmentConfig()
	}
	if path != "" {
		zcfg.OutputPaths = []string{path}
		zcfg.ErrorOutputPaths = []string{path}
	}
	return zcfg.Build()
}

func quoteSettings(cfg *config.Config) quotes.Settings {
	return quotes.Settings{
		APIKeyID:      cfg.APIKeyID,
		APISecretKey:  cfg.APISecretKey,
		Symbols:       cfg.Symbols,
		Feed:          cfg.SourceFeed,
		RequestPeriod: cfg.RequestInterval(),
		MaxIDLen:      quotes.DefaultMaxIDLen,
		MaxSymbols:    config.MaxSymbols,
	}
}

// applyPanel brings the display in line with settings accepted after startup.
func applyPanel(term *display.Terminal, scroller *scroll.Engine, cfg *config.Config) {
	term.Resize(cfg.DisplayModules)
	term.SetIntensity(cfg.DisplayBrightness)
	scroller.SetPeriod(cfg.ScrollInterval())
	scroller.SetSpacing(cfg.InterCharSpacing)
}

// waitForSettings scrolls hint until a valid settings file is saved.
func waitForSettings(ctx context.Context, scroller *scroll.Engine, hint string, settings <-chan *config.Config) (*config.Config, bool) {
	scroller.SetText(hint, true)

	t := time.NewTicker(loopInterval)
	defer t.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-ctx.Done():
			return nil, false
		case <-sigChan:
			return nil, false
		case cfg := <-settings:
			return cfg, true
		case <-t.C:
			scroller.Update()
		}
	}
}

func startDemoFeed(logger *zap.Logger) (string, error) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}

	go func() {
		if err := http.Serve(lis, datafeed.NewMockDataFeed(logger)); err != nil {
			logger.Error("demo feed stopped", zap.Error(err))
		}
	}()

	logger.Info("demo feed listening", zap.String("addr", lis.Addr().String()))
	return "http://" + lis.Addr().String(), nil
}
