package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/minchat/minchat/internal/api"
	"github.com/minchat/minchat/internal/chat"
	"github.com/minchat/minchat/internal/config"
	"github.com/minchat/minchat/internal/database"
	"github.com/minchat/minchat/internal/stats"
)

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingSecret  string
	uploadDir      string
	allowedOrigins stringSliceFlag
)

func main() {
	logger := log.New(os.Stderr, "[minchat] ", log.LstdFlags)

	env, err := config.FromEnv()
	if err != nil {
		logger.Fatal("env config:", err)
	}

	flag.StringVar(&addr, "addr", env.Addr, "server address")
	flag.StringVar(&dsn, "dsn", env.DatabaseDSN, "database connection string")
	flag.StringVar(&signingSecret, "signing-secret", env.SigningSecret, "base64 encoded signing secret")
	flag.StringVar(&uploadDir, "upload-dir", env.UploadDir, "directory for message attachments")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	origins := []string(allowedOrigins)
	if len(origins) == 0 {
		origins = env.AllowedOrigins
	}

	cfg, err := config.NewConfig(addr, dsn, signingSecret, origins, uploadDir)
	if err != nil {
		logger.Fatal("config:", err)
	}

	repo, err := database.NewPgChatRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	reporter := database.NewErrorReporter(logger, repo)
	adapter := database.NewChatAdapter(repo)

	registry := chat.NewRegistry()
	sessions := chat.NewSessionManager(logger, registry, reporter, statsUpdater)
	gateway := chat.NewGateway(logger, sessions, reporter)
	engine := chat.NewEngine(logger, registry, adapter, adapter, adapter, gateway, reporter, statsUpdater)
	gateway.AttachEngine(engine)

	srv := api.NewApp(mux, logger, repo, engine, gateway, adapter, reporter, cfg)

	statsUpdater.Run()
	defer statsUpdater.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("closing live sessions...")
	gateway.Shutdown()

	logger.Println("shutdown complete")
}
