// Package app はアプリケーションの初期化とサブコマンドの実行を提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/PietOff/social-recipe-app/internal/auth"
	"github.com/PietOff/social-recipe-app/internal/config"
	"github.com/PietOff/social-recipe-app/internal/database"
	"github.com/PietOff/social-recipe-app/internal/extract"
	"github.com/PietOff/social-recipe-app/internal/handler"
	"github.com/PietOff/social-recipe-app/internal/library"
	"github.com/PietOff/social-recipe-app/internal/logger"
	"github.com/PietOff/social-recipe-app/internal/metrics"
	"github.com/PietOff/social-recipe-app/internal/middleware"
	"github.com/PietOff/social-recipe-app/internal/migration"
	"github.com/PietOff/social-recipe-app/internal/model"
	"github.com/PietOff/social-recipe-app/internal/repository"
	"github.com/PietOff/social-recipe-app/internal/search"
	"github.com/PietOff/social-recipe-app/internal/security"
	"github.com/PietOff/social-recipe-app/internal/session"
	"github.com/PietOff/social-recipe-app/internal/store"
	"github.com/PietOff/social-recipe-app/internal/taxonomy"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandCloud:
		return runCloud(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// rateLimiterConfig はConfigのreq/min設定からレート制限設定を組み立てる。
func rateLimiterConfig(cfg *config.Config) middleware.RateLimiterConfig {
	rlCfg := middleware.DefaultRateLimiterConfig()
	rlCfg.GeneralRate = rate.Limit(float64(cfg.RateLimitGeneral) / 60.0)
	rlCfg.GeneralBurst = cfg.RateLimitGeneral
	rlCfg.ExtractRate = rate.Limit(float64(cfg.RateLimitExtract) / 60.0)
	rlCfg.ExtractBurst = cfg.RateLimitExtract
	return rlCfg
}

// runServe はデバイス側APIサーバーモードで起動する。
// ローカルストア、セッション、抽出パイプラインをワイヤリングし、
// HTTPサーバーを起動する。CLOUD_BASE_URL未設定の場合はオフライン動作となり、
// ログインとクラウド同期は利用できない。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// 1. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 2. ローカルストアの初期化
	localStore := store.NewLocalStore(cfg.DataDir)
	slog.Info("local store opened", slog.String("data_dir", cfg.DataDir))

	// 3. クラウドクライアントの初期化
	httpClient := &http.Client{Timeout: 15 * time.Second}
	remoteStore := store.NewRemoteStore(httpClient, slog.Default(), cfg.CloudBaseURL)
	authClient := auth.NewCloudAuthClient(httpClient, cfg.CloudBaseURL)

	// 4. セッションとコレクションサービスのワイヤリング
	sessions := session.NewManager(authClient, localStore)
	libService := library.NewService(localStore, remoteStore, sessions, collector)
	coordinator := migration.NewCoordinator(localStore, remoteStore, collector, slog.Default())

	// ログイン成功時にローカルコレクションをクラウドへ移行する。
	// 移行後はキャッシュを破棄し、次のListでクラウドから取得させる。
	sessions.OnAuthenticated(func(ctx context.Context, sess *model.Session) {
		summary := coordinator.Run(ctx, sess.Token)
		slog.Info("migration finished",
			slog.String("run_id", summary.RunID),
			slog.Int("attempted", summary.Attempted),
			slog.Int("succeeded", summary.Succeeded),
			slog.Int("failed", summary.Failed),
		)
		libService.Invalidate()
	})
	sessions.OnLoggedOut(libService.Invalidate)

	// 5. 抽出パイプラインのワイヤリング
	ssrfGuard := security.NewURLGuard()
	scraper := extract.NewPageScraper(ssrfGuard, cfg.ExtractTimeout, cfg.ExtractMaxSize)
	llmClient := extract.NewLLMClient(httpClient, slog.Default(), cfg.LLMEndpoint, cfg.LLMModel)
	sanitizer := security.NewFieldSanitizer()
	extractService := extract.NewService(scraper, llmClient, sanitizer, collector, slog.Default(), cfg.LLMAPIKey)

	// 6. ルーターの構築
	rl := middleware.NewRateLimiter(rateLimiterConfig(cfg))
	defer rl.Stop()

	router := handler.NewServeRouter(&handler.ServeRouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rl,
		Sessions:          sessions,
		Library:           libService,
		Search:            search.NewEngine(search.DefaultSynonyms()),
		Categorizer:       taxonomy.DefaultConfig(),
		Extractor:         extractService,
		MetricsHandler:    metrics.Handler(registry),
	})

	return serveHTTP(router, cfg.ServerPort)
}

// runCloud はクラウド側APIサーバーモードで起動する。
// PostgreSQL接続を開き、認証サービスとコレクションAPIをワイヤリングする。
func runCloud(cfg *config.Config) error {
	if err := cfg.ValidateCloud(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// 1. DB接続
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	slog.Info("database connection established")

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	recipeRepo := repository.NewPostgresRecipeRepo(db)

	// 4. 認証サービスのワイヤリング
	verifier := auth.NewGoogleVerifier(auth.GoogleVerifierConfig{
		ClientID:     cfg.GoogleClientID,
		TokenInfoURL: cfg.GoogleTokenInfoURL,
	}, nil)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.SessionMaxAge)
	authService := auth.NewService(verifier, userRepo, tokens)

	// 5. ルーターの構築
	rl := middleware.NewRateLimiter(rateLimiterConfig(cfg))
	defer rl.Stop()

	router := handler.NewCloudRouter(&handler.CloudRouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rl,
		TokenVerifier:     tokens,
		Auth:              authService,
		Recipes:           recipeRepo,
		Metrics:           collector,
		MetricsHandler:    metrics.Handler(registry),
	})

	return serveHTTP(router, cfg.ServerPort)
}

// serveHTTP はHTTPサーバーを起動し、シグナル受信でグレースフルに停止する。
func serveHTTP(router http.Handler, port string) error {
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
