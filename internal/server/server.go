package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/sngm3741/makoto-club-services/triage/internal/config"
	"github.com/sngm3741/makoto-club-services/triage/internal/infrastructure/lexiconfile"
	"github.com/sngm3741/makoto-club-services/triage/internal/infrastructure/memory"
	mongodoc "github.com/sngm3741/makoto-club-services/triage/internal/infrastructure/mongo"
	"github.com/sngm3741/makoto-club-services/triage/internal/infrastructure/slack"
	adminhttp "github.com/sngm3741/makoto-club-services/triage/internal/interfaces/http/admin"
	"github.com/sngm3741/makoto-club-services/triage/internal/interfaces/http/common"
	publichttp "github.com/sngm3741/makoto-club-services/triage/internal/interfaces/http/public"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/analysis"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
)

// Server は HTTP サーバーと常駐ジョブ(スイープ・辞書監視)のライフサイクルを管理するコンポジションルート。
// アプリケーションサービスをルータへ接続する責務を担い、ドメインロジックは持たない。
type Server struct {
	logger         *zap.Logger
	client         *mongo.Client
	repo           *mongodoc.FeedbackRepository
	triage         application.TriageService
	classifier     *analysis.LexicalClassifier
	watcher        *lexiconfile.Watcher
	scheduler      *cron.Cron
	location       *time.Location
	jwtConfigs     []config.JWTConfig
	jwtAudience    string
	addr           string
	allowedOrigins []string
	now            func() time.Time
}

// New は Config と Mongo クライアントを受け取り、サービスとハンドラを組み立てた Server を返す。
// client が nil の場合はインメモリのストアを使う。
func New(cfg config.Config, client *mongo.Client) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("failed to load timezone, falling back to UTC", zap.String("timezone", cfg.Timezone), zap.Error(err))
		loc = time.UTC
	}

	srv := &Server{
		logger:         logger,
		client:         client,
		location:       loc,
		jwtConfigs:     append([]config.JWTConfig(nil), cfg.JWTConfigs...),
		jwtAudience:    cfg.JWTAudience,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
		now:            time.Now,
	}

	lexicon := analysis.DefaultLexicon()
	if cfg.LexiconPath != "" {
		if lexicon, err = lexiconfile.Load(cfg.LexiconPath); err != nil {
			return nil, err
		}
	}
	if srv.classifier, err = analysis.NewLexicalClassifier(lexicon); err != nil {
		return nil, err
	}
	if cfg.LexiconPath != "" {
		srv.watcher, err = lexiconfile.NewWatcher(cfg.LexiconPath, srv.classifier, lexiconfile.WithLogger(logger.Named("lexicon")))
		if err != nil {
			return nil, err
		}
	}

	var repo application.FeedbackRepository
	if client != nil {
		srv.repo = mongodoc.NewFeedbackRepository(client.Database(cfg.MongoDatabase), cfg.FeedbackCollection, cfg.AnalysisCollection)
		repo = srv.repo
	} else {
		logger.Warn("no mongo client configured, feedback is kept in memory")
		repo = memory.NewFeedbackRepository()
	}

	var notifier application.Notifier
	if cfg.SlackWebhookURL != "" {
		notifier = slack.NewNotifier(slack.Config{
			WebhookURL:       cfg.SlackWebhookURL,
			DashboardBaseURL: cfg.DashboardBaseURL,
			Timeout:          cfg.SlackTimeout,
		})
	}

	srv.triage, err = application.NewTriageService(application.ServiceConfig{
		Repository:       repo,
		Classifier:       srv.classifier,
		Notifier:         notifier,
		Logger:           logger.Named("triage"),
		AutoAnalyze:      cfg.AutoAnalyze,
		SweepConcurrency: cfg.SweepConcurrency,
	})
	if err != nil {
		return nil, err
	}

	if cfg.SweepSchedule != "" {
		srv.scheduler, err = newScheduler(cfg.SweepSchedule, &application.SweepJob{
			Service:   srv.triage,
			BatchSize: cfg.SweepBatchSize,
			Logger:    logger.Named("sweep"),
		}, logger)
		if err != nil {
			return nil, err
		}
	}

	return srv, nil
}

// Routes はミドルウェアと Public/Admin のルーティングを組み立てたハンドラを返す。
func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))

	router.Get("/healthz", s.healthHandler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:        s.logger.Named("public"),
		TriageService: s.triage,
	})
	publicHandler.Register(router)

	adminCfg := adminhttp.Config{
		Logger:        s.logger.Named("admin"),
		TriageService: s.triage,
		Now:           s.now,
	}
	if s.watcher != nil {
		adminCfg.LexiconReloader = s.watcher
	}
	adminHandler := adminhttp.NewHandler(adminCfg)
	router.Route("/admin", func(r chi.Router) {
		r.Use(s.authMiddleware)
		adminHandler.Register(r)
	})

	return router
}

// Run は常駐ジョブと HTTP サーバーを起動し、シグナル受信まで待機する。
func (s *Server) Run(lexiconWatch bool) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if s.repo != nil {
		indexCtx, indexCancel := context.WithTimeout(ctx, 10*time.Second)
		err := s.repo.EnsureIndexes(indexCtx)
		indexCancel()
		if err != nil {
			s.logger.Warn("failed to ensure feedback indexes", zap.Error(err))
		}
	}

	if s.watcher != nil && lexiconWatch {
		if err := s.watcher.Start(ctx); err != nil {
			s.logger.Warn("lexicon watcher disabled", zap.Error(err))
		}
	}
	if s.scheduler != nil {
		s.scheduler.Start()
	}

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.addr))
		errChan <- httpServer.ListenAndServe()
	}()

	return waitForShutdown(httpServer, errChan, s)
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	_, ok := allowed[origin]
	return ok
}

// healthHandler は MongoDB への疎通確認を行い、監視系からのヘルスチェック要求に応える。
// インメモリ構成では常に ok を返す。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		store := "memory"
		if s.client != nil {
			store = "mongo"
			if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
				common.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"store":  store,
					"error":  err.Error(),
				})
				return
			}
		}

		common.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"store":  store,
			"time":   s.now().In(s.location).Format(time.RFC3339),
		})
	}
}

// shutdown は常駐ジョブを止め、MongoDB クライアントをタイムアウト付きで切断する。
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if s.scheduler != nil {
		select {
		case <-s.scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			s.logger.Warn("sweep job still running at shutdown")
		}
	}
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.client != nil {
		if err := s.client.Disconnect(shutdownCtx); err != nil {
			s.logger.Warn("mongo disconnect failed", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("http server: %w", err)
		}
	case sig := <-sigChan:
		srv.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Warn("http server shutdown failed", zap.Error(err))
		}
	}

	srv.shutdown(context.Background())
	return runErr
}
