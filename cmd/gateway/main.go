package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	api "github.com/brightpath/brightpath-lms/internal/api/http"
	"github.com/brightpath/brightpath-lms/internal/assignments"
	"github.com/brightpath/brightpath-lms/internal/auth"
	"github.com/brightpath/brightpath-lms/internal/cache"
	"github.com/brightpath/brightpath-lms/internal/config"
	"github.com/brightpath/brightpath-lms/internal/content"
	"github.com/brightpath/brightpath-lms/internal/db"
	"github.com/brightpath/brightpath-lms/internal/enrollment"
	"github.com/brightpath/brightpath-lms/internal/eventlog"
	"github.com/brightpath/brightpath-lms/internal/feed"
	"github.com/brightpath/brightpath-lms/internal/progress"
	"github.com/brightpath/brightpath-lms/internal/quiz"
	"github.com/brightpath/brightpath-lms/internal/rbac"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	logger := newLogger(cfg.Mode)
	defer func() { _ = logger.Sync() }()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}

	// --- Cache tier (redis when configured, in-process otherwise) ---
	var kv progress.KV
	if cfg.RedisAddr != "" {
		rkv, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisDB, cfg.CacheTTL, logger)
		if err != nil {
			logger.Warn("redis unavailable, using in-process cache", zap.Error(err))
			kv = cache.NewMemory()
		} else {
			kv = rkv
			defer func() { _ = rkv.Close() }()
		}
	} else {
		kv = cache.NewMemory()
	}

	// --- Engine wiring ---
	thresholds := progress.Thresholds{
		Video: cfg.VideoRequiredPct,
		Audio: cfg.AudioRequiredPct,
		Text:  cfg.TextRequiredPct,
	}
	store := progress.NewStore(
		progress.NewSQLRemoteStore(dbh),
		progress.NewSQLSeenStore(dbh),
		kv,
		thresholds,
		logger,
	)
	quizSvc := quiz.NewService(quiz.NewSQLQuestionStore(dbh), quiz.NewSQLSubmissionStore(dbh), logger)
	enrollments := enrollment.NewSQLResolver(dbh)
	mgr := feed.NewManager(
		enrollments,
		content.NewCachedStore(content.NewSQLStore(dbh)),
		store,
		quizSvc,
		eventlog.NewRepo(dbh),
		feed.ControllerConfig{
			Thresholds:        thresholds,
			GateMessageWindow: cfg.GateMessageWindow,
			WheelThreshold:    cfg.WheelThreshold,
			WheelCooldown:     cfg.WheelCooldown,
		},
		logger,
	)

	templates, err := assignments.NewFSStore(os.Getenv("ASSIGNMENT_BASE_PATH"))
	if err != nil {
		logger.Fatal("assignment store", zap.Error(err))
	}

	// --- Periodic flush of progress writes that failed their first attempt ---
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.FlushSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		store.FlushDirty(ctx)
	}); err != nil {
		logger.Fatal("flush schedule", zap.Error(err))
	}
	sched.Start()

	// --- Auth ---
	secret := getenvOr("AUTH_HMAC_SECRET", "supersecret-dev-key")
	authSvc := auth.NewService(secret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, cfg.AdminUser, cfg.AdminPassHash, logger))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(authSvc))

		// Student feed flow. Every route in the group, reads and
		// mutations alike, is scoped to the enrollment's owner.
		pr.Route("/feed/{enrollmentID}", func(fr chi.Router) {
			fr.Use(rbac.RequireOwnerOr("progress:view-all", api.EnrollmentOwner(enrollments)))
			fr.With(rbac.Require("feed:view")).
				Get("/", api.GetFeedHandler(mgr))
			fr.With(rbac.Require("progress:report")).
				Post("/progress", api.ReportProgressHandler(mgr))
			fr.With(rbac.Require("nav:advance")).
				Post("/advance", api.AdvanceHandler(mgr))
			fr.With(rbac.Require("nav:advance")).
				Post("/wheel", api.WheelHandler(mgr))
			fr.With(rbac.Require("nav:advance")).
				Post("/jump", api.JumpHandler(mgr))
			fr.With(rbac.Require("assignment:ack")).
				Post("/ack", api.AckAssignmentHandler(mgr))
			fr.With(rbac.Require("quiz:answer")).
				Post("/quiz/{itemID}/answers", api.AnswerQuizHandler(mgr))
			fr.With(rbac.Require("quiz:submit")).
				Post("/quiz/{itemID}/submit", api.SubmitQuizHandler(mgr))
		})

		pr.With(rbac.Require("feed:view")).
			Get("/quizzes/{itemID}", api.GetQuizHandler(quizSvc))

		// Assignment templates
		pr.With(rbac.Require("assignment:view")).
			Get("/assignments/{ref}", api.GetAssignmentHandler(templates))
		pr.With(rbac.Require("content:manage")).
			Put("/assignments/{ref}", api.PutAssignmentHandler(templates))

		// Teacher dashboards
		pr.With(rbac.Require("progress:view-all")).
			Get("/groups/{groupID}/progress", api.GroupProgressHandler(dbh, logger))
		pr.With(rbac.Require("submissions:view")).
			Get("/groups/{groupID}/items/{itemID}/submissions", api.ListSubmissionsHandler(quizSvc))
		pr.With(rbac.Require("submission:grade")).
			Post("/submissions/{submissionID}/grade", api.GradeSubmissionHandler(quizSvc))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()
	logger.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("mode", string(cfg.Mode)),
		zap.String("db", cfg.DBDriver))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	<-sched.Stop().Done()
	store.Drain()
	logger.Info("shutdown complete")
}

func newLogger(mode config.Mode) *zap.Logger {
	var zcfg zap.Config
	if mode == config.ModeOnline {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}

func getenvOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
