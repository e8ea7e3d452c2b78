package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-coach/internal/account"
	"resume-coach/internal/analyses"
	googleauth "resume-coach/internal/auth"
	"resume-coach/internal/coverletters"
	"resume-coach/internal/documents"
	"resume-coach/internal/editor"
	"resume-coach/internal/extract"
	"resume-coach/internal/generation"
	"resume-coach/internal/jobimport"
	"resume-coach/internal/llm"
	openai "resume-coach/internal/llm/openai"
	"resume-coach/internal/outreach"
	"resume-coach/internal/ratelimit"
	"resume-coach/internal/services/health"
	"resume-coach/internal/shared/auth"
	"resume-coach/internal/shared/config"
	"resume-coach/internal/shared/server"
	"resume-coach/internal/shared/server/middleware"
	"resume-coach/internal/shared/storage/db"
	"resume-coach/internal/shared/telemetry"
	"resume-coach/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB

	AnalysesRepo     analyses.Repo
	CoverLettersRepo coverletters.Repo
	OutreachRepo     outreach.Repo
	UsersRepo        users.Repo
	Limiter          ratelimit.Limiter

	AnalysesService     *analyses.Service
	CoverLettersService *coverletters.Service
	OutreachService     *outreach.Service
	JobImportService    *jobimport.Service
	EditorService       *editor.Service
	AccountService      *account.Service
	UsersService        *users.Service
	Health              *health.Service
}

// Build validates configuration, connects storage and wires every feature.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := telemetry.Init(cfg.Env); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB}
	if err := buildServices(app); err != nil {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a == nil || a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) && cfg.RateLimitBackend != "postgres" {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildServices(app *App) error {
	cfg := app.Config

	if app.DB != nil {
		app.AnalysesRepo = &analyses.PGRepo{DB: app.DB}
		app.CoverLettersRepo = &coverletters.PGRepo{DB: app.DB}
		app.OutreachRepo = &outreach.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
	} else {
		app.AnalysesRepo = analyses.NewMemoryRepo()
		app.CoverLettersRepo = coverletters.NewMemoryRepo()
		app.OutreachRepo = outreach.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
	}
	app.Limiter = buildLimiter(cfg, app.DB)

	completer, err := buildCompleter(cfg)
	if err != nil {
		return err
	}
	orchestrator := generation.NewOrchestrator(llm.NewGuard(completer, cfg.LLMTimeout))

	pipeline, markdownHealth := buildPipeline(cfg)

	app.AnalysesService = &analyses.Service{
		Repo:     app.AnalysesRepo,
		Pipeline: pipeline,
		Critic:   orchestrator,
	}
	app.CoverLettersService = &coverletters.Service{
		Repo:    app.CoverLettersRepo,
		Writer:  orchestrator,
		Resumes: app.AnalysesService,
	}
	app.OutreachService = &outreach.Service{
		Repo:    app.OutreachRepo,
		Writer:  orchestrator,
		Resumes: app.AnalysesService,
	}
	app.JobImportService = &jobimport.Service{
		Fetcher:   jobimport.NewFetcher(jobimport.URLGuard{}),
		Pipeline:  pipeline,
		Extractor: orchestrator,
	}
	app.EditorService = &editor.Service{
		Compiler: editor.NewHTTPCompiler(cfg.LatexCompileURL, cfg.LatexTimeout),
		Resumes:  app.AnalysesService,
		Improver: orchestrator,
	}
	app.AccountService = account.NewService(app.AnalysesRepo, app.CoverLettersRepo, app.OutreachRepo, app.Limiter)
	app.UsersService = users.NewService(app.UsersRepo)

	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}
	app.Health = health.NewService(pinger, markdownHealth)

	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("session signer: %w", err)
	}
	gate := middleware.Gate{
		Auth:    middleware.Auth(signer, cfg.SessionCookieName),
		Limiter: app.Limiter,
		Rules:   ratelimit.DefaultRules(),
	}
	google := googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		signer,
		app.UsersService,
		googleauth.Session{CookieName: cfg.SessionCookieName, TTL: cfg.SessionTTL, Secure: cfg.IsProduction()},
	)

	app.Router = server.NewRouter(server.RouterDeps{
		Config: cfg,
		Health: app.Health,
		Handlers: []server.RouteRegistrar{
			google,
			users.NewHandler(app.UsersService, gate),
			analyses.NewHandler(app.AnalysesService, gate),
			jobimport.NewHandler(app.JobImportService, gate),
			coverletters.NewHandler(app.CoverLettersService, gate),
			outreach.NewHandler(app.OutreachService, gate),
			editor.NewHandler(app.EditorService, gate),
			account.NewHandler(app.AccountService, gate),
		},
	})
	return nil
}

func buildLimiter(cfg config.Config, sqlDB *sql.DB) ratelimit.Limiter {
	switch {
	case cfg.RateLimitBackend == "memory", sqlDB == nil:
		return ratelimit.NewMemoryLimiter(nil)
	default:
		return ratelimit.NewPGLimiter(sqlDB, nil)
	}
}

func buildCompleter(cfg config.Config) (llm.Completer, error) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"reason": "OPENAI_API_KEY empty"})
		return llm.PlaceholderClient{}, nil
	}
	client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.OpenAIBaseURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// buildPipeline prefers the remote conversion services and falls back to in-process text
// extraction with no preview when they are not configured.
func buildPipeline(cfg config.Config) (*documents.Pipeline, health.Checker) {
	p := &documents.Pipeline{
		TempDir:         cfg.TempDir,
		MarkdownTimeout: cfg.MarkdownTimeout,
		PreviewTimeout:  cfg.PreviewTimeout,
	}
	var checker health.Checker
	if cfg.MarkdownServiceURL != "" {
		converter := documents.NewHTTPConverter(cfg.MarkdownServiceURL)
		p.Markdown = converter
		checker = converter
	} else {
		p.Markdown = extract.LocalConverter{}
	}
	if cfg.PreviewServiceURL != "" {
		p.Preview = documents.NewHTTPRasterizer(cfg.PreviewServiceURL)
	} else {
		p.Preview = documents.NoopRasterizer{}
	}
	return p, checker
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
