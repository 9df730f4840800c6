package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/contactbook/internal/metrics"
	"github.com/hitoshi/contactbook/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// 連絡先
	ContactService ContactServiceInterface

	// ミドルウェア依存
	Logger            *slog.Logger
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	// TrustProxyHeaders がtrueの場合のみRealIPでRemoteAddrを書き換える。
	TrustProxyHeaders bool

	// 運用エンドポイント
	HealthChecker    HealthChecker
	MetricsCollector metrics.MetricsCollector
	MetricsHandler   http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → (RealIP) → Logging → Metrics → Recovery → SecurityHeaders
//
// RealIPはTrustProxyHeadersが有効な場合のみ挟む。無効時はクライアントが送る
// X-Forwarded-Forを無視し、接続元アドレスでレート制限とログを行う。
//
// JSON API（/api/contacts）には CORS → RateLimit(General)、
// HTMLビュー（/contacts）には CSRF → RateLimit(General) を追加する。
// 作成・更新・削除には書き込み用のレート制限を重ねる。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.MetricsCollector
	if collector == nil {
		collector = metrics.NopCollector{}
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if deps.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())

	contactHandler := NewContactHandler(deps.ContactService, logger)
	viewHandler := NewViewHandler(deps.ContactService, logger)
	writeLimit := deps.RateLimiter.WriteMiddleware()

	// --- 運用エンドポイント ---
	if deps.HealthChecker != nil {
		r.Get("/health", NewHealthHandler(deps.HealthChecker, logger))
	}
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	r.Handle("/static/*", StaticHandler())

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/contacts", http.StatusSeeOther)
	})

	// --- JSON API ---
	r.Route("/api/contacts", func(r chi.Router) {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/", contactHandler.ListContacts)
		r.With(writeLimit).Post("/", contactHandler.CreateContact)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", contactHandler.GetContact)
			r.With(writeLimit).Put("/", contactHandler.UpdateContact)
			r.With(writeLimit).Delete("/", contactHandler.DeleteContact)
		})
	})

	// --- HTMLビュー ---
	r.Route("/contacts", func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/", viewHandler.Index)
		r.Get("/create", viewHandler.NewForm)
		r.With(writeLimit).Post("/create", viewHandler.Create)
		r.Get("/show/{id}", viewHandler.Show)
		r.Get("/edit/{id}", viewHandler.EditForm)
		r.With(writeLimit).Post("/edit/{id}", viewHandler.Update)
		r.With(writeLimit).Post("/delete/{id}", viewHandler.Delete)
	})

	return r
}
