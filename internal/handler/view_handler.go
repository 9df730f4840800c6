package handler

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/contactbook/internal/middleware"
	"github.com/hitoshi/contactbook/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// ページテンプレート名
const (
	pageIndex = "index.html"
	pageForm  = "form.html"
	pageShow  = "show.html"
	pageError = "error.html"
)

// pages はレイアウトと組み合わせたページごとのテンプレート。
var pages = parsePages(pageIndex, pageForm, pageShow, pageError)

// parsePages は各ページをlayout.htmlと組み合わせてパースする。
// ページごとにcontentブロックを定義するため、テンプレートセットを分ける。
func parsePages(names ...string) map[string]*template.Template {
	m := make(map[string]*template.Template, len(names))
	for _, name := range names {
		m[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name))
	}
	return m
}

// viewData はテンプレートに渡す値。
type viewData struct {
	Title      string
	CSRFToken  string
	Contacts   []*model.Contact
	Contact    *model.Contact
	Edit       bool
	FormAction string
	Errors     map[string]string
	Message    string
}

// ViewHandler は連絡先のHTMLビューを提供するハンドラー。
type ViewHandler struct {
	service ContactServiceInterface
	logger  *slog.Logger
}

// NewViewHandler はViewHandlerを生成する。loggerがnilの場合はslog.Default()を使う。
func NewViewHandler(service ContactServiceInterface, logger *slog.Logger) *ViewHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewHandler{service: service, logger: logger}
}

// StaticHandler は埋め込みの静的ファイルを配信するハンドラーを返す。/static/ 配下にマウントする。
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// Index は連絡先一覧ページを表示する。
// GET /contacts
func (h *ViewHandler) Index(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.List(r.Context())
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	h.render(w, http.StatusOK, pageIndex, viewData{
		Title:     "Contacts",
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
		Contacts:  contacts,
	})
}

// NewForm は空の作成フォームを表示する。
// GET /contacts/create
func (h *ViewHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, &model.Contact{}, "", nil)
}

// Create はフォームから連絡先を作成し、一覧にリダイレクトする。
// POST /contacts/create
func (h *ViewHandler) Create(w http.ResponseWriter, r *http.Request) {
	c := contactFromForm(r)

	if _, err := h.service.Create(r.Context(), c); err != nil {
		h.renderFormError(w, r, c, "", err)
		return
	}

	http.Redirect(w, r, "/contacts", http.StatusSeeOther)
}

// Show は連絡先の詳細ページを表示する。
// GET /contacts/show/:id
func (h *ViewHandler) Show(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	h.render(w, http.StatusOK, pageShow, viewData{
		Title:     c.FirstName + " " + c.LastName,
		CSRFToken: middleware.CSRFTokenFromContext(r.Context()),
		Contact:   c,
	})
}

// EditForm は既存の値を入力済みの編集フォームを表示する。
// GET /contacts/edit/:id
func (h *ViewHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	h.renderForm(w, r, http.StatusOK, c, id, nil)
}

// Update はフォームの値で連絡先を置き換え、一覧にリダイレクトする。
// POST /contacts/edit/:id
func (h *ViewHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c := contactFromForm(r)

	if _, err := h.service.Update(r.Context(), id, c); err != nil {
		h.renderFormError(w, r, c, id, err)
		return
	}

	http.Redirect(w, r, "/contacts", http.StatusSeeOther)
}

// Delete は連絡先を削除し、一覧にリダイレクトする。
// POST /contacts/delete/:id
func (h *ViewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/contacts", http.StatusSeeOther)
}

// --- ヘルパー関数 ---

// contactFromForm はフォームの値から連絡先を組み立てる。idフィールドは読まない。
func contactFromForm(r *http.Request) *model.Contact {
	return &model.Contact{
		FirstName: r.PostFormValue("fname"),
		LastName:  r.PostFormValue("lname"),
		Phone:     r.PostFormValue("phone"),
		Address:   r.PostFormValue("address"),
		Email:     r.PostFormValue("email"),
	}
}

// renderForm は作成・編集フォームを表示する。idが空の場合は作成フォームになる。
func (h *ViewHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, c *model.Contact, id string, apiErr *model.APIError) {
	data := viewData{
		Title:      "New contact",
		CSRFToken:  middleware.CSRFTokenFromContext(r.Context()),
		Contact:    c,
		FormAction: "/contacts/create",
	}
	if id != "" {
		data.Title = "Edit contact"
		data.Edit = true
		data.FormAction = "/contacts/edit/" + id
	}
	if apiErr != nil {
		data.Message = apiErr.Message
		data.Errors = make(map[string]string, len(apiErr.Fields))
		for _, f := range apiErr.Fields {
			// 同じフィールドの違反は最初の1件を表示する
			if _, ok := data.Errors[f.Field]; !ok {
				data.Errors[f.Field] = f.Message
			}
		}
	}

	h.render(w, status, pageForm, data)
}

// renderFormError は入力値を保ったままフォームを再表示する。
// 入力に起因しないエラーはエラーページを表示する。
func (h *ViewHandler) renderFormError(w http.ResponseWriter, r *http.Request, c *model.Contact, id string, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case model.ErrCodeValidationFailed, model.ErrCodeDuplicateContact:
			h.renderForm(w, r, mapAPIErrorToHTTPStatus(apiErr), c, id, apiErr)
			return
		}
	}
	h.renderServiceError(w, r, err)
}

// renderServiceError はサービス層のエラーをステータスコード付きのエラーページとして表示する。
func (h *ViewHandler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		h.logger.Error("internal server error",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apiErr = model.NewInternalError()
	}

	status := mapAPIErrorToHTTPStatus(apiErr)
	h.render(w, status, pageError, viewData{
		Title:   http.StatusText(status),
		Message: apiErr.Message,
	})
}

// render はページをバッファに描画してから書き込む。
// 描画に失敗した場合は途中までのHTMLを返さず500にする。
func (h *ViewHandler) render(w http.ResponseWriter, status int, page string, data viewData) {
	var buf bytes.Buffer
	if err := pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
