package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/contactbook/internal/middleware"
	"github.com/hitoshi/contactbook/internal/model"
)

// maxRequestBodyBytes はJSONリクエストボディの上限。
const maxRequestBodyBytes = 1 << 20

// contactDeletedMessage は削除成功時に返すメッセージ。
const contactDeletedMessage = "Contact deleted successfully"

// ContactServiceInterface は連絡先ハンドラーが必要とするサービスインターフェース。
type ContactServiceInterface interface {
	// List は全連絡先を返す。
	List(ctx context.Context) ([]*model.Contact, error)
	// Get は指定IDの連絡先を返す。
	Get(ctx context.Context, id string) (*model.Contact, error)
	// Create は連絡先を作成する。
	Create(ctx context.Context, c *model.Contact) (*model.Contact, error)
	// Update は連絡先の全フィールドを置き換える。
	Update(ctx context.Context, id string, c *model.Contact) (*model.Contact, error)
	// Delete は連絡先を削除する。
	Delete(ctx context.Context, id string) error
}

// ContactHandler は連絡先JSON APIのHTTPハンドラー。
type ContactHandler struct {
	service ContactServiceInterface
	logger  *slog.Logger
}

// NewContactHandler はContactHandlerを生成する。loggerがnilの場合はslog.Default()を使う。
func NewContactHandler(service ContactServiceInterface, logger *slog.Logger) *ContactHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContactHandler{service: service, logger: logger}
}

// contactRequest は作成・更新リクエストのボディ。
// idフィールドは受け付けても無視する。
type contactRequest struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Email     string `json:"email"`
}

// contactResponse は連絡先のAPIレスポンス。
type contactResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Email     string `json:"email"`
}

// messageResponse は本文のみのレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// ListContacts は連絡先一覧を返す。
// GET /api/contacts
func (h *ContactHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	resp := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		resp = append(resp, toContactResponse(c))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateContact は連絡先を作成する。
// POST /api/contacts
func (h *ContactHandler) CreateContact(w http.ResponseWriter, r *http.Request) {
	c, apiErr := decodeContactRequest(w, r)
	if apiErr != nil {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	created, err := h.service.Create(r.Context(), c)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toContactResponse(created))
}

// GetContact は連絡先を1件返す。
// GET /api/contacts/:id
func (h *ContactHandler) GetContact(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponse(c))
}

// UpdateContact は連絡先の全フィールドを置き換える。
// PUT /api/contacts/:id
func (h *ContactHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	c, apiErr := decodeContactRequest(w, r)
	if apiErr != nil {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	updated, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), c)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toContactResponse(updated))
}

// DeleteContact は連絡先を削除する。
// DELETE /api/contacts/:id
func (h *ContactHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: contactDeletedMessage})
}

// --- ヘルパー関数 ---

// decodeContactRequest はJSONボディを連絡先に変換する。
// 型の不一致はフィールド単位のバリデーションエラー、構文エラーはINVALID_REQUESTとして返す。
func decodeContactRequest(w http.ResponseWriter, r *http.Request) (*model.Contact, *model.APIError) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, model.NewValidationError([]model.FieldError{{
				Field:   typeErr.Field,
				Rule:    "type",
				Message: typeErr.Field + " must be a " + typeErr.Type.String(),
			}})
		}
		return nil, model.NewInvalidRequestError()
	}

	return &model.Contact{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
		Email:     req.Email,
	}, nil
}

// toContactResponse はmodel.ContactからAPIレスポンスに変換する。
func toContactResponse(c *model.Contact) contactResponse {
	return contactResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		Address:   c.Address,
		Email:     c.Email,
	}
}

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// APIError以外のエラーは詳細をloggerにのみ記録する。
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	logger.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case model.ErrCodeInvalidContactID, model.ErrCodeDuplicateContact, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeContactNotFound:
		return http.StatusNotFound
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case model.ErrCodeCSRFInvalid:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
