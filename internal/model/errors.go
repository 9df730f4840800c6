// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string       // エラーコード
	Message  string       // エラーメッセージ
	Category string       // カテゴリ: validation, contact, system
	Action   string       // ユーザー向け対処方法
	Fields   []FieldError // 違反したフィールド制約（バリデーションエラー時のみ）
}

// FieldError は1つのフィールド制約違反を表す。
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidContactID = "INVALID_CONTACT_ID"
	ErrCodeDuplicateContact = "DUPLICATE_CONTACT"
	ErrCodeContactNotFound  = "CONTACT_NOT_FOUND"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeCSRFInvalid      = "CSRF_TOKEN_INVALID"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// HasCode はerrのチェーン中に指定コードのAPIErrorが含まれるかを判定する。
func HasCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// NewValidationError はフィールド制約違反の一覧を持つバリデーションエラーを生成する。
func NewValidationError(fields []FieldError) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に%d件の誤りがあります。", len(fields)),
		Category: "validation",
		Action:   "各項目の入力内容を確認してください。",
		Fields:   fields,
	}
}

// NewInvalidContactIDError は連絡先IDの形式が不正な場合のエラーを生成する。
func NewInvalidContactIDError(contactID string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidContactID,
		Message:  fmt.Sprintf("Invalid contact ID: %s", contactID),
		Category: "validation",
		Action:   "連絡先IDを確認してください。",
	}
}

// NewDuplicateContactError はメール・電話番号・名前のいずれかが既存の連絡先と重複する場合のエラーを生成する。
func NewDuplicateContactError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateContact,
		Message:  "Email, phone, or name already exists",
		Category: "contact",
		Action:   "既存の連絡先と重複しない値を入力してください。",
	}
}

// NewContactNotFoundError は連絡先が見つからない場合のエラーを生成する。
func NewContactNotFoundError(contactID string) *APIError {
	return &APIError{
		Code:     ErrCodeContactNotFound,
		Message:  fmt.Sprintf("Contact not found: %s", contactID),
		Category: "contact",
		Action:   "連絡先IDを確認してください。",
	}
}

// NewInvalidRequestError はリクエストボディを解析できない場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewRateLimitError はクライアントごとのリクエスト上限を超えた場合のエラーを生成する。
func NewRateLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Retry-Afterヘッダーの秒数だけ待ってから再度お試しください。",
	}
}

// NewCSRFInvalidError はCSRFトークンの検証に失敗した場合のエラーを生成する。
func NewCSRFInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFInvalid,
		Message:  "CSRF token validation failed",
		Category: "system",
		Action:   "ページを再読み込みしてから再度送信してください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
