package repository

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/contactbook/internal/model"
)

// contactDocument はcontacts.docカラムに保存するJSONドキュメント。
// 識別子はドキュメントに含めず、idカラムのみが保持する。
type contactDocument struct {
	FirstName string `json:"fname"`
	LastName  string `json:"lname"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Email     string `json:"email"`
}

// ValidContactID は文字列がストアの識別子として正しい形式かどうかを判定する。
func ValidContactID(id string) bool {
	_, err := parseContactID(id)
	return err == nil
}

// canonicalIDLength はハイフン区切りのUUID文字列の長さ。
const canonicalIDLength = 36

// parseContactID は外部表現のIDを内部のUUIDに変換する。
// 受け付けるのはハイフン区切りの36文字形式のみ（大文字小文字は問わない）。
// uuid.Parseが許す波括弧・urn:uuid:・ハイフンなしの形式は不正なIDとして扱う。
func parseContactID(id string) (uuid.UUID, error) {
	if len(id) != canonicalIDLength {
		return uuid.Nil, model.NewInvalidContactIDError(id)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, model.NewInvalidContactIDError(id)
	}
	return parsed, nil
}

// encodeContactDocument は連絡先をドキュメントにエンコードする。IDは破棄される。
func encodeContactDocument(c *model.Contact) (string, error) {
	b, err := json.Marshal(contactDocument{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
		Address:   c.Address,
		Email:     c.Email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode contact document: %w", err)
	}
	return string(b), nil
}

// decodeContactRow は行のIDとドキュメントから連絡先を復元する。
// 内部のUUIDは文字列形式のIDに置き換えられる。
func decodeContactRow(id uuid.UUID, doc []byte) (*model.Contact, error) {
	var d contactDocument
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, fmt.Errorf("failed to decode contact document %s: %w", id, err)
	}
	return &model.Contact{
		ID:        id.String(),
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Phone:     d.Phone,
		Address:   d.Address,
		Email:     d.Email,
	}, nil
}
