// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/contactbook/internal/model"
)

// ContactRepository は連絡先ドキュメントの永続化インターフェース。
// 返却する連絡先のIDは常に外部表現（文字列）に変換済みである。
type ContactRepository interface {
	// FindAll は全連絡先を作成順で返す。0件の場合は空スライスを返す。
	FindAll(ctx context.Context) ([]*model.Contact, error)

	// FindByID は指定IDの連絡先を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Contact, error)

	// FindConflict はemail、phone（matchFirstNameがtrueの場合はfnameも）の
	// いずれかが一致する既存の連絡先を1件返す。見つからない場合はnilを返す。
	FindConflict(ctx context.Context, c *model.Contact, matchFirstName bool) (*model.Contact, error)

	// Insert は連絡先を新規作成し、ストアが採番したIDを返す。
	// 入力のIDは無視される。
	Insert(ctx context.Context, c *model.Contact) (string, error)

	// Replace はID以外の全フィールドを置き換える。
	// 該当する連絡先が存在しない場合はfalseを返す。
	Replace(ctx context.Context, id string, c *model.Contact) (bool, error)

	// Delete は指定IDの連絡先を削除する。
	// 該当する連絡先が存在しない場合はfalseを返す。
	Delete(ctx context.Context, id string) (bool, error)
}
