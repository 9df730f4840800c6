// Package model はドメインモデルを定義する。
package model

// Contact は連絡先レコードを表す。
// IDはストアが作成時に採番し、以降は変更されない。永続化前は空文字列。
type Contact struct {
	ID        string `json:"id"`
	FirstName string `json:"fname" validate:"required,min=2,max=50"`
	LastName  string `json:"lname" validate:"required,min=2,max=50"`
	Phone     string `json:"phone" validate:"required,phone"`
	Address   string `json:"address" validate:"required,min=5,max=100"`
	Email     string `json:"email" validate:"required,email"`
}
