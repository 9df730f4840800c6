// Package contact は連絡先管理のドメインロジックを提供する。
//
// Validate は連絡先レコードの構造・形式の制約を検証し、
// Service はリポジトリ層を介したCRUD操作と一意性・存在性の不変条件を担う。
package contact

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/contactbook/internal/model"
)

// phonePattern は国際電話番号形式（先頭の+は任意、10〜15桁の数字）。
var phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)

// schema はmodel.Contactのvalidateタグを解釈するバリデータ。
// validator.Validateはスレッドセーフで、パース済みの構造体情報をキャッシュする。
var schema = newSchema()

func newSchema() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// エラーのフィールド名はAPIと同じJSON名で返す
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("contact: failed to register phone rule: %v", err))
	}

	return v
}

// Validate は連絡先の全フィールド制約を検証する。
// 違反がある場合は違反したすべての制約を列挙したVALIDATION_FAILEDエラーを返す。
// IDは検証対象外。
func Validate(c *model.Contact) error {
	if c == nil {
		return model.NewValidationError([]model.FieldError{
			{Field: "contact", Rule: "required", Message: "contact is required"},
		})
	}

	err := schema.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate contact: %w", err)
	}

	fields := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, model.FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return model.NewValidationError(fields)
}

// fieldMessage は制約違反ごとの人間向けメッセージを組み立てる。
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "phone":
		return fmt.Sprintf("%s must be 10 to 15 digits with an optional leading +", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
