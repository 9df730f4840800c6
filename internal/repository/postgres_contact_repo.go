package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/hitoshi/contactbook/internal/model"
)

// pgUniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const pgUniqueViolation = "23505"

// PostgresContactRepo はPostgreSQLのJSONBカラムをドキュメントコレクションとして使う連絡先リポジトリ。
type PostgresContactRepo struct {
	db *sql.DB
}

// NewPostgresContactRepo はPostgresContactRepoを生成する。
func NewPostgresContactRepo(db *sql.DB) *PostgresContactRepo {
	return &PostgresContactRepo{db: db}
}

// FindAll は全連絡先を作成順で返す。
func (r *PostgresContactRepo) FindAll(ctx context.Context) ([]*model.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, doc FROM contacts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]*model.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	return contacts, nil
}

// FindByID は指定IDの連絡先を取得する。見つからない場合はnilを返す。
func (r *PostgresContactRepo) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	contactID, err := parseContactID(id)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `SELECT id, doc FROM contacts WHERE id = $1`, contactID)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindConflict はemail、phone、（matchFirstNameがtrueの場合）fnameのいずれかが
// 一致する既存の連絡先を1件返す。見つからない場合はnilを返す。
func (r *PostgresContactRepo) FindConflict(ctx context.Context, c *model.Contact, matchFirstName bool) (*model.Contact, error) {
	query := `SELECT id, doc FROM contacts
		 WHERE doc->>'email' = $1 OR doc->>'phone' = $2
		 LIMIT 1`
	args := []any{c.Email, c.Phone}
	if matchFirstName {
		query = `SELECT id, doc FROM contacts
		 WHERE doc->>'email' = $1 OR doc->>'phone' = $2 OR doc->>'fname' = $3
		 LIMIT 1`
		args = append(args, c.FirstName)
	}

	existing, err := scanContact(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// Insert は連絡先を新規作成し、ストアが採番したIDを返す。
// email・phoneの一意インデックス違反はDUPLICATE_CONTACTエラーに変換する。
func (r *PostgresContactRepo) Insert(ctx context.Context, c *model.Contact) (string, error) {
	doc, err := encodeContactDocument(c)
	if err != nil {
		return "", err
	}

	var id uuid.UUID
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO contacts (doc) VALUES ($1::jsonb) RETURNING id`,
		doc,
	).Scan(&id)
	if isUniqueViolation(err) {
		return "", model.NewDuplicateContactError()
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert contact: %w", err)
	}

	return id.String(), nil
}

// Replace はID以外の全フィールドを置き換える。部分マージは行わない。
func (r *PostgresContactRepo) Replace(ctx context.Context, id string, c *model.Contact) (bool, error) {
	contactID, err := parseContactID(id)
	if err != nil {
		return false, err
	}

	doc, err := encodeContactDocument(c)
	if err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE contacts SET doc = $1::jsonb, updated_at = now() WHERE id = $2`,
		doc, contactID,
	)
	if isUniqueViolation(err) {
		return false, model.NewDuplicateContactError()
	}
	if err != nil {
		return false, fmt.Errorf("failed to update contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Delete は指定IDの連絡先を削除する。
func (r *PostgresContactRepo) Delete(ctx context.Context, id string) (bool, error) {
	contactID, err := parseContactID(id)
	if err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, contactID)
	if err != nil {
		return false, fmt.Errorf("failed to delete contact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanContact は1行を読み取り、外部表現の連絡先に変換する。
// sql.ErrNoRowsはラップせずにそのまま返す。
func scanContact(s rowScanner) (*model.Contact, error) {
	var (
		id  uuid.UUID
		doc []byte
	)
	if err := s.Scan(&id, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}
	return decodeContactRow(id, doc)
}

// isUniqueViolation はerrがPostgreSQLの一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

// compile-time interface check
var _ ContactRepository = (*PostgresContactRepo)(nil)
