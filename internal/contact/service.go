package contact

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/contactbook/internal/metrics"
	"github.com/hitoshi/contactbook/internal/model"
	"github.com/hitoshi/contactbook/internal/repository"
)

// 操作名（メトリクスのopラベル）
const (
	opList   = "list"
	opGet    = "get"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// ServiceConfig はServiceの設定。
type ServiceConfig struct {
	// UniqueFirstName がtrueの場合、作成時の重複判定にfnameを含める。
	UniqueFirstName bool
}

// Service は連絡先CRUDのサービス層。
// アプリケーションとドキュメントストアの唯一の境界として、
// スキーマ検証、一意性・存在性の不変条件を担う。
//
// 一意性チェックは確認してから書き込む方式のため、同時作成では両方が通過し得る。
// email・phoneはストア側の一意インデックスで保護されるが、fnameはベストエフォート。
type Service struct {
	repo    repository.ContactRepository
	metrics metrics.MetricsCollector
	logger  *slog.Logger
	config  ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
// collectorがnilの場合はメトリクスを記録しない。
func NewService(repo repository.ContactRepository, collector metrics.MetricsCollector, logger *slog.Logger, config ServiceConfig) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:    repo,
		metrics: collector,
		logger:  logger,
		config:  config,
	}
}

// List は全連絡先をストアの既定の順序で返す。
func (s *Service) List(ctx context.Context) ([]*model.Contact, error) {
	contacts, err := s.repo.FindAll(ctx)
	s.record(opList, err)
	if err != nil {
		return nil, fmt.Errorf("連絡先一覧の取得に失敗しました: %w", err)
	}
	return contacts, nil
}

// Get は指定IDの連絡先を返す。
// IDの形式が不正な場合はINVALID_CONTACT_ID、存在しない場合はCONTACT_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.Contact, error) {
	c, err := s.get(ctx, id)
	s.record(opGet, err)
	return c, err
}

func (s *Service) get(ctx context.Context, id string) (*model.Contact, error) {
	if !repository.ValidContactID(id) {
		return nil, model.NewInvalidContactIDError(id)
	}

	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("連絡先の取得に失敗しました: %w", err)
	}
	if c == nil {
		return nil, model.NewContactNotFoundError(id)
	}
	return c, nil
}

// Create は連絡先を作成し、ストアが採番したIDを含む保存後のレコードを返す。
// email、phone、fnameのいずれかが既存レコードと一致する場合はDUPLICATE_CONTACTを返す。
// クライアントが指定したIDは破棄する。
func (s *Service) Create(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	created, err := s.create(ctx, c)
	s.record(opCreate, err)
	return created, err
}

func (s *Service) create(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	if err := Validate(c); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindConflict(ctx, c, s.config.UniqueFirstName)
	if err != nil {
		return nil, fmt.Errorf("重複チェックに失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateContactError()
	}

	input := *c
	input.ID = ""

	id, err := s.repo.Insert(ctx, &input)
	if err != nil {
		return nil, fmt.Errorf("連絡先の作成に失敗しました: %w", err)
	}

	created, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("作成した連絡先の取得に失敗しました: %w", err)
	}
	if created == nil {
		return nil, model.NewContactNotFoundError(id)
	}

	s.logger.Info("連絡先を作成しました",
		slog.String("contact_id", id),
	)

	return created, nil
}

// Update はID以外の全フィールドを置き換え、更新後のレコードを返す。
// 部分マージは行わない。入力のIDは無視する。
func (s *Service) Update(ctx context.Context, id string, c *model.Contact) (*model.Contact, error) {
	updated, err := s.update(ctx, id, c)
	s.record(opUpdate, err)
	return updated, err
}

func (s *Service) update(ctx context.Context, id string, c *model.Contact) (*model.Contact, error) {
	if !repository.ValidContactID(id) {
		return nil, model.NewInvalidContactIDError(id)
	}
	if err := Validate(c); err != nil {
		return nil, err
	}

	input := *c
	input.ID = ""

	matched, err := s.repo.Replace(ctx, id, &input)
	if err != nil {
		return nil, fmt.Errorf("連絡先の更新に失敗しました: %w", err)
	}
	if !matched {
		return nil, model.NewContactNotFoundError(id)
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("更新した連絡先の取得に失敗しました: %w", err)
	}
	if updated == nil {
		return nil, model.NewContactNotFoundError(id)
	}

	s.logger.Info("連絡先を更新しました",
		slog.String("contact_id", id),
	)

	return updated, nil
}

// Delete は指定IDの連絡先を削除する。
// 存在しない場合はCONTACT_NOT_FOUNDを返すため、2回目の削除はエラーになる。
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.delete(ctx, id)
	s.record(opDelete, err)
	return err
}

func (s *Service) delete(ctx context.Context, id string) error {
	if !repository.ValidContactID(id) {
		return model.NewInvalidContactIDError(id)
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("連絡先の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewContactNotFoundError(id)
	}

	s.logger.Info("連絡先を削除しました",
		slog.String("contact_id", id),
	)

	return nil
}

// record は操作結果をメトリクスに記録する。
func (s *Service) record(op string, err error) {
	s.metrics.RecordContactOperation(op, resultLabel(err))
}

// resultLabel はエラーをメトリクスのresultラベルに変換する。
func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case model.HasCode(err, model.ErrCodeValidationFailed):
		return metrics.ResultValidation
	case model.HasCode(err, model.ErrCodeInvalidContactID):
		return metrics.ResultInvalidID
	case model.HasCode(err, model.ErrCodeDuplicateContact):
		return metrics.ResultDuplicate
	case model.HasCode(err, model.ErrCodeContactNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}
