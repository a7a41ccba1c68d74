package idempotency

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"paygrid/internal/platform/db"
)

type idempotencyModel struct {
	TenantID     string    `gorm:"column:tenant_id;uniqueIndex:ux_idempotency_scope"`
	Key          string    `gorm:"column:key;uniqueIndex:ux_idempotency_scope"`
	Method       string    `gorm:"column:method;uniqueIndex:ux_idempotency_scope"`
	Path         string    `gorm:"column:path;uniqueIndex:ux_idempotency_scope"`
	StatusCode   int       `gorm:"column:status_code"`
	ResponseBody []byte    `gorm:"column:response_body"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	ExpiresAt    time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "idempotency_records"
}

// PostgresStore persists idempotency records through gorm. The composite
// unique index over (tenant_id, key, method, path) is the serialization point
// for concurrent identical requests.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(gormDB *gorm.DB) *PostgresStore {
	return &PostgresStore{db: gormDB}
}

func (s *PostgresStore) Find(ctx context.Context, tenantID uuid.UUID, key string, method string, path string, now time.Time) (Record, bool, error) {
	var row idempotencyModel
	err := s.db.WithContext(ctx).
		Scopes(db.TenantScope(tenantID)).
		Where("key = ? AND method = ? AND path = ?", strings.TrimSpace(key), method, path).
		Where("expires_at > ?", now.UTC()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	return rowToRecord(row), true, nil
}

func (s *PostgresStore) Insert(ctx context.Context, record Record) (Record, bool, error) {
	row := idempotencyModel{
		TenantID:     record.TenantID.String(),
		Key:          strings.TrimSpace(record.Key),
		Method:       record.Method,
		Path:         record.Path,
		StatusCode:   record.StatusCode,
		ResponseBody: append([]byte(nil), record.ResponseBody...),
		CreatedAt:    record.CreatedAt.UTC(),
		ExpiresAt:    record.ExpiresAt.UTC(),
	}

	var winner idempotencyModel
	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// An expired row still occupies the unique index slot. Clear it
		// first so the fresh outcome can be recorded; the predicate keeps
		// live rows untouched.
		if err := tx.
			Where("tenant_id = ? AND key = ? AND method = ? AND path = ?", row.TenantID, row.Key, row.Method, row.Path).
			Where("expires_at <= ?", row.CreatedAt).
			Delete(&idempotencyModel{}).
			Error; err != nil {
			return err
		}

		result := tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "tenant_id"}, {Name: "key"}, {Name: "method"}, {Name: "path"},
				},
				DoNothing: true,
			}).
			Create(&row)
		if result.Error != nil {
			if !isUniqueViolation(result.Error) {
				return result.Error
			}
		} else if result.RowsAffected > 0 {
			created = true
			return nil
		}

		// Zero rows affected: a concurrent request inserted first. Re-read
		// the live winner and hand it back instead of surfacing the
		// conflict.
		return tx.
			Scopes(db.TenantScope(record.TenantID)).
			Where("key = ? AND method = ? AND path = ?", row.Key, row.Method, row.Path).
			Where("expires_at > ?", row.CreatedAt).
			First(&winner).
			Error
	})
	if err != nil {
		return Record{}, false, err
	}
	if created {
		return record, true, nil
	}
	return rowToRecord(winner), false, nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&idempotencyModel{})
	return result.RowsAffected, result.Error
}

func rowToRecord(row idempotencyModel) Record {
	tenantID, _ := uuid.Parse(row.TenantID)
	record := Record{
		TenantID:   tenantID,
		Key:        row.Key,
		Method:     row.Method,
		Path:       row.Path,
		StatusCode: row.StatusCode,
		CreatedAt:  row.CreatedAt.UTC(),
		ExpiresAt:  row.ExpiresAt.UTC(),
	}
	if len(row.ResponseBody) > 0 {
		record.ResponseBody = append([]byte(nil), row.ResponseBody...)
	}
	return record
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
