// internal/services/revocation.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/fashion-storefront/internal/models"
)

// TokenRevoker keeps the server-side list of logged-out session tokens.
// Entries only need to live until the token's own expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// DBRevoker stores revoked token IDs in the revoked_tokens table. It is the
// fallback when Redis is not configured.
type DBRevoker struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDBRevoker(db *gorm.DB) *DBRevoker {
	return &DBRevoker{db: db, now: time.Now}
}

func (r *DBRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("token id is required")
	}

	entry := &models.RevokedToken{TokenID: tokenID, ExpiresAt: expiresAt}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error; err != nil {
		return err
	}

	// Opportunistic cleanup of entries whose tokens have expired anyway.
	if err := r.db.WithContext(ctx).Where("expires_at < ?", r.now()).Delete(&models.RevokedToken{}).Error; err != nil {
		logrus.WithError(err).Warn("Failed to purge expired revoked tokens")
	}
	return nil
}

func (r *DBRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.RevokedToken{}).
		Where("token_id = ?", tokenID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
