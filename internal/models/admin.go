// internal/models/admin.go
package models

import (
	"time"
)

type AuditLog struct {
	BaseModel
	UserID       *uint  `json:"userId" gorm:"index"`
	Action       string `json:"action" gorm:"size:100;not null;index"`
	ResourceType string `json:"resourceType" gorm:"size:50;not null;index"`
	ResourceID   *uint  `json:"resourceId" gorm:"index"`
	NewValues    JSONB  `json:"newValues" gorm:"type:jsonb"`
	StatusCode   int    `json:"statusCode"`
	IPAddress    string `json:"ipAddress" gorm:"size:45"`
	UserAgent    string `json:"userAgent" gorm:"type:text"`
}

// RevokedToken records a logged-out session token until it would have
// expired anyway.
type RevokedToken struct {
	TokenID   string    `gorm:"primaryKey;size:64"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}
