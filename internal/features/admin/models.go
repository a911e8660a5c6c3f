// Package admin реализует доступ к админ-командам бота:
// аутентификацию по паролю и сессии.
// models.go описывает структуры сессий.
package admin

import "time"

// Session — активная админ-сессия.
type Session struct {
	ID              int64
	UserID          int64
	SessionToken    string
	AuthenticatedAt time.Time
	ExpiresAt       time.Time
	IsActive        bool
}
