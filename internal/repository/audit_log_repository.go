package repository

import (
	"context"
	"time"

	"techshop/internal/domain/model"
)

// 監査ログ一覧の件数
const (
	DefaultAuditLogLimit = 50
	MaxAuditLogLimit     = 200
)

// 管理操作（在庫変更・注文状態変更）の監査ログ検索条件。nilは条件なし
// ResourceID は ResourceType と組み合わせて注文ID/商品IDとして扱う
type AuditLogFilter struct {
	ActorUserID  *string
	Action       *model.AuditAction
	ResourceType *model.AuditResourceType
	ResourceID   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

type AuditLogRepository interface {
	// 管理操作と同じトランザクションで書く（TxRepos.AuditLogs()経由）
	Create(ctx context.Context, log model.AuditLog) error
	// 新しい順
	List(ctx context.Context, filter AuditLogFilter) ([]model.AuditLog, error)
}
