package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Carts() CartRepository
	Orders() OrderRepository
	Products() ProductRepository
	Inventory() InventoryRepository
	AuditLogs() AuditLogRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがerrorを返したら全部rollback、nilならまとめてcommit
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
