package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"techshop/internal/domain/model"
	"techshop/internal/metrics"
	repo "techshop/internal/repository"

	log "github.com/sirupsen/logrus"
)

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	orders    repo.OrderRepository
	auditRepo repo.AuditLogRepository
	clock     Clock
	metrics   *metrics.ShopMetrics
	logger    *log.Entry
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	auditRepo repo.AuditLogRepository,
	clock Clock,
	m *metrics.ShopMetrics,
	logger *log.Entry,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:        tx,
		orders:    orders,
		auditRepo: auditRepo,
		clock:     clock,
		metrics:   m,
		logger:    logger.WithField("usecase", "admin_order"),
	}
}

type AdminUpdateOrderStateInput struct {
	State string
}

// 注文一覧（新しい順）
func (u *AdminOrderUsecase) List(ctx context.Context) ([]repo.OrderDataTableRow, error) {
	rows, err := u.orders.GetAll(ctx)
	if err != nil {
		return []repo.OrderDataTableRow{}, dbError(u.logger, "list orders", err)
	}
	return rows, nil
}

// 割引情報付きの注文一覧
func (u *AdminOrderUsecase) ListWithDiscount(ctx context.Context) ([]repo.OrderWithDiscountRow, error) {
	rows, err := u.orders.GetAllWithDiscountOrderByDescending(ctx)
	if err != nil {
		return []repo.OrderWithDiscountRow{}, dbError(u.logger, "list orders with discount", err)
	}
	return rows, nil
}

// stateを更新する（CANCELEDなら在庫戻し）
func (u *AdminOrderUsecase) UpdateState(ctx context.Context, actorAdminUserID string, orderID string, in AdminUpdateOrderStateInput) (OrderOutput, error) {
	if actorAdminUserID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(orderID) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newState := model.OrderState(strings.ToUpper(strings.TrimSpace(in.State)))
	if !newState.Valid() {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid state")
	}

	var out OrderOutput
	var released int64
	changed := false

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//同時に状態変更されると在庫が二重に戻るので行ロック
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(u.logger, "find order", err)
		}

		// すでに同じなら何もしない
		if o.State == newState {
			out = toOrderOutput(o)
			return nil
		}
		// 終端ガード
		if o.State.Terminal() {
			return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("cannot change %s order", strings.ToLower(string(o.State))))
		}

		if newState == model.OrderStateCanceled {
			for _, d := range o.Details {
				err := r.Inventory().AdjustStock(ctx, d.ProductID, d.Quantity)
				//商品が消えていたら戻し先がないのでスキップ
				if errors.Is(err, repo.ErrNotFound) {
					u.logger.WithFields(log.Fields{"order_id": orderID, "product_id": d.ProductID}).Warn("product missing on cancel")
					continue
				}
				if err != nil {
					return dbError(u.logger, "restore stock", err)
				}
				released += d.Quantity
			}
		}

		updated, err := r.Orders().UpdateState(ctx, orderID, newState)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return dbError(u.logger, "update order state", err)
		}

		//監査ログ（UPDATE_ORDER_STATE）
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderState,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   fmt.Sprintf(`{"state":%q}`, o.State),
			AfterJSON:    fmt.Sprintf(`{"state":%q}`, newState),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return dbError(u.logger, "create audit log", err)
		}

		out = toOrderOutput(updated)
		changed = true
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	if changed {
		u.metrics.RecordOrderState(string(newState))
		u.metrics.RecordStockDelta(released)
		u.logger.WithFields(log.Fields{
			"order_id": orderID,
			"state":    newState,
			"actor":    actorAdminUserID,
		}).Info("order state updated")
	}
	return out, nil
}

type ListAuditLogsInput struct {
	ActorUserID  string
	Action       string
	ResourceType string
	ResourceID   string
	From         string
	To           string
	Limit        int
	Offset       int
}

func (u *AdminOrderUsecase) ListAuditLogs(ctx context.Context, in ListAuditLogsInput) ([]model.AuditLog, error) {
	if in.Limit < 0 || in.Limit > repo.MaxAuditLogLimit {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Offset < 0 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	f := repo.AuditLogFilter{Limit: in.Limit, Offset: in.Offset}
	if s := strings.TrimSpace(in.ActorUserID); s != "" {
		f.ActorUserID = &s
	}
	if s := strings.TrimSpace(in.Action); s != "" {
		a := model.AuditAction(strings.ToUpper(s))
		f.Action = &a
	}
	if s := strings.TrimSpace(in.ResourceType); s != "" {
		rt := model.AuditResourceType(strings.ToLower(s))
		f.ResourceType = &rt
	}
	if s := strings.TrimSpace(in.ResourceID); s != "" {
		f.ResourceID = &s
	}

	var ok bool
	if in.From != "" {
		if f.CreatedFrom, ok = parseDateTimeRFC3339(in.From); !ok {
			return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid from")
		}
	}
	if in.To != "" {
		if f.CreatedTo, ok = parseDateTimeRFC3339(in.To); !ok {
			return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid to")
		}
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, dbError(u.logger, "list audit logs", err)
	}
	return logs, nil
}

// 期間パラメータ（RFC3339）
func parseDateTimeRFC3339(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
