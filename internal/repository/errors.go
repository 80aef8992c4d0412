package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// 更新後の在庫がマイナスになる
	ErrNegativeStock = errors.New("quantity cannot be negative")

	// カート数量がマイナス
	ErrInvalidQuantity = errors.New("invalid quantity")
)
