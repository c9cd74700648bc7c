// Copyright (c) 2026 BVK Chaitanya

// Package escrow reports the account balance, paid upload history and
// withdrawal requests.
package escrow

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bvk/hashes/hashes"
	"github.com/bvk/hashes/price"
	"github.com/shopspring/decimal"
)

// Client is the subset of the escrow api used by the ledger.
type Client interface {
	GetBalance(ctx context.Context) (hashes.Balance, error)
	GetUploads(ctx context.Context) ([]*hashes.Upload, error)
	GetWithdrawals(ctx context.Context) ([]*hashes.Withdrawal, error)
}

// Converter converts currency amounts to USD.
type Converter interface {
	ToUSD(ctx context.Context, amount decimal.Decimal, currency string) (*price.Conversion, error)
}

// ZeroUSD is displayed for zero amounts, which are never converted.
const ZeroUSD = "$0.00"

type Ledger struct {
	client    Client
	converter Converter
}

func New(client Client, converter Converter) *Ledger {
	return &Ledger{client: client, converter: converter}
}

type BalanceRow struct {
	Currency string
	Amount   decimal.Decimal
	USD      string
}

// Balance returns the account balance for all currencies.
func (l *Ledger) Balance(ctx context.Context) (hashes.Balance, error) {
	return l.client.GetBalance(ctx)
}

// BalanceRows returns the balance with USD values ordered by the currency
// name.
func (l *Ledger) BalanceRows(ctx context.Context) ([]*BalanceRow, error) {
	balance, err := l.client.GetBalance(ctx)
	if err != nil {
		return nil, err
	}
	var rows []*BalanceRow
	for currency, amount := range balance {
		usd, err := l.usd(ctx, amount, currency)
		if err != nil {
			return nil, err
		}
		rows = append(rows, &BalanceRow{Currency: currency, Amount: amount, USD: usd})
	}
	slices.SortFunc(rows, func(a, b *BalanceRow) int {
		return strings.Compare(a.Currency, b.Currency)
	})
	return rows, nil
}

// Credits returns the lookup credits held by the account.
func (l *Ledger) Credits(ctx context.Context) (decimal.Decimal, error) {
	balance, err := l.client.GetBalance(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return balance[price.Credits], nil
}

func (l *Ledger) usd(ctx context.Context, amount decimal.Decimal, currency string) (string, error) {
	if !amount.IsPositive() {
		return ZeroUSD, nil
	}
	c, err := l.converter.ToUSD(ctx, amount, currency)
	if err != nil {
		return "", fmt.Errorf("could not convert %s to usd: %w", currency, err)
	}
	return c.Converted, nil
}

type HistoryOptions struct {
	// Reverse lists the most recent uploads first.
	Reverse bool

	// Limit if positive is the maximum number of uploads.
	Limit int
}

// History returns the upload history. Reverse is applied before the limit.
func (l *Ledger) History(ctx context.Context, opts *HistoryOptions) ([]*hashes.Upload, error) {
	uploads, err := l.client.GetUploads(ctx)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		return uploads, nil
	}
	if opts.Reverse {
		slices.Reverse(uploads)
	}
	if opts.Limit > 0 && len(uploads) > opts.Limit {
		uploads = uploads[:opts.Limit]
	}
	return uploads, nil
}

type WithdrawalRow struct {
	*hashes.Withdrawal

	USD string
}

// Withdrawals returns the withdrawal requests with the USD value of the
// amount after fees.
func (l *Ledger) Withdrawals(ctx context.Context) ([]*WithdrawalRow, error) {
	list, err := l.client.GetWithdrawals(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]*WithdrawalRow, 0, len(list))
	for _, w := range list {
		usd, err := l.usd(ctx, w.AfterFee.Round(7), w.Currency)
		if err != nil {
			return nil, err
		}
		rows = append(rows, &WithdrawalRow{Withdrawal: w, USD: usd})
	}
	return rows, nil
}
