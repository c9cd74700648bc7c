// Copyright (c) 2026 BVK Chaitanya

package escrow

import (
	"context"
	"testing"

	"github.com/bvk/hashes/hashes"
	"github.com/bvk/hashes/price"
	"github.com/shopspring/decimal"
)

type fakeClient struct {
	balance     hashes.Balance
	uploads     []*hashes.Upload
	withdrawals []*hashes.Withdrawal
}

func (v *fakeClient) GetBalance(context.Context) (hashes.Balance, error) {
	return v.balance, nil
}

func (v *fakeClient) GetUploads(context.Context) ([]*hashes.Upload, error) {
	return append([]*hashes.Upload(nil), v.uploads...), nil
}

func (v *fakeClient) GetWithdrawals(context.Context) ([]*hashes.Withdrawal, error) {
	return v.withdrawals, nil
}

// fixedConverter converts every crypto currency at $2 and records the calls.
type fixedConverter struct {
	calls []string
}

func (v *fixedConverter) ToUSD(_ context.Context, amount decimal.Decimal, currency string) (*price.Conversion, error) {
	v.calls = append(v.calls, currency)
	if currency == price.Credits {
		return &price.Conversion{Converted: "N/A"}, nil
	}
	rate := decimal.NewFromInt(2)
	return &price.Conversion{Rate: &rate, Converted: price.FormatUSD(amount.Mul(rate))}, nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBalanceRows(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{balance: hashes.Balance{"BTC": d("0.5"), "XMR": d("0"), "credits": d("12")}}
	conv := new(fixedConverter)
	l := New(client, conv)

	rows, err := l.BalanceRows(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("want 3 rows, got %d", len(rows))
	}
	want := map[string]string{"BTC": "$1.000", "XMR": ZeroUSD, "credits": "N/A"}
	for _, row := range rows {
		if row.USD != want[row.Currency] {
			t.Fatalf("currency %s: want %q, got %q", row.Currency, want[row.Currency], row.USD)
		}
	}
	if len(conv.calls) != 2 {
		t.Fatalf("zero amounts must not be converted, got calls %v", conv.calls)
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{uploads: []*hashes.Upload{{ID: 1}, {ID: 2}, {ID: 3}}}
	l := New(client, new(fixedConverter))

	uploads, err := l.History(ctx, &HistoryOptions{Reverse: true, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(uploads) != 2 || uploads[0].ID != 3 || uploads[1].ID != 2 {
		t.Fatalf("unexpected uploads %v", uploads)
	}

	uploads, err = l.History(ctx, &HistoryOptions{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(uploads) != 1 || uploads[0].ID != 1 {
		t.Fatalf("unexpected uploads %v", uploads)
	}
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()
	uploads := []*hashes.Upload{
		{Algorithm: "MD5", TotalHashes: 10, ValidHashes: 8, BTC: d("0.001")},
		{Algorithm: "NTLM", TotalHashes: 5, ValidHashes: 5, BTC: d("0.01"), XMR: d("0.2")},
		{Algorithm: "MD5", TotalHashes: 3, ValidHashes: 1, BTC: d("0.0005"), LTC: d("0.03")},
	}
	agg := AggregateUploads(uploads)
	if len(agg.Algorithms) != 2 || agg.Algorithms[0].Algorithm != "NTLM" {
		t.Fatalf("want NTLM first by BTC earnings, got %v", agg.Algorithms)
	}
	md5 := agg.Algorithms[1]
	if md5.Submitted != 13 || md5.Valid != 9 || !md5.BTC.Equal(d("0.0015")) {
		t.Fatalf("unexpected md5 earnings %+v", md5.Earnings)
	}
	if agg.Total.Submitted != 18 || agg.Total.Valid != 14 {
		t.Fatalf("unexpected totals %+v", agg.Total)
	}

	l := New(&fakeClient{}, new(fixedConverter))
	rows, err := l.Totals(ctx, &agg.Total)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].USD != "$0.023" || rows[1].USD != "$0.400" || rows[2].USD != "$0.060" {
		t.Fatalf("unexpected usd totals %s %s %s", rows[0].USD, rows[1].USD, rows[2].USD)
	}
}

func TestWithdrawals(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{withdrawals: []*hashes.Withdrawal{
		{ID: 1, Currency: "BTC", Amount: d("0.1"), AfterFee: d("0.09")},
		{ID: 2, Currency: "LTC", Amount: d("0"), AfterFee: d("0")},
	}}
	l := New(client, new(fixedConverter))
	rows, err := l.Withdrawals(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].USD != "$0.180" || rows[1].USD != ZeroUSD {
		t.Fatalf("unexpected usd values %q %q", rows[0].USD, rows[1].USD)
	}
}
