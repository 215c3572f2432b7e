package billing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func lineTotals(pairs ...[2]string) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, LineTotal(d(p[0]), d(p[1])))
	}
	return out
}

func TestLineTotalRounding(t *testing.T) {
	tests := []struct {
		qty, price, want string
	}{
		{"1", "89.00", "89.00"},
		{"1.5", "95.00", "142.50"},
		{"0.1", "85.00", "8.50"},
		{"4", "4.5", "18.00"},
		{"3", "0.333", "1.00"},  // 0.999 rounds up
		{"1", "0.005", "0.01"},  // half rounds away from zero
		{"0", "99.99", "0.00"},
	}
	for _, tt := range tests {
		got := LineTotal(d(tt.qty), d(tt.price))
		if !got.Equal(d(tt.want)) {
			t.Errorf("LineTotal(%s, %s) = %s, want %s", tt.qty, tt.price, got, tt.want)
		}
	}
}

func TestComputeTotalsWorkshopInvoice(t *testing.T) {
	// 89 + 25 + 185 + 142.50 + 8.50 = 450.00 net at 19%
	lts := lineTotals(
		[2]string{"1", "89.00"},
		[2]string{"1", "25.00"},
		[2]string{"1", "185.00"},
		[2]string{"1.5", "95.00"},
		[2]string{"0.1", "85.00"},
	)
	tot := ComputeTotals(lts, d("19"), decimal.Zero)
	if !tot.Net.Equal(d("450.00")) {
		t.Fatalf("net = %s, want 450.00", tot.Net)
	}
	if !tot.Tax.Equal(d("85.50")) {
		t.Fatalf("tax = %s, want 85.50", tot.Tax)
	}
	if !tot.Gross.Equal(d("535.50")) {
		t.Fatalf("gross = %s, want 535.50", tot.Gross)
	}
}

func TestComputeTotalsTireService(t *testing.T) {
	lts := lineTotals(
		[2]string{"4", "15.00"},
		[2]string{"4", "8.00"},
		[2]string{"1", "45.00"},
		[2]string{"4", "4.5"},
		[2]string{"1", "40.00"},
	)
	wantLines := []string{"60.00", "32.00", "45.00", "18.00", "40.00"}
	for i, w := range wantLines {
		if !lts[i].Equal(d(w)) {
			t.Errorf("line %d = %s, want %s", i+1, lts[i], w)
		}
	}
	tot := ComputeTotals(lts, d("19"), decimal.Zero)
	if !tot.Net.Equal(d("195.00")) || !tot.Tax.Equal(d("37.05")) || !tot.Gross.Equal(d("232.05")) {
		t.Fatalf("totals = %s/%s/%s, want 195.00/37.05/232.05", tot.Net, tot.Tax, tot.Gross)
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	tot := ComputeTotals(nil, d("19"), decimal.Zero)
	for name, v := range map[string]decimal.Decimal{
		"net": tot.Net, "tax": tot.Tax, "gross": tot.Gross, "discount": tot.DiscountAmount,
	} {
		if !v.IsZero() {
			t.Errorf("%s = %s, want 0", name, v)
		}
	}
}

func TestComputeTotalsDiscountBeforeTax(t *testing.T) {
	// 200 net, 10% discount -> 180 net, tax on 180 not on 200.
	lts := lineTotals([2]string{"2", "100.00"})
	tot := ComputeTotals(lts, d("19"), d("10"))
	if !tot.NetBeforeDiscount.Equal(d("200.00")) {
		t.Fatalf("net before discount = %s", tot.NetBeforeDiscount)
	}
	if !tot.DiscountAmount.Equal(d("20.00")) {
		t.Fatalf("discount = %s, want 20.00", tot.DiscountAmount)
	}
	if !tot.Net.Equal(d("180.00")) {
		t.Fatalf("net = %s, want 180.00", tot.Net)
	}
	if !tot.Tax.Equal(d("34.20")) {
		t.Fatalf("tax = %s, want 34.20 (computed on post-discount net)", tot.Tax)
	}
	if !tot.Gross.Equal(d("214.20")) {
		t.Fatalf("gross = %s, want 214.20", tot.Gross)
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	lts := lineTotals([2]string{"1.5", "95.00"}, [2]string{"0.1", "85.00"})
	a := ComputeTotals(lts, d("19"), d("3"))
	b := ComputeTotals(lts, d("19"), d("3"))
	if a.Net.String() != b.Net.String() || a.Tax.String() != b.Tax.String() || a.Gross.String() != b.Gross.String() || a.DiscountAmount.String() != b.DiscountAmount.String() {
		t.Fatalf("repeated computation differs: %#v vs %#v", a, b)
	}
}

func TestComputeTotalsAdditivity(t *testing.T) {
	// Regrouping lines never changes the net sum because every line is
	// rounded exactly once, independent of grouping.
	all := lineTotals(
		[2]string{"1.5", "95.00"},
		[2]string{"0.1", "85.00"},
		[2]string{"3", "0.333"},
		[2]string{"2.5", "19.99"},
		[2]string{"0.25", "120.00"},
	)
	for split := 0; split <= len(all); split++ {
		a := ComputeTotals(all[:split], d("19"), decimal.Zero)
		b := ComputeTotals(all[split:], d("19"), decimal.Zero)
		whole := ComputeTotals(all, d("19"), decimal.Zero)
		if !a.Net.Add(b.Net).Equal(whole.Net) {
			t.Errorf("split at %d: %s + %s != %s", split, a.Net, b.Net, whole.Net)
		}
	}
}

func TestComputeTotalsTaxConsistency(t *testing.T) {
	rates := []string{"0", "7", "19"}
	lts := lineTotals([2]string{"1", "33.37"}, [2]string{"2.5", "14.01"})
	for _, r := range rates {
		tot := ComputeTotals(lts, d(r), decimal.Zero)
		if !Round2(tot.Net.Mul(d(r)).Div(decimal.NewFromInt(100))).Equal(tot.Tax) {
			t.Errorf("rate %s: tax %s inconsistent with net %s", r, tot.Tax, tot.Net)
		}
		if !tot.Net.Add(tot.Tax).Equal(tot.Gross) {
			t.Errorf("rate %s: net+tax != gross", r)
		}
	}
}
