package reports

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeStampDuty(t *testing.T) {

	cases := []struct {
		name   string
		amount float64
		want   float64
	}{
		{"zero", 0, 0},
		{"below floor", 30, 0},
		{"at floor", 50, 0},
		// (250-50)*0.004 = 0.8
		{"first tier ceiling", 250, 0.8},
		// 0.8 + (300-250)*0.005 = 1.05
		{"into second tier", 300, 1.05},
		// 0.8 + (500-250)*0.005 = 2.05
		{"second tier ceiling", 500, 2.05},
		// 2.05 + (2000-500)*0.006 = 11.05
		{"third tier ceiling", 2000, 11.05},
		// 11.05 + (10000-2000)*0.007 = 67.05
		{"fourth tier ceiling", 10000, 67.05},
		// 67.05 + (20000-10000)*0.008 = 147.05
		{"top tier", 20000, 147.05},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeStampDuty(decimal.NewFromFloat(tc.amount))
			if !got.Equal(decimal.NewFromFloat(tc.want)) {
				t.Fatalf("ComputeStampDuty(%v) = %s, want %v", tc.amount, got, tc.want)
			}
		})
	}
}

func TestComputeStampDutyNegativeAmount(t *testing.T) {
	if got := ComputeStampDuty(decimal.NewFromInt(-100)); !got.IsZero() {
		t.Fatalf("duty on negative amount = %s, want 0", got)
	}
}
