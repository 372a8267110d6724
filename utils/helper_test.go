package utils

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRound2(t *testing.T) {

	cases := []struct {
		in   string
		want string
	}{
		{"90.909", "90.91"},
		{"33.333", "33.33"},
		{"2.005", "2.01"},
		{"-1.005", "-1.01"},
		{"100", "100"},
	}
	for _, tc := range cases {
		in, _ := decimal.NewFromString(tc.in)
		want, _ := decimal.NewFromString(tc.want)
		if got := Round2(in); !got.Equal(want) {
			t.Fatalf("Round2(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestExecTemplateConditionalClause(t *testing.T) {

	tmpl := `SELECT 1 {{- if .branchId }} WHERE branch_id = @branchId {{- end }}`

	withBranch, err := ExecTemplate(tmpl, map[string]interface{}{"branchId": 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(withBranch, "branch_id = @branchId") {
		t.Fatalf("clause missing from rendered sql: %q", withBranch)
	}

	withoutBranch, err := ExecTemplate(tmpl, map[string]interface{}{"branchId": 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(withoutBranch, "branch_id") {
		t.Fatalf("clause should be omitted: %q", withoutBranch)
	}
}

func TestNilIfEmpty(t *testing.T) {
	if NilIfEmpty(0) != nil {
		t.Fatalf("zero int should map to nil")
	}
	if v := NilIfEmpty(5); v == nil || *v != 5 {
		t.Fatalf("non-zero int should round-trip")
	}
}
