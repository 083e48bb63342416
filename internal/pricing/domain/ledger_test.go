package domain

import "testing"

func TestLedgerDefaults(t *testing.T) {
	l := NewCashFlowLedger(3, 50)
	if l.NumPaths() != 3 {
		t.Fatalf("NumPaths = %d, want 3", l.NumPaths())
	}
	for i := 0; i < 3; i++ {
		step, amount := l.Realized(i)
		if step != 50 || amount != 0 {
			t.Fatalf("path %d default = (%d, %v), want (50, 0)", i, step, amount)
		}
	}
}

func TestLedgerEarlierExerciseOverrides(t *testing.T) {
	l := NewCashFlowLedger(2, 50)

	l.Record(0, 40, 3.5)
	l.Record(0, 10, 7.25) // 后向归纳中更早的行权覆盖之前的记录

	step, amount := l.Realized(0)
	if step != 10 || amount != 7.25 {
		t.Fatalf("Realized(0) = (%d, %v), want (10, 7.25)", step, amount)
	}

	// 其他路径不受影响
	step, amount = l.Realized(1)
	if step != 50 || amount != 0 {
		t.Fatalf("Realized(1) = (%d, %v), want (50, 0)", step, amount)
	}
}
