package domain

// CashFlowLedger 逐路径现金流台账。
// 每条路径至多一笔非零现金流，记录发生的时间步与金额；
// 后向归纳中较早的行权覆盖较晚的记录。
type CashFlowLedger struct {
	amounts  []float64
	steps    []int
	numSteps int
}

// NewCashFlowLedger 创建台账，初始所有路径现金流为零、时间步为到期步
func NewCashFlowLedger(numPaths, numSteps int) *CashFlowLedger {
	l := &CashFlowLedger{
		amounts:  make([]float64, numPaths),
		steps:    make([]int, numPaths),
		numSteps: numSteps,
	}
	for i := range l.steps {
		l.steps[i] = numSteps
	}
	return l
}

// Record 在路径 path 的时间步 step 记录一笔行权现金流，清除该路径此前的记录
func (l *CashFlowLedger) Record(path, step int, amount float64) {
	l.amounts[path] = amount
	l.steps[path] = step
}

// Realized 返回路径 path 的现金流 (时间步, 金额)；未行权路径金额为零
func (l *CashFlowLedger) Realized(path int) (int, float64) {
	return l.steps[path], l.amounts[path]
}

// NumPaths 台账覆盖的路径数
func (l *CashFlowLedger) NumPaths() int {
	return len(l.amounts)
}
