package service

// Decision 受限内容的处理决定
type Decision int

const (
	// DecisionProceed 保存占位帖子
	DecisionProceed Decision = iota
	// DecisionAbort 不保存, 以提示性结果结束
	DecisionAbort
)

func (d Decision) String() string {
	if d == DecisionAbort {
		return "abort"
	}
	return "proceed"
}

// ApplyRestrictedPolicy 根据用户设置决定受限内容如何处理
func ApplyRestrictedPolicy(skipRestricted bool) Decision {
	if skipRestricted {
		return DecisionAbort
	}
	return DecisionProceed
}
