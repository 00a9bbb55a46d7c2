package util

import (
	"fmt"
	"strings"
)

// ValidateAmount 验证金额（必须为正数且不超过上限）
func ValidateAmount(amountCent int64) error {
	if amountCent <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amountCent)
	}
	if amountCent >= 1_000_000_000 { // 限制最大金额为1千万元
		return fmt.Errorf("amount too large, got %d", amountCent)
	}
	return nil
}

// ValidateEntryType 验证账目类型（income / expense）
func ValidateEntryType(t string) error {
	if t != "income" && t != "expense" {
		return fmt.Errorf("invalid entry type: %q", t)
	}
	return nil
}

// ValidateLedgerName 验证账本名称（不能为空且长度合理）
func ValidateLedgerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("ledger name is empty")
	}
	if len([]rune(name)) > 32 {
		return fmt.Errorf("ledger name too long, max 32 characters")
	}
	return nil
}
