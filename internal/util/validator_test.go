package util

import (
	"strings"
	"testing"
)

// TestValidateAmount_Positive 测试正数金额
func TestValidateAmount_Positive(t *testing.T) {
	testCases := []int64{1, 100, 10050, 999999999}

	for _, amount := range testCases {
		err := ValidateAmount(amount)
		if err != nil {
			t.Errorf("ValidateAmount(%d) error = %v, want nil", amount, err)
		}
	}
}

// TestValidateAmount_Zero 测试零金额（异常）
func TestValidateAmount_Zero(t *testing.T) {
	err := ValidateAmount(0)

	if err == nil {
		t.Error("ValidateAmount(0) error = nil, want error")
	}
}

// TestValidateAmount_Negative 测试负数金额（异常）
func TestValidateAmount_Negative(t *testing.T) {
	testCases := []int64{-1, -100, -999999}

	for _, amount := range testCases {
		err := ValidateAmount(amount)
		if err == nil {
			t.Errorf("ValidateAmount(%d) error = nil, want error", amount)
		}
	}
}

// TestValidateAmount_TooLarge 测试金额过大（异常）
func TestValidateAmount_TooLarge(t *testing.T) {
	err := ValidateAmount(1_000_000_000) // 1千万元

	if err == nil {
		t.Error("ValidateAmount(1000000000) error = nil, want error")
	}
}

// TestValidateEntryType_Valid 测试有效账目类型
func TestValidateEntryType_Valid(t *testing.T) {
	for _, typ := range []string{"income", "expense"} {
		if err := ValidateEntryType(typ); err != nil {
			t.Errorf("ValidateEntryType(%q) error = %v, want nil", typ, err)
		}
	}
}

// TestValidateEntryType_Invalid 测试无效账目类型（异常）
func TestValidateEntryType_Invalid(t *testing.T) {
	testCases := []string{"", "INCOME", "transfer", "支出"}

	for _, typ := range testCases {
		if err := ValidateEntryType(typ); err == nil {
			t.Errorf("ValidateEntryType(%q) error = nil, want error", typ)
		}
	}
}

// TestValidateLedgerName_Valid 测试有效账本名称
func TestValidateLedgerName_Valid(t *testing.T) {
	testCases := []string{"家庭账本", "2024 旅行", "a", strings.Repeat("长", 32)}

	for _, name := range testCases {
		if err := ValidateLedgerName(name); err != nil {
			t.Errorf("ValidateLedgerName(%q) error = %v, want nil", name, err)
		}
	}
}

// TestValidateLedgerName_Empty 测试空名称（异常）
func TestValidateLedgerName_Empty(t *testing.T) {
	for _, name := range []string{"", "   ", "\t"} {
		if err := ValidateLedgerName(name); err == nil {
			t.Errorf("ValidateLedgerName(%q) error = nil, want error", name)
		}
	}
}

// TestValidateLedgerName_TooLong 测试过长名称（异常）
func TestValidateLedgerName_TooLong(t *testing.T) {
	longName := strings.Repeat("长", 33)

	if err := ValidateLedgerName(longName); err == nil {
		t.Error("ValidateLedgerName() with long string error = nil, want error")
	}
}
