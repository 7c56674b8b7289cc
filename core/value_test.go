package core

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Value
		expected int
	}{
		{"int less", IntValue(1), IntValue(2), -1},
		{"int equal", IntValue(7), IntValue(7), 0},
		{"real greater", RealValue(3.9), RealValue(3.5), 1},
		{"int vs real", IntValue(3), RealValue(3.5), -1},
		{"real vs int", RealValue(3.0), IntValue(3), 0},
		{"string case-insensitive", StringValue("alice"), StringValue("ALICE"), 0},
		{"string order", StringValue("Bob"), StringValue("alice"), 1},
		{"number before string", IntValue(9), StringValue("a"), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.expected {
				t.Errorf("Compare(%v, %v) = %d, expected %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Value
		expected bool
	}{
		{"ints", IntValue(4), IntValue(4), true},
		{"reals within epsilon", RealValue(2.9), RealValue(2.900001), true},
		{"reals outside epsilon", RealValue(2.9), RealValue(2.9001), false},
		{"int and real", IntValue(3), RealValue(3.000001), true},
		{"strings fold", StringValue("Carol"), StringValue("cAROL"), true},
		{"strings differ", StringValue("Carol"), StringValue("Carl"), false},
		{"string and number", StringValue("1"), IntValue(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.expected {
				t.Errorf("Equal(%v, %v) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestConvert(t *testing.T) {
	v, err := IntValue(3).Convert(RealType)
	if err != nil {
		t.Fatalf("Expected int to widen to real: %v", err)
	}
	if v.Type != RealType || v.Real != 3 {
		t.Errorf("Expected real 3, got %+v", v)
	}

	if _, err := RealValue(3.5).Convert(IntType); err == nil {
		t.Error("Expected real to int conversion to fail")
	}
	if _, err := StringValue("x").Convert(IntType); err == nil {
		t.Error("Expected string to int conversion to fail")
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		value    Value
		expected string
	}{
		{IntValue(-12), "-12"},
		{RealValue(2.8), "2.8"},
		{RealValue(14), "14.0"},
		{StringValue("Alice Smith"), "Alice Smith"},
	}

	for _, tt := range tests {
		if got := tt.value.String(); got != tt.expected {
			t.Errorf("Expected %q, got %q", tt.expected, got)
		}
	}
}
