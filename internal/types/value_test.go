package types

import (
	"errors"
	"math"
	"testing"
)

func TestValueConstructors(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		kind Kind
	}{
		{"Int(0)", Int(0), KindInt},
		{"Int(-7)", Int(-7), KindInt},
		{"Float(0)", Float(0), KindFloat},
		{"Float(3.5)", Float(3.5), KindFloat},
		{"Bool true", Bool(true), KindInt},
		{"Bool false", Bool(false), KindInt},
		{"zero value", Value{}, KindInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.v.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.v.Kind(), tt.kind)
			}
		})
	}

	if Bool(true) != Int(1) || Bool(false) != Int(0) {
		t.Error("Bool should produce Int(1)/Int(0)")
	}
}

func TestValueConversions(t *testing.T) {
	if got := Float(2.9).AsInt(); got != 2 {
		t.Errorf("Float(2.9).AsInt() = %d, want 2", got)
	}
	if got := Float(-2.9).AsInt(); got != -2 {
		t.Errorf("Float(-2.9).AsInt() = %d, want -2", got)
	}
	if got := Int(5).AsFloat(); got != 5.0 {
		t.Errorf("Int(5).AsFloat() = %v, want 5", got)
	}
}

func TestValueAsBool(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{Int(0), false},
		{Int(1), true},
		{Int(-1), true},
		{Float(0), false},
		{Float(math.Copysign(0, -1)), false},
		{Float(1e-320), true},
		{Float(-0.5), true},
		{Float(math.NaN()), true},
	}

	for _, tt := range tests {
		if got := tt.v.AsBool(); got != tt.want {
			t.Errorf("%v.AsBool() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestValueFormat(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Int(17), "17"},
		{Int(-3), "-3"},
		{Float(6), "6.0"},
		{Float(2.5), "2.5"},
		{Float(0.1), "0.1"},
		{Float(1e21), "1e+21"},
		{Float(math.Inf(1)), "inf"},
		{Float(math.Inf(-1)), "-inf"},
		{Float(math.NaN()), "nan"},
	}

	for _, tt := range tests {
		if got := tt.v.Format(); got != tt.want {
			t.Errorf("%v.Format() = %q, want %q", tt.v, got, tt.want)
		}
	}

	if got := Int(4).String(); got != "Int(4)" {
		t.Errorf("String() = %q", got)
	}
	if got := Float(4).String(); got != "Float(4.0)" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		raw  string
		want Value
	}{
		{"0", Int(0)},
		{"42", Int(42)},
		{"0x1F", Int(31)},
		{"0XfF", Int(255)},
		{"017", Int(15)},
		{"00", Int(0)},
		{"3.14", Float(3.14)},
		{".5", Float(0.5)},
		{"1.", Float(1)},
		{"1e3", Float(1000)},
		{"2.5E-1", Float(0.25)},
		{"9223372036854775807", Int(math.MaxInt64)},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLiteral(tt.raw)
			if err != nil {
				t.Fatalf("ParseLiteral(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseLiteral(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseLiteralInvalid(t *testing.T) {
	for _, raw := range []string{"08", "019", "12ab", "0x", "1..2", "1e", "0x1.8", ""} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseLiteral(raw)
			var litErr *LiteralError
			if !errors.As(err, &litErr) {
				t.Fatalf("ParseLiteral(%q) error = %v, want *LiteralError", raw, err)
			}
		})
	}

	_, err := ParseLiteral("9223372036854775808")
	if !errors.Is(err, ErrRange) {
		t.Errorf("overflow error = %v, want ErrRange", err)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		s    string
		want Value
	}{
		{"5", Int(5)},
		{"-5", Int(-5)},
		{"+5", Int(5)},
		{"-2.5", Float(-2.5)},
		{"-0x10", Int(-16)},
		{"-9223372036854775808", Int(math.MinInt64)},
	}

	for _, tt := range tests {
		got, err := ParseValue(tt.s)
		if err != nil {
			t.Errorf("ParseValue(%q) error = %v", tt.s, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseValue(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}

	for _, bad := range []string{"", "-", "abc", "--1", "1 2"} {
		if _, err := ParseValue(bad); err == nil {
			t.Errorf("ParseValue(%q) succeeded, want error", bad)
		}
	}
}
