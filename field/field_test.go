package field

import (
	"errors"
	"testing"
	"time"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeString, "string"},
		{TypeInt, "integer"},
		{TypeFloat, "number"},
		{TypeBool, "boolean"},
		{TypeList, "list"},
		{TypeMap, "map"},
		{TypeTime, "time"},
		{TypeEnum, "enum"},
		{Type(255), "unknown"},
	}

	for _, tt := range tests {
		got := tt.typ.String()
		if got != tt.want {
			t.Errorf("Type(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestScope_Has(t *testing.T) {
	tests := []struct {
		scope    Scope
		check    Scope
		expected bool
	}{
		{ScopeSetting, ScopeSetting, true},
		{ScopeSetting, ScopeWorkspace, false},
		{ScopeSetting | ScopeWorkspace, ScopeSetting, true},
		{ScopeSetting | ScopeWorkspace, ScopeWorkspace, true},
		{ScopeSetting | ScopeWorkspace, ScopeBinding, false},
		{ScopeNone, ScopeSetting, false},
	}

	for _, tt := range tests {
		got := tt.scope.Has(tt.check)
		if got != tt.expected {
			t.Errorf("Scope(%d).Has(%d) = %v, want %v", tt.scope, tt.check, got, tt.expected)
		}
	}
}

func TestScope_String(t *testing.T) {
	tests := []struct {
		scope Scope
		want  string
	}{
		{ScopeNone, "none"},
		{ScopeSetting, "[setting]"},
		{ScopeSetting | ScopeWorkspace, "[setting workspace]"},
		{ScopeSetting | ScopeWorkspace | ScopeBinding, "[setting workspace binding]"},
	}

	for _, tt := range tests {
		got := tt.scope.String()
		if got != tt.want {
			t.Errorf("Scope(%d).String() = %q, want %q", tt.scope, got, tt.want)
		}
	}
}

func TestField_Validate_Types(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		value   any
		wantErr bool
	}{
		{"string ok", TypeString, "hello", false},
		{"string wrong type", TypeString, 42, true},
		{"int ok", TypeInt, 42, false},
		{"int64 ok", TypeInt, int64(42), false},
		{"int wrong type", TypeInt, "42", true},
		{"int rejects float", TypeInt, 4.5, true},
		{"float ok", TypeFloat, 1.5, false},
		{"float accepts int", TypeFloat, 3, false},
		{"float wrong type", TypeFloat, "1.5", true},
		{"bool ok", TypeBool, true, false},
		{"bool wrong type", TypeBool, 1, true},
		{"list ok", TypeList, []string{"a"}, false},
		{"list any ok", TypeList, []any{"a", 1}, false},
		{"list wrong type", TypeList, "a,b", true},
		{"map ok", TypeMap, map[string]any{"k": 1}, false},
		{"map wrong type", TypeMap, []any{}, true},
		{"time ok", TypeTime, time.Now(), false},
		{"time wrong type", TypeTime, "2024-01-01", true},
	}

	for _, tt := range tests {
		f := &Field{Name: "f", Type: tt.typ}
		err := f.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate(%v) error = %v, wantErr %v", tt.name, tt.value, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidValue) {
			t.Errorf("%s: error %v does not wrap ErrInvalidValue", tt.name, err)
		}
	}
}

func TestField_Validate_Choices(t *testing.T) {
	f := &Field{
		Name:    "theme",
		Type:    TypeEnum,
		Choices: []any{"light", "dark"},
	}

	if err := f.Validate("dark"); err != nil {
		t.Errorf("Validate(dark) = %v, want nil", err)
	}
	if err := f.Validate("solarized"); err == nil {
		t.Error("Validate(solarized) = nil, want error")
	}

	var ive *InvalidValueError
	err := f.Validate("solarized")
	if !errors.As(err, &ive) {
		t.Fatalf("error %v is not *InvalidValueError", err)
	}
	if ive.Field != "theme" {
		t.Errorf("InvalidValueError.Field = %q, want %q", ive.Field, "theme")
	}
}

func TestField_Validate_Range(t *testing.T) {
	f := &Field{
		Name:    "volume",
		Type:    TypeInt,
		Minimum: MinValue(0),
		Maximum: MaxValue(100),
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{-1, true},
		{0, false},   // inclusive lower bound
		{50, false},
		{100, false}, // inclusive upper bound
		{101, true},
		{150, true},
	}

	for _, tt := range tests {
		err := f.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestField_Validate_RangeFloat(t *testing.T) {
	f := &Field{
		Name:    "lineHeight",
		Type:    TypeFloat,
		Minimum: MinValue(1.0),
		Maximum: MaxValue(3.0),
	}

	if err := f.Validate(1.0); err != nil {
		t.Errorf("Validate(1.0) = %v, want nil", err)
	}
	if err := f.Validate(0.5); err == nil {
		t.Error("Validate(0.5) = nil, want error")
	}
	if err := f.Validate(3.5); err == nil {
		t.Error("Validate(3.5) = nil, want error")
	}
}

func TestField_SetChoices(t *testing.T) {
	f := &Field{Name: "theme", Type: TypeEnum, Choices: []any{"light"}}

	if err := f.Validate("dark"); err == nil {
		t.Fatal("Validate(dark) = nil before SetChoices, want error")
	}

	// Dynamic enumerations may be discovered after declaration.
	f.SetChoices([]any{"light", "dark", "high-contrast"})

	if err := f.Validate("dark"); err != nil {
		t.Errorf("Validate(dark) after SetChoices = %v, want nil", err)
	}
	if f.Name != "theme" {
		t.Errorf("SetChoices changed field name to %q", f.Name)
	}
}

func TestField_Decode_Coercion(t *testing.T) {
	tests := []struct {
		name   string
		typ    Type
		stored any
		want   any
	}{
		{"json number to int", TypeInt, float64(50), 50},
		{"fractional number stays", TypeInt, 4.5, 4.5},
		{"int64 to int", TypeInt, int64(7), 7},
		{"int to float", TypeFloat, 3, 3.0},
		{"string list from any", TypeList, []any{"a", "b"}, []string{"a", "b"}},
		{"mixed list unchanged", TypeList, []any{"a", 1}, []any{"a", 1}},
		{"string passthrough", TypeString, "x", "x"},
	}

	for _, tt := range tests {
		f := &Field{Name: "f", Type: tt.typ}
		got, err := f.Decode(tt.stored)
		if err != nil {
			t.Errorf("%s: Decode() error = %v", tt.name, err)
			continue
		}
		if !equalAny(got, tt.want) {
			t.Errorf("%s: Decode(%v) = %#v, want %#v", tt.name, tt.stored, got, tt.want)
		}
	}
}

func equalAny(a, b any) bool {
	switch av := a.(type) {
	case []string:
		bv, ok := b.([]string)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i] != bv[i] {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func TestField_EncodeDecode_Identity(t *testing.T) {
	f := &Field{Name: "volume", Type: TypeInt}

	stored, err := f.Encode(42)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if stored != 42 {
		t.Errorf("Encode(42) = %v, want 42", stored)
	}
}
