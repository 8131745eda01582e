package cache

import (
	"strings"
	"testing"
)

func joinKey(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

func TestDefaultKeySerializer_BasicTypes(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name   string
		method string
		args   []any
		want   string
	}{
		{
			name:   "no args",
			method: "list",
			args:   []any{},
			want:   "list",
		},
		{
			name:   "single string",
			method: "get_by_id",
			args:   []any{"42"},
			want:   joinKey("get_by_id", "42"),
		},
		{
			name:   "multiple basic types",
			method: "get",
			args:   []any{1, "hello", true, 3.14},
			want:   joinKey("get", "1", "hello", "true", "3.14"),
		},
		{
			name:   "string with separator chars",
			method: "search",
			args:   []any{"hello:world"},
			want:   joinKey("search", "hello:world"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(tt.method, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_NilValues(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name   string
		method string
		args   []any
		want   string
	}{
		{
			name:   "nil interface",
			method: "get",
			args:   []any{nil},
			want:   joinKey("get", "nil"),
		},
		{
			name:   "nil pointer",
			method: "get",
			args:   []any{(*int)(nil)},
			want:   joinKey("get", "nil"),
		},
		{
			name:   "nil slice",
			method: "get",
			args:   []any{([]int)(nil)},
			want:   joinKey("get", "nil"),
		},
		{
			name:   "nil map",
			method: "get",
			args:   []any{(map[string]int)(nil)},
			want:   joinKey("get", "nil"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(tt.method, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_CompositeTypes(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	type criteria struct {
		Field string
		Limit int
	}

	tests := []struct {
		name   string
		method string
		args   []any
		want   string
	}{
		{
			name:   "slice",
			method: "list",
			args:   []any{[]int{1, 2, 3}},
			want:   joinKey("list", "[1,2,3]"),
		},
		{
			name:   "struct walks exported fields",
			method: "list",
			args:   []any{criteria{Field: "name", Limit: 10}},
			want:   joinKey("list", "{Field=name,Limit=10}"),
		},
		{
			name:   "pointer dereferences",
			method: "list",
			args:   []any{&criteria{Field: "sku", Limit: 5}},
			want:   joinKey("list", "{Field=sku,Limit=5}"),
		},
		{
			name:   "map is sorted",
			method: "list",
			args:   []any{map[string]int{"b": 2, "a": 1}},
			want:   joinKey("list", "{a=1,b=2}"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(tt.method, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_MapDeterminism(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	args := map[string]int{"alpha": 1, "beta": 2, "gamma": 3}
	first := serializer.SerializeKey("list", args)
	for i := 0; i < 20; i++ {
		if got := serializer.SerializeKey("list", args); got != first {
			t.Fatalf("SerializeKey() not deterministic: %v vs %v", got, first)
		}
	}
}

func TestDefaultKeySerializer_FuncIdentity(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	fn := func() {}
	first := serializer.SerializeKey("get", fn)
	second := serializer.SerializeKey("get", fn)
	if first != second {
		t.Errorf("same func serialized differently: %v vs %v", first, second)
	}
	if !strings.Contains(first, "func.") {
		t.Errorf("func key missing func marker: %v", first)
	}
}
