package sqldump

import "testing"

func TestLexRowTypedValues(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
		want []Value
	}{
		{
			name: "mixed types with escaped quote and embedded comma",
			raw:  `'a,b\'c', 5, NULL, 3.14`,
			want: []Value{Text("a,b'c"), Int(5), Null(), Float(3.14)},
		},
		{
			name: "doubled quote escape",
			raw:  `'it''s fine', 0`,
			want: []Value{Text("it's fine"), Int(0)},
		},
		{
			name: "negative numbers",
			raw:  `-42, -0.5`,
			want: []Value{Int(-42), Float(-0.5)},
		},
		{
			name: "binary payload skipped undecoded",
			raw:  `_binary 'x,\'y', 7`,
			want: []Value{Opaque(), Int(7)},
		},
		{
			name: "bare literal fallback",
			raw:  `0xDEAD, ok`,
			want: []Value{Text("0xDEAD"), Text("ok")},
		},
		{
			name: "surrounding whitespace produces no spurious values",
			raw:  `  'a' ,  1  `,
			want: []Value{Text("a"), Int(1)},
		},
		{
			name: "empty string value",
			raw:  `'', NULL`,
			want: []Value{Text(""), Null()},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := LexRow(tc.raw)
			if len(got) != len(tc.want) {
				t.Fatalf("value count mismatch: got %d (%#v), want %d", len(got), got, len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("value %d: got %#v, want %#v", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestLexRowCommaInsideStringDoesNotSplit(t *testing.T) {
	got := LexRow(`'one, two, three', 1`)
	if len(got) != 2 {
		t.Fatalf("got %d values, want 2: %#v", len(got), got)
	}
	if got[0] != Text("one, two, three") {
		t.Errorf("got %#v, want the full quoted string", got[0])
	}
}

func TestLexRowEmptyInput(t *testing.T) {
	if got := LexRow("   "); len(got) != 0 {
		t.Errorf("whitespace-only input yielded %d values: %#v", len(got), got)
	}
}
