package synthesize

import "testing"

func TestRepairTruncatedJSONIdempotent(t *testing.T) {
	// Well-formed documents must pass through byte-for-byte, and repairing
	// a repaired document must change nothing.
	balanced := []string{
		`{}`,
		`{"name":"Ada Lovelace","events":[]}`,
		`{"events":[{"title":"Born","date":"1815"}]}`,
		`{"s":"braces in strings {[ stay } untouched"}`,
		`{"s":"escaped quote \" and brace {"}`,
		`[1, 2, 3]`,
	}
	for _, s := range balanced {
		if got := RepairTruncatedJSON(s); got != s {
			t.Errorf("balanced input altered:\n in: %s\nout: %s", s, got)
		}
	}

	truncated := []string{
		`{"events":[{"title":"Born","date":"1815`,
		`{"events":[{"title":"Born"},`,
		`{"name":"Ada","events":[{"title":`,
	}
	for _, s := range truncated {
		once := RepairTruncatedJSON(s)
		if twice := RepairTruncatedJSON(once); twice != once {
			t.Errorf("repair not idempotent:\n once: %s\ntwice: %s", once, twice)
		}
	}
}

func TestRepairTruncatedJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "cut mid string",
			in:   `{"events":[{"title":"Born in 18`,
			want: `{"events":[{"title":"Born in 18"}]}`,
		},
		{
			name: "cut after element with dangling comma",
			in:   `{"events":[{"title":"Born"},`,
			want: `{"events":[{"title":"Born"}]}`,
		},
		{
			name: "cut after closed array",
			in:   `{"events":[]`,
			want: `{"events":[]}`,
		},
		{
			name: "nested array closes before object",
			in:   `{"a":{"b":[1,2`,
			want: `{"a":{"b":[1,2]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RepairTruncatedJSON(tt.in); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no fence", `{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSliceToBraces(t *testing.T) {
	in := `Here is the timeline you asked for:
{"name":"Ada"} hope that helps!`
	if got := SliceToBraces(in); got != `{"name":"Ada"}` {
		t.Errorf("got %q", got)
	}
	if got := SliceToBraces(`{"name":"Ada"}`); got != `{"name":"Ada"}` {
		t.Errorf("already-leading brace altered: %q", got)
	}
	if got := SliceToBraces("no json at all"); got != "no json at all" {
		t.Errorf("braceless input altered: %q", got)
	}
}
