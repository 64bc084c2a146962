package compound_test

import (
	"reflect"
	"testing"

	"github.com/KaramelBytes/enrich-cli/internal/compound"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"['C00022', 'C00024']", []string{"C00022", "C00024"}},
		{`["C00022","C00024", "C00022"]`, []string{"C00022", "C00024"}},
		{"('C00031',)", []string{"C00031"}},
		{"  ['C00031']  ", []string{"C00031"}},
		{"[]", []string{}},
		{"", []string{}},
		{"nan", []string{}},
		{"C00022", []string{}},
		{"['C00022', ", []string{}},
		{"{'a': 'C00022'}", []string{}},
		{"[['C00022']]", []string{}},
		{"['C00022', {'x': 1}]", []string{}},
		{"[C00022, C00024]", []string{}},
		{"['C00022', C00024]", []string{}},
		{`['it\'s']`, []string{"it's"}},
		{`["say \"hi\""]`, []string{`say "hi"`}},
		{`['a, b', "c]"]`, []string{"a, b", "c]"}},
		{"['C00022", []string{}},
	}
	for _, tt := range tests {
		got := compound.ParseList(tt.in).Sorted()
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseList(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatListRoundTrip(t *testing.T) {
	ids := []string{"C00022", "C00024", "C00031"}
	text := compound.FormatList(ids)
	if text != "['C00022', 'C00024', 'C00031']" {
		t.Fatalf("unexpected literal %q", text)
	}
	if got := compound.ParseList(text).Sorted(); !reflect.DeepEqual(got, ids) {
		t.Fatalf("round trip = %q", got)
	}
	quoted := []string{`it's`, `back\slash`}
	text = compound.FormatList(quoted)
	if text != `['it\'s', 'back\\slash']` {
		t.Fatalf("escaped literal %q", text)
	}
	if got := compound.ParseList(text).Sorted(); !reflect.DeepEqual(got, []string{`back\slash`, `it's`}) {
		t.Fatalf("escaped round trip = %q", got)
	}
	if compound.FormatList(nil) != "[]" {
		t.Fatalf("empty list literal = %q", compound.FormatList(nil))
	}
}
