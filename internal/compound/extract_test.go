package compound_test

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/KaramelBytes/enrich-cli/internal/compound"
)

func TestExtract(t *testing.T) {
	opt := compound.DefaultExtractOptions()
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"drops nulls and non-ids", []string{"", "HMDB0000122", "C00031", "", "citrate"}, []string{"C00031"}},
		{"dedupes", []string{"C00031", "C00031", "C00022"}, []string{"C00022", "C00031"}},
		{"splits packed cells", []string{"C02614, C02612", "C00022"}, []string{"C00022", "C02612", "C02614"}},
		{"refilters split tokens", []string{"C00022, HMDB01, C00031"}, []string{"C00022", "C00031"}},
		{"packed cell must start with an id", []string{"HMDB01, C00031"}, []string{}},
		{"comma without space is one token", []string{"C00022,C00031"}, []string{"C00022,C00031"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := compound.Extract(tt.raw, opt).Sorted()
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Extract(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestExtractOrderAndDuplicateColumnIndependent(t *testing.T) {
	opt := compound.DefaultExtractOptions()
	raw := []string{"C00031", "", "C02614, C02612", "X1", "C00022", "C00031", "C00186"}
	want := compound.Extract(raw, opt).Sorted()

	doubled := append(append([]string{}, raw...), raw...)
	if got := compound.Extract(doubled, opt).Sorted(); !reflect.DeepEqual(got, want) {
		t.Fatalf("duplicated column changed result: %q vs %q", got, want)
	}

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]string{}, raw...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := compound.Extract(shuffled, opt).Sorted(); !reflect.DeepEqual(got, want) {
			t.Fatalf("shuffle %d changed result: %q vs %q", i, got, want)
		}
	}

	// idempotent: extracting the extracted set is a no-op
	if got := compound.Extract(want, opt).Sorted(); !reflect.DeepEqual(got, want) {
		t.Fatalf("not idempotent: %q vs %q", got, want)
	}
}

func TestExtractCustomPrefix(t *testing.T) {
	opt := compound.ExtractOptions{Prefix: "G", Delimiter: "; "}
	got := compound.Extract([]string{"G00001; G00002", "C00022"}, opt).Sorted()
	want := []string{"G00001", "G00002"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}
