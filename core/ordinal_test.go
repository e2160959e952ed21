package orchestration

import "testing"

func TestParseOrdinal(t *testing.T) {
	tests := map[string]int{
		"first":              1,
		"the second one":     2,
		"Third.":             3,
		"3":                  3,
		"4th":                4,
		"2nd":                2,
		"number five please": 5,
		"the last one":       1,
		"":                   1,
		"0":                  1,
	}

	for text, want := range tests {
		if got := ParseOrdinal(text); got != want {
			t.Fatalf("expected %d for %q, got %d", want, text, got)
		}
	}
}

func TestCancellationToken(t *testing.T) {
	token := NewCancellationToken()
	if token.IsCancelled() {
		t.Fatalf("expected new token not to be cancelled")
	}
	token.RequestCancel()
	token.RequestCancel()
	if !token.IsCancelled() {
		t.Fatalf("expected token to be cancelled")
	}

	var none *CancellationToken
	none.RequestCancel()
	if none.IsCancelled() {
		t.Fatalf("expected nil token never to be cancelled")
	}
}
