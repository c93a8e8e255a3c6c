package match

import "testing"

func TestScoreExactMatchWins(t *testing.T) {
	res := Score("PARACETAMOL", []string{"PARACETAMOL", "ACETAMINOPHEN", "ASPIRIN"}, 50)
	if len(res) == 0 {
		t.Fatalf("expected at least one match")
	}
	if res[0].Name != "PARACETAMOL" || res[0].Score != 100 {
		t.Fatalf("unexpected top match: %+v", res[0])
	}
	for i, r := range res {
		if r.Score < 50 {
			t.Fatalf("result below threshold: %+v", r)
		}
		if i > 0 && res[i-1].Score < r.Score {
			t.Fatalf("results not sorted descending: %+v", res)
		}
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	res := Score("paracetamol", []string{"Paracetamol"}, 90)
	if len(res) != 1 || res[0].Score != 100 {
		t.Fatalf("case should not affect scoring: %+v", res)
	}
}

func TestScoreTokenReordering(t *testing.T) {
	res := Score("forte dolo", []string{"dolo forte"}, 90)
	if len(res) != 1 || res[0].Score != 100 {
		t.Fatalf("token sort should handle reordering: %+v", res)
	}
}

func TestScorePartialTruncation(t *testing.T) {
	res := Score("AMOX", []string{"AMOXICILLIN TRIHYDRATE"}, 90)
	if len(res) != 1 {
		t.Fatalf("partial ratio should handle truncation: %+v", res)
	}
}

func TestScoreThresholdFilters(t *testing.T) {
	res := Score("IBUPROFEN", []string{"ZZZZZZ"}, 60)
	if len(res) != 0 {
		t.Fatalf("expected dissimilar candidate filtered out, got %+v", res)
	}
}

func TestScoreCapsAtTen(t *testing.T) {
	candidates := make([]string, 15)
	for i := range candidates {
		candidates[i] = "ASPIRIN"
	}
	res := Score("ASPIRIN", candidates, 50)
	if len(res) != 10 {
		t.Fatalf("expected 10 results, got %d", len(res))
	}
}

func TestBest(t *testing.T) {
	if got := Best("PARACETAMOL", "PARACETAMOL", 50); got != 1.0 {
		t.Fatalf("Best() = %v, want 1.0", got)
	}
	if got := Best("PARACETAMOL", "ZZZZZZ", 50); got != 0 {
		t.Fatalf("Best() = %v, want 0 for filtered candidate", got)
	}
}
