package fixture

import "testing"

func intPtr(v int) *int { return &v }

func TestFixture_GoalsForAndOpponent(t *testing.T) {
	t.Parallel()

	item := Fixture{
		HomeTeamID: "ars",
		AwayTeamID: "che",
		HomeScore:  intPtr(2),
		AwayScore:  intPtr(1),
		Status:     "FT",
	}

	gf, ga, ok := item.GoalsFor("che")
	if !ok || gf != 1 || ga != 2 {
		t.Fatalf("unexpected away perspective: gf=%d ga=%d ok=%v", gf, ga, ok)
	}
	if opp, ok := item.Opponent("ars"); !ok || opp != "che" {
		t.Fatalf("unexpected opponent: %q ok=%v", opp, ok)
	}
	if _, ok := item.Opponent("liv"); ok {
		t.Fatalf("expected no opponent for uninvolved team")
	}
	if _, _, ok := item.GoalsFor("liv"); ok {
		t.Fatalf("expected no goals for uninvolved team")
	}
}

func TestFixture_NotScoredUntilFinished(t *testing.T) {
	t.Parallel()

	item := Fixture{HomeTeamID: "ars", AwayTeamID: "che", HomeScore: intPtr(1), AwayScore: intPtr(0), Status: StatusLive}
	if item.Scored() {
		t.Fatalf("live fixture must not count as scored")
	}
}

func TestAllTerminal(t *testing.T) {
	t.Parallel()

	if AllTerminal(nil) {
		t.Fatalf("empty gameweek must not be terminal")
	}
	items := []Fixture{{Status: StatusFinished}, {Status: "postponed"}, {Status: StatusCancelled}}
	if !AllTerminal(items) {
		t.Fatalf("expected finished/postponed/cancelled to be terminal")
	}
	items = append(items, Fixture{Status: StatusScheduled})
	if AllTerminal(items) {
		t.Fatalf("scheduled fixture must block terminal state")
	}
}
