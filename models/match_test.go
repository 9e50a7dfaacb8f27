package models

import "testing"

func TestWinner(t *testing.T) {
	cases := []struct {
		name           string
		score1, score2 int
		want           string
	}{
		{"team1 wins", 3, 1, "Reds"},
		{"team2 wins", 0, 2, "Blues"},
		{"tie goes to first-listed team", 5, 5, "Reds"},
		{"scoreless tie goes to first-listed team", 0, 0, "Reds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Winner("Reds", "Blues", tc.score1, tc.score2); got != tc.want {
				t.Errorf("Winner(%d, %d) = %s, want %s", tc.score1, tc.score2, got, tc.want)
			}
		})
	}
}

func TestValidators(t *testing.T) {
	for _, valid := range []string{ConnectionPending, ConnectionAccepted, ConnectionBlocked} {
		if !ValidConnectionType(valid) {
			t.Errorf("ValidConnectionType(%s) = false", valid)
		}
	}
	if ValidConnectionType("friendly") {
		t.Error("ValidConnectionType accepted an unknown state")
	}
	if ValidMatchType("exhibition") {
		t.Error("ValidMatchType accepted an unknown type")
	}
	if ValidPostType("rant") {
		t.Error("ValidPostType accepted an unknown type")
	}
}
