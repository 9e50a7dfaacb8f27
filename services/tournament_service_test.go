package services_test

import (
	"fmt"
	"testing"
	"time"

	"tournament-social-system/models"
)

func tournamentBody(title string, maxParticipants int, start, end time.Time) string {
	endField := ""
	if !end.IsZero() {
		endField = fmt.Sprintf(`,"end_date":%q`, end.Format(time.RFC3339))
	}
	return fmt.Sprintf(`{"title":%q,"game_type":"chess","max_participants":%d,"start_date":%q%s}`,
		title, maxParticipants, start.Format(time.RFC3339), endField)
}

func TestCreateTournament(t *testing.T) {
	app, db := newTestApp(t)
	org := createUser(t, db, "organizer")
	sid := createSession(t, db, org.ID)

	start := time.Now().Add(48 * time.Hour)
	resp := doJSON(t, app, "POST", "/tournaments",
		tournamentBody("Spring Chess Open", 16, start, start.Add(24*time.Hour)), sid)
	wantStatus(t, resp, 201)
	created := decodeMap(t, resp)
	if created["slug"] != "spring-chess-open" {
		t.Fatalf("slug = %v, want spring-chess-open", created["slug"])
	}
	if created["status"] != models.TournamentUpcoming {
		t.Fatalf("status = %v, want upcoming", created["status"])
	}

	resp = doJSON(t, app, "GET", "/tournaments/"+created["id"].(string), "", "")
	wantStatus(t, resp, 200)
	view := decodeMap(t, resp)
	if view["organizer_username"] != "organizer" {
		t.Fatalf("organizer_username = %v", view["organizer_username"])
	}
	if view["participant_count"] != float64(0) {
		t.Fatalf("participant_count = %v, want 0", view["participant_count"])
	}
}

func TestCreateTournamentValidation(t *testing.T) {
	app, db := newTestApp(t)
	org := createUser(t, db, "organizer")
	sid := createSession(t, db, org.ID)
	future := time.Now().Add(48 * time.Hour)

	// Anonymous.
	wantStatus(t, doJSON(t, app, "POST", "/tournaments",
		tournamentBody("T", 8, future, time.Time{}), ""), 401)

	// Start date in the past.
	wantStatus(t, doJSON(t, app, "POST", "/tournaments",
		tournamentBody("T", 8, time.Now().Add(-time.Hour), time.Time{}), sid), 400)

	// End date not after start.
	wantStatus(t, doJSON(t, app, "POST", "/tournaments",
		tournamentBody("T", 8, future, future.Add(-time.Hour)), sid), 400)

	// Non-positive capacity.
	wantStatus(t, doJSON(t, app, "POST", "/tournaments",
		tournamentBody("T", 0, future, time.Time{}), sid), 400)

	var total int64
	if err := db.Model(&models.Tournament{}).Count(&total).Error; err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("tournament rows after rejected creates = %d, want 0", total)
	}
}

func TestUpdateTournamentOrganizerOnly(t *testing.T) {
	app, db := newTestApp(t)
	org := createUser(t, db, "organizer")
	other := createUser(t, db, "other")
	orgSid := createSession(t, db, org.ID)
	otherSid := createSession(t, db, other.ID)

	start := time.Now().Add(48 * time.Hour)
	resp := doJSON(t, app, "POST", "/tournaments", tournamentBody("Closed Cup", 8, start, time.Time{}), orgSid)
	wantStatus(t, resp, 201)
	id := decodeMap(t, resp)["id"].(string)

	wantStatus(t, doJSON(t, app, "PUT", "/tournaments/"+id, `{"title":"Hijacked"}`, otherSid), 403)
	wantStatus(t, doJSON(t, app, "DELETE", "/tournaments/"+id, "", otherSid), 403)

	// Partial update keeps unspecified fields and refreshes the slug.
	resp = doJSON(t, app, "PUT", "/tournaments/"+id, `{"title":"Open Cup","prize_pool":500}`, orgSid)
	wantStatus(t, resp, 200)
	updated := decodeMap(t, resp)
	if updated["slug"] != "open-cup" {
		t.Fatalf("slug = %v, want open-cup", updated["slug"])
	}
	if updated["game_type"] != "chess" {
		t.Fatalf("game_type = %v, want chess preserved", updated["game_type"])
	}
	wantStatus(t, doJSON(t, app, "PUT", "/tournaments/"+id, `{"status":"paused"}`, orgSid), 400)
}

func TestTournamentListFilters(t *testing.T) {
	app, db := newTestApp(t)
	org := createUser(t, db, "organizer")
	sid := createSession(t, db, org.ID)

	start := time.Now().Add(48 * time.Hour)
	wantStatus(t, doJSON(t, app, "POST", "/tournaments", tournamentBody("Chess A", 8, start, time.Time{}), sid), 201)
	resp := doJSON(t, app, "POST", "/tournaments",
		fmt.Sprintf(`{"title":"Go B","game_type":"go","max_participants":8,"start_date":%q}`,
			start.Format(time.RFC3339)), sid)
	wantStatus(t, resp, 201)

	list := decodeList(t, doJSON(t, app, "GET", "/tournaments?game_type=go", "", ""))
	if len(list) != 1 || list[0]["title"] != "Go B" {
		t.Fatalf("filtered list = %v, want only Go B", list)
	}

	list = decodeList(t, doJSON(t, app, "GET", "/tournaments", "", ""))
	if len(list) != 2 {
		t.Fatalf("unfiltered list = %d entries, want 2", len(list))
	}

	wantStatus(t, doJSON(t, app, "GET", "/tournaments?from=garbage", "", ""), 400)
}

func TestJoinTournament(t *testing.T) {
	app, db := newTestApp(t)
	org := createUser(t, db, "organizer")
	player1 := createUser(t, db, "player1")
	player2 := createUser(t, db, "player2")
	orgSid := createSession(t, db, org.ID)
	p1Sid := createSession(t, db, player1.ID)
	p2Sid := createSession(t, db, player2.ID)

	start := time.Now().Add(48 * time.Hour)
	resp := doJSON(t, app, "POST", "/tournaments", tournamentBody("Tiny Cup", 1, start, time.Time{}), orgSid)
	wantStatus(t, resp, 201)
	id := decodeMap(t, resp)["id"].(string)

	resp = doJSON(t, app, "POST", "/tournaments/"+id+"/participants", "", p1Sid)
	wantStatus(t, resp, 201)
	joined := decodeMap(t, resp)
	if joined["team_name"] != "Team_player1" {
		t.Fatalf("default team_name = %v, want Team_player1", joined["team_name"])
	}

	// Full and duplicate registrations are both conflicts.
	wantStatus(t, doJSON(t, app, "POST", "/tournaments/"+id+"/participants", "", p2Sid), 409)
	wantStatus(t, doJSON(t, app, "POST", "/tournaments/"+id+"/participants", "", p1Sid), 409)
	wantStatus(t, doJSON(t, app, "POST", "/tournaments/no-such/participants", "", p1Sid), 404)

	participants := decodeList(t, doJSON(t, app, "GET", "/tournaments/"+id+"/participants", "", ""))
	if len(participants) != 1 || participants[0]["username"] != "player1" {
		t.Fatalf("participants = %v", participants)
	}

	// The organizer may remove a registration; a stranger may not.
	pid := participants[0]["id"].(string)
	wantStatus(t, doJSON(t, app, "DELETE", "/participants/"+pid, "", p2Sid), 403)
	wantStatus(t, doJSON(t, app, "DELETE", "/participants/"+pid, "", orgSid), 200)

	var total int64
	if err := db.Model(&models.Participant{}).Count(&total).Error; err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("participant rows = %d, want 0", total)
	}
}
