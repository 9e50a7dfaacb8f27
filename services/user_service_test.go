package services_test

import (
	"testing"
	"time"
)

func TestListAndSearchUsers(t *testing.T) {
	app, db := newTestApp(t)
	createUser(t, db, "alice")
	createUser(t, db, "Alfred")
	createUser(t, db, "bob")

	list := decodeList(t, doJSON(t, app, "GET", "/users", "", ""))
	if len(list) != 3 {
		t.Fatalf("user list = %d entries, want 3", len(list))
	}
	if _, leaked := list[0]["email"]; leaked {
		t.Fatal("user list exposes email")
	}

	// Case-insensitive, matches username or email.
	results := decodeList(t, doJSON(t, app, "GET", "/users/search?q=AL", "", ""))
	if len(results) != 2 {
		t.Fatalf("search AL = %d results, want 2 (alice, Alfred)", len(results))
	}
	results = decodeList(t, doJSON(t, app, "GET", "/users/search?q=bob@example", "", ""))
	if len(results) != 1 {
		t.Fatalf("search by email = %d results, want 1", len(results))
	}
}

func TestGetUserByID(t *testing.T) {
	app, db := newTestApp(t)
	alice := createUser(t, db, "alice")

	resp := doJSON(t, app, "GET", "/users/"+alice.ID, "", "")
	wantStatus(t, resp, 200)
	user := decodeMap(t, resp)
	if user["username"] != "alice" {
		t.Fatalf("username = %v", user["username"])
	}

	wantStatus(t, doJSON(t, app, "GET", "/users/no-such-user", "", ""), 404)
}

func TestProfileIncludesTournamentHistory(t *testing.T) {
	app, db := newTestApp(t)
	org := createUser(t, db, "organizer")
	player := createUser(t, db, "player")
	orgSid := createSession(t, db, org.ID)
	playerSid := createSession(t, db, player.ID)

	start := time.Now().Add(48 * time.Hour)
	resp := doJSON(t, app, "POST", "/tournaments", tournamentBody("History Cup", 8, start, time.Time{}), orgSid)
	wantStatus(t, resp, 201)
	tid := decodeMap(t, resp)["id"].(string)
	wantStatus(t, doJSON(t, app, "POST", "/tournaments/"+tid+"/participants",
		`{"team_name":"Knights"}`, playerSid), 201)

	profile := decodeMap(t, doJSON(t, app, "GET", "/users/me", "", playerSid))
	tournaments := profile["tournaments"].([]interface{})
	if len(tournaments) != 1 {
		t.Fatalf("tournament history = %d entries, want 1", len(tournaments))
	}
	entry := tournaments[0].(map[string]interface{})
	if entry["title"] != "History Cup" || entry["team_name"] != "Knights" {
		t.Fatalf("history entry = %v", entry)
	}

	wantStatus(t, doJSON(t, app, "GET", "/users/me", "", ""), 401)
}

func TestUpdateProfileConflicts(t *testing.T) {
	app, db := newTestApp(t)
	alice := createUser(t, db, "alice")
	createUser(t, db, "bob")
	sid := createSession(t, db, alice.ID)

	// Taking an existing username or email conflicts.
	wantStatus(t, doForm(t, app, "PUT", "/users/me", "username=bob", sid), 409)
	wantStatus(t, doForm(t, app, "PUT", "/users/me", "email=bob@example.com", sid), 409)

	resp := doForm(t, app, "PUT", "/users/me", "bio=chess+enjoyer&username=alice2", sid)
	wantStatus(t, resp, 200)
	updated := decodeMap(t, resp)
	if updated["username"] != "alice2" {
		t.Fatalf("username = %v, want alice2", updated["username"])
	}
	if updated["bio"] != "chess enjoyer" {
		t.Fatalf("bio = %v", updated["bio"])
	}
}
