package services_test

import (
	"fmt"
	"testing"

	"tournament-social-system/models"
)

func TestFollowLifecycle(t *testing.T) {
	app, db := newTestApp(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	aliceSid := createSession(t, db, alice.ID)
	bobSid := createSession(t, db, bob.ID)

	resp := doJSON(t, app, "POST", "/connections/follow/"+alice.ID,
		fmt.Sprintf(`{"following_id":%q}`, bob.ID), aliceSid)
	wantStatus(t, resp, 201)
	edge := decodeMap(t, resp)
	if edge["connection_type"] != models.ConnectionPending {
		t.Fatalf("new edge state = %v, want pending", edge["connection_type"])
	}
	edgeID := edge["id"].(string)

	// Pending: bob sees an incoming request, alice an outgoing one.
	bobView := decodeMap(t, doJSON(t, app, "GET", "/connections/users/"+bob.ID, "", ""))
	if n := len(bobView["incoming_pending"].([]interface{})); n != 1 {
		t.Fatalf("bob incoming_pending = %d, want 1", n)
	}
	if n := len(bobView["followers"].([]interface{})); n != 0 {
		t.Fatalf("bob followers = %d before accept, want 0", n)
	}
	aliceView := decodeMap(t, doJSON(t, app, "GET", "/connections/users/"+alice.ID, "", ""))
	if n := len(aliceView["outgoing_pending"].([]interface{})); n != 1 {
		t.Fatalf("alice outgoing_pending = %d, want 1", n)
	}

	resp = doJSON(t, app, "PATCH", "/connections/"+edgeID, `{"status":"accepted"}`, bobSid)
	wantStatus(t, resp, 200)

	// Accepted: the edge moves sets but no reverse edge appears.
	bobView = decodeMap(t, doJSON(t, app, "GET", "/connections/users/"+bob.ID, "", ""))
	if n := len(bobView["followers"].([]interface{})); n != 1 {
		t.Fatalf("bob followers = %d after accept, want 1", n)
	}
	if n := len(bobView["incoming_pending"].([]interface{})); n != 0 {
		t.Fatalf("bob incoming_pending = %d after accept, want 0", n)
	}
	aliceView = decodeMap(t, doJSON(t, app, "GET", "/connections/users/"+alice.ID, "", ""))
	if n := len(aliceView["following"].([]interface{})); n != 1 {
		t.Fatalf("alice following = %d after accept, want 1", n)
	}
	if n := len(aliceView["followers"].([]interface{})); n != 0 {
		t.Fatalf("alice followers = %d, want 0 (accept must not create a reverse edge)", n)
	}

	var total int64
	if err := db.Model(&models.Connection{}).Count(&total).Error; err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("connection rows = %d, want 1", total)
	}
}

func TestFollowDuplicateRejected(t *testing.T) {
	app, db := newTestApp(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	sid := createSession(t, db, alice.ID)

	body := fmt.Sprintf(`{"following_id":%q}`, bob.ID)
	wantStatus(t, doJSON(t, app, "POST", "/connections/follow/"+alice.ID, body, sid), 201)
	wantStatus(t, doJSON(t, app, "POST", "/connections/follow/"+alice.ID, body, sid), 409)

	var total int64
	if err := db.Model(&models.Connection{}).Count(&total).Error; err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("connection rows after duplicate = %d, want 1", total)
	}
}

func TestFollowValidation(t *testing.T) {
	app, db := newTestApp(t)
	alice := createUser(t, db, "alice")
	sid := createSession(t, db, alice.ID)

	// Self-follow.
	resp := doJSON(t, app, "POST", "/connections/follow/"+alice.ID,
		fmt.Sprintf(`{"following_id":%q}`, alice.ID), sid)
	wantStatus(t, resp, 400)

	// Missing target.
	resp = doJSON(t, app, "POST", "/connections/follow/"+alice.ID, `{}`, sid)
	wantStatus(t, resp, 400)

	// Unknown target.
	resp = doJSON(t, app, "POST", "/connections/follow/"+alice.ID,
		`{"following_id":"no-such-user"}`, sid)
	wantStatus(t, resp, 404)

	// Acting as a different follower.
	resp = doJSON(t, app, "POST", "/connections/follow/someone-else",
		fmt.Sprintf(`{"following_id":%q}`, alice.ID), sid)
	wantStatus(t, resp, 403)

	// Anonymous.
	resp = doJSON(t, app, "POST", "/connections/follow/"+alice.ID,
		`{"following_id":"x"}`, "")
	wantStatus(t, resp, 401)

	var total int64
	if err := db.Model(&models.Connection{}).Count(&total).Error; err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Fatalf("connection rows after rejected requests = %d, want 0", total)
	}
}

func TestStatusUpdateOnlyByTarget(t *testing.T) {
	app, db := newTestApp(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	aliceSid := createSession(t, db, alice.ID)
	bobSid := createSession(t, db, bob.ID)
	carolSid := createSession(t, db, carol.ID)

	resp := doJSON(t, app, "POST", "/connections/follow/"+alice.ID,
		fmt.Sprintf(`{"following_id":%q}`, bob.ID), aliceSid)
	wantStatus(t, resp, 201)
	edgeID := decodeMap(t, resp)["id"].(string)

	// Neither the follower nor a third party may accept.
	wantStatus(t, doJSON(t, app, "PATCH", "/connections/"+edgeID, `{"status":"accepted"}`, aliceSid), 403)
	wantStatus(t, doJSON(t, app, "PATCH", "/connections/"+edgeID, `{"status":"accepted"}`, carolSid), 403)

	// Bad state value.
	wantStatus(t, doJSON(t, app, "PATCH", "/connections/"+edgeID, `{"status":"friendly"}`, bobSid), 400)

	// Unknown edge.
	wantStatus(t, doJSON(t, app, "PATCH", "/connections/nope", `{"status":"accepted"}`, bobSid), 404)

	// The target blocks instead of accepting; only connection_type changes.
	wantStatus(t, doJSON(t, app, "PATCH", "/connections/"+edgeID, `{"status":"blocked"}`, bobSid), 200)
	var edge models.Connection
	if err := db.First(&edge, "id = ?", edgeID).Error; err != nil {
		t.Fatal(err)
	}
	if edge.ConnectionType != models.ConnectionBlocked {
		t.Fatalf("connection_type = %s, want blocked", edge.ConnectionType)
	}
	if edge.FollowerID != alice.ID || edge.FollowingID != bob.ID {
		t.Fatal("endpoints changed during a status update")
	}
}

func TestStatusUpdateIdempotent(t *testing.T) {
	app, db := newTestApp(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	aliceSid := createSession(t, db, alice.ID)
	bobSid := createSession(t, db, bob.ID)

	resp := doJSON(t, app, "POST", "/connections/follow/"+alice.ID,
		fmt.Sprintf(`{"following_id":%q}`, bob.ID), aliceSid)
	wantStatus(t, resp, 201)
	edgeID := decodeMap(t, resp)["id"].(string)

	wantStatus(t, doJSON(t, app, "PATCH", "/connections/"+edgeID, `{"status":"accepted"}`, bobSid), 200)
	wantStatus(t, doJSON(t, app, "PATCH", "/connections/"+edgeID, `{"status":"accepted"}`, bobSid), 200)

	var total int64
	if err := db.Model(&models.Connection{}).Count(&total).Error; err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Fatalf("connection rows after repeated accept = %d, want 1", total)
	}
}

func TestRemoveConnection(t *testing.T) {
	app, db := newTestApp(t)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	aliceSid := createSession(t, db, alice.ID)
	bobSid := createSession(t, db, bob.ID)
	carolSid := createSession(t, db, carol.ID)

	resp := doJSON(t, app, "POST", "/connections/follow/"+alice.ID,
		fmt.Sprintf(`{"following_id":%q}`, bob.ID), aliceSid)
	wantStatus(t, resp, 201)
	edgeID := decodeMap(t, resp)["id"].(string)

	// A bystander cannot remove the edge.
	wantStatus(t, doJSON(t, app, "DELETE", "/connections/"+edgeID, "", carolSid), 403)

	// The target can.
	wantStatus(t, doJSON(t, app, "DELETE", "/connections/"+edgeID, "", bobSid), 200)
	wantStatus(t, doJSON(t, app, "DELETE", "/connections/"+edgeID, "", bobSid), 404)

	// And after removal the pair can reconnect.
	resp = doJSON(t, app, "POST", "/connections/follow/"+alice.ID,
		fmt.Sprintf(`{"following_id":%q}`, bob.ID), aliceSid)
	wantStatus(t, resp, 201)
	edgeID = decodeMap(t, resp)["id"].(string)

	// The follower side may remove too.
	wantStatus(t, doJSON(t, app, "DELETE", "/connections/"+edgeID, "", aliceSid), 200)
}
