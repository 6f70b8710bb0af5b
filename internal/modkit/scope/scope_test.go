package scope

import (
	"context"
	"testing"
)

func TestFingerprintOrderInsensitive(t *testing.T) {
	a := Scope{ClientIDs: []string{"c2", "c1", "c3"}}
	b := Scope{ClientIDs: []string{"c1", "c3", "c2"}}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("fingerprints differ for same grants: %q vs %q", a.Fingerprint(), b.Fingerprint())
	}
}

func TestFingerprintDistinguishesKinds(t *testing.T) {
	a := Scope{ClientIDs: []string{"x"}}
	b := Scope{PlanIDs: []string{"x"}}
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatal("client grant and plan grant collide")
	}
}

func TestFingerprintChangesWithGrants(t *testing.T) {
	a := Scope{ClientIDs: []string{"c1"}}
	b := Scope{ClientIDs: []string{"c1", "c2"}}
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatal("different grant sets collide")
	}
}

func TestContextRoundTrip(t *testing.T) {
	want := Scope{ClientIDs: []string{"c1"}, ParticipantIDs: []string{"p9"}}
	ctx := Into(context.Background(), want)
	got := From(ctx)
	if len(got.ClientIDs) != 1 || got.ClientIDs[0] != "c1" {
		t.Fatalf("clients = %v", got.ClientIDs)
	}
	if len(got.ParticipantIDs) != 1 || got.ParticipantIDs[0] != "p9" {
		t.Fatalf("participants = %v", got.ParticipantIDs)
	}
}

func TestFromMissingIsEmpty(t *testing.T) {
	if !From(context.Background()).Empty() {
		t.Fatal("missing scope should be empty")
	}
}
