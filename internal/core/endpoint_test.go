package core

import (
	"math/rand"
	"testing"
)

func TestSelectLeaderPreference(t *testing.T) {
	candidates := []Candidate{
		{Endpoint: Endpoint{Host: "n1"}, State: VNodeFollower, HasState: true},
		{Endpoint: Endpoint{Host: "n2"}, State: VNodeLeader, HasState: true},
		{Endpoint: Endpoint{Host: "n3"}, State: VNodeFollower, HasState: true},
	}
	got, ok := Select(candidates, NodePreferenceLeader, rand.New(rand.NewSource(1)))
	if !ok {
		t.Fatal("expected a leader candidate to be selected")
	}
	if got.Endpoint.Host != "n2" {
		t.Errorf("expected n2 (the leader), got %s", got.Endpoint.Host)
	}
}

// TestSelectLeaderPreferenceUnsatisfiable is scenario S3: preference
// Leader but no alive leader in the gossip view must fail selection
// rather than fall back to some other role.
func TestSelectLeaderPreferenceUnsatisfiable(t *testing.T) {
	candidates := []Candidate{
		{Endpoint: Endpoint{Host: "n1"}, State: VNodeFollower, HasState: true},
		{Endpoint: Endpoint{Host: "n2"}, State: VNodeReadOnlyReplica, HasState: true},
	}
	_, ok := Select(candidates, NodePreferenceLeader, rand.New(rand.NewSource(1)))
	if ok {
		t.Fatal("expected no eligible candidate when no leader is present")
	}
}

func TestSelectExcludesJoiningStates(t *testing.T) {
	candidates := []Candidate{
		{Endpoint: Endpoint{Host: "joining"}, State: VNodePreLeader, HasState: true},
		{Endpoint: Endpoint{Host: "leader"}, State: VNodeLeader, HasState: true},
	}
	got, ok := Select(candidates, NodePreferenceRandom, rand.New(rand.NewSource(1)))
	if !ok {
		t.Fatal("expected a selection")
	}
	if got.Endpoint.Host != "leader" {
		t.Errorf("expected the joining-state candidate to be excluded, got %s", got.Endpoint.Host)
	}
}

func TestSelectReadOnlyReplicaPreference(t *testing.T) {
	candidates := []Candidate{
		{Endpoint: Endpoint{Host: "n1"}, State: VNodeFollower, HasState: true},
		{Endpoint: Endpoint{Host: "n2"}, State: VNodeReadOnlyReplica, HasState: true},
	}
	got, ok := Select(candidates, NodePreferenceReadOnlyReplica, rand.New(rand.NewSource(1)))
	if !ok || got.Endpoint.Host != "n2" {
		t.Errorf("expected n2 (read-only replica), got %+v ok=%v", got, ok)
	}
}

func TestSelectNoStateMatchesAnyPreference(t *testing.T) {
	candidates := []Candidate{
		{Endpoint: Endpoint{Host: "single"}, HasState: false},
	}
	got, ok := Select(candidates, NodePreferenceLeader, rand.New(rand.NewSource(1)))
	if !ok || got.Endpoint.Host != "single" {
		t.Errorf("expected the stateless candidate to match any preference, got %+v ok=%v", got, ok)
	}
}

func TestSelectEmptyCandidateSet(t *testing.T) {
	_, ok := Select(nil, NodePreferenceRandom, rand.New(rand.NewSource(1)))
	if ok {
		t.Error("expected no selection from an empty candidate set")
	}
}

// TestSelectDiversifiesAcrossRepeatedCalls checks the tie-breaking rule
// (spec.md §4.2): repeated Selects among equally-eligible candidates
// should not always return the same one.
func TestSelectDiversifiesAcrossRepeatedCalls(t *testing.T) {
	candidates := []Candidate{
		{Endpoint: Endpoint{Host: "n1"}, State: VNodeFollower, HasState: true},
		{Endpoint: Endpoint{Host: "n2"}, State: VNodeFollower, HasState: true},
		{Endpoint: Endpoint{Host: "n3"}, State: VNodeFollower, HasState: true},
	}
	rnd := rand.New(rand.NewSource(42))
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		got, ok := Select(candidates, NodePreferenceFollower, rnd)
		if !ok {
			t.Fatal("expected a selection")
		}
		seen[got.Endpoint.Host] = true
	}
	if len(seen) < 2 {
		t.Errorf("expected Select to diversify across repeated calls, only ever returned %v", seen)
	}
}

func TestMembersToCandidatesDropsNonAlive(t *testing.T) {
	members := []MemberInfo{
		{InstanceID: "a", State: VNodeLeader, IsAlive: true, HTTPEndpoint: Endpoint{Host: "a"}},
		{InstanceID: "b", State: VNodeFollower, IsAlive: false, HTTPEndpoint: Endpoint{Host: "b"}},
	}
	got := MembersToCandidates(members)
	if len(got) != 1 || got[0].Endpoint.Host != "a" {
		t.Errorf("expected only the alive member to survive, got %+v", got)
	}
}
