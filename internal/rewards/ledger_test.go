package rewards

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/hypermage/shardcore/internal/platform/errors"
)

type staticSource []byte

func (s staticSource) Fetch(ctx context.Context) ([]byte, error) {
	return s, nil
}

type failingSource struct{}

func (failingSource) Fetch(ctx context.Context) ([]byte, error) {
	return nil, errors.New("bucket unreachable")
}

func loadedLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger()
	if err := l.Load(context.Background(), staticSource(catalogJSON)); err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return l
}

func TestGrantScenario(t *testing.T) {
	l := loadedLedger(t)

	if err := l.Grant("p1", "sword_of_dawn"); err != nil {
		t.Fatalf("first grant error = %v", err)
	}
	if err := l.Grant("p1", "sword_of_dawn"); apperrors.CodeOf(err) != apperrors.CodeRewardAlreadyGranted {
		t.Fatalf("expected REWARD_ALREADY_GRANTED, got %v", err)
	}
	if err := l.Grant("p1", "nonexistent"); apperrors.CodeOf(err) != apperrors.CodeInvalidRewardID {
		t.Fatalf("expected INVALID_REWARD_ID, got %v", err)
	}

	got := l.PlayerRewards("p1")
	if len(got) != 1 || got[0] != "sword_of_dawn" {
		t.Fatalf("expected exactly one granted reward, got %v", got)
	}
}

func TestGrantValidationOrder(t *testing.T) {
	l := loadedLedger(t)
	l.Grant("p1", "sword_of_dawn")

	tests := []struct {
		name     string
		playerID string
		rewardID string
		want     apperrors.Code
	}{
		{"empty player id", "", "sword_of_dawn", apperrors.CodeInvalidPlayerID},
		{"empty reward id", "p1", "", apperrors.CodeInvalidRewardID},
		{"unknown reward id", "p1", "crown_of_night", apperrors.CodeInvalidRewardID},
		{"already granted", "p1", "sword_of_dawn", apperrors.CodeRewardAlreadyGranted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apperrors.CodeOf(l.Grant(tt.playerID, tt.rewardID)); got != tt.want {
				t.Fatalf("Grant(%q, %q) = %s, want %s", tt.playerID, tt.rewardID, got, tt.want)
			}
		})
	}
}

func TestGrantWithoutCatalog(t *testing.T) {
	l := NewLedger()

	if l.Loaded() {
		t.Fatal("expected new ledger to report no catalog")
	}
	if err := l.Grant("p1", "sword_of_dawn"); apperrors.CodeOf(err) != apperrors.CodeRewardCatalogNotFound {
		t.Fatalf("expected REWARD_CATALOG_NOT_FOUND, got %v", err)
	}
	// Empty inputs still fail first.
	if err := l.Grant("", "sword_of_dawn"); apperrors.CodeOf(err) != apperrors.CodeInvalidPlayerID {
		t.Fatalf("expected INVALID_PLAYER_ID before catalog check, got %v", err)
	}
}

func TestLoadFailureLeavesLedgerDegraded(t *testing.T) {
	l := NewLedger()

	if err := l.Load(context.Background(), failingSource{}); err == nil {
		t.Fatal("expected load error")
	}
	if l.Loaded() {
		t.Fatal("expected catalog to stay unloaded after a failed load")
	}
	if l.IsValidRewardID("sword_of_dawn") {
		t.Fatal("expected IsValidRewardID to be false without a catalog")
	}
}

func TestLoadBadDocumentLeavesLedgerDegraded(t *testing.T) {
	l := NewLedger()

	if err := l.Load(context.Background(), staticSource(`{"version": "1.0.0"}`)); err == nil {
		t.Fatal("expected parse error for document without rewards")
	}
	if l.Loaded() {
		t.Fatal("expected catalog to stay unloaded")
	}
}

func TestIsValidRewardID(t *testing.T) {
	l := loadedLedger(t)

	if !l.IsValidRewardID("shield_basic") {
		t.Fatal("expected shield_basic to be valid")
	}
	if l.IsValidRewardID("nonexistent") {
		t.Fatal("expected unknown id to be invalid")
	}
}

func TestPlayerRewardQueries(t *testing.T) {
	l := loadedLedger(t)
	l.Grant("p1", "sword_of_dawn")
	l.Grant("p1", "shield_basic")

	if !l.HasReward("p1", "sword_of_dawn") {
		t.Fatal("expected p1 to have sword_of_dawn")
	}
	if l.HasReward("p2", "sword_of_dawn") {
		t.Fatal("expected p2 to have no rewards")
	}
	if got := l.PlayerRewards("p2"); len(got) != 0 {
		t.Fatalf("expected empty set for unknown player, got %v", got)
	}

	// Returned slice is a copy.
	got := l.PlayerRewards("p1")
	got[0] = "tampered"
	if !l.HasReward("p1", "sword_of_dawn") {
		t.Fatal("mutating a returned copy must not affect the ledger")
	}
}
