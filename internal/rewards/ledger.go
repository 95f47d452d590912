package rewards

import (
	"context"
	"log"
	"slices"
	"sync"

	apperrors "github.com/hypermage/shardcore/internal/platform/errors"
)

// Source provides the raw catalog document from an external location.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Ledger grants rewards to players with at-most-once semantics, validated
// against the loaded catalog. Safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	catalog Catalog
	loaded  bool
	players map[string][]string
}

// NewLedger creates a ledger with no catalog. Until a catalog loads, every
// grant fails with REWARD_CATALOG_NOT_FOUND.
func NewLedger() *Ledger {
	return &Ledger{players: make(map[string][]string)}
}

// Load fetches and parses the catalog document from a source. Failure leaves
// the ledger degraded rather than crashing: the catalog stays unloaded and
// grants keep failing.
func (l *Ledger) Load(ctx context.Context, src Source) error {
	data, err := src.Fetch(ctx)
	if err != nil {
		log.Printf("rewards: fetch catalog: %v", err)
		return err
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		log.Printf("rewards: %v", err)
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.catalog = catalog
	l.loaded = true
	log.Printf("rewards: catalog loaded with %d entries (version %s)", catalog.Len(), catalog.Version)
	return nil
}

// Loaded reports whether a catalog has been loaded.
func (l *Ledger) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// IsValidRewardID reports whether the catalog is loaded and contains the
// reward id. False is not an error.
func (l *Ledger) IsValidRewardID(rewardID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded && l.catalog.Contains(rewardID)
}

// Grant adds a reward to a player's set. Validation order, first match wins:
// empty player id, empty reward id, catalog not loaded, reward not in
// catalog, reward already granted.
func (l *Ledger) Grant(playerID, rewardID string) error {
	if playerID == "" {
		return apperrors.New(apperrors.CodeInvalidPlayerID, "player id is empty")
	}
	if rewardID == "" {
		return apperrors.New(apperrors.CodeInvalidRewardID, "reward id is empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded {
		log.Printf("rewards: cannot grant %q, catalog not loaded", rewardID)
		return apperrors.WithMetadata(
			apperrors.CodeRewardCatalogNotFound,
			"rewards catalog is not loaded",
			map[string]string{"RewardID": rewardID},
		)
	}
	if !l.catalog.Contains(rewardID) {
		log.Printf("rewards: invalid reward id %q", rewardID)
		return apperrors.WithMetadata(
			apperrors.CodeInvalidRewardID,
			"reward id not found in catalog",
			map[string]string{"RewardID": rewardID},
		)
	}

	granted := l.players[playerID]
	if slices.Contains(granted, rewardID) {
		log.Printf("rewards: reward %q already granted to player %s", rewardID, playerID)
		return apperrors.WithMetadata(
			apperrors.CodeRewardAlreadyGranted,
			"reward already granted",
			map[string]string{"RewardID": rewardID},
		)
	}

	l.players[playerID] = append(granted, rewardID)
	log.Printf("rewards: granted %q to player %s (total %d)", rewardID, playerID, len(l.players[playerID]))
	return nil
}

// PlayerRewards returns a copy of the reward ids granted to a player.
func (l *Ledger) PlayerRewards(playerID string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.players[playerID])
}

// HasReward reports whether a player has been granted a reward id.
func (l *Ledger) HasReward(playerID, rewardID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Contains(l.players[playerID], rewardID)
}
