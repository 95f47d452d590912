// Package admission gates new shard connections and drives the session
// lifecycle around them: capacity and token checks on connect, reward grant
// orchestration while connected, and session close-out on disconnect.
package admission

import (
	"context"
	"log"
	"strconv"
	"sync"

	"github.com/hypermage/shardcore/internal/fleet"
	apperrors "github.com/hypermage/shardcore/internal/platform/errors"
	"github.com/hypermage/shardcore/internal/rewards"
	"github.com/hypermage/shardcore/internal/session"
	"github.com/hypermage/shardcore/internal/token"
)

// Interaction event types recorded by the controller.
const (
	eventPlayerJoin  = "player_join"
	eventPlayerLeave = "player_leave"
	eventRewardGrant = "reward_grant"
)

// Conn is the transport-layer handle for a connected player. The controller
// never owns the transport; it only needs to know whether the handle still
// refers to a live connection, so dead connections stop counting against
// capacity without an eager removal list.
type Conn interface {
	Valid() bool
}

// Config holds the admission policy for one shard.
type Config struct {
	// ShardID identifies the shard instance players are admitted to.
	ShardID string
	// MaxPlayers caps the number of live connections.
	MaxPlayers int
	// FleetManaged requires a matchmaking reservation id on every connect.
	FleetManaged bool
}

// Result reports a successful admission.
type Result struct {
	SessionID string
	PlayerID  string
	Claims    token.Claims
}

type entry struct {
	conn          Conn
	sessionID     string
	reservationID string
}

// Controller decides whether a connecting client may join the shard and
// owns the connected-player set. Safe for concurrent use.
type Controller struct {
	cfg       Config
	validator *token.Validator
	registry  *session.Registry
	ledger    *rewards.Ledger
	fleet     fleet.Manager
	closer    *Closer

	mu        sync.Mutex
	connected map[string]*entry
}

// NewController creates an admission controller. The fleet manager may be
// nil when the shard is not fleet-managed.
func NewController(cfg Config, validator *token.Validator, registry *session.Registry, ledger *rewards.Ledger, manager fleet.Manager, closer *Closer) *Controller {
	return &Controller{
		cfg:       cfg,
		validator: validator,
		registry:  registry,
		ledger:    ledger,
		fleet:     manager,
		closer:    closer,
		connected: make(map[string]*entry),
	}
}

// Admit runs the admission checks for one connection attempt. Capacity is
// checked first, then token presence and validity, then the fleet
// reservation when the shard is fleet-managed. On success the player's
// session is created, started, and registered in the connected set.
func (c *Controller) Admit(conn Conn, opts Options) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if count := c.liveCountLocked(); count >= c.cfg.MaxPlayers {
		log.Printf("admission: rejected connection, server full (%d/%d)", count, c.cfg.MaxPlayers)
		return Result{}, apperrors.WithMetadata(
			apperrors.CodeServerFull,
			"server is at player capacity",
			map[string]string{
				"Current": strconv.Itoa(count),
				"Max":     strconv.Itoa(c.cfg.MaxPlayers),
			},
		)
	}

	bearer := opts.Token()
	if bearer == "" {
		log.Printf("admission: rejected connection, no token provided")
		return Result{}, apperrors.New(apperrors.CodeNoToken, "connection options carry no token")
	}

	claims, err := c.validator.Validate(bearer)
	if err != nil {
		log.Printf("admission: rejected connection, token invalid: %v (%s)", err, apperrors.CodeOf(err))
		return Result{}, err
	}

	var reservationID string
	if c.cfg.FleetManaged {
		reservationID = opts.ReservationID()
		if reservationID == "" {
			log.Printf("admission: rejected player %s, no reservation id", claims.Subject)
			return Result{}, apperrors.New(apperrors.CodeNoReservation, "fleet reservation id is required")
		}
		if err := c.fleet.ValidateReservation(reservationID); err != nil {
			log.Printf("admission: rejected player %s, reservation invalid: %v", claims.Subject, err)
			return Result{}, err
		}
		if err := c.fleet.AcceptReservation(reservationID); err != nil {
			log.Printf("admission: rejected player %s, reservation not accepted: %v", claims.Subject, err)
			return Result{}, err
		}
	}

	sess, err := c.registry.Create(claims.Subject, c.cfg.ShardID)
	if err != nil {
		return Result{}, err
	}
	if err := c.registry.Start(sess.ID); err != nil {
		return Result{}, err
	}
	c.registry.TrackEvent(sess.ID, eventPlayerJoin, map[string]string{
		"action":   "player_joined",
		"shard_id": c.cfg.ShardID,
	})

	c.connected[claims.Subject] = &entry{
		conn:          conn,
		sessionID:     sess.ID,
		reservationID: reservationID,
	}
	log.Printf("admission: player %s admitted, session %s (%d/%d)",
		claims.Subject, sess.ID, len(c.connected), c.cfg.MaxPlayers)

	return Result{SessionID: sess.ID, PlayerID: claims.Subject, Claims: claims}, nil
}

// Logout closes out a departing player: records the leave event, ends the
// session through the closer, and drops the connection and any fleet
// reservation. A logout with no matching session logs a warning and is
// otherwise a no-op, because disconnects can race with cleanup.
func (c *Controller) Logout(ctx context.Context, playerID string) {
	c.mu.Lock()
	e, ok := c.connected[playerID]
	if ok {
		delete(c.connected, playerID)
	}
	c.mu.Unlock()

	if !ok {
		log.Printf("admission: logout for player %s with no session", playerID)
		return
	}

	c.registry.TrackEvent(e.sessionID, eventPlayerLeave, map[string]string{
		"action":   "player_left",
		"shard_id": c.cfg.ShardID,
	})

	summary, err := c.closer.Close(ctx, e.sessionID)
	if err != nil {
		log.Printf("admission: close session %s: %v", e.sessionID, err)
	} else {
		log.Printf("admission: player %s left, session %s ended with %d rewards",
			playerID, e.sessionID, len(summary.Rewards))
	}

	if c.cfg.FleetManaged && e.reservationID != "" {
		c.fleet.RemoveReservation(e.reservationID)
	}
}

// GrantReward grants a reward through the ledger and, on success, mirrors it
// into the player's session reward set and records a grant event. This is
// the single sanctioned grant path, keeping the two reward ledgers
// reconciled.
func (c *Controller) GrantReward(playerID, rewardID string) error {
	if err := c.ledger.Grant(playerID, rewardID); err != nil {
		return err
	}

	c.mu.Lock()
	e, ok := c.connected[playerID]
	c.mu.Unlock()
	if !ok {
		log.Printf("admission: reward %q granted to player %s with no live session", rewardID, playerID)
		return nil
	}

	c.registry.AddReward(e.sessionID, rewardID)
	c.registry.TrackEvent(e.sessionID, eventRewardGrant, map[string]string{
		"action":    "reward_granted",
		"reward_id": rewardID,
	})
	return nil
}

// TrackEvent records a gameplay interaction event on a connected player's
// session. Unknown players log a warning and are a no-op.
func (c *Controller) TrackEvent(playerID, eventType string, data map[string]string) {
	c.mu.Lock()
	e, ok := c.connected[playerID]
	c.mu.Unlock()
	if !ok {
		log.Printf("admission: track event %q for unknown player %s", eventType, playerID)
		return
	}
	c.registry.TrackEvent(e.sessionID, eventType, data)
}

// PlayerCount returns the number of live connections, pruning entries whose
// handle is no longer valid.
func (c *Controller) PlayerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveCountLocked()
}

// Snapshot builds the health/readiness signal for the fleet manager.
func (c *Controller) Snapshot() fleet.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fleet.Snapshot{
		ShardID:     c.cfg.ShardID,
		PlayerCount: c.liveCountLocked(),
		Capacity:    c.cfg.MaxPlayers,
	}
}

// liveCountLocked counts live connections and lazily removes dead ones. The
// caller must hold the mutex.
func (c *Controller) liveCountLocked() int {
	for playerID, e := range c.connected {
		if e.conn != nil && !e.conn.Valid() {
			delete(c.connected, playerID)
		}
	}
	return len(c.connected)
}
