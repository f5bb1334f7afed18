package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"nganya/internal/domain/models"
	"nganya/internal/realtime"
	"nganya/internal/utils"
)

// PresenceRegistry tracks which drivers hold a live connection and publishes the
// list of addressable (approved and online) drivers. The list is recomputed from
// the Data Store in full on every change and broadcast to every session.
type PresenceRegistry struct {
	Drivers DriverStore
	Router  Publisher
	Now     func() time.Time

	mu   sync.Mutex
	live map[string]string // driverID -> sessionID
}

func NewPresenceRegistry(drivers DriverStore, router Publisher) *PresenceRegistry {
	return &PresenceRegistry{
		Drivers: drivers,
		Router:  router,
		Now:     time.Now,
		live:    map[string]string{},
	}
}

func (r *PresenceRegistry) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// SetOnline persists the driver's flag and rebroadcasts the list. A store
// failure skips the broadcast.
func (r *PresenceRegistry) SetOnline(ctx context.Context, driverID string, online bool) error {
	ctx = context.WithoutCancel(ctx)
	utils.LogEvent(utils.RequestIDFrom(ctx), "presence", "set_online", fmt.Sprintf("driver_id=%s online=%v", driverID, online))

	d, err := r.Drivers.FindByID(ctx, driverID)
	if err != nil {
		return storeErr(err, "Failed to toggle online")
	}
	d.IsOnline = online
	d.UpdatedAt = r.now()
	if err := r.Drivers.Save(ctx, d); err != nil {
		return storeErr(err, "Failed to toggle online")
	}
	if _, err := r.Broadcast(ctx); err != nil {
		return storeErr(err, "Failed to toggle online")
	}
	return nil
}

// Approve marks the driver approved and rebroadcasts.
func (r *PresenceRegistry) Approve(ctx context.Context, driverID string) (models.Driver, error) {
	ctx = context.WithoutCancel(ctx)
	utils.LogEvent(utils.RequestIDFrom(ctx), "presence", "approve", "driver_id="+driverID)

	d, err := r.Drivers.FindByID(ctx, driverID)
	if err != nil {
		return models.Driver{}, storeErr(err, "Failed to approve driver")
	}
	d.Status = models.DriverApproved
	d.UpdatedAt = r.now()
	if err := r.Drivers.Save(ctx, d); err != nil {
		return models.Driver{}, storeErr(err, "Failed to approve driver")
	}
	if _, err := r.Broadcast(ctx); err != nil {
		return models.Driver{}, storeErr(err, "Failed to approve driver")
	}
	return d, nil
}

// Reject marks the driver rejected and forces it offline. There is no
// broadcast; the driver is simply absent from the next one.
func (r *PresenceRegistry) Reject(ctx context.Context, driverID, reason string) (models.Driver, error) {
	ctx = context.WithoutCancel(ctx)
	utils.LogEvent(utils.RequestIDFrom(ctx), "presence", "reject", "driver_id="+driverID)

	d, err := r.Drivers.FindByID(ctx, driverID)
	if err != nil {
		return models.Driver{}, storeErr(err, "Failed to reject driver")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = models.DefaultRejectReason
	}
	d.Status = models.DriverRejected
	d.RejectReason = reason
	d.IsOnline = false
	d.UpdatedAt = r.now()
	if err := r.Drivers.Save(ctx, d); err != nil {
		return models.Driver{}, storeErr(err, "Failed to reject driver")
	}
	return d, nil
}

// Snapshot lists addressable drivers in store order.
func (r *PresenceRegistry) Snapshot(ctx context.Context) ([]models.DriverPresence, error) {
	drivers, err := r.Drivers.FindAddressable(ctx)
	if err != nil {
		return nil, storeErr(err, "Failed to fetch online drivers")
	}
	out := make([]models.DriverPresence, 0, len(drivers))
	for _, d := range drivers {
		if !d.Addressable() {
			continue
		}
		out = append(out, d.Presence())
	}
	return out, nil
}

// Broadcast recomputes the snapshot and sends it to every session. It returns
// the number of local sessions reached.
func (r *PresenceRegistry) Broadcast(ctx context.Context) (int, error) {
	list, err := r.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	n := r.Router.Broadcast(realtime.Event{Name: realtime.EventDriversOnlineList, Data: list})
	utils.LogEvent(utils.RequestIDFrom(ctx), "presence", "broadcast", fmt.Sprintf("drivers=%d sessions=%d", len(list), n))
	return n, nil
}

// SendSnapshot sends the current list to a single session.
func (r *PresenceRegistry) SendSnapshot(ctx context.Context, sessionID string) error {
	list, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}
	r.Router.SendTo(sessionID, realtime.Event{Name: realtime.EventDriversOnlineList, Data: list})
	return nil
}

// AttachDriver records sessionID as the driver's live address and rebroadcasts.
func (r *PresenceRegistry) AttachDriver(ctx context.Context, driverID, sessionID string) error {
	r.mu.Lock()
	if r.live == nil {
		r.live = map[string]string{}
	}
	r.live[driverID] = sessionID
	r.mu.Unlock()

	_, err := r.Broadcast(ctx)
	return err
}

// DetachDriver clears the live address if it still points at sessionID, then
// rebroadcasts the same way SetOnline(false) would. The stored online flag is
// not changed, so a driver that dropped without going offline stays listed.
func (r *PresenceRegistry) DetachDriver(ctx context.Context, driverID, sessionID string) error {
	r.mu.Lock()
	if r.live[driverID] == sessionID {
		delete(r.live, driverID)
	}
	r.mu.Unlock()

	_, err := r.Broadcast(ctx)
	return err
}

// LiveSession returns the session currently addressing driverID.
func (r *PresenceRegistry) LiveSession(driverID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.live[driverID]
	return id, ok
}

func (r *PresenceRegistry) LiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}
