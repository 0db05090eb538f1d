package admin

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harrylevesque/deviceadmin/internal/models"
	"github.com/harrylevesque/deviceadmin/internal/utils"
)

// FallbackDeviceID is used when no source can identify the device.
const FallbackDeviceID = "device-unidentified"

// ErrStorageUnavailable is returned by GrantAdmin when the grant could not be
// persisted. Match with errors.Is.
var ErrStorageUnavailable = utils.ErrStorageUnavailable

// Authority decides whether the current device is an administrator.
type Authority struct {
	source IdentifierSource
	store  Store
	log    *utils.Logger
	now    func() time.Time

	mu       sync.Mutex
	deviceID string
}

// Option customizes an Authority.
type Option func(*Authority)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *utils.Logger) Option {
	return func(a *Authority) {
		if l != nil {
			a.log = l
		}
	}
}

// WithClock overrides the time source used for grant timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Authority) {
		if now != nil {
			a.now = now
		}
	}
}

func NewAuthority(source IdentifierSource, store Store, opts ...Option) *Authority {
	a := &Authority{
		source: source,
		store:  store,
		log:    utils.NewNopLogger(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DeviceID returns the identifier of the current installation. It never
// fails and never returns "": if the source errors, FallbackDeviceID is used.
// The first value resolved is kept for the lifetime of the Authority.
func (a *Authority) DeviceID(ctx context.Context) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.deviceID != "" {
		return a.deviceID
	}

	id, err := a.resolve(ctx)
	if err != nil || id == "" {
		a.log.Warn("device identifier unavailable, using fallback",
			zap.String("fallback", FallbackDeviceID),
			zap.Error(err),
		)
		id = FallbackDeviceID
	}
	a.deviceID = id
	return id
}

func (a *Authority) resolve(ctx context.Context) (id string, err error) {
	if a.source == nil {
		return "", ErrNoIdentifier
	}
	defer func() {
		if r := recover(); r != nil {
			id, err = "", fmt.Errorf("identifier source panicked: %v", r)
		}
	}()
	id, err = a.source.DeviceID(ctx)
	return strings.TrimSpace(id), err
}

// IsAdmin reports whether the current device is on the allow-list. Any
// failure reading the store yields false.
func (a *Authority) IsAdmin(ctx context.Context) (ok bool) {
	id := a.DeviceID(ctx)
	if a.store == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("allow-list lookup panicked", zap.String("device_id", id), zap.Any("panic", r))
			ok = false
		}
	}()

	ok, err := a.store.Contains(ctx, id)
	if err != nil {
		a.log.Error("allow-list lookup failed, denying admin",
			zap.String("device_id", id),
			zap.Error(err),
		)
		return false
	}
	return ok
}

// GrantAdmin adds the current device to the allow-list. Granting an admin
// again is a no-op. The only failure is ErrStorageUnavailable.
func (a *Authority) GrantAdmin(ctx context.Context) (err error) {
	id := a.DeviceID(ctx)
	if a.store == nil {
		return utils.Wrap(utils.CodeStorageUnavailable, "grant admin", fmt.Errorf("no allow-list store configured"))
	}
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("admin grant panicked", zap.String("device_id", id), zap.Any("panic", r))
			err = utils.Wrap(utils.CodeStorageUnavailable, "grant admin", fmt.Errorf("store panicked: %v", r))
		}
	}()

	entry := models.AdminEntry{DeviceID: id, GrantedAt: a.now()}
	if addErr := a.store.Add(ctx, entry); addErr != nil {
		a.log.Error("admin grant not persisted", zap.String("device_id", id), zap.Error(addErr))
		if utils.CodeOf(addErr) == utils.CodeStorageUnavailable {
			return addErr
		}
		return utils.Wrap(utils.CodeStorageUnavailable, "grant admin", addErr)
	}
	a.log.Info("admin granted", zap.String("device_id", id))
	return nil
}

// Admins lists every device on the allow-list, oldest grant first.
func (a *Authority) Admins(ctx context.Context) ([]models.AdminEntry, error) {
	if a.store == nil {
		return nil, utils.Wrap(utils.CodeStorageUnavailable, "list admins", fmt.Errorf("no allow-list store configured"))
	}
	list, err := a.store.List(ctx)
	if err != nil {
		if utils.CodeOf(err) == utils.CodeStorageUnavailable {
			return nil, err
		}
		return nil, utils.Wrap(utils.CodeStorageUnavailable, "list admins", err)
	}
	return list, nil
}
