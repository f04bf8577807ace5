// Package systemd wraps the narrow service-manager contract the
// provisioner needs: reload unit definitions, enable and start a unit,
// query whether a unit is active, and stop one.
package systemd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/coreos/go-systemd/v22/dbus"
)

// Manager is the service manager contract.
type Manager interface {
	// Reload makes the manager re-read unit definitions from disk.
	Reload(ctx context.Context) error

	// EnableAndStart enables the named unit and starts it, waiting for
	// the start job to finish.
	EnableAndStart(ctx context.Context, unit string) error

	// IsActive reports whether the named unit is currently active. An
	// unknown unit is simply not active.
	IsActive(ctx context.Context, unit string) (bool, error)

	// Stop stops the named unit, waiting for the stop job to finish.
	Stop(ctx context.Context, unit string) error
}

// DBusManager talks to systemd over the system D-Bus.
type DBusManager struct {
	conn *dbus.Conn
}

// NewDBusManager connects to the systemd manager.
func NewDBusManager(ctx context.Context) (*DBusManager, error) {
	conn, err := dbus.NewSystemdConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd: %w", err)
	}
	return &DBusManager{conn: conn}, nil
}

// Close releases the D-Bus connection.
func (m *DBusManager) Close() {
	m.conn.Close()
}

// Reload implements Manager.
func (m *DBusManager) Reload(ctx context.Context) error {
	if err := m.conn.ReloadContext(ctx); err != nil {
		return fmt.Errorf("failed to reload systemd: %w", err)
	}
	return nil
}

// EnableAndStart implements Manager.
func (m *DBusManager) EnableAndStart(ctx context.Context, unit string) error {
	if _, _, err := m.conn.EnableUnitFilesContext(ctx, []string{unit}, false, true); err != nil {
		return fmt.Errorf("failed to enable unit %q: %w", unit, err)
	}

	ch := make(chan string, 1)
	if _, err := m.conn.StartUnitContext(ctx, unit, "replace", ch); err != nil {
		return fmt.Errorf("failed to start unit %q: %w", unit, err)
	}
	if result := <-ch; result != "done" {
		return fmt.Errorf("start of unit %q finished with result %q", unit, result)
	}

	slog.Info("unit enabled and started", "unit", unit)
	return nil
}

// IsActive implements Manager.
func (m *DBusManager) IsActive(ctx context.Context, unit string) (bool, error) {
	props, err := m.conn.GetUnitPropertiesContext(ctx, unit)
	if err != nil {
		return false, fmt.Errorf("failed to get unit properties for %q: %w", unit, err)
	}
	state, _ := props["ActiveState"].(string)
	return state == "active", nil
}

// Stop implements Manager.
func (m *DBusManager) Stop(ctx context.Context, unit string) error {
	ch := make(chan string, 1)
	if _, err := m.conn.StopUnitContext(ctx, unit, "replace", ch); err != nil {
		return fmt.Errorf("failed to stop unit %q: %w", unit, err)
	}
	if result := <-ch; result != "done" {
		return fmt.Errorf("stop of unit %q finished with result %q", unit, result)
	}

	slog.Info("unit stopped", "unit", unit)
	return nil
}
