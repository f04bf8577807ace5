package systemd

import (
	"context"
	"slices"
)

// Fake is an in-memory Manager for tests.
type Fake struct {
	// Active lists units reported as active.
	Active []string

	// Errs maps an operation name ("reload", "enable-start", "is-active",
	// "stop") to an error returned by it.
	Errs map[string]error

	Reloads int
	Started []string
	Stopped []string
}

// NewFake creates a Fake with no active units.
func NewFake(active ...string) *Fake {
	return &Fake{
		Active: active,
		Errs:   make(map[string]error),
	}
}

// Reload implements Manager.
func (f *Fake) Reload(context.Context) error {
	if err := f.Errs["reload"]; err != nil {
		return err
	}
	f.Reloads++
	return nil
}

// EnableAndStart implements Manager.
func (f *Fake) EnableAndStart(_ context.Context, unit string) error {
	if err := f.Errs["enable-start"]; err != nil {
		return err
	}
	f.Started = append(f.Started, unit)
	f.Active = append(f.Active, unit)
	return nil
}

// IsActive implements Manager.
func (f *Fake) IsActive(_ context.Context, unit string) (bool, error) {
	if err := f.Errs["is-active"]; err != nil {
		return false, err
	}
	return slices.Contains(f.Active, unit), nil
}

// Stop implements Manager.
func (f *Fake) Stop(_ context.Context, unit string) error {
	if err := f.Errs["stop"]; err != nil {
		return err
	}
	f.Stopped = append(f.Stopped, unit)
	f.Active = slices.DeleteFunc(f.Active, func(u string) bool { return u == unit })
	return nil
}
