package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Manager fans a message out to every configured provider.
type Manager struct {
	providers map[string]Notifier
	order     []string
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{providers: make(map[string]Notifier)}
}

// Add registers a provider under name. A later Add with the same name
// replaces the provider.
func (m *Manager) Add(name string, n Notifier) {
	if _, ok := m.providers[name]; !ok {
		m.order = append(m.order, name)
	}
	m.providers[name] = n
}

// Providers returns the registered provider names in registration order.
func (m *Manager) Providers() []string {
	return append([]string(nil), m.order...)
}

// Len returns the number of registered providers.
func (m *Manager) Len() int {
	return len(m.order)
}

// Notify delivers message to every provider. Every provider is attempted;
// the returned error joins the failures.
func (m *Manager) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, name := range m.order {
		if err := m.providers[name].Notify(ctx, message); err != nil {
			slog.Warn("notification failed", "provider", name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		slog.Debug("notification sent", "provider", name)
	}
	return errors.Join(errs...)
}
