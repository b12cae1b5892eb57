// posthog_client.go wraps posthog.Client so callers need not care whether analytics is configured.
package utils

import (
	"log/slog"

	"github.com/posthog/posthog-go"
)

// DefaultPosthogEndpoint is used when no endpoint is configured.
const DefaultPosthogEndpoint = "https://eu.i.posthog.com"

// PosthogClientWrapper is a nil-safe PostHog client.
type PosthogClientWrapper struct {
	posthogClient posthog.Client
	logger        *slog.Logger
}

// InitializePosthogClient returns an uninitialized wrapper when apiKey is empty or the client cannot be built.
func InitializePosthogClient(apiKey, endpoint string, logger *slog.Logger) *PosthogClientWrapper {
	if apiKey == "" {
		logger.Warn("Posthog API key is empty, not initializing posthog client.")
		return &PosthogClientWrapper{}
	}
	if endpoint == "" {
		endpoint = DefaultPosthogEndpoint
	}
	client, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	if err != nil {
		logger.Error("Failed to initialize posthog client", slog.String("error", err.Error()))
		return &PosthogClientWrapper{}
	}
	logger.Info("Posthog client initialized", slog.String("endpoint", endpoint))
	return &PosthogClientWrapper{posthogClient: client, logger: logger}
}

// NewPosthogClientWrapper wraps an existing client.
func NewPosthogClientWrapper(client posthog.Client, logger *slog.Logger) *PosthogClientWrapper {
	return &PosthogClientWrapper{posthogClient: client, logger: logger}
}

func (w *PosthogClientWrapper) IsInitialized() bool {
	return w != nil && w.posthogClient != nil
}

// Enqueue queues a capture event. It is a no-op on an uninitialized wrapper.
func (w *PosthogClientWrapper) Enqueue(distinctID string, event string, properties map[string]any) error {
	if !w.IsInitialized() {
		return nil
	}
	if w.logger != nil {
		w.logger.Debug("Enqueueing event", slog.String("distinct_id", distinctID), slog.String("event", event))
	}
	return w.posthogClient.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: properties,
	})
}

// EnqueueForTenant queues a capture event attributed to the tenant's PostHog group.
func (w *PosthogClientWrapper) EnqueueForTenant(distinctID, tenantID, event string, properties map[string]any) error {
	if !w.IsInitialized() {
		return nil
	}
	capture := posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: properties,
	}
	if tenantID != "" {
		capture.Groups = posthog.NewGroups().Set("tenant", tenantID)
	}
	return w.posthogClient.Enqueue(capture)
}

func (w *PosthogClientWrapper) Close() {
	if !w.IsInitialized() {
		return
	}
	if err := w.posthogClient.Close(); err != nil && w.logger != nil {
		w.logger.Warn("Failed to close posthog client", slog.String("error", err.Error()))
	}
}
