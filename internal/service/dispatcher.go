package service

import (
	"context"
	"fmt"
	"time"

	"wmgateway/internal/metrics"
	"wmgateway/internal/models"
	"wmgateway/pkg/capi"

	"github.com/sirupsen/logrus"
)

// SignalStore is the subset of the store the pipeline needs for signals.
type SignalStore interface {
	SaveSignal(ctx context.Context, signal *models.Signal) error
	ListSignalsByBusinessAndConsumer(ctx context.Context, businessID, consumerID string) ([]models.Signal, error)
}

// KeywordStore supplies the keyword rules. The table is the source of truth
// and is re-read for every message.
type KeywordStore interface {
	ListKeywordRules(ctx context.Context) ([]models.KeywordRule, error)
}

// EventDispatcher gates a matched keyword rule on the attribution window and
// forwards the conversion to the measurement endpoint.
type EventDispatcher interface {
	Dispatch(ctx context.Context, businessID, consumerID string, messageTimestamp time.Time, rule models.KeywordRule) error
}

type capiDispatcher struct {
	signals SignalStore
	client  capi.Client
	cfg     models.CapiConfig
	logger  *logrus.Logger
}

// NewDispatcher builds the attribution gate and dispatcher. The CAPI client
// is constructed once at startup and injected here; there is no lazily
// initialized global handle.
func NewDispatcher(signals SignalStore, client capi.Client, cfg models.CapiConfig, logger *logrus.Logger) EventDispatcher {
	return &capiDispatcher{
		signals: signals,
		client:  client,
		cfg:     cfg,
		logger:  logger,
	}
}

// Dispatch sends one conversion event for a matched rule, provided a fresh
// referral signal exists for the (business, consumer) pair.
//
// A disabled integration, a missing signal and a stale signal are designed
// no-ops and return nil. Only a failed send returns an error, so callers can
// tell "nothing to send" from "send failed".
func (d *capiDispatcher) Dispatch(ctx context.Context, businessID, consumerID string, messageTimestamp time.Time, rule models.KeywordRule) error {
	if !d.cfg.Enabled {
		return nil
	}

	signals, err := d.signals.ListSignalsByBusinessAndConsumer(ctx, businessID, consumerID)
	if err != nil {
		return fmt.Errorf("failed to look up signals: %w", err)
	}
	if len(signals) == 0 {
		metrics.ConversionsDispatched.WithLabelValues(metrics.OutcomeSkippedNoMatch).Inc()
		return nil
	}

	latest := signals[0]

	window := d.cfg.AttributionWindowDays
	cutoff := time.Now().Add(-time.Duration(window) * 24 * time.Hour)

	// The gate is a strict comparison: a signal exactly at the cutoff is
	// stale. Future-dated signals (clock skew) pass.
	if !latest.EventTimestamp.After(cutoff) {
		d.logger.WithFields(logrus.Fields{
			"business_phone_number_id": businessID,
			"event_timestamp":          latest.EventTimestamp,
			"attribution_window_days":  window,
		}).Info("Signal is older than the attribution window, not sending event")
		metrics.ConversionsDispatched.WithLabelValues(metrics.OutcomeSkippedStale).Inc()
		return nil
	}

	event := capi.Event{
		EventName:        rule.CapiEvent,
		EventTime:        messageTimestamp.Unix(),
		ActionSource:     capi.ActionSourceBusinessMessaging,
		MessagingChannel: capi.MessagingChannelWhatsApp,
		UserData: capi.UserData{
			CtwaClid: latest.CtwaClid,
			PageID:   d.cfg.PageID,
		},
	}

	customData, err := rule.ParseCustomData()
	if err != nil {
		metrics.ConversionsDispatched.WithLabelValues(metrics.OutcomeFailed).Inc()
		return fmt.Errorf("failed to build event: %w", err)
	}
	if customData != nil {
		event.CustomData = &capi.CustomData{
			Value:    customData.Value,
			Currency: customData.Currency,
		}
	}

	d.logger.WithFields(logrus.Fields{
		"event_name": event.EventName,
		"event_time": event.EventTime,
	}).Info("Sending conversion event")

	response, err := d.client.SendEvent(ctx, event)
	if err != nil {
		metrics.ConversionsDispatched.WithLabelValues(metrics.OutcomeFailed).Inc()
		return fmt.Errorf("failed to send conversion event: %w", err)
	}

	d.logger.WithFields(logrus.Fields{
		"events_received": response.EventsReceived,
		"fbtrace_id":      response.FBTraceID,
	}).Info("Conversion event accepted")
	metrics.ConversionsDispatched.WithLabelValues(metrics.OutcomeSent).Inc()

	return nil
}
