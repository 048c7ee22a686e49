package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"wmgateway/internal/metrics"
	"wmgateway/internal/models"

	"github.com/sirupsen/logrus"
)

// Processor runs the attribution pipeline for inbound webhook payloads:
// referral signal recording, keyword matching and conversion dispatch.
type Processor struct {
	signals    SignalStore
	keywords   KeywordStore
	dispatcher EventDispatcher
	logger     *logrus.Logger
}

func NewProcessor(signals SignalStore, keywords KeywordStore, dispatcher EventDispatcher, logger *logrus.Logger) *Processor {
	return &Processor{
		signals:    signals,
		keywords:   keywords,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// ProcessValues processes every message of every "messages" change payload.
// Messages are independent: a failure in one never aborts its siblings. The
// returned error aggregates per-message failures for logging; ingestion is
// still considered successful by the webhook handler.
func (p *Processor) ProcessValues(ctx context.Context, values []models.WebhookValue) error {
	var errs []error
	for _, value := range values {
		businessID := value.Metadata.PhoneNumberID
		for _, message := range value.Messages {
			if err := p.processMessage(ctx, businessID, message); err != nil {
				p.logger.WithFields(logrus.Fields{
					"business_phone_number_id": businessID,
					"message_id":               message.ID,
				}).WithError(err).Error("Failed to process message")
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (p *Processor) processMessage(ctx context.Context, businessID string, message models.WebhookMessage) error {
	if message.Type != models.MessageTypeText || message.Text == nil {
		return nil
	}

	if err := p.recordIfReferral(ctx, businessID, message); err != nil {
		// A storage failure aborts this message only.
		metrics.ProcessingErrors.WithLabelValues("record_signal").Inc()
		return err
	}

	rules, err := p.keywords.ListKeywordRules(ctx)
	if err != nil {
		metrics.ProcessingErrors.WithLabelValues("load_keywords").Inc()
		return fmt.Errorf("failed to load keyword rules: %w", err)
	}

	matched := MatchKeywords(message.Text.Body, rules)
	if len(matched) == 0 {
		return nil
	}

	names := make([]string, len(matched))
	for i, rule := range matched {
		names[i] = fmt.Sprintf("%d:%s", rule.ID, rule.Keyword)
	}
	p.logger.WithField("matched", strings.Join(names, ", ")).Debug("Matched keywords")
	metrics.KeywordMatches.Add(float64(len(matched)))

	// Dispatches for one message run concurrently with isolated error
	// capture; one failed send must not suppress the others.
	var wg sync.WaitGroup
	dispatchErrs := make([]error, len(matched))
	for i, rule := range matched {
		wg.Add(1)
		go func(i int, rule models.KeywordRule) {
			defer wg.Done()
			if err := p.dispatcher.Dispatch(ctx, businessID, message.From, message.Timestamp.Time, rule); err != nil {
				dispatchErrs[i] = fmt.Errorf("dispatch for keyword %q: %w", rule.Keyword, err)
			}
		}(i, rule)
	}
	wg.Wait()

	return errors.Join(dispatchErrs...)
}

// recordIfReferral persists a Signal when the message carries referral
// metadata. The referral block is stored verbatim as the raw payload and the
// signal's event timestamp is the message's own timestamp.
func (p *Processor) recordIfReferral(ctx context.Context, businessID string, message models.WebhookMessage) error {
	if message.Referral == nil {
		return nil
	}

	rawPayload, err := message.Referral.Stringify()
	if err != nil {
		return err
	}

	signal := &models.Signal{
		BusinessPhoneNumberID: businessID,
		ConsumerPhoneNumber:   message.From,
		CtwaClid:              message.Referral.CtwaClid,
		SourceID:              message.Referral.SourceID,
		RawPayload:            rawPayload,
		EventTimestamp:        message.Timestamp.Time,
	}

	if err := p.signals.SaveSignal(ctx, signal); err != nil {
		return fmt.Errorf("failed to save signal: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"business_phone_number_id": businessID,
		"signal_id":                signal.ID,
	}).Info("Recorded referral signal")
	metrics.SignalsRecorded.Inc()

	return nil
}

// MatchKeywords returns the rules whose keyword is a case-sensitive
// substring of the message body, in table order, duplicates preserved. There
// is deliberately no word-boundary check: short keywords may match inside
// unrelated words, which matches the configured conversion semantics.
func MatchKeywords(body string, rules []models.KeywordRule) []models.KeywordRule {
	var matched []models.KeywordRule
	for _, rule := range rules {
		if strings.Contains(body, rule.Keyword) {
			matched = append(matched, rule)
		}
	}
	return matched
}
