package service

import (
	"context"
	"errors"

	"github.com/tlanclos/isthemountainout/internal/announce"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
	"github.com/tlanclos/isthemountainout/internal/mqtt"
)

// ObservationSubscriber is the part of the MQTT subscriber the service needs.
type ObservationSubscriber interface {
	SetObservationHandler(handler mqtt.ObservationHandler)
}

// RegisterMQTT feeds broker observations into Observe. Announce failures are
// logged by Observe and not redelivered; the record is already persisted.
func (s *Service) RegisterMQTT(subscriber ObservationSubscriber) {
	subscriber.SetObservationHandler(func(ctx context.Context, obs types.Observation) error {
		s.logger.Debug("processing observation message",
			"label", obs.Label,
			"timestamp", obs.Timestamp,
		)
		d, err := s.Observe(ctx, obs, nil)
		if err != nil && !errors.Is(err, announce.ErrAnnounce) {
			return err
		}
		s.logger.Debug("observation handled", "outcome", d.Outcome, "announce", d.Announce)
		return nil
	})
}
