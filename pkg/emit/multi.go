package emit

import (
	"context"
	"errors"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/ports"
)

type multiSink []ports.EventSink

// Multi fans an event out to every sink. All sinks are tried; their errors are joined.
func Multi(sinks ...ports.EventSink) ports.EventSink {
	var flat multiSink
	for _, s := range sinks {
		if s == nil {
			continue
		}
		if m, ok := s.(multiSink); ok {
			flat = append(flat, m...)
			continue
		}
		flat = append(flat, s)
	}
	return flat
}

func (m multiSink) Emit(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
