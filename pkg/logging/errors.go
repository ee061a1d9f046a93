package logging

import (
	"github.com/rs/zerolog"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

// AddingErrors logs the outcome of adding a batch of preunits to a dag. size is the number of
// preunits that were attempted, used to report success even when errs is nil.
func AddingErrors(errs []error, size int, log zerolog.Logger) {
	if len(errs) == 0 {
		log.Info().Int(Size, size).Msg(ReadyToAdd)
		return
	}
	ok, units, preunits := 0, 0, 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		switch e := err.(type) {
		case *gomel.DuplicateUnit:
			units++
		case *gomel.DuplicatePreunit:
			preunits++
		case *gomel.UnknownParents:
			log.Info().Int(Size, e.Amount).Msg(UnknownParents)
		default:
			log.Error().Str("where", "AddPreunits").Msg(err.Error())
		}
	}
	if units > 0 {
		log.Info().Int(Size, units).Msg(DuplicatedUnits)
	}
	if preunits > 0 {
		log.Info().Int(Size, preunits).Msg(DuplicatedPreunits)
	}
	if ok > 0 {
		log.Info().Int(Size, ok).Msg(ReadyToAdd)
	}
}
