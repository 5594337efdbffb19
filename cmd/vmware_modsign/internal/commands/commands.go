// Package commands implements subcommands of vmware_modsign.
package commands

import (
	log "github.com/sirupsen/logrus"

	"github.com/ThinkCodeCH/vmware-modsign/pkg/history"
)

// record appends the outcome of an action to the history database. The
// history is a best-effort audit trail; failures never fail the action.
func record(action string, runErr error) {
	s, err := history.Open(history.DefaultPath)
	if err != nil {
		log.Warnf("failed to open history database: %v", err)
		return
	}
	defer s.Close()

	e := history.Event{Action: action, OK: runErr == nil}
	if runErr != nil {
		e.Detail = runErr.Error()
	}
	if err := s.Record(e); err != nil {
		log.Warnf("failed to record %s event: %v", action, err)
	}
}

func logError(err error, debug bool) {
	if debug {
		log.Errorf("%+v", err)
	} else {
		log.Errorf("%v", err)
	}
}
