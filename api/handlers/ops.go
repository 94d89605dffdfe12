package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pulseguard/hypertension-api/api/scheduler"
	"github.com/pulseguard/hypertension-api/config"
)

// Ops exposes operator-only maintenance actions
type Ops struct {
	Scheduler *scheduler.Scheduler
}

// FlushFitDataHandler runs the staged fit-data sweep immediately instead of
// waiting for the nightly cron. Used when staging backs up after an incident.
func (o Ops) FlushFitDataHandler(w http.ResponseWriter, r *http.Request) {
	if o.Scheduler == nil {
		config.ErrorStatus("scheduler is not running", http.StatusServiceUnavailable, w, errors.New("no scheduler instance"))
		return
	}

	result, err := o.Scheduler.FlushStagedFitData(r.Context())
	if err != nil {
		config.ErrorStatus("flush sweep failed", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(result)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Write(b)
}
