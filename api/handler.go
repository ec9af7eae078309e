// Package api exposes the station over HTTP. Handlers translate requests
// into station commands and never touch slot or queue state directly.
package api

import (
	"github.com/avstation/stationd/core/billing"
	"github.com/avstation/stationd/core/logger"
	"github.com/avstation/stationd/core/reservation"
	"github.com/avstation/stationd/core/station"
	infranotify "github.com/avstation/stationd/infra/notify"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	station      *station.Station
	billing      *billing.Engine
	reservations *reservation.Service
	history      *infranotify.HistorySink
	log          logger.Logger
}

// NewHandler creates a new API handler. The history sink may be nil, in
// which case the notifications endpoint returns an empty list.
func NewHandler(st *station.Station, eng *billing.Engine, res *reservation.Service, history *infranotify.HistorySink, log logger.Logger) *Handler {
	return &Handler{
		station:      st,
		billing:      eng,
		reservations: res,
		history:      history,
		log:          log,
	}
}
