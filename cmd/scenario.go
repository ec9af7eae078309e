package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/avstation/stationd/config"
	"github.com/avstation/stationd/core/billing"
	"github.com/avstation/stationd/core/model"
	"github.com/avstation/stationd/core/reservation"
	"github.com/avstation/stationd/core/station"
	"github.com/avstation/stationd/infra/logger"
	infranotify "github.com/avstation/stationd/infra/notify"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Run a self-contained demonstration of a charging day",
	RunE:  runScenario,
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}

func runScenario(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.Default()
	}

	log := logger.New("scenario")
	eng, err := billing.NewEngine(cfg.Billing)
	if err != nil {
		return err
	}
	st, err := station.New(cfg.Station, logger.New("station"))
	if err != nil {
		return err
	}
	st.SetRevenueProvider(func() float64 { return eng.RevenueStats().TotalRevenue })
	st.Start(ctx)

	if err := st.AttachSink(infranotify.NewLogSink("notifications")); err != nil {
		return err
	}

	reservations := reservation.NewService(logger.New("reservations"))
	res, err := reservations.Create("AV-005", time.Now(), 1)
	if err != nil {
		return err
	}
	log.Infof("created %s for AV-005", res.ID)

	arrivals := []struct {
		id          string
		category    model.VehicleType
		charge      float64
		reservation bool
	}{
		{"AV-001", model.Sedan, 12, false},
		{"AV-002", model.SUV, 40, false},
		{"AV-003", model.Truck, 25, false},
		{"AV-004", model.Bus, 100, false},
		{"AV-005", model.Sedan, 30, true},
	}
	for _, a := range arrivals {
		v, err := model.NewVehicle(a.id, a.category, a.category.TypicalCapacityKWh(), a.charge, a.reservation)
		if err != nil {
			return err
		}
		result, err := st.Admit(v)
		if err != nil {
			return err
		}
		if result.Queued {
			log.Infof("%s waitlisted at position %d", a.id, result.QueueRank)
		}
	}

	// Three simulated charging hours.
	for i := 0; i < 3; i++ {
		if err := st.Tick(1); err != nil {
			return err
		}
	}

	// Clear every slot: bill the session, then hand the slot to the
	// waitlist head.
	slots, err := st.Slots()
	if err != nil {
		return err
	}
	for _, slot := range slots {
		if !slot.Occupied {
			continue
		}
		rel, err := st.Release(slot.SlotID)
		if err != nil {
			return err
		}
		invoice := eng.GenerateInvoice(rel.Vehicle, rel.DurationHours, rel.EnergyKWh, eng.IsPeakHour(time.Now()))
		if err := eng.RecordPayment(rel.Vehicle, invoice.TotalCost); err != nil {
			log.Warnf("payment for %s not recorded: %v", rel.VehicleID, err)
		}
		log.Infof("%s", invoice)

		next, err := st.DequeueNext()
		if errors.Is(err, station.ErrQueueEmpty) {
			continue
		}
		if err != nil {
			return err
		}
		if r, ok := reservations.Lookup(next.ID); ok {
			reservations.Fulfill(r.ID)
		}
		if _, err := st.Admit(next); err != nil {
			return err
		}
	}

	snap, err := st.Status()
	if err != nil {
		return err
	}
	stats := eng.RevenueStats()
	report, err := st.SessionReport()
	if err != nil {
		return err
	}
	log.Infof("served %d vehicles, %d still charging, %d waitlisted",
		snap.VehiclesServed, snap.OccupiedSlots, snap.QueueDepth)
	log.Infof("revenue %.2f over %d invoices (avg %.2f)",
		stats.TotalRevenue, stats.InvoiceCount, stats.AveragePerInvoice)
	log.Infof("sessions: %d, energy %.1f kWh, mean %.1f kWh per session",
		report.Sessions, report.TotalEnergyKWh, report.MeanEnergyKWh)
	return nil
}
