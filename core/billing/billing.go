// Package billing prices completed charging sessions and tracks revenue.
// The cost pipeline is fixed: the peak multiplier applies to the energy cost
// only, the connection fee is added afterwards, and the reservation discount
// applies to the energy+fee sum.
package billing

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/avstation/stationd/core/model"
)

// Config holds the pricing parameters. All of them can be retuned at
// runtime through the engine.
type Config struct {
	RatesPerKWh    map[string]float64 `json:"rates_per_kwh" yaml:"rates_per_kwh"`
	ConnectionFee  float64            `json:"connection_fee" yaml:"connection_fee"`
	PeakMultiplier float64            `json:"peak_multiplier" yaml:"peak_multiplier"`
	PeakStartHour  int                `json:"peak_start_hour" yaml:"peak_start_hour"`
	PeakEndHour    int                `json:"peak_end_hour" yaml:"peak_end_hour"`
}

// SetDefaults applies the default tariff: Sedan 0.30, SUV 0.32, Truck 0.35
// and Bus 0.28 per kWh (fleet discount), a 2.00 connection fee, a 1.2 peak
// multiplier and a 06:00-22:00 peak window.
func (c *Config) SetDefaults() {
	if c.RatesPerKWh == nil {
		c.RatesPerKWh = map[string]float64{
			"sedan": 0.30,
			"suv":   0.32,
			"truck": 0.35,
			"bus":   0.28,
		}
	}
	if c.ConnectionFee == 0 {
		c.ConnectionFee = 2.00
	}
	if c.PeakMultiplier == 0 {
		c.PeakMultiplier = 1.2
	}
	if c.PeakStartHour == 0 && c.PeakEndHour == 0 {
		c.PeakStartHour = 6
		c.PeakEndHour = 22
	}
}

// Validate checks the pricing parameters.
func (c Config) Validate() error {
	for name, rate := range c.RatesPerKWh {
		if rate < 0 {
			return fmt.Errorf("negative rate for %s", name)
		}
	}
	if c.PeakMultiplier < 1 {
		return fmt.Errorf("peak multiplier must be >= 1, got %.2f", c.PeakMultiplier)
	}
	if c.PeakStartHour < 0 || c.PeakStartHour > 23 || c.PeakEndHour < 0 || c.PeakEndHour > 24 {
		return fmt.Errorf("peak window out of range")
	}
	return nil
}

// IsPeakHour reports whether t falls inside the configured peak window.
func (c Config) IsPeakHour(t time.Time) bool {
	h := t.Hour()
	return h >= c.PeakStartHour && h < c.PeakEndHour
}

// Invoice is an immutable record of a priced charging session.
type Invoice struct {
	ID            string    `json:"invoice_id"`
	VehicleID     string    `json:"vehicle_id"`
	DurationHours float64   `json:"duration_hours"`
	EnergyKWh     float64   `json:"energy_kwh"`
	TotalCost     float64   `json:"total_cost"`
	CreatedAt     time.Time `json:"created_at"`
}

func (i Invoice) String() string {
	return fmt.Sprintf("Invoice %s: Vehicle %s, %.2f", i.ID, i.VehicleID, i.TotalCost)
}

// RevenueStats is a derived view over recorded payments and invoices.
type RevenueStats struct {
	TotalRevenue      float64 `json:"total_revenue"`
	InvoiceCount      int     `json:"invoices_generated"`
	AveragePerInvoice float64 `json:"average_per_invoice"`
}

// Engine prices sessions and accumulates revenue. It is safe for concurrent
// use: rate updates arrive from the API while the release path generates
// invoices.
type Engine struct {
	mu             sync.Mutex
	cfg            Config
	invoiceCounter int
	totalRevenue   float64
}

// NewEngine creates an engine from the given config; zero-value fields fall
// back to the defaults.
func NewEngine(cfg Config) (*Engine, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("billing config: %w", err)
	}
	// Copy the rate table so later caller mutations cannot bypass the
	// lock. Keys are case-insensitive.
	rates := make(map[string]float64, len(cfg.RatesPerKWh))
	for k, v := range cfg.RatesPerKWh {
		rates[strings.ToLower(k)] = v
	}
	cfg.RatesPerKWh = rates
	return &Engine{cfg: cfg}, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func rateKey(t model.VehicleType) string {
	return strings.ToLower(t.String())
}

// CalculateCost prices a session. Peak pricing multiplies the energy cost
// only; the connection fee is flat; a reservation takes 5% off the total
// after the fee.
func (e *Engine) CalculateCost(v *model.Vehicle, energyKWh float64, isPeakHour bool) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cost(v, energyKWh, isPeakHour)
}

func (e *Engine) cost(v *model.Vehicle, energyKWh float64, isPeakHour bool) float64 {
	rate, ok := e.cfg.RatesPerKWh[rateKey(v.Type)]
	if !ok {
		rate = 0.30
	}
	cost := energyKWh * rate
	if isPeakHour {
		cost *= e.cfg.PeakMultiplier
	}
	cost += e.cfg.ConnectionFee
	if v.HasReservation {
		cost *= 0.95
	}
	return round2(cost)
}

// GenerateInvoice prices the session and returns an immutable invoice with
// the next sequential ID. IDs are zero-padded and never reused.
func (e *Engine) GenerateInvoice(v *model.Vehicle, durationHours, energyKWh float64, isPeakHour bool) Invoice {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.invoiceCounter++
	return Invoice{
		ID:            fmt.Sprintf("INV-%06d", e.invoiceCounter),
		VehicleID:     v.ID,
		DurationHours: durationHours,
		EnergyKWh:     energyKWh,
		TotalCost:     e.cost(v, energyKWh, isPeakHour),
		CreatedAt:     time.Now(),
	}
}

// RecordPayment adds the amount to cumulative revenue. It is the only
// revenue mutator; generating an invoice alone moves no money. Non-positive
// amounts are rejected without any state change.
func (e *Engine) RecordPayment(v *model.Vehicle, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("invalid payment amount %.2f from %s", amount, v.ID)
	}
	e.mu.Lock()
	e.totalRevenue += amount
	e.mu.Unlock()
	return nil
}

// RevenueStats derives the revenue view. The average is 0 when no invoice
// has been generated.
func (e *Engine) RevenueStats() RevenueStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	stats := RevenueStats{
		TotalRevenue: round2(e.totalRevenue),
		InvoiceCount: e.invoiceCounter,
	}
	if e.invoiceCounter > 0 {
		stats.AveragePerInvoice = round2(e.totalRevenue / float64(e.invoiceCounter))
	}
	return stats
}

// UpdateRate changes the per-kWh rate for a category at runtime.
func (e *Engine) UpdateRate(t model.VehicleType, rate float64) error {
	if rate < 0 {
		return fmt.Errorf("negative rate %.2f", rate)
	}
	e.mu.Lock()
	e.cfg.RatesPerKWh[rateKey(t)] = rate
	e.mu.Unlock()
	return nil
}

// Rate returns the current per-kWh rate for a category.
func (e *Engine) Rate(t model.VehicleType) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if rate, ok := e.cfg.RatesPerKWh[rateKey(t)]; ok {
		return rate
	}
	return 0.30
}

// UpdateConnectionFee changes the flat per-session fee at runtime.
func (e *Engine) UpdateConnectionFee(fee float64) error {
	if fee < 0 {
		return fmt.Errorf("negative connection fee %.2f", fee)
	}
	e.mu.Lock()
	e.cfg.ConnectionFee = fee
	e.mu.Unlock()
	return nil
}

// UpdatePeakMultiplier changes the peak-hour multiplier at runtime.
func (e *Engine) UpdatePeakMultiplier(m float64) error {
	if m < 1 {
		return fmt.Errorf("peak multiplier must be >= 1, got %.2f", m)
	}
	e.mu.Lock()
	e.cfg.PeakMultiplier = m
	e.mu.Unlock()
	return nil
}

// IsPeakHour reports whether t falls inside the configured peak window.
func (e *Engine) IsPeakHour(t time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.IsPeakHour(t)
}
