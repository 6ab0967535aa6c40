// Package observability exports deconfliction engine activity as Prometheus
// metrics.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/picogrid/uav-deconfliction/pkg/models"
)

const namespace = "deconfliction"

// Collector bundles the engine metrics. It implements
// deconfliction.Recorder.
type Collector struct {
	gatherer prometheus.Gatherer

	Validations       *prometheus.CounterVec
	TemporalChecks    prometheus.Counter
	SpatialChecks     prometheus.Counter
	CacheHits         prometheus.Counter
	ConflictingPeers  prometheus.Counter
	ConflictLocations prometheus.Counter
	Registered        prometheus.Gauge
	Durations         prometheus.Histogram
}

// NewCollector registers the engine metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	validations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validations_total",
		Help:      "Total number of mission validations, labeled by outcome.",
	}, []string{"status"}))
	if err != nil {
		return nil, err
	}

	counter := func(name, help string) (prometheus.Counter, error) {
		return registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}))
	}

	temporal, err := counter("temporal_checks_total", "Candidate missions tested for time-window overlap.")
	if err != nil {
		return nil, err
	}
	spatial, err := counter("spatial_checks_total", "Overlapping missions tested waypoint pair by waypoint pair.")
	if err != nil {
		return nil, err
	}
	hits, err := counter("cache_hits_total", "Pairwise checks answered from the conflict cache.")
	if err != nil {
		return nil, err
	}
	peers, err := counter("conflicting_missions_total", "Registered missions found in conflict with a validated primary.")
	if err != nil {
		return nil, err
	}
	locations, err := counter("conflict_locations_total", "Waypoint pairs found closer than the safety buffer.")
	if err != nil {
		return nil, err
	}

	registered, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "registered_missions",
		Help:      "Current number of missions registered with the engine.",
	}))
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "validation_duration_seconds",
		Help:      "Mission validation latency in seconds.",
		Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}))
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:          gatherer,
		Validations:       validations,
		TemporalChecks:    temporal,
		SpatialChecks:     spatial,
		CacheHits:         hits,
		ConflictingPeers:  peers,
		ConflictLocations: locations,
		Registered:        registered,
		Durations:         durations,
	}, nil
}

// ObserveRegistration records the registry size after a registration
func (c *Collector) ObserveRegistration(total int) {
	if c == nil {
		return
	}
	c.Registered.Set(float64(total))
}

// ObserveValidation records the counts and latency of one validation
func (c *Collector) ObserveValidation(result models.ValidationResult) {
	if c == nil {
		return
	}
	m := result.Metrics
	c.Validations.WithLabelValues(string(result.Status)).Inc()
	c.TemporalChecks.Add(float64(m.TemporalChecks))
	c.SpatialChecks.Add(float64(m.SpatialChecks))
	c.CacheHits.Add(float64(m.CacheHits))
	c.ConflictingPeers.Add(float64(len(result.Conflicts)))
	c.ConflictLocations.Add(float64(len(result.ConflictLocations())))
	c.Durations.Observe(m.Elapsed.Seconds())
}

// Gatherer returns the gatherer the collector's metrics are registered with
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.gatherer
}

// WriteTextfile writes the gathered metrics in the Prometheus text format,
// suitable for the node exporter textfile collector
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.gatherer); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// Snapshot is a point-in-time summary of the collected metrics
type Snapshot struct {
	Validations       map[string]float64
	TemporalChecks    float64
	SpatialChecks     float64
	CacheHits         float64
	ConflictingPeers  float64
	ConflictLocations float64
	Registered        float64
	ValidationCount   uint64
	ValidationSeconds float64
}

// Snapshot gathers the current metric values
func (c *Collector) Snapshot() (Snapshot, error) {
	families, err := c.gatherer.Gather()
	if err != nil {
		return Snapshot{}, fmt.Errorf("gather metrics: %w", err)
	}

	snap := Snapshot{Validations: map[string]float64{}}
	for _, fam := range families {
		for _, metric := range fam.GetMetric() {
			switch fam.GetName() {
			case namespace + "_validations_total":
				snap.Validations[labelValue(metric, "status")] = metric.GetCounter().GetValue()
			case namespace + "_temporal_checks_total":
				snap.TemporalChecks = metric.GetCounter().GetValue()
			case namespace + "_spatial_checks_total":
				snap.SpatialChecks = metric.GetCounter().GetValue()
			case namespace + "_cache_hits_total":
				snap.CacheHits = metric.GetCounter().GetValue()
			case namespace + "_conflicting_missions_total":
				snap.ConflictingPeers = metric.GetCounter().GetValue()
			case namespace + "_conflict_locations_total":
				snap.ConflictLocations = metric.GetCounter().GetValue()
			case namespace + "_registered_missions":
				snap.Registered = metric.GetGauge().GetValue()
			case namespace + "_validation_duration_seconds":
				snap.ValidationCount = metric.GetHistogram().GetSampleCount()
				snap.ValidationSeconds = metric.GetHistogram().GetSampleSum()
			}
		}
	}
	return snap, nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		return nil, err
	}
	return gauge, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		return nil, err
	}
	return hist, nil
}
