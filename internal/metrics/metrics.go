package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tire_car_store",
			Name:      "booking_mutations_total",
			Help:      "Booking store mutations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	storageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tire_car_store",
			Name:      "storage_failures_total",
			Help:      "Swallowed persistent storage failures by operation.",
		},
		[]string{"operation"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingMutations, storageFailures)
	})
}

// WriteTextfile dumps the default registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Recorder feeds store activity into the package counters.
type Recorder struct{}

func (Recorder) ObserveMutation(operation, outcome string) {
	bookingMutations.WithLabelValues(operation, outcome).Inc()
}

func (Recorder) ObserveStorageFailure(operation string) {
	storageFailures.WithLabelValues(operation).Inc()
}
