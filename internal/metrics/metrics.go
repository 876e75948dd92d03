package metrics

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github/chapool/go-hwkeyring/internal/config"
)

const namespace = "hwkeyring"

// Request results as recorded in the result label.
const (
	ResultOK          = "ok"
	ResultDeviceError = "device_error"
	ResultSendError   = "send_error"
	ResultTimeout     = "timeout"
	ResultCanceled    = "canceled"
)

// Service owns a dedicated registry so tests and multiple servers never collide on the global one.
// All methods are safe to call on a nil *Service.
type Service struct {
	Registry *prometheus.Registry

	deviceRequests  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	signerMismatch  *prometheus.CounterVec
	linkedPages     prometheus.Gauge
}

func New(cfg config.Server) (*Service, error) {
	constLabels := prometheus.Labels{"keyring": cfg.Keyring.Name}

	s := &Service{
		Registry: prometheus.NewRegistry(),
		deviceRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "device_requests_total",
			Help:        "Device requests by command type and result.",
			ConstLabels: constLabels,
		}, []string{"type", "result"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "device_request_duration_seconds",
			Help:        "Time from sending a device request until its reply, including user confirmation.",
			ConstLabels: constLabels,
			Buckets:     []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"type"}),
		signerMismatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "signer_mismatch_total",
			Help:        "Device signatures discarded because the recovered signer differed from the requested account.",
			ConstLabels: constLabels,
		}, []string{"kind"}),
		linkedPages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "bridge_linked_pages",
			Help:        "Device link pages currently connected to the bridge.",
			ConstLabels: constLabels,
		}),
	}

	for _, c := range []prometheus.Collector{
		s.deviceRequests,
		s.requestDuration,
		s.signerMismatch,
		s.linkedPages,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := s.Registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register metrics collector")
		}
	}

	return s, nil
}

// ObserveRequest records one finished device request.
func (s *Service) ObserveRequest(command string, result string, took time.Duration) {
	if s == nil {
		return
	}

	s.deviceRequests.WithLabelValues(command, result).Inc()
	s.requestDuration.WithLabelValues(command).Observe(took.Seconds())
}

// SignerMismatch counts a discarded signature; kind is "transaction" or "message".
func (s *Service) SignerMismatch(kind string) {
	if s == nil {
		return
	}

	s.signerMismatch.WithLabelValues(kind).Inc()
}

func (s *Service) LinkedPages(n int) {
	if s == nil {
		return
	}

	s.linkedPages.Set(float64(n))
}

// Handler exposes the registry in the prometheus text format.
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{Registry: s.Registry})
}

// DeviceRequests returns the counter for one type/result pair; used by tests.
func (s *Service) DeviceRequests(command string, result string) prometheus.Counter {
	return s.deviceRequests.WithLabelValues(command, result)
}

func (s *Service) SignerMismatches(kind string) prometheus.Counter {
	return s.signerMismatch.WithLabelValues(kind)
}
