package metrics

// Exporter names a metrics sink.
type Exporter string

const (
	ExporterPrometheus Exporter = "prometheus"
	ExporterOTLP       Exporter = "otlp"
)

type exporterConfig struct {
	kind     Exporter
	endpoint string
	headers  map[string]string
	insecure bool
}

type settings struct {
	serviceName    string
	serviceVersion string
	exporters      []exporterConfig
}

// Option configures NewProvider.
type Option func(*settings)

// WithService sets the service.name and service.version resource attributes.
func WithService(name, version string) Option {
	return func(s *settings) {
		s.serviceName = name
		s.serviceVersion = version
	}
}

// WithPrometheus exposes a scrape endpoint through Provider.Handler.
func WithPrometheus() Option {
	return func(s *settings) {
		s.exporters = append(s.exporters, exporterConfig{kind: ExporterPrometheus})
	}
}

// WithOTLP pushes metrics to a collector over gRPC. An empty endpoint is ignored.
func WithOTLP(endpoint string, headers map[string]string, insecure bool) Option {
	return func(s *settings) {
		if endpoint == "" {
			return
		}
		s.exporters = append(s.exporters, exporterConfig{
			kind:     ExporterOTLP,
			endpoint: endpoint,
			headers:  headers,
			insecure: insecure,
		})
	}
}
