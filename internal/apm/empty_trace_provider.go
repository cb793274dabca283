package apm

// emptyTraceProvider leaves the global no-op tracer provider in place.
type emptyTraceProvider struct{}

func NewEmptyTraceProvider() TraceProvider {
	return emptyTraceProvider{}
}

func (emptyTraceProvider) Stop() error {
	return nil
}
