package server

import (
	"net/http"

	"mercator-hq/portico/pkg/middleware"
)

// newDispatcher wraps the pipeline with the ambient middleware every
// request passes through, outermost first: panic recovery, request ID,
// access log and metrics. The pipeline ends in the route table.
func (s *Server) newDispatcher() http.Handler {
	var observer middleware.RequestObserver
	if s.metrics != nil {
		observer = s.metrics
	}

	var handler http.Handler = s.pipeline
	handler = middleware.Logging(s.logger.With("component", "access"), observer)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(s.logger)(handler)
	return handler
}
