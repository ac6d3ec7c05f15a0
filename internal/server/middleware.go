package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/book-expert/logger"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// okBody acknowledges state-changing requests that return no data.
type okBody struct {
	OK bool `json:"ok"`
}

// WithLogging wraps a handler with request start and completion logging.
func WithLogging(log *logger.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		start := time.Now()

		log.Info(
			"Request started: method=%s path=%s remote=%s",
			request.Method,
			request.URL.Path,
			request.RemoteAddr,
		)

		next(writer, request)

		log.Info(
			"Request completed: method=%s path=%s duration_ms=%d",
			request.Method,
			request.URL.Path,
			time.Since(start).Milliseconds(),
		)
	}
}

// JSONResponse writes data as a JSON body with the given status code.
func JSONResponse(
	writer http.ResponseWriter,
	log *logger.Logger,
	statusCode int,
	data any,
) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)

	err := json.NewEncoder(writer).Encode(data)
	if err != nil {
		log.Error("Failed to encode JSON response: %v", err)
	}
}

// ErrorResponse writes a JSON error body with the given status code.
func ErrorResponse(
	writer http.ResponseWriter,
	log *logger.Logger,
	statusCode int,
	message string,
) {
	JSONResponse(writer, log, statusCode, errorBody{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
