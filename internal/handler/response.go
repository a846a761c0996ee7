package handler

import (
	"errors"
	"net/http"

	"github.com/adeelchainz/base-server/internal/config"
	"github.com/adeelchainz/base-server/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	MsgSuccess            = "Operation is completed"
	MsgSomethingWentWrong = "Something went wrong!"
	MsgRouteNotFound      = "Route is not found"
	MsgTooManyRequests    = "So many requests"
	MsgUnauthorized       = "You are not authorized to perform this action"
	MsgInvalidBody        = "Invalid request body"
)

// RequestInfo echoes the request a response belongs to
type RequestInfo struct {
	IP     string `json:"ip,omitempty"`
	Method string `json:"method"`
	URL    string `json:"url"`
}

// Envelope is the body of every API response
type Envelope struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Request    RequestInfo `json:"request"`
	Message    string      `json:"message"`
	Data       any         `json:"data"`
	Trace      *Trace      `json:"trace,omitempty"`
}

type Trace struct {
	Error string `json:"error"`
}

// Responder writes envelopes and maps error kinds to status codes
type Responder struct {
	production bool
	logger     *zap.Logger
}

func NewResponder(cfg *config.Config, logger *zap.Logger) *Responder {
	return &Responder{
		production: cfg.IsProduction(),
		logger:     logger,
	}
}

// StatusFor returns the HTTP status for an error kind
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindConflict:
		return http.StatusUnprocessableEntity
	case domain.KindInvalidState, domain.KindAuth:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (r *Responder) Success(c *gin.Context, status int, message string, data any) {
	r.Write(c, status, true, message, data)
}

// Write sends a plain envelope with the given status
func (r *Responder) Write(c *gin.Context, status int, success bool, message string, data any) {
	c.JSON(status, Envelope{
		Success:    success,
		StatusCode: status,
		Request:    r.requestInfo(c),
		Message:    message,
		Data:       data,
	})
}

// Error writes err as an error envelope and aborts the chain
func (r *Responder) Error(c *gin.Context, err error) {
	r.ErrorWithData(c, err, nil)
}

func (r *Responder) ErrorWithData(c *gin.Context, err error, data any) {
	kind := domain.KindOf(err)
	status := StatusFor(kind)

	message := MsgSomethingWentWrong
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	} else if !r.production {
		message = err.Error()
	}

	envelope := Envelope{
		Success:    false,
		StatusCode: status,
		Request:    r.requestInfo(c),
		Message:    message,
		Data:       data,
	}
	if !r.production {
		envelope.Trace = &Trace{Error: err.Error()}
	}

	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("kind", kind.String()),
		zap.String("method", c.Request.Method),
		zap.String("route", routeOf(c)),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		r.logger.Error("Controller Response", fields...)
	} else {
		r.logger.Info("Controller Response", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, envelope)
}

func (r *Responder) requestInfo(c *gin.Context) RequestInfo {
	info := RequestInfo{
		Method: c.Request.Method,
		URL:    c.Request.URL.RequestURI(),
	}
	if !r.production {
		info.IP = c.ClientIP()
	}
	return info
}

func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return c.Request.URL.Path
}

// Self answers liveness probes
func (r *Responder) Self(c *gin.Context) {
	r.Success(c, http.StatusOK, MsgSuccess, nil)
}

// NoRoute answers requests for unknown routes
func (r *Responder) NoRoute(c *gin.Context) {
	r.Error(c, domain.NotFound(MsgRouteNotFound))
}
