/*
 * Nuts node
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package core

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"schneider.vip/problem"
)

// StatusCodeResolverContextKey is the Echo context key of the ErrorStatusCodeResolver for the operation being called.
const StatusCodeResolverContextKey = "!!StatusCodeResolver"

// OperationIDContextKey is the Echo context key of the name of the operation being called. It titles error responses.
const OperationIDContextKey = "!!OperationId"

// ModuleNameContextKey is the Echo context key of the module that contains the operation being called.
const ModuleNameContextKey = "!!ModuleName"

const unmappedStatusCode = 0

// CreateHTTPErrorHandler returns an Echo HTTPErrorHandler that logs the error and writes it as problem (RFC 7807).
func CreateHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		title := "Operation failed"
		if operationID := ctx.Get(OperationIDContextKey); operationID != nil {
			title = fmt.Sprintf("%s failed", operationID)
		}
		statusCode := GetHTTPStatusCode(err, ctx)
		logger := contextLogger(ctx).
			WithField("requestURI", ctx.Request().RequestURI).
			WithError(err)
		if statusCode >= http.StatusInternalServerError {
			logger.Error(title)
		} else {
			logger.Warn(title)
		}
		if ctx.Response().Committed {
			logger.Warn("Unable to send error back to client, response already committed")
			return
		}
		detail := err.Error()
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			// e.g. binding failures, their message is meant for the client
			detail = fmt.Sprintf("%v", echoErr.Message)
		}
		result := problem.New(problem.Title(title), problem.Status(statusCode), problem.Detail(detail))
		if _, writeErr := result.WriteTo(ctx.Response()); writeErr != nil {
			logger.WithField("writeError", writeErr).Error("Unable to write error response")
		}
	}
}

// Error returns an error that maps to the given HTTP status code. The message is formatted like fmt.Errorf,
// so a %w verb makes the cause available to errors.Is and errors.As.
func Error(statusCode int, format string, args ...interface{}) error {
	formatted := fmt.Errorf(format, args...)
	return httpStatusCodeError{msg: formatted.Error(), err: errors.Unwrap(formatted), statusCode: statusCode}
}

// NotFoundError returns an error that maps to HTTP 404 Not Found.
func NotFoundError(format string, args ...interface{}) error {
	return Error(http.StatusNotFound, format, args...)
}

// InvalidInputError returns an error that maps to HTTP 400 Bad Request.
func InvalidInputError(format string, args ...interface{}) error {
	return Error(http.StatusBadRequest, format, args...)
}

// HTTPStatusCodeError is an error that carries the HTTP status code it should be reported with.
type HTTPStatusCodeError interface {
	error
	StatusCode() int
}

type httpStatusCodeError struct {
	msg        string
	statusCode int
	err        error
}

func (e httpStatusCodeError) StatusCode() int {
	return e.statusCode
}

// Is matches errors with the same status code, so errors.Is(err, NotFoundError("")) tells whether err is a 404.
func (e httpStatusCodeError) Is(other error) bool {
	cast, is := other.(httpStatusCodeError)
	return is && cast.statusCode == e.statusCode
}

func (e httpStatusCodeError) Unwrap() error {
	return e.err
}

func (e httpStatusCodeError) Error() string {
	return e.msg
}

// ErrorStatusCodeResolver resolves the HTTP status code of errors returned by an API.
type ErrorStatusCodeResolver interface {
	ResolveStatusCode(err error) int
}

// ResolveStatusCode returns the status code of the first error in mapping that satisfies errors.Is() for err,
// or 0 if none does. Mapped errors shouldn't wrap each other: the map has no order.
func ResolveStatusCode(err error, mapping map[error]int) int {
	for curr, code := range mapping {
		if errors.Is(err, curr) {
			return code
		}
	}
	return unmappedStatusCode
}

// GetHTTPStatusCode resolves the HTTP status code for an error, in this order:
// a status carried by the error chain (HTTPStatusCodeError, echo.HTTPError), then the operation's
// ErrorStatusCodeResolver, and 500 Internal Server Error otherwise.
func GetHTTPStatusCode(err error, ctx echo.Context) int {
	var statusErr HTTPStatusCodeError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode()
	}
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return echoErr.Code
	}
	if resolver, ok := ctx.Get(StatusCodeResolverContextKey).(ErrorStatusCodeResolver); ok {
		if result := resolver.ResolveStatusCode(err); result != unmappedStatusCode {
			return result
		}
	}
	return http.StatusInternalServerError
}

func contextLogger(ctx echo.Context) *logrus.Entry {
	fields := logrus.Fields{}
	if moduleName := ctx.Get(ModuleNameContextKey); moduleName != nil {
		fields[LogFieldModule] = moduleName
	}
	if operationID := ctx.Get(OperationIDContextKey); operationID != nil {
		fields["operation"] = operationID
	}
	return logrus.StandardLogger().WithFields(fields)
}
