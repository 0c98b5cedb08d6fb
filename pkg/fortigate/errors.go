/*
 * Copyright 2025 Wirelark Labs
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package fortigate

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind partitions upstream failures by how callers should react.
type ErrorKind string

const (
	// KindUnconfigured means no API token is available. Fatal for the cycle;
	// raised before any network I/O.
	KindUnconfigured ErrorKind = "unconfigured"
	// KindUnauthorized covers 401/403. Do not retry within the cycle.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindTransport covers DNS, TLS, connection, and timeout failures.
	KindTransport ErrorKind = "transport"
	// KindHTTP covers any other status >= 400.
	KindHTTP ErrorKind = "http"
)

var (
	ErrUnconfigured = errors.New("fortigate API token is not configured")
	ErrUnauthorized = errors.New("fortigate rejected the API token")
)

// APIError is the normalized upstream error returned by Client.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Cause   error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindUnconfigured:
		return ErrUnconfigured.Error()
	case KindTransport:
		return fmt.Sprintf("fortigate request failed: %v", e.Cause)
	default:
		return fmt.Sprintf("fortigate returned status %d: %s", e.Status, e.Message)
	}
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match the sentinel errors for the fatal kinds.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnconfigured:
		return e.Kind == KindUnconfigured
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	default:
		return false
	}
}

func newHTTPError(status int, message string) *APIError {
	kind := KindHTTP
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindUnauthorized
	}

	if message == "" {
		message = http.StatusText(status)
	}

	return &APIError{Kind: kind, Status: status, Message: message}
}

func newTransportError(err error) *APIError {
	return &APIError{Kind: KindTransport, Cause: err}
}
