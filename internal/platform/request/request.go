// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/arxsub/internal/platform/apperr"
	"github.com/taibuivan/arxsub/internal/platform/constants"
	"github.com/taibuivan/arxsub/internal/platform/ctxutil"
	"github.com/taibuivan/arxsub/internal/platform/sec"
	"github.com/taibuivan/arxsub/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
DecodeAndValidate decodes the body and runs the struct-tag rules on it.
*/
func DecodeAndValidate(request *http.Request, target interface{}) error {
	if err := DecodeJSON(request, target); err != nil {
		return err
	}
	return validate.Struct(target)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Int64ID parses a named URL parameter as a positive integer identifier.

Returns:
  - int64: The parsed identifier
  - error: apperr.InvalidIdentifier if the value is not a positive integer
*/
func Int64ID(request *http.Request, name, resource string) (int64, error) {
	raw := chi.URLParam(request, name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidIdentifier(resource, raw)
	}

	return id, nil
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AuthClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}

/*
Identity resolves the authenticated [sec.User] and the [sec.Client] that
carried the request.

Returns:
  - sec.User: The agent acting on the submission
  - sec.Client: Remote address, forwarded host and agent version
  - error: apperr.Unauthorized if not authenticated
*/
func Identity(request *http.Request) (sec.User, sec.Client, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return sec.User{}, sec.Client{}, err
	}

	user := sec.UserFromClaims(claims)
	return user, ClientOf(request, user.AgentType), nil
}

/*
ClientOf describes the tool behind the request. The agent version comes from
X-Agent-Version, falling back to the User-Agent header.
*/
func ClientOf(request *http.Request, agentType sec.AgentType) sec.Client {
	version := request.Header.Get(constants.HeaderAgentVersion)
	if version == "" {
		version = request.UserAgent()
	}

	return sec.Client{
		RemoteAddress: remoteAddress(request),
		RemoteHost:    request.Header.Get(constants.HeaderXForwardedHost),
		AgentType:     agentType,
		AgentVersion:  version,
	}
}

// remoteAddress mirrors middleware.RealIP without importing the middleware package.
func remoteAddress(request *http.Request) string {
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return request.RemoteAddr
	}
	return host
}
