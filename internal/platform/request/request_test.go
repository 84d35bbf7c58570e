// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/arxsub/internal/platform/apperr"
	"github.com/taibuivan/arxsub/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/arxsub/internal/platform/request"
	"github.com/taibuivan/arxsub/internal/platform/sec"
)

func withURLParam(request *http.Request, key, value string) *http.Request {
	routeContext := chi.NewRouteContext()
	routeContext.URLParams.Add(key, value)
	return request.WithContext(context.WithValue(request.Context(), chi.RouteCtxKey, routeContext))
}

/*
TestInt64ID rejects identifiers the storage scheme cannot represent.
*/
func TestInt64ID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			request := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", tt.raw)
			id, err := requestutil.Int64ID(request, "id", "Submission")
			if tt.wantErr {
				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "INVALID_IDENTIFIER", ae.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

/*
TestIdentity resolves both the user and the client record.
*/
func TestIdentity(t *testing.T) {
	request := httptest.NewRequest(http.MethodPost, "/", nil)
	request.RemoteAddr = "10.0.0.7:5123"
	request.Header.Set("X-Forwarded-Host", "submit.example.org")
	request.Header.Set("X-Agent-Version", "ui/1.4")

	_, _, err := requestutil.Identity(request)
	assert.Error(t, err)

	claims := &sec.AuthClaims{UserID: "77", Role: "submitter", Forename: "Ada", Surname: "Lovelace"}
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))

	user, client, err := requestutil.Identity(request)
	require.NoError(t, err)
	assert.Equal(t, "77", user.Identifier)
	assert.Equal(t, "10.0.0.7", client.RemoteAddress)
	assert.Equal(t, "submit.example.org", client.RemoteHost)
	assert.Equal(t, "ui/1.4", client.AgentVersion)
	assert.Equal(t, sec.AgentUser, client.AgentType)
}
