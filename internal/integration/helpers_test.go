package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req
}

// do sends one request through the router on behalf of the guest.
func do(t testing.TB, testApp *TestApp, method, path, body string, cookies []*http.Cookie) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	rec := httptest.NewRecorder()
	testApp.App.Routes().ServeHTTP(rec, prepareRequest(method, path, reader, nil, cookies))

	return rec.Result()
}

func decode[T any](t testing.TB, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))

	return v
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		return k == "timestamp" || k == "requestId" || k == "createdAt" || k == "bookingId"
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func truncateBookings(t testing.TB, testApp *TestApp) {
	t.Helper()

	_, err := testApp.DB.Exec(context.Background(), "TRUNCATE bookings CASCADE")
	require.NoError(t, err)
}

func flushCache(t testing.TB, testApp *TestApp) {
	t.Helper()

	require.NoError(t, testApp.RedisClient.FlushDB(context.Background()).Err())
}

// selectSeats selects the show time and seats for the guest.
func selectSeats(t testing.TB, testApp *TestApp, cookies []*http.Cookie, showId, timeId string, seats ...string) {
	t.Helper()

	res := do(t, testApp, http.MethodPut, "/shows/"+showId+"/selection/time", `{"timeId": "`+timeId+`"}`, cookies)
	require.Equal(t, http.StatusOK, res.StatusCode)

	for _, seat := range seats {
		res = do(t, testApp, http.MethodPost, "/shows/"+showId+"/selection/seats/"+seat, "", cookies)
		require.Equal(t, http.StatusOK, res.StatusCode, "selecting seat %s", seat)
	}
}

func markPaid(t testing.TB, testApp *TestApp, bookingId string) {
	t.Helper()

	_, err := testApp.DB.Exec(context.Background(), "UPDATE bookings SET is_paid = TRUE WHERE id = $1", bookingId)
	require.NoError(t, err)
}
