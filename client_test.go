package classtop_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	classtop "github.com/goliatone/go-classtop"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newAuthedClient wires a dispatcher to an in-memory session holding token.
// An empty token leaves the session anonymous.
func newAuthedClient(t *testing.T, baseURL, token string) (*classtop.Client, *classtop.SessionManager) {
	t.Helper()

	store := classtop.NewMemoryStore()
	if token != "" {
		require.NoError(t, store.SetSession(token, &classtop.UserInfo{ID: 1, Username: "alice", Role: classtop.RoleAdmin}))
	}

	manager := classtop.NewSessionManager(testConfig(baseURL), store)
	return classtop.NewClient(testConfig(baseURL), manager), manager
}

func TestDoAttachesAuthorizationHeader(t *testing.T) {
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{"status":"ok","timestamp":"2026-08-31T10:00:00","version":"1.0.0"}}`))
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL, "t1")

	_, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer t1", gotAuth)
}

func TestDoOmitsAuthorizationWhenAnonymous(t *testing.T) {
	var hasAuth bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		w.Write([]byte(`{"data":{"status":"ok","timestamp":"2026-08-31T10:00:00","version":"1.0.0"}}`))
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL, "")

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.False(t, hasAuth, "anonymous requests must carry no Authorization header")
	assert.Equal(t, "ok", health.Status)
}

func TestDoUnwrapsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clients", r.URL.Path)
		w.Write([]byte(`{"data":[{"id":1,"uuid":"8b7f9a1e-4c52-4a19-9e9a-0f1c2d3e4f5a","name":"Lab A","api_url":"http://lab-a.local:8000","status":"online","created_at":"2026-08-30T09:00:00"}]}`))
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL, "t1")

	clients, err := client.FetchClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Lab A", clients[0].Name)
	assert.Equal(t, "online", clients[0].Status)
}

func TestDoUnauthorizedTearsDownSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, manager := newAuthedClient(t, server.URL, "t-stale")

	redirected := false
	client.WithUnauthorizedHandler(func() {
		redirected = true
		assert.False(t, manager.IsAuthenticated(), "session must be cleared before the redirect hook runs")
	})

	_, err := client.FetchClients(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, classtop.ErrSessionExpired)
	assert.True(t, classtop.IsAuthenticationError(err))

	assert.True(t, redirected)
	assert.False(t, manager.IsAuthenticated())
	_, ok := manager.Token()
	assert.False(t, ok)
}

func TestDoRateLimitedKeepsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, manager := newAuthedClient(t, server.URL, "t1")

	redirected := false
	client.WithUnauthorizedHandler(func() { redirected = true })

	_, err := client.FetchStats(context.Background())
	require.Error(t, err)
	assert.True(t, classtop.IsRateLimitError(err))
	assert.False(t, classtop.IsAuthenticationError(err))

	assert.False(t, redirected, "throttling must not trigger the logout path")
	assert.True(t, manager.IsAuthenticated(), "the token survives a 429")

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Contains(t, richErr.Message, "try again later")
}

func TestDoFailureCarriesServerDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"Client not found"}`))
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL, "t1")

	_, err := client.FetchClient(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, classtop.IsRequestError(err))

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, "Client not found", richErr.Message)
	assert.Equal(t, http.StatusNotFound, richErr.Metadata["status"])
	assert.Equal(t, "/clients/42", richErr.Metadata["path"])
}

func TestDoFailureFallbackMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL, "t1")

	_, err := client.FetchStats(context.Background())
	require.Error(t, err)

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr))
	assert.Equal(t, "Request failed", richErr.Message, "message casing matches the sentinel")
	assert.Equal(t, classtop.TextCodeRequestFailed, richErr.TextCode)
}

func TestDoDiscardsBodyWithNilOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL, "t1")

	err := client.Do(context.Background(), http.MethodGet, "/health", nil, nil)
	require.NoError(t, err)
}

func TestFetchClientsPage(t *testing.T) {
	var gotQuery map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clients/paginated", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"data":{"data":[{"id":1,"uuid":"8b7f9a1e-4c52-4a19-9e9a-0f1c2d3e4f5a","name":"Lab A","api_url":"http://lab-a.local:8000","status":"online","created_at":"2026-08-30T09:00:00"}],"pagination":{"page":2,"page_size":5,"total_items":11,"total_pages":3}}}`))
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL, "t1")

	page, err := client.FetchClientsPage(context.Background(), 2, 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"2"}, gotQuery["page"])
	assert.Equal(t, []string{"5"}, gotQuery["page_size"])

	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(2), page.Pagination.Page)
	assert.Equal(t, int64(3), page.Pagination.TotalPages)
}

func TestFetchClientsPageDefaults(t *testing.T) {
	var gotQuery map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"data":{"data":[],"pagination":{"page":1,"page_size":20,"total_items":0,"total_pages":0}}}`))
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL, "t1")

	_, err := client.FetchClientsPage(context.Background(), 0, -3)
	require.NoError(t, err)

	assert.Equal(t, []string{"1"}, gotQuery["page"])
	assert.Equal(t, []string{"20"}, gotQuery["page_size"])
}

func TestCreateClientDerivesUUID(t *testing.T) {
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/clients/register", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Write([]byte(`{"data":{"id":9,"uuid":"` + gotBody["uuid"].(string) + `","name":"Lab B","api_url":"http://lab-b.local:8000","status":"offline","created_at":"2026-08-31T09:00:00"}}`))
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL, "t1")

	created, err := client.CreateClient(context.Background(), classtop.RegisterClientPayload{
		Name:   "Lab B",
		APIURL: "http://lab-b.local:8000",
	})
	require.NoError(t, err)

	expected, err := hashid.NewUUID("http://lab-b.local:8000")
	require.NoError(t, err)

	assert.Equal(t, expected.String(), gotBody["uuid"], "the uuid should derive from the api url")
	assert.Equal(t, expected.String(), created.UUID)
}

func TestCreateClientValidates(t *testing.T) {
	client, _ := newAuthedClient(t, "http://127.0.0.1:1", "t1")

	_, err := client.CreateClient(context.Background(), classtop.RegisterClientPayload{
		Name: "Lab C",
	})
	require.Error(t, err, "missing api url should be rejected locally")
}

func TestUpdateAndRemoveClient(t *testing.T) {
	var gotMethods []string
	var gotPaths []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethods = append(gotMethods, r.Method)
		gotPaths = append(gotPaths, r.URL.Path)
		w.Write([]byte(`{"data":{"message":"ok"}}`))
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL, "t1")

	name := "Lab A renamed"
	require.NoError(t, client.UpdateClient(context.Background(), 7, classtop.UpdateClientPayload{Name: &name}))
	require.NoError(t, client.RemoveClient(context.Background(), 7))

	assert.Equal(t, []string{http.MethodPut, http.MethodDelete}, gotMethods)
	assert.Equal(t, []string{"/clients/7", "/clients/7"}, gotPaths)
}

func TestSettings(t *testing.T) {
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/settings":
			w.Write([]byte(`{"data":[{"key":"sync_interval","value":"300"}]}`))
		case r.Method == http.MethodGet && r.URL.Path == "/settings/sync_interval":
			w.Write([]byte(`{"data":{"key":"sync_interval","value":"300"}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/settings/sync_interval":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.Write([]byte(`{"data":{"message":"updated"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL, "t1")

	settings, err := client.FetchSettings(context.Background())
	require.NoError(t, err)
	require.Len(t, settings, 1)
	assert.Equal(t, "sync_interval", settings[0].Key)

	setting, err := client.FetchSetting(context.Background(), "sync_interval")
	require.NoError(t, err)
	assert.Equal(t, "300", setting.Value)

	require.NoError(t, client.UpdateSetting(context.Background(), "sync_interval", "600"))
	assert.Equal(t, "600", gotBody["value"])
}

func TestFetchClientCoursesAndSchedule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/clients/3/courses":
			w.Write([]byte(`{"data":[{"id":1,"client_id":3,"course_id_on_client":10,"name":"Algebra"}]}`))
		case "/clients/3/schedule":
			w.Write([]byte(`{"data":[{"id":1,"client_id":3,"entry_id_on_client":20,"course_id":1,"day_of_week":1,"start_time":"08:00","end_time":"09:40","weeks":[1,2,3]}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, _ := newAuthedClient(t, server.URL, "t1")

	courses, err := client.FetchClientCourses(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Algebra", courses[0].Name)

	schedule, err := client.FetchClientSchedule(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, schedule, 1)
	assert.Equal(t, 1, schedule[0].DayOfWeek)
	assert.Equal(t, []int{1, 2, 3}, schedule[0].Weeks)
}
