package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cf-pages-cli/internal/envvars"
)

func newTestClient(t *testing.T, handler func(t *testing.T, w http.ResponseWriter, r *http.Request)) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(t, w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewClient("acct-1", "test-token")
	c.baseURL = srv.URL
	return c
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func respondResult(w http.ResponseWriter, result any) {
	respondJSON(w, map[string]any{"result": result, "success": true, "errors": []any{}})
}

func TestProject_RequestShapeAndDecoding(t *testing.T) {
	c := newTestClient(t, func(t *testing.T, w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/accounts/acct-1/pages/projects/my-site" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected authorization header: %q", got)
		}
		respondResult(w, map[string]any{
			"id":   "proj_1",
			"name": "my-site",
			"deployment_configs": map[string]any{
				"preview": map[string]any{
					"env_vars": map[string]any{
						"A": map[string]any{"type": "plain_text", "value": "1"},
					},
				},
				"production": map[string]any{"env_vars": nil},
			},
		})
	})

	proj, err := c.Project("my-site")
	if err != nil {
		t.Fatalf("Project error: %v", err)
	}
	doc := proj.DeploymentConfigs.Document()
	if doc.Preview == nil || doc.Preview["A"] != "1" {
		t.Fatalf("preview vars not decoded: %+v", doc.Preview)
	}
	// A project-scoped fetch always yields both environments, even when the
	// remote carries no variables for one of them.
	if doc.Production == nil {
		t.Fatal("production map is nil, want empty map")
	}
	if len(doc.Production) != 0 {
		t.Fatalf("production map not empty: %+v", doc.Production)
	}
}

func TestFetchVariables_DeploymentScoped(t *testing.T) {
	c := newTestClient(t, func(t *testing.T, w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/acct-1/pages/projects/my-site/deployments/dep-1" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		respondResult(w, map[string]any{
			"id":          "dep-1",
			"environment": "preview",
			"env_vars": map[string]any{
				"A": map[string]any{"type": "plain_text", "value": "1"},
			},
		})
	})

	doc, err := c.FetchVariables("my-site", "dep-1")
	if err != nil {
		t.Fatalf("FetchVariables error: %v", err)
	}
	if doc.Preview == nil || doc.Preview["A"] != "1" {
		t.Fatalf("preview vars not populated: %+v", doc.Preview)
	}
	if doc.Production != nil {
		t.Fatalf("production should stay null for a preview deployment, got: %+v", doc.Production)
	}
}

func TestFetchVariables_RejectsUnknownDeploymentEnvironment(t *testing.T) {
	c := newTestClient(t, func(t *testing.T, w http.ResponseWriter, r *http.Request) {
		respondResult(w, map[string]any{"id": "dep-1", "environment": "staging", "env_vars": map[string]any{}})
	})

	_, err := c.FetchVariables("my-site", "dep-1")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("want DecodeError for unknown environment, got: %v", err)
	}
}

func TestFetchVariables_RejectsDeploymentWithoutEnvironment(t *testing.T) {
	c := newTestClient(t, func(t *testing.T, w http.ResponseWriter, r *http.Request) {
		respondResult(w, map[string]any{"id": "dep-1", "env_vars": map[string]any{}})
	})

	_, err := c.FetchVariables("my-site", "dep-1")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("want DecodeError for a deployment without an environment, got: %v", err)
	}
}

func TestAPIError_MessageFromBody(t *testing.T) {
	c := newTestClient(t, func(t *testing.T, w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Unauthorized"}`))
	})

	_, err := c.Project("my-site")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want APIError, got: %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.Message != "Unauthorized" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}

func TestAPIError_MessageFromEnvelopeErrors(t *testing.T) {
	c := newTestClient(t, func(t *testing.T, w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"result":null,"success":false,"errors":[{"code":8000007,"message":"Project not found."}]}`))
	})

	_, err := c.Project("my-site")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want APIError, got: %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Project not found." {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}

func TestAPIError_SuccessFalseOn2xx(t *testing.T) {
	c := newTestClient(t, func(t *testing.T, w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":null,"success":false,"errors":[{"code":1,"message":"something went sideways"}]}`))
	})

	_, err := c.Project("my-site")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want APIError, got: %v", err)
	}
	if apiErr.Message != "something went sideways" {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}

func TestDecodeError_NotJSON(t *testing.T) {
	c := newTestClient(t, func(t *testing.T, w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not json</html>"))
	})

	_, err := c.Project("my-site")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("want DecodeError, got: %v", err)
	}
}

func TestTransportError_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient("acct-1", "test-token")
	c.baseURL = url

	_, err := c.Project("my-site")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("want TransportError, got: %v", err)
	}
}

func TestBuildPatch_MinimalChangeSet(t *testing.T) {
	current := &envvars.Document{
		Production: envvars.Map{"KEEP": "same", "CHANGE": "old", "REMOVE": "gone"},
		Preview:    envvars.Map{"ORPHAN": "still here"},
	}
	desired := &envvars.Document{
		Production: envvars.Map{"KEEP": "same", "CHANGE": "new", "ADD": "fresh"},
		Preview:    nil,
	}

	patch := BuildPatch(current, desired)
	if patch.IsEmpty() {
		t.Fatal("patch should not be empty")
	}

	prod := patch.Production.EnvVars
	if _, ok := prod["KEEP"]; ok {
		t.Fatal("unchanged variable must be omitted from the patch")
	}
	if v := prod["CHANGE"]; v == nil || v.Value != "new" || v.Type != PlainText {
		t.Fatalf("changed variable not carried: %+v", v)
	}
	if v := prod["ADD"]; v == nil || v.Value != "fresh" {
		t.Fatalf("new variable not carried: %+v", v)
	}
	if v, ok := prod["REMOVE"]; !ok || v != nil {
		t.Fatalf("removed variable must be an explicit null, got present=%v value=%+v", ok, v)
	}

	// A null environment in the document never turns into deletions.
	if len(patch.Preview.EnvVars) != 0 {
		t.Fatalf("untouched environment must have an empty change set: %+v", patch.Preview.EnvVars)
	}
}

func TestBuildPatch_NoChanges(t *testing.T) {
	current := &envvars.Document{
		Production: envvars.Map{"A": "1"},
		Preview:    envvars.Map{},
	}
	desired := &envvars.Document{
		Production: envvars.Map{"A": "1"},
		Preview:    nil,
	}

	if patch := BuildPatch(current, desired); !patch.IsEmpty() {
		t.Fatalf("patch should be empty: %+v", patch)
	}
}

func TestUpdateVariables_SkipsEmptyPatch(t *testing.T) {
	requests := 0
	c := newTestClient(t, func(t *testing.T, w http.ResponseWriter, r *http.Request) {
		requests++
		respondResult(w, nil)
	})

	doc := &envvars.Document{Production: envvars.Map{"A": "1"}, Preview: envvars.Map{}}
	updated, err := c.UpdateVariables("my-site", doc, doc)
	if err != nil {
		t.Fatalf("UpdateVariables error: %v", err)
	}
	if updated {
		t.Fatal("no request should be reported for an identical document")
	}
	if requests != 0 {
		t.Fatalf("expected no requests, got %d", requests)
	}
}

func TestUpdateVariables_SendsNullForRemovedVariable(t *testing.T) {
	var body struct {
		DeploymentConfigs struct {
			Preview struct {
				EnvVars map[string]json.RawMessage `json:"env_vars"`
			} `json:"preview"`
			Production struct {
				EnvVars map[string]json.RawMessage `json:"env_vars"`
			} `json:"production"`
		} `json:"deployment_configs"`
	}
	c := newTestClient(t, func(t *testing.T, w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("unexpected content type: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode patch body: %v", err)
		}
		respondResult(w, nil)
	})

	current := &envvars.Document{Production: envvars.Map{"REMOVE": "gone"}, Preview: envvars.Map{}}
	desired := &envvars.Document{Production: envvars.Map{}, Preview: nil}

	updated, err := c.UpdateVariables("my-site", current, desired)
	if err != nil {
		t.Fatalf("UpdateVariables error: %v", err)
	}
	if !updated {
		t.Fatal("a deletion should produce a request")
	}
	if raw, ok := body.DeploymentConfigs.Production.EnvVars["REMOVE"]; !ok || string(raw) != "null" {
		t.Fatalf("removed variable must be serialized as null, got present=%v raw=%s", ok, raw)
	}
	if body.DeploymentConfigs.Preview.EnvVars == nil || len(body.DeploymentConfigs.Preview.EnvVars) != 0 {
		t.Fatalf("untouched environment must be sent as an empty object: %+v", body.DeploymentConfigs.Preview.EnvVars)
	}
}
