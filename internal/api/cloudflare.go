package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"cf-pages-cli/internal/envvars"
)

const defaultBaseURL = "https://api.cloudflare.com/client/v4"

// Client talks to the Cloudflare Pages API for a single account. Every call
// issues exactly one HTTP request; nothing is retried.
type Client struct {
	httpClient *http.Client
	account    string
	token      string
	baseURL    string
}

// NewClient builds a client authenticating with the given API token. The
// base URL can be overridden through CLOUDFLARE_API_BASE_URL, which is how
// tests point the CLI at a fake server.
func NewClient(account, token string) *Client {
	baseURL := defaultBaseURL
	if v := os.Getenv("CLOUDFLARE_API_BASE_URL"); v != "" {
		baseURL = v
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		account:    account,
		token:      token,
		baseURL:    baseURL,
	}
}

// TransportError reports a request that never produced an HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "cloudflare request failed: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// APIError reports a response Cloudflare itself rejected: a non-2xx status,
// or a 2xx envelope with success set to false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cloudflare api error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("cloudflare api error: %d: %s", e.StatusCode, e.Message)
}

// DecodeError reports a response body that did not match the expected shape.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decoding cloudflare response: " + e.Err.Error() }

func (e *DecodeError) Unwrap() error { return e.Err }

// envelope is the Cloudflare v4 response wrapper common to every endpoint.
type envelope struct {
	Result  json.RawMessage `json:"result"`
	Success bool            `json:"success"`
	Errors  []apiMessage    `json:"errors"`
}

type apiMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// PlainText is the only variable type this tool reads or writes.
const PlainText = "plain_text"

// EnvVarValue is one variable as the API represents it. Inside a change set
// a nil *EnvVarValue encodes as JSON null, which deletes the variable.
type EnvVarValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// PagesEnvironment is the per-environment config fragment carrying
// variables. On reads the map may be absent entirely.
type PagesEnvironment struct {
	EnvVars map[string]*EnvVarValue `json:"env_vars"`
}

// DeploymentConfigs holds both environment fragments, in the order the API
// uses on the wire.
type DeploymentConfigs struct {
	Preview    PagesEnvironment `json:"preview"`
	Production PagesEnvironment `json:"production"`
}

// PagesProject is the subset of the project resource this tool reads.
type PagesProject struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	DeploymentConfigs DeploymentConfigs `json:"deployment_configs"`
}

// PagesDeployment is the subset of the deployment resource this tool reads.
// Unlike the project resource, a deployment carries its env_vars directly on
// the object.
type PagesDeployment struct {
	ID          string              `json:"id"`
	Environment envvars.Environment `json:"environment"`
	PagesEnvironment
}

// Vars flattens the fragment into plain name/value pairs. An absent map
// becomes an empty map and null values become empty strings.
func (e PagesEnvironment) Vars() envvars.Map {
	vars := make(envvars.Map, len(e.EnvVars))
	for name, value := range e.EnvVars {
		if value != nil {
			vars[name] = value.Value
		} else {
			vars[name] = ""
		}
	}
	return vars
}

// Document converts a full project config into a variables document with
// both environments populated.
func (c DeploymentConfigs) Document() *envvars.Document {
	return &envvars.Document{
		Production: c.Production.Vars(),
		Preview:    c.Preview.Vars(),
	}
}

// Document converts a single deployment into a variables document where only
// the environment the deployment targets is populated.
func (d PagesDeployment) Document() *envvars.Document {
	doc := &envvars.Document{}
	switch d.Environment {
	case envvars.Preview:
		doc.Preview = d.Vars()
	default:
		doc.Production = d.Vars()
	}
	return doc
}

func (c *Client) projectPath(project string) string {
	return fmt.Sprintf("/accounts/%s/pages/projects/%s", c.account, project)
}

func (c *Client) do(method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	zap.L().Debug(method + " " + path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	var wrapper envelope
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return &DecodeError{Err: err}
	}
	if !wrapper.Success {
		msg := "request reported failure"
		if len(wrapper.Errors) > 0 {
			msg = wrapper.Errors[0].Message
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if out != nil {
		if err := json.Unmarshal(wrapper.Result, out); err != nil {
			return &DecodeError{Err: err}
		}
	}
	return nil
}

// errorMessage digs a human-readable message out of an error response body.
// Cloudflare normally fills the envelope errors array; some edge responses
// carry a bare top-level message instead.
func errorMessage(body []byte) string {
	var payload struct {
		Message string       `json:"message"`
		Errors  []apiMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	if len(payload.Errors) > 0 {
		return payload.Errors[0].Message
	}
	return ""
}

// Project fetches a Pages project including its deployment configs.
func (c *Client) Project(name string) (*PagesProject, error) {
	var project PagesProject
	if err := c.do(http.MethodGet, c.projectPath(name), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Deployment fetches a single deployment of a project. A response without an
// environment is rejected here so it cannot be misfiled under production
// later on.
func (c *Client) Deployment(project, id string) (*PagesDeployment, error) {
	var deployment PagesDeployment
	if err := c.do(http.MethodGet, c.projectPath(project)+"/deployments/"+id, nil, &deployment); err != nil {
		return nil, err
	}
	if deployment.Environment == "" {
		return nil, &DecodeError{Err: fmt.Errorf("deployment %s carries no environment", id)}
	}
	return &deployment, nil
}

// UpdateDeploymentConfigs patches variable change sets onto a project.
func (c *Client) UpdateDeploymentConfigs(project string, configs DeploymentConfigs) error {
	body := struct {
		DeploymentConfigs DeploymentConfigs `json:"deployment_configs"`
	}{DeploymentConfigs: configs}
	return c.do(http.MethodPatch, c.projectPath(project), &body, nil)
}

// FetchVariables downloads project variables. With a deployment ID the
// result carries only the environment that deployment targets, the other
// left null; otherwise both environments are populated, empty maps included.
func (c *Client) FetchVariables(project, deployment string) (*envvars.Document, error) {
	if deployment != "" {
		dep, err := c.Deployment(project, deployment)
		if err != nil {
			return nil, err
		}
		return dep.Document(), nil
	}
	proj, err := c.Project(project)
	if err != nil {
		return nil, err
	}
	return proj.DeploymentConfigs.Document(), nil
}
