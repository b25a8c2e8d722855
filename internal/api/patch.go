package api

import (
	"go.uber.org/zap"

	"cf-pages-cli/internal/envvars"
)

// BuildPatch computes the minimal change set that moves current to desired.
// Unchanged variables are omitted, removed ones become explicit nulls, and a
// nil environment in desired leaves that environment entirely untouched.
func BuildPatch(current, desired *envvars.Document) DeploymentConfigs {
	return DeploymentConfigs{
		Preview:    envPatch(current.Preview, desired.Preview),
		Production: envPatch(current.Production, desired.Production),
	}
}

func envPatch(current, desired envvars.Map) PagesEnvironment {
	changes := map[string]*EnvVarValue{}
	if desired == nil {
		return PagesEnvironment{EnvVars: changes}
	}
	for name, value := range desired {
		if existing, ok := current[name]; !ok || existing != value {
			changes[name] = &EnvVarValue{Type: PlainText, Value: value}
		}
	}
	for name := range current {
		if _, ok := desired[name]; !ok {
			changes[name] = nil
		}
	}
	return PagesEnvironment{EnvVars: changes}
}

// IsEmpty reports whether applying the patch would change nothing.
func (c DeploymentConfigs) IsEmpty() bool {
	return len(c.Preview.EnvVars) == 0 && len(c.Production.EnvVars) == 0
}

// UpdateVariables submits the minimal patch of desired against current and
// reports whether a request was made at all: an empty patch is skipped
// without touching the network.
func (c *Client) UpdateVariables(project string, current, desired *envvars.Document) (bool, error) {
	patch := BuildPatch(current, desired)
	if patch.IsEmpty() {
		zap.L().Debug("variable patch is empty, skipping update")
		return false, nil
	}
	if err := c.UpdateDeploymentConfigs(project, patch); err != nil {
		return false, err
	}
	return true, nil
}
