package motivation

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kkkiiiirran/FitFlow/internal/plugin"
)

// PluginGenerator asks an external plugin for messages.
type PluginGenerator struct {
	executor *plugin.Executor
	plugin   *plugin.Plugin
}

// NewPluginGenerator creates a generator backed by p.
func NewPluginGenerator(executor *plugin.Executor, p *plugin.Plugin) *PluginGenerator {
	return &PluginGenerator{executor: executor, plugin: p}
}

// Generate runs the plugin's motivate action.
func (g *PluginGenerator) Generate(ctx context.Context, p Prompt) (string, error) {
	resp, err := g.executor.Execute(ctx, g.plugin, &plugin.Request{
		Action:   plugin.ActionMotivate,
		Exercise: p.Exercise,
		Value:    p.Value,
		Unit:     p.Unit,
	})
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("plugin %s: %s", g.plugin.Manifest.Name, resp.Error)
	}
	if resp.Message == "" {
		return "", errors.New("plugin returned an empty message")
	}
	return resp.Message, nil
}
