// Package main provides an offline message generator plugin.
// It builds a milestone message from a small set of templates so the
// motivation pool keeps growing without a network service.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action   string          `json:"action"`
	Exercise string          `json:"exercise"`
	Value    int             `json:"value"`
	Unit     string          `json:"unit"`
	Config   json.RawMessage `json:"config,omitempty"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

var repTemplates = []string{
	"%d %s down. Keep that form tight!",
	"That's %d %s. You're on a roll!",
	"%d %s and counting. Breathe and keep going!",
}

var holdTemplates = []string{
	"%d seconds of %s. Hold steady!",
	"%d seconds in. Keep your core tight on that %s!",
	"%d seconds strong. Don't let your hips drop!",
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	if req.Action != "motivate" {
		writeResponse(Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	writeResponse(Response{Success: true, Message: compose(req)})
}

// compose builds a message for the request's milestone.
func compose(req Request) string {
	name := strings.ReplaceAll(req.Exercise, "-", " ")
	if name == "" {
		name = "reps"
	}

	if req.Unit == "seconds" {
		tpl := holdTemplates[rand.IntN(len(holdTemplates))]
		if strings.Count(tpl, "%") == 1 {
			return fmt.Sprintf(tpl, req.Value)
		}
		return fmt.Sprintf(tpl, req.Value, name)
	}

	return fmt.Sprintf(repTemplates[rand.IntN(len(repTemplates))], req.Value, name)
}

// writeResponse writes resp to stdout.
func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
