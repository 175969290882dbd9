// Package relay forwards admin commands from the dashboard to live
// trading engine instances. The dashboard itself never places or exits
// orders; it only proxies an operator's explicit command, authenticated
// with a shared admin token.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DefaultTimeout bounds one forwarded command.
const DefaultTimeout = 15 * time.Second

// adminTokenHeader authenticates forwarded commands to the engine.
const adminTokenHeader = "X-Admin-Token"

// actionPattern matches the commands an engine accepts: capital and MIS
// adjustments, pause/resume, exit-all, and per-trade exits.
var actionPattern = regexp.MustCompile(`^(capital|mis|pause|resume|exit-all|exit/[A-Za-z0-9_\-]+)$`)

// probePattern matches the read-only engine endpoints the dashboard polls.
var probePattern = regexp.MustCompile(`^(health|status|positions)$`)

// Relay proxies commands to registered engine instances.
type Relay struct {
	instances map[string]string
	token     string
	client    *http.Client
	logger    *log.Logger
}

// New creates a relay over an instance name -> base URL registry.
func New(instances map[string]string, token string, logger *log.Logger) *Relay {
	copied := make(map[string]string, len(instances))
	for k, v := range instances {
		copied[k] = strings.TrimRight(v, "/")
	}
	return &Relay{
		instances: copied,
		token:     token,
		client:    &http.Client{Timeout: DefaultTimeout},
		logger:    logger,
	}
}

// Instances lists registered instance names.
func (r *Relay) Instances() []string {
	out := make([]string, 0, len(r.instances))
	for name := range r.instances {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Probe reads one of an instance's read-only endpoints (health, status,
// positions).
func (r *Relay) Probe(ctx context.Context, instance, endpoint string) (*Result, error) {
	base, ok := r.instances[instance]
	if !ok {
		return nil, fmt.Errorf("unknown instance %q", instance)
	}
	if !probePattern.MatchString(endpoint) {
		return nil, fmt.Errorf("unsupported endpoint %q", endpoint)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/"+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(adminTokenHeader, r.token)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("probe %s on %s: %w", endpoint, instance, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read engine reply: %w", err)
	}
	return &Result{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// Result is an engine's reply to a forwarded command.
type Result struct {
	StatusCode int
	Body       []byte
}

// Forward sends one admin command to an instance. Unknown instances and
// unrecognized actions are rejected before anything leaves the process.
func (r *Relay) Forward(ctx context.Context, instance, action string, body []byte) (*Result, error) {
	base, ok := r.instances[instance]
	if !ok {
		return nil, fmt.Errorf("unknown instance %q", instance)
	}
	if !actionPattern.MatchString(action) {
		return nil, fmt.Errorf("unsupported action %q", action)
	}

	url := base + "/admin/" + action
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(adminTokenHeader, r.token)

	r.logger.Printf("forwarding %s to instance %s", action, instance)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forward %s to %s: %w", action, instance, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read engine reply: %w", err)
	}
	return &Result{StatusCode: resp.StatusCode, Body: respBody}, nil
}
