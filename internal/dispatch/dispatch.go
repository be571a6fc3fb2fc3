// Package dispatch sends a network configuration to the training service and
// decodes the predictions it returns.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/kartoza/boolnet-studio/internal/config"
	"github.com/kartoza/boolnet-studio/internal/form"
	"github.com/kartoza/boolnet-studio/internal/models"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrMissingScatterPlot is returned when the response body has no scatter_plot
var ErrMissingScatterPlot = errors.New("response has no scatter_plot")

// maxErrorBody bounds how much of a failed response is kept for the log
const maxErrorBody = 512

// Dispatcher issues training requests against one endpoint
type Dispatcher struct {
	url    string
	client *http.Client
}

// New creates a Dispatcher for cfg.TrainURL. A zero cfg.TrainTimeout leaves
// the request unbounded.
func New(cfg config.Config) *Dispatcher {
	url := cfg.TrainURL
	if url == "" {
		url = config.DefaultTrainURL
	}
	return NewWithClient(url, &http.Client{Timeout: cfg.TrainTimeout})
}

// NewWithClient creates a Dispatcher that uses the given HTTP client
func NewWithClient(url string, client *http.Client) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Dispatcher{url: url, client: client}
}

// URL returns the training endpoint
func (d *Dispatcher) URL() string {
	return d.url
}

// BuildRequest maps the form state onto the body the training service
// expects. Layers are sent exactly as the form holds them.
func BuildRequest(cfg form.NetworkConfiguration) models.TrainRequest {
	layers := make([]models.LayerSpec, len(cfg.Layers))
	for i, l := range cfg.Layers {
		layers[i] = models.LayerSpec{
			InputNeurons:  l.InputNeurons,
			OutputNeurons: l.OutputNeurons,
			Activation:    string(l.Activation),
		}
	}
	return models.TrainRequest{
		NumVariables:     cfg.NumVariables,
		BooleanFunction:  cfg.BooleanFunction,
		NetworkStructure: layers,
		Epochs:           cfg.Epochs,
		LearningRate:     cfg.LearningRate,
		Optimizer:        string(cfg.Optimizer),
		LossFunction:     string(cfg.LossFunction),
	}
}

// Dispatch POSTs cfg to the training service once and returns the decoded
// scatter_plot. There is no retry.
func (d *Dispatcher) Dispatch(ctx context.Context, cfg form.NetworkConfiguration) ([]models.ScatterPoint, error) {
	id := uuid.New().String()

	body, err := json.Marshal(BuildRequest(cfg))
	if err != nil {
		return nil, errors.Wrapf(err, "dispatch %s: failed to encode request", id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "dispatch %s: failed to build request for %q", id, d.url)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	klog.Infof("dispatch %s: POST %s (%d layers, %d epochs)", id, d.url, len(cfg.Layers), cfg.Epochs)
	start := time.Now()

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "dispatch %s: request to %q failed", id, d.url)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "dispatch %s: failed to read response", id)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("dispatch %s: training service returned %s: %s",
			id, resp.Status, snippet(data))
	}

	var decoded models.TrainResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, errors.Wrapf(err, "dispatch %s: malformed response body", id)
	}
	if decoded.ScatterPlot == nil {
		return nil, errors.WithMessagef(ErrMissingScatterPlot, "dispatch %s", id)
	}

	points := *decoded.ScatterPlot
	klog.V(1).Infof("dispatch %s: %d points, %s in %s", id, len(points),
		humanize.Bytes(uint64(len(data))), time.Since(start).Round(time.Millisecond))
	return points, nil
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody] + "..."
	}
	return s
}
