package dispatch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kartoza/boolnet-studio/internal/config"
	"github.com/kartoza/boolnet-studio/internal/form"
	"github.com/kartoza/boolnet-studio/internal/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequestDefault(t *testing.T) {
	body, err := json.Marshal(BuildRequest(form.Default()))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"num_variables": 2,
		"boolean_function": "X1 and X2",
		"network_structure": [
			{"inputNeurons": 2, "outputNeurons": 4, "activation": "relu"},
			{"inputNeurons": 4, "outputNeurons": 1, "activation": "sigmoid"}
		],
		"epochs": 100,
		"learning_rate": 0.01,
		"optimizer": "adam",
		"loss_function": "binary_crossentropy"
	}`, string(body))
}

func TestBuildRequestKeepsMismatchedLayers(t *testing.T) {
	cfg := form.Default()
	cfg.SetVariableCount("5")
	cfg.SetLayerInput(1, "17")

	req := BuildRequest(cfg)

	assert.Equal(t, 5, req.NumVariables)
	assert.Equal(t, 2, req.NetworkStructure[0].InputNeurons)
	assert.Equal(t, 17, req.NetworkStructure[1].InputNeurons)
}

func TestDispatchSuccess(t *testing.T) {
	var got models.TrainRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/train", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(data, &got))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"scatter_plot":[{"x":0,"y":0,"z":0.1},{"x":0,"y":1,"z":0.9},{"x":1,"y":0,"z":0.9},{"x":1,"y":1,"z":0.95}]}`)
	}))
	defer srv.Close()

	d := NewWithClient(srv.URL+"/train", srv.Client())
	points, err := d.Dispatch(context.Background(), form.Default())
	require.NoError(t, err)

	assert.Equal(t, []models.ScatterPoint{
		{X: 0, Y: 0, Z: 0.1},
		{X: 0, Y: 1, Z: 0.9},
		{X: 1, Y: 0, Z: 0.9},
		{X: 1, Y: 1, Z: 0.95},
	}, points)
	assert.Equal(t, "X1 and X2", got.BooleanFunction)
	assert.Len(t, got.NetworkStructure, 2)
}

func TestDispatchEmptyScatterPlot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"scatter_plot":[]}`)
	}))
	defer srv.Close()

	points, err := NewWithClient(srv.URL, nil).Dispatch(context.Background(), form.Default())
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestDispatchFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "bad request", status: http.StatusBadRequest, body: "invalid boolean function"},
		{name: "malformed body", status: http.StatusOK, body: "<html>"},
		{name: "missing scatter_plot", status: http.StatusOK, body: `{"points":[]}`, wantErr: ErrMissingScatterPlot},
		{name: "wrong shape", status: http.StatusOK, body: `{"scatter_plot":{"x":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			points, err := NewWithClient(srv.URL, srv.Client()).Dispatch(context.Background(), form.Default())
			require.Error(t, err)
			assert.Nil(t, points)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			}
		})
	}
}

func TestDispatchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewWithClient(url, nil).Dispatch(context.Background(), form.Default())
	assert.Error(t, err)
}

func TestDispatchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	d := New(config.Config{TrainURL: srv.URL, TrainTimeout: 50 * time.Millisecond})
	_, err := d.Dispatch(context.Background(), form.Default())
	assert.Error(t, err)
}

func TestNewDefaultsURL(t *testing.T) {
	d := New(config.Config{})
	assert.Equal(t, config.DefaultTrainURL, d.URL())
}
