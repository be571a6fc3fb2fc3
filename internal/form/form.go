// Package form holds the user-editable network configuration and the rules
// applied when the form edits it.
//
// Every setter takes the raw text typed into the page and coerces it. A value
// that cannot be used falls back to a fixed default, so no setter ever fails.
package form

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Activation is the activation function applied by one layer
type Activation string

const (
	ActivationReLU    Activation = "relu"
	ActivationSigmoid Activation = "sigmoid"
	ActivationTanh    Activation = "tanh"
	ActivationSoftmax Activation = "softmax"
)

// Optimizer selects the training algorithm used by the training service
type Optimizer string

const (
	OptimizerSGD  Optimizer = "sgd"
	OptimizerAdam Optimizer = "adam"
)

// LossFunction selects the loss minimised by the training service
type LossFunction string

const (
	LossMSE                     LossFunction = "mse"
	LossBinaryCrossentropy      LossFunction = "binary_crossentropy"
	LossCategoricalCrossentropy LossFunction = "categorical_crossentropy"
)

// Fallbacks used when a numeric field cannot be parsed
const (
	DefaultCount        = 1
	DefaultLearningRate = 0.01

	// regenerated layers use this width for hidden slots
	defaultHiddenNeurons = 4
)

// MaxLayers bounds the layer count. A larger count falls back to DefaultCount.
const MaxLayers = 64

// Activations lists the activation options in the order the page offers them
var Activations = []Activation{ActivationReLU, ActivationSigmoid, ActivationTanh, ActivationSoftmax}

// Optimizers lists the optimizer options in the order the page offers them
var Optimizers = []Optimizer{OptimizerSGD, OptimizerAdam}

// LossFunctions lists the loss options in the order the page offers them
var LossFunctions = []LossFunction{LossMSE, LossBinaryCrossentropy, LossCategoricalCrossentropy}

// Valid reports whether a is one of the known activations
func (a Activation) Valid() bool {
	for _, v := range Activations {
		if a == v {
			return true
		}
	}
	return false
}

// Valid reports whether o is one of the known optimizers
func (o Optimizer) Valid() bool {
	for _, v := range Optimizers {
		if o == v {
			return true
		}
	}
	return false
}

// Valid reports whether l is one of the known loss functions
func (l LossFunction) Valid() bool {
	for _, v := range LossFunctions {
		if l == v {
			return true
		}
	}
	return false
}

// LayerSpec is the shape and activation of one dense layer
type LayerSpec struct {
	InputNeurons  int        `json:"inputNeurons"`
	OutputNeurons int        `json:"outputNeurons"`
	Activation    Activation `json:"activation"`
}

// NetworkConfiguration is everything the user chooses before training.
// Layers are independent records: nothing ties one layer's input count to
// the previous layer's output count once they have been generated.
type NetworkConfiguration struct {
	NumVariables    int          `json:"numVariables"`
	BooleanFunction string       `json:"booleanFunction"`
	NumLayers       int          `json:"numLayers"`
	Layers          []LayerSpec  `json:"layers"`
	Epochs          int          `json:"epochs"`
	LearningRate    float64      `json:"learningRate"`
	Optimizer       Optimizer    `json:"optimizer"`
	LossFunction    LossFunction `json:"lossFunction"`
}

// Default returns the configuration the form opens with
func Default() NetworkConfiguration {
	return NetworkConfiguration{
		NumVariables:    2,
		BooleanFunction: "X1 and X2",
		NumLayers:       2,
		Layers: []LayerSpec{
			{InputNeurons: 2, OutputNeurons: 4, Activation: ActivationReLU},
			{InputNeurons: 4, OutputNeurons: 1, Activation: ActivationSigmoid},
		},
		Epochs:       100,
		LearningRate: 0.01,
		Optimizer:    OptimizerAdam,
		LossFunction: LossBinaryCrossentropy,
	}
}

// Clone returns a deep copy that shares no memory with c
func (c NetworkConfiguration) Clone() NetworkConfiguration {
	out := c
	out.Layers = make([]LayerSpec, len(c.Layers))
	copy(out.Layers, c.Layers)
	return out
}

// SetVariableCount sets the number of boolean variables.
// It does not touch the layers: only a layer count change reseeds layer 0.
func (c *NetworkConfiguration) SetVariableCount(text string) {
	c.NumVariables = ParseCount(text)
}

// SetBooleanFunction stores the expression verbatim
func (c *NetworkConfiguration) SetBooleanFunction(text string) {
	c.BooleanFunction = text
}

// SetEpochs sets the number of training epochs
func (c *NetworkConfiguration) SetEpochs(text string) {
	c.Epochs = ParseCount(text)
}

// SetLearningRate sets the optimizer step size
func (c *NetworkConfiguration) SetLearningRate(text string) {
	c.LearningRate = ParseLearningRate(text)
}

// SetOptimizer changes the optimizer; unknown names are ignored
func (c *NetworkConfiguration) SetOptimizer(name string) {
	if o := Optimizer(name); o.Valid() {
		c.Optimizer = o
	}
}

// SetLossFunction changes the loss; unknown names are ignored
func (c *NetworkConfiguration) SetLossFunction(name string) {
	if l := LossFunction(name); l.Valid() {
		c.LossFunction = l
	}
}

// SetLayerCount regenerates the whole layer sequence for the new count.
//
// Slot i takes its input width from the variable count (i == 0) or from the
// output width of the layer that held slot i-1 before the change, 4 when no
// such layer existed. The last slot outputs 1 neuron, the others 4, and every
// slot starts as relu. Edits made to the old layers are overwritten.
// Counts above MaxLayers fall back to DefaultCount.
func (c *NetworkConfiguration) SetLayerCount(text string) {
	n := ParseCount(text)
	if n > MaxLayers {
		n = DefaultCount
	}
	prev := c.Layers
	layers := make([]LayerSpec, n)
	for i := range layers {
		in := c.NumVariables
		if i > 0 {
			in = defaultHiddenNeurons
			if i-1 < len(prev) && prev[i-1].OutputNeurons > 0 {
				in = prev[i-1].OutputNeurons
			}
		}
		out := defaultHiddenNeurons
		if i == n-1 {
			out = 1
		}
		layers[i] = LayerSpec{InputNeurons: in, OutputNeurons: out, Activation: ActivationReLU}
	}
	c.NumLayers = n
	c.Layers = layers
}

// SetLayerInput sets layer i's input width; out of range indexes are ignored
func (c *NetworkConfiguration) SetLayerInput(i int, text string) {
	if l := c.layer(i); l != nil {
		l.InputNeurons = ParseCount(text)
	}
}

// SetLayerOutput sets layer i's output width; out of range indexes are ignored
func (c *NetworkConfiguration) SetLayerOutput(i int, text string) {
	if l := c.layer(i); l != nil {
		l.OutputNeurons = ParseCount(text)
	}
}

// SetLayerActivation sets layer i's activation; unknown names are ignored
func (c *NetworkConfiguration) SetLayerActivation(i int, name string) {
	l := c.layer(i)
	if l == nil {
		return
	}
	if a := Activation(name); a.Valid() {
		l.Activation = a
	}
}

func (c *NetworkConfiguration) layer(i int) *LayerSpec {
	if i < 0 || i >= len(c.Layers) {
		return nil
	}
	return &c.Layers[i]
}

// ParseCount parses a neuron, epoch, variable or layer count from the
// integer the text starts with, so "2.5" reads as 2 and "3abc" as 3.
// Anything without a positive leading integer that fits an int yields
// DefaultCount.
func ParseCount(text string) int {
	n, err := strconv.Atoi(leadingInteger(text))
	if err != nil || n <= 0 {
		return DefaultCount
	}
	return n
}

// leadingInteger returns the optionally signed run of digits at the start of
// text, after leading white space. It is empty when there are no digits.
func leadingInteger(text string) string {
	s := strings.TrimLeftFunc(text, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return ""
	}
	return s[:end]
}

// ParseLearningRate parses a learning rate.
// Anything that is not a positive finite number yields DefaultLearningRate.
func ParseLearningRate(text string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return DefaultLearningRate
	}
	return f
}
