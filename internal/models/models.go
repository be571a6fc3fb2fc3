package models

// LayerSpec is one entry of network_structure as the training service reads it
type LayerSpec struct {
	InputNeurons  int    `json:"inputNeurons"`
	OutputNeurons int    `json:"outputNeurons"`
	Activation    string `json:"activation"`
}

// TrainRequest is the body POSTed to the training service
type TrainRequest struct {
	NumVariables     int         `json:"num_variables"`
	BooleanFunction  string      `json:"boolean_function"`
	NetworkStructure []LayerSpec `json:"network_structure"`
	Epochs           int         `json:"epochs"`
	LearningRate     float64     `json:"learning_rate"`
	Optimizer        string      `json:"optimizer"`
	LossFunction     string      `json:"loss_function"`
}

// ScatterPoint is one evaluated input combination and the network output
type ScatterPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// TrainResponse is the body returned by the training service.
// ScatterPlot is a pointer to tell a missing field from an empty list.
type TrainResponse struct {
	ScatterPlot *[]ScatterPoint `json:"scatter_plot"`
}

// FieldUpdate is the body of a single form edit
type FieldUpdate struct {
	Value string `json:"value"`
}
