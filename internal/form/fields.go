package form

// Field names used by the page; they match the JSON names of the snapshot
const (
	FieldNumVariables    = "numVariables"
	FieldBooleanFunction = "booleanFunction"
	FieldNumLayers       = "numLayers"
	FieldEpochs          = "epochs"
	FieldLearningRate    = "learningRate"
	FieldOptimizer       = "optimizer"
	FieldLossFunction    = "lossFunction"

	FieldInputNeurons  = "inputNeurons"
	FieldOutputNeurons = "outputNeurons"
	FieldActivation    = "activation"
)

var configSetters = map[string]func(*NetworkConfiguration, string){
	FieldNumVariables:    (*NetworkConfiguration).SetVariableCount,
	FieldBooleanFunction: (*NetworkConfiguration).SetBooleanFunction,
	FieldNumLayers:       (*NetworkConfiguration).SetLayerCount,
	FieldEpochs:          (*NetworkConfiguration).SetEpochs,
	FieldLearningRate:    (*NetworkConfiguration).SetLearningRate,
	FieldOptimizer:       (*NetworkConfiguration).SetOptimizer,
	FieldLossFunction:    (*NetworkConfiguration).SetLossFunction,
}

var layerSetters = map[string]func(*NetworkConfiguration, int, string){
	FieldInputNeurons:  (*NetworkConfiguration).SetLayerInput,
	FieldOutputNeurons: (*NetworkConfiguration).SetLayerOutput,
	FieldActivation:    (*NetworkConfiguration).SetLayerActivation,
}

// ConfigSetter returns the setter for a top-level field
func ConfigSetter(field string) (func(*NetworkConfiguration, string), bool) {
	fn, ok := configSetters[field]
	return fn, ok
}

// LayerSetter returns the setter for a per-layer field
func LayerSetter(field string) (func(*NetworkConfiguration, int, string), bool) {
	fn, ok := layerSetters[field]
	return fn, ok
}
