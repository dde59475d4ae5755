// Package neural evolves bird controllers: goNEAT genomes bred by a
// generational population, and a fixed-topology network for weight tuning.
package neural

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/flappy/game"
)

// Network dimensions (compile-time constants for array sizing).
const (
	NumInputs  = BrainInputs
	NumHidden  = 6
	NumOutputs = BrainOutputs
)

// inputScale brings pixel observations near the unit range.
const inputScale = 1.0 / 100

// FFNN is a simple two-layer feedforward neural network.
type FFNN struct {
	W1 [NumHidden][NumInputs]float32  // input -> hidden weights
	B1 [NumHidden]float32             // hidden biases
	W2 [NumOutputs][NumHidden]float32 // hidden -> output weights
	B2 [NumOutputs]float32            // output biases
}

// NewFFNN creates a randomly initialized network.
func NewFFNN(rng *rand.Rand) *FFNN {
	nn := &FFNN{}
	// Xavier initialization
	scale1 := float32(math.Sqrt(2.0 / float64(NumInputs)))
	scale2 := float32(math.Sqrt(2.0 / float64(NumHidden)))

	for i := range nn.W1 {
		for j := range nn.W1[i] {
			nn.W1[i][j] = float32(rng.NormFloat64()) * scale1
		}
	}
	for i := range nn.W2 {
		for j := range nn.W2[i] {
			nn.W2[i][j] = float32(rng.NormFloat64()) * scale2
		}
	}

	return nn
}

// Forward computes the jump signal in [0, 1].
func (nn *FFNN) Forward(inputs []float32) float32 {
	var hidden [NumHidden]float32
	for i := 0; i < NumHidden; i++ {
		sum := nn.B1[i]
		for j := 0; j < NumInputs; j++ {
			sum += nn.W1[i][j] * inputs[j]
		}
		hidden[i] = tanh(sum)
	}

	sum := nn.B2[0]
	for j := 0; j < NumHidden; j++ {
		sum += nn.W2[0][j] * hidden[j]
	}

	// raw=0 maps to 0.5, the jump threshold
	return saturate01(sum*0.5 + 0.5)
}

// Decide implements game.Controller.
func (nn *FFNN) Decide(obs game.Observation) (float64, error) {
	inputs := [NumInputs]float32{
		float32(obs.Y * inputScale),
		float32(obs.TopDistance * inputScale),
		float32(obs.BottomDistance * inputScale),
	}
	return float64(nn.Forward(inputs[:])), nil
}

// saturate01 clamps x to [0, 1].
func saturate01(x float32) float32 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x
}

// tanh is a rational approximation, exact at the clamp points.
func tanh(x float32) float32 {
	if x > 3 {
		return 1
	}
	if x < -3 {
		return -1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}

// ParamCount is the length of the vector used by Params and SetParams.
const ParamCount = NumHidden*NumInputs + NumHidden + NumOutputs*NumHidden + NumOutputs

// Params flattens the weights as W1, B1, W2, B2.
func (nn *FFNN) Params() []float64 {
	p := make([]float64, 0, ParamCount)
	for i := range nn.W1 {
		for _, w := range nn.W1[i] {
			p = append(p, float64(w))
		}
	}
	for _, b := range nn.B1 {
		p = append(p, float64(b))
	}
	for i := range nn.W2 {
		for _, w := range nn.W2[i] {
			p = append(p, float64(w))
		}
	}
	for _, b := range nn.B2 {
		p = append(p, float64(b))
	}
	return p
}

// SetParams loads weights in the order produced by Params.
func (nn *FFNN) SetParams(p []float64) error {
	if len(p) != ParamCount {
		return fmt.Errorf("expected %d params, got %d", ParamCount, len(p))
	}
	k := 0
	next := func() float32 {
		v := float32(p[k])
		k++
		return v
	}
	for i := range nn.W1 {
		for j := range nn.W1[i] {
			nn.W1[i][j] = next()
		}
	}
	for i := range nn.B1 {
		nn.B1[i] = next()
	}
	for i := range nn.W2 {
		for j := range nn.W2[i] {
			nn.W2[i][j] = next()
		}
	}
	for i := range nn.B2 {
		nn.B2[i] = next()
	}
	return nil
}

// BrainWeights holds flattened network weights for serialization.
type BrainWeights struct {
	W1 []float32 `json:"w1"` // [NumHidden * NumInputs]
	B1 []float32 `json:"b1"` // [NumHidden]
	W2 []float32 `json:"w2"` // [NumOutputs * NumHidden]
	B2 []float32 `json:"b2"` // [NumOutputs]
}

// MarshalWeights flattens the network weights for JSON serialization.
func (nn *FFNN) MarshalWeights() BrainWeights {
	bw := BrainWeights{
		W1: make([]float32, 0, NumHidden*NumInputs),
		B1: append([]float32(nil), nn.B1[:]...),
		W2: make([]float32, 0, NumOutputs*NumHidden),
		B2: append([]float32(nil), nn.B2[:]...),
	}
	for i := range nn.W1 {
		bw.W1 = append(bw.W1, nn.W1[i][:]...)
	}
	for i := range nn.W2 {
		bw.W2 = append(bw.W2, nn.W2[i][:]...)
	}
	return bw
}

// UnmarshalWeights restores network weights from flattened form.
func (nn *FFNN) UnmarshalWeights(bw BrainWeights) error {
	if len(bw.W1) != NumHidden*NumInputs || len(bw.B1) != NumHidden ||
		len(bw.W2) != NumOutputs*NumHidden || len(bw.B2) != NumOutputs {
		return fmt.Errorf("weight shapes do not match a %d-%d-%d network", NumInputs, NumHidden, NumOutputs)
	}
	for i := range nn.W1 {
		copy(nn.W1[i][:], bw.W1[i*NumInputs:])
	}
	copy(nn.B1[:], bw.B1)
	for i := range nn.W2 {
		copy(nn.W2[i][:], bw.W2[i*NumHidden:])
	}
	copy(nn.B2[:], bw.B2)
	return nil
}
