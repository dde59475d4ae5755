package neural

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/yaricom/goNEAT/v4/neat"

	"github.com/pthm-cable/flappy/game"
)

func TestGenomeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	genome := CreateBrainGenome(7, rng, 1.0)
	ids := NewGenomeIDGenerator()
	opts := &neat.Options{MutateAddNodeProb: 1, MutateAddLinkProb: 1}
	for i := 0; i < 5; i++ {
		if _, err := MutateGenome(rng, genome, opts, ids); err != nil {
			t.Fatal(err)
		}
	}
	genome.Genes[0].IsEnabled = false

	data, err := EncodeGenome(genome)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeGenome(data)
	if err != nil {
		t.Fatal(err)
	}

	if decoded.Id != 7 || len(decoded.Nodes) != len(genome.Nodes) || len(decoded.Genes) != len(genome.Genes) {
		t.Fatalf("decoded shape differs: id %d, %d nodes, %d genes", decoded.Id, len(decoded.Nodes), len(decoded.Genes))
	}
	for i, g := range genome.Genes {
		d := decoded.Genes[i]
		if d.InnovationNum != g.InnovationNum || d.IsEnabled != g.IsEnabled ||
			d.Link.ConnectionWeight != g.Link.ConnectionWeight ||
			d.Link.InNode.Id != g.Link.InNode.Id || d.Link.OutNode.Id != g.Link.OutNode.Id {
			t.Errorf("gene %d differs after round trip", g.InnovationNum)
		}
	}

	// Both genomes make the same decisions
	a, err := NewBrainController(genome)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewBrainController(decoded)
	if err != nil {
		t.Fatal(err)
	}
	for _, obs := range []game.Observation{{Y: 100}, {Y: 400, TopDistance: 30, BottomDistance: 170}} {
		x, _ := a.Decide(obs)
		y, _ := b.Decide(obs)
		if x != y {
			t.Errorf("decisions differ for %+v: %v vs %v", obs, x, y)
		}
	}
}

func TestEncodeIsJSON(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data, err := EncodeGenome(CreateBrainGenome(3, rng, 1.0))
	if err != nil {
		t.Fatal(err)
	}
	if !json.Valid(data) || !strings.Contains(string(data), `"type":"bias"`) {
		t.Errorf("unexpected encoding %s", data)
	}
	if _, err := EncodeGenome(nil); err == nil {
		t.Error("expected error for nil genome")
	}
}

func TestDecodeGenomeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"unknown type", `{"id":1,"nodes":[{"id":1,"type":"sensor","activation":"linear"}]}`},
		{"unknown activation", `{"id":1,"nodes":[{"id":1,"type":"input","activation":"relu"}]}`},
		{"no output", `{"id":1,"nodes":[{"id":1,"type":"input","activation":"linear"}]}`},
		{"duplicate node", `{"id":1,"nodes":[{"id":5,"type":"output","activation":"linear"},{"id":5,"type":"output","activation":"linear"}]}`},
		{"dangling gene", `{"id":1,"nodes":[{"id":5,"type":"output","activation":"sigmoid_steepened"}],"genes":[{"in":1,"out":5,"weight":1,"enabled":true,"innovation":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeGenome([]byte(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
