// Package graph wires the fixed set of processing stages into one signal
// path: source -> filter -> (at most one effect) -> mixer.
//
// Topology changes (Connect, Disconnect, Route) must not race with Process;
// callers quiesce the audio pipeline around them. Wet/dry mixes and the
// other stage parameters are atomics and may change while audio runs.
package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fidgetsynth/fidgetsynth/internal/effects"
)

// Node identifies a stage in the graph.
type Node int8

const (
	NodeNone Node = iota - 1
	NodeSource
	NodeFilter
	NodeDelay
	NodeReverb
	NodeDistortion
	NodeMixer
	nodeCount
)

var nodeNames = [nodeCount]string{"source", "filter", "delay", "reverb", "distortion", "mixer"}

func (n Node) String() string {
	if n < 0 || n >= nodeCount {
		return "none"
	}
	return nodeNames[n]
}

var (
	ErrUnknownNode      = errors.New("unknown node")
	ErrSelfConnection   = errors.New("node cannot feed itself")
	ErrSourceInput      = errors.New("source has no input")
	ErrMixerOutput      = errors.New("mixer is the graph output")
	ErrAlreadyConnected = errors.New("node output already connected")
	ErrCycle            = errors.New("connection would form a cycle")
)

const (
	// EchoDelaySeconds is the fixed echo time.
	EchoDelaySeconds = 0.2
	// MaxDistortionPreGainDB is the pre-gain at full intensity.
	MaxDistortionPreGainDB = 20
)

// Graph owns every stage for its whole lifetime.
type Graph struct {
	filter     *effects.Filter
	delay      *effects.Delay
	reverb     *effects.Reverb
	distortion *effects.Distortion
	mixer      *effects.Mixer
	outputs    [nodeCount]Node
}

// New builds the stages at sampleRate and connects source -> filter -> mixer.
// Every effect starts with a zero wet/dry mix.
func New(sampleRate int) *Graph {
	g := &Graph{
		filter:     effects.NewFilter(sampleRate, 20000, 0),
		delay:      effects.NewDelay(sampleRate, EchoDelaySeconds, 0.5, 0),
		reverb:     effects.NewReverb(sampleRate, 0.5, 0.7, 0),
		distortion: effects.NewDistortion(sampleRate, 0, 0.5, 8000),
		mixer:      effects.NewMixer(sampleRate),
	}
	for i := range g.outputs {
		g.outputs[i] = NodeNone
	}
	g.outputs[NodeSource] = NodeFilter
	g.outputs[NodeFilter] = NodeMixer
	return g
}

func (g *Graph) Filter() *effects.Filter         { return g.filter }
func (g *Graph) Delay() *effects.Delay           { return g.delay }
func (g *Graph) Reverb() *effects.Reverb         { return g.reverb }
func (g *Graph) Distortion() *effects.Distortion { return g.distortion }
func (g *Graph) Mixer() *effects.Mixer           { return g.mixer }

// Connect routes the output of from into to.
func (g *Graph) Connect(from, to Node) error {
	if !valid(from) || !valid(to) {
		return fmt.Errorf("connect %s -> %s: %w", from, to, ErrUnknownNode)
	}
	switch {
	case from == to:
		return fmt.Errorf("connect %s: %w", from, ErrSelfConnection)
	case to == NodeSource:
		return fmt.Errorf("connect %s -> %s: %w", from, to, ErrSourceInput)
	case from == NodeMixer:
		return fmt.Errorf("connect %s -> %s: %w", from, to, ErrMixerOutput)
	case g.outputs[from] != NodeNone:
		return fmt.Errorf("connect %s -> %s (feeds %s): %w", from, to, g.outputs[from], ErrAlreadyConnected)
	}
	for n, steps := to, 0; n != NodeNone && steps < int(nodeCount); n, steps = g.outputs[n], steps+1 {
		if n == from {
			return fmt.Errorf("connect %s -> %s: %w", from, to, ErrCycle)
		}
	}
	g.outputs[from] = to
	return nil
}

// Disconnect removes the downstream route of from, if any.
func (g *Graph) Disconnect(from Node) {
	if valid(from) {
		g.outputs[from] = NodeNone
	}
}

// Output returns the node fed by from, or NodeNone.
func (g *Graph) Output(from Node) Node {
	if !valid(from) {
		return NodeNone
	}
	return g.outputs[from]
}

// Route rewires the filter through the stage for kind (directly to the
// mixer for EffectNone). The newly routed stage starts from a clean state.
func (g *Graph) Route(kind EffectKind) error {
	for _, n := range [...]Node{NodeFilter, NodeDelay, NodeReverb, NodeDistortion} {
		g.Disconnect(n)
	}
	stage := kind.Node()
	if stage == NodeNone {
		return g.Connect(NodeFilter, NodeMixer)
	}
	if err := g.Connect(NodeFilter, stage); err != nil {
		return err
	}
	g.stage(stage).Reset()
	return g.Connect(stage, NodeMixer)
}

// Path lists the nodes reachable from the source in signal order.
func (g *Graph) Path() []Node {
	path := []Node{NodeSource}
	for n, steps := g.outputs[NodeSource], 0; n != NodeNone && steps < int(nodeCount); n, steps = g.outputs[n], steps+1 {
		path = append(path, n)
	}
	return path
}

// PathString renders Path as "source -> filter -> mixer".
func (g *Graph) PathString() string {
	path := g.Path()
	names := make([]string, len(path))
	for i, n := range path {
		names[i] = n.String()
	}
	return strings.Join(names, " -> ")
}

// Complete reports whether the path from the source reaches the mixer.
func (g *Graph) Complete() bool {
	path := g.Path()
	return path[len(path)-1] == NodeMixer
}

// ApplyIntensity zeroes every effect's wet/dry mix and then sets only the
// stage for kind from intensity in [0,1]. At most one effect is ever wet.
func (g *Graph) ApplyIntensity(kind EffectKind, intensity float64) {
	g.delay.SetWetDryMix(0)
	g.reverb.SetWetDryMix(0)
	g.distortion.SetWetDryMix(0)

	mix := float32(100 * intensity)
	switch kind {
	case EffectEcho:
		g.delay.SetWetDryMix(mix)
		g.delay.SetDelayTime(EchoDelaySeconds)
	case EffectReverb:
		g.reverb.SetWetDryMix(mix)
	case EffectDistortion:
		g.distortion.SetWetDryMix(mix)
		g.distortion.SetPreGain(float32(MaxDistortionPreGainDB * intensity))
	}
}

// WetDryMix returns the mix percentage of the stage for kind; EffectNone
// reports 0.
func (g *Graph) WetDryMix(kind EffectKind) float32 {
	switch kind {
	case EffectEcho:
		return g.delay.WetDryMix()
	case EffectReverb:
		return g.reverb.WetDryMix()
	case EffectDistortion:
		return g.distortion.WetDryMix()
	}
	return 0
}

// Process runs one sample from the source along the current path. A path
// that does not end at the mixer is silent.
func (g *Graph) Process(x float32) float32 {
	n := g.outputs[NodeSource]
	for steps := 0; n != NodeNone && steps < int(nodeCount); steps++ {
		if n == NodeMixer {
			return g.mixer.Process(x)
		}
		x = g.stage(n).Process(x)
		n = g.outputs[n]
	}
	return 0
}

// Reset clears every stage's internal state.
func (g *Graph) Reset() {
	g.filter.Reset()
	g.delay.Reset()
	g.reverb.Reset()
	g.distortion.Reset()
	g.mixer.Reset()
}

func (g *Graph) stage(n Node) effects.Effector {
	switch n {
	case NodeFilter:
		return g.filter
	case NodeDelay:
		return g.delay
	case NodeReverb:
		return g.reverb
	case NodeDistortion:
		return g.distortion
	case NodeMixer:
		return g.mixer
	}
	return passthrough{}
}

type passthrough struct{}

func (passthrough) Process(x float32) float32 { return x }
func (passthrough) Reset()                    {}

func valid(n Node) bool {
	return n >= 0 && n < nodeCount
}
