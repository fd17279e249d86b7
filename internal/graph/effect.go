package graph

import (
	"errors"
	"fmt"
	"strings"
)

// EffectKind selects the single effect wired after the filter.
type EffectKind int32

const (
	EffectNone EffectKind = iota
	EffectEcho
	EffectReverb
	EffectDistortion
)

var ErrUnknownEffect = errors.New("unknown effect")

var effectNames = [...]string{
	EffectNone:       "none",
	EffectEcho:       "echo",
	EffectReverb:     "reverb",
	EffectDistortion: "distortion",
}

// Effects lists the selectable effects in display order, excluding none.
func Effects() []EffectKind {
	return []EffectKind{EffectEcho, EffectReverb, EffectDistortion}
}

func (k EffectKind) String() string {
	if k < 0 || int(k) >= len(effectNames) {
		return fmt.Sprintf("effect(%d)", int32(k))
	}
	return effectNames[k]
}

// Valid reports whether k is a known effect kind, including none.
func (k EffectKind) Valid() bool {
	return k >= EffectNone && k <= EffectDistortion
}

// Node returns the stage that implements k, or NodeNone for EffectNone.
func (k EffectKind) Node() Node {
	switch k {
	case EffectEcho:
		return NodeDelay
	case EffectReverb:
		return NodeReverb
	case EffectDistortion:
		return NodeDistortion
	}
	return NodeNone
}

// Toggle returns the effect that results from selecting next while current
// is active: selecting the active effect again turns effects off.
func Toggle(current, next EffectKind) EffectKind {
	if current == next {
		return EffectNone
	}
	return next
}

// ParseEffect accepts the names printed by String plus "delay" and "dist".
func ParseEffect(name string) (EffectKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "off", "":
		return EffectNone, nil
	case "echo", "delay":
		return EffectEcho, nil
	case "reverb":
		return EffectReverb, nil
	case "distortion", "dist":
		return EffectDistortion, nil
	}
	return EffectNone, fmt.Errorf("%w %q (expected none|echo|reverb|distortion)", ErrUnknownEffect, name)
}
