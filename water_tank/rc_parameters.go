package water_tank

import (
	"fmt"
	"math"
	"strings"
)

// RC 網のパラメータ
//
// ラベルと値の対応を挿入順に保持する。ラベルは次のいずれか。
//
//	C_<node>       ノードの熱容量, J/K
//	R_<a>_<b>      ノード a とノード b（または境界 b）の間の熱抵抗, K/W
type RCParameters struct {
	labels []string           // ラベル（挿入順）
	values map[string]float64 // ラベルごとの値
}

func NewRCParameters() *RCParameters {
	return &RCParameters{
		labels: make([]string, 0),
		values: make(map[string]float64),
	}
}

func capacitance_label(node string) string {
	return "C_" + node
}

func resistance_label(a string, b string) string {
	return fmt.Sprintf("R_%s_%s", a, b)
}

// Set はラベルの値を設定する。新しいラベルは末尾に追加される。
func (p *RCParameters) Set(label string, value float64) {
	if _, ok := p.values[label]; !ok {
		p.labels = append(p.labels, label)
	}
	p.values[label] = value
}

func (p *RCParameters) Get(label string) (float64, bool) {
	v, ok := p.values[label]
	return v, ok
}

func (p *RCParameters) Has(label string) bool {
	_, ok := p.values[label]
	return ok
}

// Scale は既存のラベルの値に k を掛ける。
func (p *RCParameters) Scale(label string, k float64) error {
	v, ok := p.values[label]
	if !ok {
		return fmt.Errorf("%w: `%s` is not defined", ErrInvalidRCParameter, label)
	}
	p.values[label] = v * k
	return nil
}

func (p *RCParameters) Len() int {
	return len(p.labels)
}

func (p *RCParameters) Labels() []string {
	return append([]string(nil), p.labels...)
}

// Capacitances は熱容量を持つノード名を挿入順に返す。
func (p *RCParameters) Capacitances() []string {
	nodes := make([]string, 0)
	for _, label := range p.labels {
		if strings.HasPrefix(label, "C_") {
			nodes = append(nodes, strings.TrimPrefix(label, "C_"))
		}
	}
	return nodes
}

// 熱抵抗の両端
type resistance_ends struct {
	label string
	a     string
	b     string
	r     float64
}

func (p *RCParameters) resistances() ([]resistance_ends, error) {
	rs := make([]resistance_ends, 0)
	for _, label := range p.labels {
		if !strings.HasPrefix(label, "R_") {
			continue
		}
		parts := strings.Split(label, "_")
		if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("%w: malformed resistance label `%s`", ErrInvalidRCParameter, label)
		}
		rs = append(rs, resistance_ends{label: label, a: parts[1], b: parts[2], r: p.values[label]})
	}
	return rs, nil
}

func (p *RCParameters) Copy() *RCParameters {
	c := NewRCParameters()
	for _, label := range p.labels {
		c.Set(label, p.values[label])
	}
	return c
}

/*
RC 網の整合性を確認する。

	Args:
	    boundaries: 境界（温度を入力として与える節点）の名前

	Notes:
	    全ての熱抵抗は、熱容量を持つノードか境界の2点を参照しなければならない。
	    値は有限でなければならない。熱容量は 0 以上、熱抵抗は正とする。
	    ただし熱容量 0 のノード（体積 0 のノード）に接続する熱抵抗は 0 でもよい。
*/
func (p *RCParameters) Validate(boundaries []string) error {
	known := make(map[string]bool)
	for _, node := range p.Capacitances() {
		known[node] = true
	}
	for _, b := range boundaries {
		if known[b] {
			return fmt.Errorf("%w: boundary `%s` also has a capacitance", ErrInvalidRCParameter, b)
		}
		known[b] = true
	}

	for _, label := range p.labels {
		v := p.values[label]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: `%s` = %v", ErrInvalidRCParameter, label, v)
		}
		if !strings.HasPrefix(label, "C_") && !strings.HasPrefix(label, "R_") {
			return fmt.Errorf("%w: unknown label `%s`", ErrInvalidRCParameter, label)
		}
	}

	rs, err := p.resistances()
	if err != nil {
		return err
	}
	for _, r := range rs {
		if !known[r.a] || !known[r.b] {
			return fmt.Errorf("%w: `%s` references an unknown node", ErrInvalidRCParameter, r.label)
		}
		if r.a == r.b {
			return fmt.Errorf("%w: `%s` connects a node to itself", ErrInvalidRCParameter, r.label)
		}
		if r.r == 0 && !p.is_inert(r.a) && !p.is_inert(r.b) {
			return fmt.Errorf("%w: `%s` = 0", ErrInvalidRCParameter, r.label)
		}
	}

	return nil
}

// is_inert はノードの熱容量が 0 かどうかを返す。境界は inert ではない。
func (p *RCParameters) is_inert(node string) bool {
	c, ok := p.values[capacitance_label(node)]
	return ok && c == 0
}
