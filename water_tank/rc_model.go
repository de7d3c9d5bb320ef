package water_tank

// **** RC 網の状態空間モデル ****
//
//	dx/dt = A x + B u
//
// x: ノード温度, degree C, [k]
// u: 境界温度, degree C と ノード k への熱取得, W, [b + k]
// 時間積分は 0 次ホールドの厳密離散化とする。

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

type RCModel struct {
	n_states    int            // 状態量の数
	n_inputs    int            // 入力の数
	state_names []string       // 状態量の名前 T_<node>, [k]
	input_names []string       // 入力の名前 T_<boundary>, H_<node>, [b + k]
	state_idx   map[string]int // 状態量の名前から番号
	input_idx   map[string]int // 入力の名前から番号
	time_res    float64        // 時間間隔, s
	a_c         *mat.Dense     // 連続系の係数 A, 1/s, [k, k]
	b_c         *mat.Dense     // 連続系の係数 B, [k, b + k]
	a_d         *mat.Dense     // 離散系の係数 Ad, [k, k]
	b_d         *mat.Dense     // 離散系の係数 Bd, [k, b + k]

	// 作業用
	_x_next *mat.VecDense
	_bu     *mat.VecDense
}

/*
RC 網から状態空間モデルを作成する。

	Args:
	    rc_params: RC 網のパラメータ
	    boundaries: 境界の名前（入力として温度を与える）
	    time_res: 時間間隔, s

	Notes:
	    熱容量 0 のノードは状態量として残すが、温度は変化せず、接続する熱抵抗は無視する。
*/
func NewRCModel(rc_params *RCParameters, boundaries []string, time_res float64) (*RCModel, error) {
	if time_res <= 0 {
		return nil, fmt.Errorf("%w: time_res = %v", ErrInvalidRCParameter, time_res)
	}
	if err := rc_params.Validate(boundaries); err != nil {
		return nil, err
	}

	nodes := rc_params.Capacitances()
	n_states := len(nodes)
	if n_states == 0 {
		return nil, fmt.Errorf("%w: no capacitance", ErrInvalidRCParameter)
	}
	n_bound := len(boundaries)
	n_inputs := n_bound + n_states

	state_names := make([]string, n_states)
	input_names := make([]string, n_inputs)
	state_idx := make(map[string]int, n_states)
	input_idx := make(map[string]int, n_inputs)
	node_idx := make(map[string]int, n_states)
	bound_idx := make(map[string]int, n_bound)

	for j, b := range boundaries {
		input_names[j] = "T_" + b
		input_idx[input_names[j]] = j
		bound_idx[b] = j
	}
	for k, node := range nodes {
		state_names[k] = "T_" + node
		state_idx[state_names[k]] = k
		input_names[n_bound+k] = "H_" + node
		input_idx[input_names[n_bound+k]] = n_bound + k
		node_idx[node] = k
	}

	// ノード k の熱容量, J/K, [k]
	c_ks := make([]float64, n_states)
	for k, node := range nodes {
		c_ks[k], _ = rc_params.Get(capacitance_label(node))
	}

	a_c := mat.NewDense(n_states, n_states, nil)
	b_c := mat.NewDense(n_states, n_inputs, nil)

	// 熱取得の入力
	for k := 0; k < n_states; k++ {
		if c_ks[k] == 0 {
			continue
		}
		b_c.Set(k, n_bound+k, 1.0/c_ks[k])
	}

	rs, err := rc_params.resistances()
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		if rc_params.is_inert(r.a) || rc_params.is_inert(r.b) {
			continue
		}
		g := 1.0 / r.r

		ka, a_is_node := node_idx[r.a]
		kb, b_is_node := node_idx[r.b]
		switch {
		case a_is_node && b_is_node:
			_stamp_node_node(a_c, c_ks, ka, kb, g)
		case a_is_node:
			_stamp_node_boundary(a_c, b_c, c_ks, ka, bound_idx[r.b], g)
		case b_is_node:
			_stamp_node_boundary(a_c, b_c, c_ks, kb, bound_idx[r.a], g)
		default:
			return nil, fmt.Errorf("%w: `%s` connects two boundaries", ErrInvalidRCParameter, r.label)
		}
	}

	a_d, b_d := _discretize(a_c, b_c, time_res)

	return &RCModel{
		n_states:    n_states,
		n_inputs:    n_inputs,
		state_names: state_names,
		input_names: input_names,
		state_idx:   state_idx,
		input_idx:   input_idx,
		time_res:    time_res,
		a_c:         a_c,
		b_c:         b_c,
		a_d:         a_d,
		b_d:         b_d,
		_x_next:     mat.NewVecDense(n_states, nil),
		_bu:         mat.NewVecDense(n_states, nil),
	}, nil
}

// ノード間の熱コンダクタンス g, W/K
func _stamp_node_node(a_c *mat.Dense, c_ks []float64, ka int, kb int, g float64) {
	a_c.Set(ka, ka, a_c.At(ka, ka)-g/c_ks[ka])
	a_c.Set(ka, kb, a_c.At(ka, kb)+g/c_ks[ka])
	a_c.Set(kb, kb, a_c.At(kb, kb)-g/c_ks[kb])
	a_c.Set(kb, ka, a_c.At(kb, ka)+g/c_ks[kb])
}

// ノードと境界の間の熱コンダクタンス g, W/K
func _stamp_node_boundary(a_c *mat.Dense, b_c *mat.Dense, c_ks []float64, k int, j int, g float64) {
	a_c.Set(k, k, a_c.At(k, k)-g/c_ks[k])
	b_c.Set(k, j, b_c.At(k, j)+g/c_ks[k])
}

/*
0 次ホールドで離散化する。

	exp([[A, B], [0, 0]] dt) = [[Ad, Bd], [0, I]]
*/
func _discretize(a_c *mat.Dense, b_c *mat.Dense, time_res float64) (*mat.Dense, *mat.Dense) {
	n, m := b_c.Dims()

	aug := mat.NewDense(n+m, n+m, nil)
	aug.Slice(0, n, 0, n).(*mat.Dense).Scale(time_res, a_c)
	aug.Slice(0, n, n, n+m).(*mat.Dense).Scale(time_res, b_c)

	var e mat.Dense
	e.Exp(aug)

	a_d := mat.DenseCopyOf(e.Slice(0, n, 0, n))
	b_d := mat.DenseCopyOf(e.Slice(0, n, n, n+m))
	return a_d, b_d
}

/*
1 ステップ進める。

	Args:
	    states: ステップ n の状態量, [k]
	    inputs: ステップ n から n+1 の入力, [b + k]

	Returns:
	    ステップ n+1 の状態量, [k]
*/
func (m *RCModel) Step(states *mat.VecDense, inputs *mat.VecDense) (*mat.VecDense, error) {
	if states.Len() != m.n_states {
		return nil, fmt.Errorf("%w: %d states, want %d", ErrDimensionMismatch, states.Len(), m.n_states)
	}
	if inputs.Len() != m.n_inputs {
		return nil, fmt.Errorf("%w: %d inputs, want %d", ErrDimensionMismatch, inputs.Len(), m.n_inputs)
	}

	m._x_next.MulVec(m.a_d, states)
	m._bu.MulVec(m.b_d, inputs)
	m._x_next.AddVec(m._x_next, m._bu)

	return mat.VecDenseCopyOf(m._x_next), nil
}

func (m *RCModel) StateIndex(name string) (int, error) {
	k, ok := m.state_idx[name]
	if !ok {
		return 0, fmt.Errorf("%w: state `%s`", ErrUnknownName, name)
	}
	return k, nil
}

func (m *RCModel) InputIndex(name string) (int, error) {
	j, ok := m.input_idx[name]
	if !ok {
		return 0, fmt.Errorf("%w: input `%s`", ErrUnknownName, name)
	}
	return j, nil
}

func (m *RCModel) StateNames() []string {
	return append([]string(nil), m.state_names...)
}

func (m *RCModel) InputNames() []string {
	return append([]string(nil), m.input_names...)
}

func (m *RCModel) NStates() int { return m.n_states }
func (m *RCModel) NInputs() int { return m.n_inputs }
