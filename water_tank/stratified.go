package water_tank

// **** 成層型貯湯タンク ****
// ノード 1 (WH1) を最上部とし、下に向かって番号を振る。

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// スケジュールの項目名
const (
	key_zone_temp  = "Zone Temperature (C)"
	key_water_use  = "Water Use (L/min)"
	key_mains_temp = "Mains Temperature (C)"
)

// 境界（周囲空気）
const boundary_ambient = "AMB"

// 詳細な結果を出力する冗長度
const verbosity_node_temps = 4

type WaterTankParams struct {
	Volume             float64   // タンク容量, L
	Height             float64   // タンク高さ, m
	NNodes             int       // 水ノード数
	VolFractions       []float64 // ノードの体積比（省略時は等分割）, [i]
	UA                 float64   // タンク外皮の熱損失係数, W/K
	InitialTemperature float64   // 初期水温, degree C
	TimeRes            float64   // 時間間隔, s
	Verbosity          int       // 結果出力の冗長度
}

type StratifiedWaterModel struct {
	volume        float64   // 水の容量, L
	height        float64   // タンク高さ, m
	n_nodes       int       // 水ノード数
	vol_fractions []float64 // 水ノード i の体積比, -, [i]
	ua            float64   // 熱損失係数, W/K
	t_init        float64   // 初期温度, degree C
	time_res      float64   // 時間間隔, s
	verbosity     int
	boundaries    []string // 境界の名前

	rc_params *RCParameters // 作成時の RC 網
	rc        *RCModel
	water_idx []int // 水ノード i の状態量の番号, [i]

	states      *mat.VecDense // 現在の状態量, degree C, [k]
	inputs      *mat.VecDense // 現在のステップの入力, [b + k]
	inputs_init *mat.VecDense // 作成時の入力（以降は更新しない）, [b + k]

	current_schedule map[string]float64 // 現在のステップのスケジュール
	t_zone           float64            // 周囲空気温度, degree C
	m_draw           float64            // 給湯の質量流量, kg/s
	t_mains          float64            // 給水温度, degree C
	h_delivered      float64            // 給湯熱量, W
}

func water_node_name(i int) string {
	return fmt.Sprintf("WH%d", i+1)
}

/*
タンクの形状を設定する（RC 網はまだ作らない）。

	Args:
	    p: タンクの諸元

	Returns:
	    RC 網を持たない成層型貯湯タンク
*/
func new_stratified_geometry(p WaterTankParams) (*StratifiedWaterModel, error) {
	if p.NNodes < 1 {
		return nil, fmt.Errorf("%w: n_nodes = %d", ErrInvalidConfig, p.NNodes)
	}
	if p.Volume <= 0 || p.Height <= 0 || p.UA <= 0 || p.TimeRes <= 0 {
		return nil, fmt.Errorf("%w: volume, height, ua and time_res must be positive", ErrInvalidConfig)
	}

	vol_fractions := make([]float64, p.NNodes)
	if p.VolFractions == nil {
		for i := range vol_fractions {
			vol_fractions[i] = 1.0 / float64(p.NNodes)
		}
	} else {
		if len(p.VolFractions) != p.NNodes {
			return nil, fmt.Errorf("%w: %d vol_fractions for %d nodes", ErrInvalidConfig, len(p.VolFractions), p.NNodes)
		}
		for _, f := range p.VolFractions {
			if !(f > 0) {
				return nil, fmt.Errorf("%w: vol_fractions must be positive", ErrInvalidConfig)
			}
		}
		copy(vol_fractions, p.VolFractions)
		floats.Scale(1.0/floats.Sum(vol_fractions), vol_fractions)
	}

	return &StratifiedWaterModel{
		volume:        p.Volume,
		height:        p.Height,
		n_nodes:       p.NNodes,
		vol_fractions: vol_fractions,
		ua:            p.UA,
		t_init:        p.InitialTemperature,
		time_res:      p.TimeRes,
		verbosity:     p.Verbosity,
		boundaries:    []string{boundary_ambient},
		t_zone:        p.InitialTemperature,
		t_mains:       default_mains_temp,
	}, nil
}

func NewStratifiedWaterModel(p WaterTankParams) (*StratifiedWaterModel, error) {
	m, err := new_stratified_geometry(p)
	if err != nil {
		return nil, err
	}
	if err := m.initialize(m.load_rc_data()); err != nil {
		return nil, err
	}
	return m, nil
}

/*
水ノードの RC 網を作成する。

	Returns:
	    C_WHi: 水ノード i の熱容量, J/K
	    R_WHi_WHi+1: 上下の水ノード間の熱抵抗, K/W
	    R_WHi_AMB: 水ノード i と周囲空気の間の熱抵抗, K/W
*/
func (m *StratifiedWaterModel) load_rc_data() *RCParameters {
	rc_params := NewRCParameters()

	for i := 0; i < m.n_nodes; i++ {
		rc_params.Set(capacitance_label(water_node_name(i)), water_c*m.volume*m.vol_fractions[i])
	}

	// タンク断面積, m2
	a_cross := m.volume / liters_per_m3 / m.height

	for i := 0; i < m.n_nodes-1; i++ {
		// ノード中心間の距離, m
		dz := m.height * (m.vol_fractions[i] + m.vol_fractions[i+1]) / 2.0
		rc_params.Set(resistance_label(water_node_name(i), water_node_name(i+1)), dz/(water_conductivity*a_cross))
	}

	// 外皮面積の配分（側面は体積比、天面は最上部、底面は最下部のノード）
	r_tank := math.Sqrt(a_cross / math.Pi)
	a_side := 2.0 * math.Pi * r_tank * m.height
	a_total := a_side + 2.0*a_cross
	for i := 0; i < m.n_nodes; i++ {
		a_i := a_side * m.vol_fractions[i]
		if i == 0 {
			a_i += a_cross
		}
		if i == m.n_nodes-1 {
			a_i += a_cross
		}
		rc_params.Set(resistance_label(water_node_name(i), boundary_ambient), 1.0/(m.ua*a_i/a_total))
	}

	return rc_params
}

// initialize は RC 網から状態空間モデルを作り、状態量と入力の初期値を与える。
func (m *StratifiedWaterModel) initialize(rc_params *RCParameters) error {
	rc, err := NewRCModel(rc_params, m.boundaries, m.time_res)
	if err != nil {
		return err
	}

	water_idx := make([]int, m.n_nodes)
	for i := range water_idx {
		k, err := rc.StateIndex("T_" + water_node_name(i))
		if err != nil {
			return err
		}
		water_idx[i] = k
	}

	states := mat.NewVecDense(rc.NStates(), nil)
	for k := 0; k < rc.NStates(); k++ {
		states.SetVec(k, m.t_init)
	}

	inputs_init := mat.NewVecDense(rc.NInputs(), nil)
	j, err := rc.InputIndex("T_" + boundary_ambient)
	if err != nil {
		return err
	}
	inputs_init.SetVec(j, m.t_zone)

	m.rc_params = rc_params.Copy()
	m.rc = rc
	m.water_idx = water_idx
	m.states = states
	m.inputs_init = inputs_init
	m.inputs = mat.VecDenseCopyOf(inputs_init)

	log.Debugf("water tank: %d states, %d inputs", rc.NStates(), rc.NInputs())
	return nil
}

// 周囲空気温度をスケジュールから取得する。
func (m *StratifiedWaterModel) set_schedule(schedule map[string]float64) error {
	t_zone, ok := schedule[key_zone_temp]
	if !ok {
		return fmt.Errorf("%w: `%s` is not in the schedule", ErrInvalidSchedule, key_zone_temp)
	}
	m.current_schedule = schedule
	m.t_zone = t_zone
	return nil
}

// compose_inputs は [周囲空気温度, ノードへの熱取得...] を入力とする。
func (m *StratifiedWaterModel) compose_inputs(heats_to_model []float64) {
	n_bound := len(m.boundaries)
	inputs := mat.NewVecDense(n_bound+len(heats_to_model), nil)
	inputs.SetVec(0, m.t_zone)
	for k, h := range heats_to_model {
		inputs.SetVec(n_bound+k, h)
	}
	m.inputs = inputs
}

// UpdateInputs はステップの入力を更新する。inputs_init は更新しない。
func (m *StratifiedWaterModel) UpdateInputs(schedule map[string]float64) error {
	if err := m.set_schedule(schedule); err != nil {
		return err
	}
	m.compose_inputs(m.update_water_draw())
	return nil
}

// step は現在の入力で状態量を1ステップ進める。
func (m *StratifiedWaterModel) step() error {
	states, err := m.rc.Step(m.states, m.inputs)
	if err != nil {
		return err
	}
	m.states = states
	return nil
}

func (m *StratifiedWaterModel) Update(schedule map[string]float64) error {
	if err := m.UpdateInputs(schedule); err != nil {
		return err
	}
	return m.step()
}

// water_states は水ノードの温度を上から順に返す, degree C, [i]
func (m *StratifiedWaterModel) water_states() []float64 {
	t := make([]float64, m.n_nodes)
	for i, k := range m.water_idx {
		t[i] = m.states.AtVec(k)
	}
	return t
}

/*
結果を作成する。

	Returns:
	    項目名と値
	    冗長度が 4 以上の場合はノードごとの温度を含む。
*/
func (m *StratifiedWaterModel) GenerateResults() map[string]float64 {
	results := map[string]float64{
		"Hot Water Outlet Temperature (C)": m.states.AtVec(m.water_idx[0]),
		"Hot Water Delivered (W)":          m.h_delivered,
	}

	if m.verbosity >= verbosity_node_temps {
		for k, name := range m.rc.StateNames() {
			results[name+" (C)"] = m.states.AtVec(k)
		}
	}
	return results
}

// RCParameters は作成時の RC 網のコピーを返す。
func (m *StratifiedWaterModel) RCParameters() *RCParameters {
	return m.rc_params.Copy()
}

func (m *StratifiedWaterModel) Volume() float64 {
	return m.volume
}

// VolFractions は体積比のコピーを返す。
func (m *StratifiedWaterModel) VolFractions() []float64 {
	return append([]float64(nil), m.vol_fractions...)
}

func (m *StratifiedWaterModel) States() []float64 {
	return append([]float64(nil), m.states.RawVector().Data...)
}

func (m *StratifiedWaterModel) Inputs() []float64 {
	return append([]float64(nil), m.inputs.RawVector().Data...)
}

func (m *StratifiedWaterModel) InitialInputs() []float64 {
	return append([]float64(nil), m.inputs_init.RawVector().Data...)
}

func (m *StratifiedWaterModel) StateNames() []string {
	return m.rc.StateNames()
}

func (m *StratifiedWaterModel) InputNames() []string {
	return m.rc.InputNames()
}

func (m *StratifiedWaterModel) TimeRes() float64 {
	return m.time_res
}

// SetStates は状態量を与える（初期条件の上書き用）。
func (m *StratifiedWaterModel) SetStates(states []float64) error {
	if len(states) != m.rc.NStates() {
		return fmt.Errorf("%w: %d states, want %d", ErrDimensionMismatch, len(states), m.rc.NStates())
	}
	m.states = mat.NewVecDense(len(states), append([]float64(nil), states...))
	return nil
}
