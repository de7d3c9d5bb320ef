package water_tank

// **** PCM を1ノード持つ成層型貯湯タンク ****
// 既定では 12 の水ノードと 1 の PCM ノードからなる 13 ノードのタンクとなる。

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// PCM ノードの名前
const pcm_node_name = "PCM"

// PCM に関する結果を出力する冗長度
const verbosity_pcm_results = 6

// PCM に関する結果の項目名
const (
	result_average_temp = "Hot Water Average Temperature (C)"
	result_max_temp     = "Hot Water Maximum Temperature (C)"
	result_min_temp     = "Hot Water Minimum Temperature (C)"
	result_pcm_temp     = "Water Tank PCM Temperature (C)"
	result_pcm_heat     = "Water Tank PCM Heat Injected (W)"
)

type PCMParams struct {
	WaterNode   int     // PCM が接する水ノードの番号（0 始まり）
	VolFraction float64 // 水ノードの体積のうち PCM に置き換える割合, -, [0, 1)
}

// Validate は n_nodes 個の水ノードを持つタンクに対して PCM の諸元を確認する。
func (p PCMParams) Validate(n_nodes int) error {
	if p.WaterNode < 0 || p.WaterNode >= n_nodes {
		return fmt.Errorf("%w: %d (n_nodes = %d)", ErrInvalidWaterNode, p.WaterNode, n_nodes)
	}
	if math.IsNaN(p.VolFraction) || p.VolFraction < 0 || p.VolFraction >= 1 {
		return fmt.Errorf("%w: %v", ErrInvalidVolFraction, p.VolFraction)
	}
	return nil
}

type TankWithPCM struct {
	*StratifiedWaterModel

	pcm_water_node   int     // PCM が接する水ノードの番号
	pcm_vol_fraction float64 // PCM に置き換える体積の割合, -
	pcm_volume       float64 // PCM の容積, L

	t_pcm_idx  int // 状態量 T_PCM の番号
	t_host_idx int // PCM が接する水ノードの状態量の番号
	h_pcm_idx  int // 入力 H_PCM の番号
	h_host_idx int // PCM が接する水ノードの入力 H_WHn の番号

	heat_xfer         PCMHeatTransfer
	pcm_heat_to_water float64 // PCM から水への熱移動量, W
}

/*
PCM 付き貯湯タンクを作成する。

	Args:
	    p: タンクの諸元
	    pcm: PCM の諸元
	    heat_xfer: PCM と水の間の熱移動モデル（nil の場合は呼び出し時に panic する）
*/
func NewTankWithPCM(p WaterTankParams, pcm PCMParams, heat_xfer PCMHeatTransfer) (*TankWithPCM, error) {
	if err := pcm.Validate(p.NNodes); err != nil {
		return nil, err
	}

	base, err := new_stratified_geometry(p)
	if err != nil {
		return nil, err
	}

	if heat_xfer == nil {
		heat_xfer = UnimplementedPCMHeatTransfer{}
	}

	t := &TankWithPCM{
		StratifiedWaterModel: base,
		pcm_water_node:       pcm.WaterNode,
		pcm_vol_fraction:     pcm.VolFraction,
		heat_xfer:            heat_xfer,
	}

	rc_params, err := t.load_rc_data()
	if err != nil {
		return nil, err
	}
	if err := base.initialize(rc_params); err != nil {
		return nil, err
	}

	host := water_node_name(t.pcm_water_node)
	if t.t_pcm_idx, err = base.rc.StateIndex("T_" + pcm_node_name); err != nil {
		return nil, err
	}
	if t.t_host_idx, err = base.rc.StateIndex("T_" + host); err != nil {
		return nil, err
	}
	if t.h_pcm_idx, err = base.rc.InputIndex("H_" + pcm_node_name); err != nil {
		return nil, err
	}
	if t.h_host_idx, err = base.rc.InputIndex("H_" + host); err != nil {
		return nil, err
	}

	return t, nil
}

// load_rc_data は水ノードの RC 網に PCM ノードを加える。
func (t *TankWithPCM) load_rc_data() (*RCParameters, error) {
	rc_params := t.StratifiedWaterModel.load_rc_data()

	volume, vol_fractions, pcm_volume, err := augment_rc_params(
		rc_params,
		t.volume,
		t.vol_fractions,
		t.pcm_water_node,
		t.pcm_vol_fraction,
	)
	if err != nil {
		return nil, err
	}

	t.volume = volume
	t.vol_fractions = vol_fractions
	t.pcm_volume = pcm_volume

	log.Debugf("pcm: volume %.3f L, C_PCM %.1f J/K", pcm_volume, GetPhaseProperties(PhaseSolid).VolumetricHeatCapacity*pcm_volume)
	return rc_params, nil
}

/*
RC 網に PCM ノードを追加する。

	Args:
	    rc_params: 水ノードの RC 網（PCM の項目が追加され、PCM が接する水ノードの熱容量が減じられる）
	    volume: 水の容量, L
	    vol_fractions: 水ノードの体積比, -, [i]（変更しない）
	    pcm_water_node: PCM が接する水ノードの番号
	    pcm_vol_fraction: 水ノードの体積のうち PCM に置き換える割合, -

	Returns:
	    PCM を除いた水の容量, L
	    再正規化した水ノードの体積比, -, [i]
	    PCM の容積, L

	Notes:
	    熱容量・熱抵抗は固相の物性値で求める。
*/
func augment_rc_params(
	rc_params *RCParameters,
	volume float64,
	vol_fractions []float64,
	pcm_water_node int,
	pcm_vol_fraction float64,
) (float64, []float64, float64, error) {
	if err := (PCMParams{WaterNode: pcm_water_node, VolFraction: pcm_vol_fraction}).Validate(len(vol_fractions)); err != nil {
		return 0, nil, 0, err
	}

	solid := GetPhaseProperties(PhaseSolid)
	host := water_node_name(pcm_water_node)

	// PCM の容積, L
	pcm_volume := volume * vol_fractions[pcm_water_node] * pcm_vol_fraction

	// PCM の熱容量, J/K
	rc_params.Set(capacitance_label(pcm_node_name), solid.VolumetricHeatCapacity*pcm_volume)

	// 水の容量と体積比から PCM の分を除く
	fractions := append([]float64(nil), vol_fractions...)
	fractions[pcm_water_node] *= 1 - pcm_vol_fraction
	floats.Scale(1.0/floats.Sum(fractions), fractions)

	// 水ノードの熱容量を減じる
	if err := rc_params.Scale(capacitance_label(host), 1-pcm_vol_fraction); err != nil {
		return 0, nil, 0, err
	}

	// PCM と水の間の熱抵抗, K/W
	rc_params.Set(resistance_label(pcm_node_name, host), pcm_volume/solid.Conductivity)

	return volume - pcm_volume, fractions, pcm_volume, nil
}

/*
ステップの入力を更新する。

	[周囲空気温度, ノードへの熱取得...]

	Notes:
	    inputs_init は更新しない。
	    PCM から水への熱移動量を水ノードに加え、同じ値を PCM ノードから引く。
	    PCM の体積が 0 の場合は熱移動モデルを呼ばず、熱移動量を 0 とする。
*/
func (t *TankWithPCM) UpdateInputs(schedule map[string]float64) error {
	if err := t.set_schedule(schedule); err != nil {
		return err
	}

	// 給湯による熱取得
	heats_to_model := t.update_water_draw()

	// PCM による熱取得（体積 0 の PCM は熱を授受しない）
	t.pcm_heat_to_water = 0
	if t.pcm_volume > 0 {
		t.pcm_heat_to_water = t.heat_xfer.HeatTransferRate(
			t.states.AtVec(t.t_host_idx),
			t.states.AtVec(t.t_pcm_idx),
		)
	}
	n_bound := len(t.boundaries)
	heats_to_model[t.h_host_idx-n_bound] += t.pcm_heat_to_water
	heats_to_model[t.h_pcm_idx-n_bound] -= t.pcm_heat_to_water

	t.compose_inputs(heats_to_model)
	return nil
}

func (t *TankWithPCM) Update(schedule map[string]float64) error {
	if err := t.UpdateInputs(schedule); err != nil {
		return err
	}
	return t.step()
}

/*
結果を作成する。

	Notes:
	    冗長度が 6 以上の場合のみ、水ノードの平均・最高・最低温度（PCM を除く）、
	    PCM 温度、PCM からの熱取得を加える。
*/
func (t *TankWithPCM) GenerateResults() map[string]float64 {
	results := t.StratifiedWaterModel.GenerateResults()

	if t.verbosity >= verbosity_pcm_results {
		water_states := t.water_states()
		results[result_average_temp] = floats.Dot(water_states, t.vol_fractions)
		results[result_max_temp] = floats.Max(water_states)
		results[result_min_temp] = floats.Min(water_states)
		results[result_pcm_temp] = t.states.AtVec(t.t_pcm_idx)
		results[result_pcm_heat] = t.pcm_heat_to_water
	}
	return results
}

func (t *TankWithPCM) PCMVolume() float64 {
	return t.pcm_volume
}

func (t *TankWithPCM) PCMHeatToWater() float64 {
	return t.pcm_heat_to_water
}
