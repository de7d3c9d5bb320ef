package water_tank

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// 一定の熱移動量を返す
type constantHeatTransfer struct {
	q float64
}

func (h constantHeatTransfer) HeatTransferRate(float64, float64) float64 {
	return h.q
}

func testTankParams(n_nodes int, volume float64) WaterTankParams {
	return WaterTankParams{
		Volume:             volume,
		Height:             1.2,
		NNodes:             n_nodes,
		UA:                 2.0,
		InitialTemperature: 50,
		TimeRes:            60,
		Verbosity:          6,
	}
}

func noDraw(t_zone float64) map[string]float64 {
	return map[string]float64{
		key_zone_temp:  t_zone,
		key_water_use:  0,
		key_mains_temp: 10,
	}
}

func waterRCParams(vol_fractions []float64, volume float64) *RCParameters {
	rc_params := NewRCParameters()
	for i, f := range vol_fractions {
		rc_params.Set(capacitance_label(water_node_name(i)), water_c*volume*f)
	}
	return rc_params
}

func TestAugmentRCParams_TenEqualNodes(t *testing.T) {
	vol_fractions := make([]float64, 10)
	for i := range vol_fractions {
		vol_fractions[i] = 0.1
	}
	rc_params := waterRCParams(vol_fractions, 100)

	volume, fractions, pcm_volume, err := augment_rc_params(rc_params, 100, vol_fractions, 5, 0.5)
	require.NoError(t, err)

	assert.InDelta(t, 5.0, pcm_volume, 1e-12)
	assert.InDelta(t, 95.0, volume, 1e-12)
	assert.InDelta(t, 1.0, floats.Sum(fractions), 1e-12)
	assert.InDelta(t, 0.05/0.95, fractions[5], 1e-12)
	assert.InDelta(t, 0.1/0.95, fractions[0], 1e-12)

	// 入力の体積比は変更しない
	assert.Equal(t, 0.1, vol_fractions[5])

	c_pcm, ok := rc_params.Get("C_PCM")
	require.True(t, ok)
	assert.InDelta(t, 8588.0, c_pcm, 1e-9)

	r_pcm, ok := rc_params.Get("R_PCM_WH6")
	require.True(t, ok)
	assert.InDelta(t, 17.857, r_pcm, 1e-3)

	c_host, _ := rc_params.Get("C_WH6")
	assert.InDelta(t, water_c*100*0.1*0.5, c_host, 1e-9)

	// 他の水ノードはそのまま
	c_other, _ := rc_params.Get("C_WH5")
	assert.InDelta(t, water_c*100*0.1, c_other, 1e-9)
}

func TestAugmentRCParams_Invalid(t *testing.T) {
	vol_fractions := []float64{0.5, 0.5}

	for _, node := range []int{-1, 2, 10} {
		_, _, _, err := augment_rc_params(waterRCParams(vol_fractions, 100), 100, vol_fractions, node, 0.5)
		assert.ErrorIs(t, err, ErrInvalidWaterNode, "node %d", node)
	}
	for _, f := range []float64{-0.1, 1.0, 1.5, math.NaN()} {
		rc_params := waterRCParams(vol_fractions, 100)
		_, _, _, err := augment_rc_params(rc_params, 100, vol_fractions, 0, f)
		assert.ErrorIs(t, err, ErrInvalidVolFraction, "fraction %v", f)
		assert.False(t, rc_params.Has("C_PCM"), "nothing is added on error")
	}
}

func TestNewTankWithPCM(t *testing.T) {
	tank, err := NewTankWithPCM(testTankParams(10, 100), PCMParams{WaterNode: 5, VolFraction: 0.5}, constantHeatTransfer{})
	require.NoError(t, err)

	assert.InDelta(t, 5.0, tank.PCMVolume(), 1e-12)
	assert.InDelta(t, 95.0, tank.Volume(), 1e-12)
	assert.InDelta(t, 1.0, floats.Sum(tank.VolFractions()), 1e-12)

	rc_params := tank.RCParameters()
	c_pcm, _ := rc_params.Get("C_PCM")
	assert.InDelta(t, 8588.0, c_pcm, 1e-9)
	r_pcm, _ := rc_params.Get("R_PCM_WH6")
	assert.InDelta(t, 5.0/0.28, r_pcm, 1e-12)

	// PCM ノードは最後の状態量・入力
	states := tank.StateNames()
	inputs := tank.InputNames()
	assert.Equal(t, "T_PCM", states[len(states)-1])
	assert.Equal(t, "H_PCM", inputs[len(inputs)-1])
	assert.Equal(t, "T_AMB", inputs[0])
	assert.Len(t, states, 11)
	assert.Len(t, inputs, 12)
}

func TestNewTankWithPCM_ZeroFractionIsNoOp(t *testing.T) {
	base, err := NewStratifiedWaterModel(testTankParams(12, 189.3))
	require.NoError(t, err)
	tank, err := NewTankWithPCM(testTankParams(12, 189.3), PCMParams{WaterNode: 5, VolFraction: 0}, constantHeatTransfer{})
	require.NoError(t, err)

	base_params := base.RCParameters()
	tank_params := tank.RCParameters()
	for _, label := range base_params.Labels() {
		want, _ := base_params.Get(label)
		got, ok := tank_params.Get(label)
		require.True(t, ok, label)
		assert.Equal(t, want, got, label)
	}
	assert.InDeltaSlice(t, base.VolFractions(), tank.VolFractions(), 1e-15)
	assert.Equal(t, base.Volume(), tank.Volume())
	assert.Zero(t, tank.PCMVolume())
}

func TestNewTankWithPCM_Invalid(t *testing.T) {
	_, err := NewTankWithPCM(testTankParams(12, 189.3), PCMParams{WaterNode: 12, VolFraction: 0.5}, constantHeatTransfer{})
	assert.ErrorIs(t, err, ErrInvalidWaterNode)

	_, err = NewTankWithPCM(testTankParams(12, 189.3), PCMParams{WaterNode: 5, VolFraction: 1}, constantHeatTransfer{})
	assert.ErrorIs(t, err, ErrInvalidVolFraction)
}

func TestTankWithPCM_UnimplementedHeatTransferPanics(t *testing.T) {
	tank, err := NewTankWithPCM(testTankParams(12, 189.3), PCMParams{WaterNode: 5, VolFraction: 0.5}, nil)
	require.NoError(t, err)

	assert.PanicsWithValue(t, ErrPCMHeatTransferNotImplemented, func() {
		_ = tank.UpdateInputs(noDraw(20))
	})
}

func TestTankWithPCM_UpdateInputs(t *testing.T) {
	tank, err := NewTankWithPCM(testTankParams(12, 189.3), PCMParams{WaterNode: 5, VolFraction: 0.5}, constantHeatTransfer{q: 150})
	require.NoError(t, err)
	inputs_init := tank.InitialInputs()

	require.NoError(t, tank.UpdateInputs(noDraw(18)))
	inputs := tank.Inputs()

	h_host, err := tank.rc.InputIndex("H_WH6")
	require.NoError(t, err)
	h_pcm, err := tank.rc.InputIndex("H_PCM")
	require.NoError(t, err)

	assert.Equal(t, 18.0, inputs[0])
	assert.Equal(t, 150.0, inputs[h_host])
	assert.Equal(t, -150.0, inputs[h_pcm])
	assert.Zero(t, inputs[h_host]+inputs[h_pcm])
	for j, v := range inputs {
		if j != 0 && j != h_host && j != h_pcm {
			assert.Zero(t, v, tank.InputNames()[j])
		}
	}

	// 作成時の入力は更新しない
	assert.Equal(t, inputs_init, tank.InitialInputs())
}

func TestTankWithPCM_MissingZoneTemperature(t *testing.T) {
	tank, err := NewTankWithPCM(testTankParams(12, 189.3), PCMParams{WaterNode: 5, VolFraction: 0.5}, constantHeatTransfer{})
	require.NoError(t, err)

	err = tank.Update(map[string]float64{key_water_use: 1})
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestTankWithPCM_GenerateResults(t *testing.T) {
	pcm_keys := []string{
		"Hot Water Average Temperature (C)",
		"Hot Water Maximum Temperature (C)",
		"Hot Water Minimum Temperature (C)",
		"Water Tank PCM Temperature (C)",
		"Water Tank PCM Heat Injected (W)",
	}

	results_at := func(verbosity int) map[string]float64 {
		p := testTankParams(12, 189.3)
		p.Verbosity = verbosity
		tank, err := NewTankWithPCM(p, PCMParams{WaterNode: 5, VolFraction: 0.5}, constantHeatTransfer{q: 40})
		require.NoError(t, err)
		require.NoError(t, tank.Update(noDraw(20)))
		return tank.GenerateResults()
	}

	below := results_at(5)
	above := results_at(6)

	for _, key := range pcm_keys {
		assert.NotContains(t, below, key)
		assert.Contains(t, above, key)
	}
	assert.Len(t, above, len(below)+len(pcm_keys))

	assert.Equal(t, 40.0, above["Water Tank PCM Heat Injected (W)"])
	assert.GreaterOrEqual(t, above["Hot Water Maximum Temperature (C)"], above["Hot Water Average Temperature (C)"])
	assert.LessOrEqual(t, above["Hot Water Minimum Temperature (C)"], above["Hot Water Average Temperature (C)"])
	assert.Equal(t, above["T_PCM (C)"], above["Water Tank PCM Temperature (C)"])
}

func TestTankWithPCM_WaterOnlyReductions(t *testing.T) {
	tank, err := NewTankWithPCM(testTankParams(4, 100), PCMParams{WaterNode: 1, VolFraction: 0.5}, constantHeatTransfer{})
	require.NoError(t, err)

	// PCM を水より高温にしても最高温度には含まれない
	require.NoError(t, tank.SetStates([]float64{60, 50, 40, 30, 90}))
	results := tank.GenerateResults()

	assert.Equal(t, 60.0, results["Hot Water Maximum Temperature (C)"])
	assert.Equal(t, 30.0, results["Hot Water Minimum Temperature (C)"])
	assert.Equal(t, 90.0, results["Water Tank PCM Temperature (C)"])
	assert.InDelta(t, floats.Dot([]float64{60, 50, 40, 30}, tank.VolFractions()), results["Hot Water Average Temperature (C)"], 1e-12)
}

func TestTankWithPCM_PCMExchangesHeatWithHost(t *testing.T) {
	heat_xfer, err := NewResistancePCMHeatTransfer(0.5)
	require.NoError(t, err)
	tank, err := NewTankWithPCM(testTankParams(12, 189.3), PCMParams{WaterNode: 5, VolFraction: 0.5}, heat_xfer)
	require.NoError(t, err)

	states := tank.States()
	states[len(states)-1] = 70
	require.NoError(t, tank.SetStates(states))

	require.NoError(t, tank.Update(noDraw(50)))
	assert.Greater(t, tank.PCMHeatToWater(), 0.0)

	after := tank.States()
	t_host, _ := tank.rc.StateIndex("T_WH6")
	assert.Greater(t, after[t_host], 50.0)
	assert.Less(t, after[len(after)-1], 70.0)
}

func TestTankWithPCMProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("vol fractions sum to 1 after augmentation", prop.ForAll(
		func(n_nodes int, node int, f float64) bool {
			tank, err := NewTankWithPCM(testTankParams(n_nodes, 150), PCMParams{WaterNode: node % n_nodes, VolFraction: f}, constantHeatTransfer{})
			if err != nil {
				return false
			}
			return math.Abs(floats.Sum(tank.VolFractions())-1) < 1e-9
		},
		gen.IntRange(1, 20),
		gen.IntRange(0, 19),
		gen.Float64Range(0, 0.999),
	))

	properties.Property("host capacitance decreases with pcm fraction and stays positive", prop.ForAll(
		func(f1 float64, f2 float64) bool {
			lo, hi := math.Min(f1, f2), math.Max(f1, f2)
			c_at := func(f float64) float64 {
				tank, err := NewTankWithPCM(testTankParams(12, 189.3), PCMParams{WaterNode: 5, VolFraction: f}, constantHeatTransfer{})
				if err != nil {
					return math.NaN()
				}
				c, _ := tank.RCParameters().Get("C_WH6")
				return c
			}
			c_lo, c_hi := c_at(lo), c_at(hi)
			if c_hi <= 0 {
				return false
			}
			if lo == hi {
				return c_lo == c_hi
			}
			return c_hi < c_lo
		},
		gen.Float64Range(0, 0.999),
		gen.Float64Range(0, 0.999),
	))

	properties.Property("pcm flux is conserved between host and pcm inputs", prop.ForAll(
		func(q float64) bool {
			tank, err := NewTankWithPCM(testTankParams(12, 189.3), PCMParams{WaterNode: 5, VolFraction: 0.5}, constantHeatTransfer{q: q})
			if err != nil {
				return false
			}
			if err := tank.UpdateInputs(noDraw(20)); err != nil {
				return false
			}
			inputs := tank.Inputs()
			return inputs[tank.h_host_idx]+inputs[tank.h_pcm_idx] == 0
		},
		gen.Float64Range(-1e5, 1e5),
	))

	properties.TestingRun(t)
}

func TestTankWithPCM_ZeroFractionMatchesBaseTank(t *testing.T) {
	base, err := NewStratifiedWaterModel(testTankParams(12, 189.3))
	require.NoError(t, err)
	heat_xfer, err := NewResistancePCMHeatTransfer(0.5)
	require.NoError(t, err)
	tank, err := NewTankWithPCM(testTankParams(12, 189.3), PCMParams{WaterNode: 5, VolFraction: 0}, heat_xfer)
	require.NoError(t, err)

	// 体積 0 の PCM が水と異なる温度でも熱は移動しない
	states := tank.States()
	states[len(states)-1] = 70
	require.NoError(t, tank.SetStates(states))

	schedule := map[string]float64{
		key_zone_temp:  20,
		key_water_use:  5,
		key_mains_temp: 10,
	}
	for n := 0; n < 120; n++ {
		require.NoError(t, base.Update(schedule))
		require.NoError(t, tank.Update(schedule))
		require.Zero(t, tank.PCMHeatToWater())
	}

	assert.InDeltaSlice(t, base.water_states(), tank.water_states(), 1e-9)
	assert.InDelta(t, base.GenerateResults()["Hot Water Delivered (W)"], tank.GenerateResults()["Hot Water Delivered (W)"], 1e-6)
}

func TestTankWithPCM_ZeroFractionSkipsHeatTransfer(t *testing.T) {
	tank, err := NewTankWithPCM(testTankParams(12, 189.3), PCMParams{WaterNode: 5, VolFraction: 0}, nil)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		require.NoError(t, tank.Update(noDraw(20)))
	})
	inputs := tank.Inputs()
	assert.Zero(t, inputs[tank.h_host_idx])
	assert.Zero(t, inputs[tank.h_pcm_idx])
}

func TestTankWithPCM_NetworkAndCapabilityPathsAdd(t *testing.T) {
	host_after := func(q float64) float64 {
		tank, err := NewTankWithPCM(testTankParams(12, 189.3), PCMParams{WaterNode: 5, VolFraction: 0.5}, constantHeatTransfer{q: q})
		require.NoError(t, err)
		states := tank.States()
		states[len(states)-1] = 70
		require.NoError(t, tank.SetStates(states))
		require.NoError(t, tank.Update(noDraw(50)))
		return tank.States()[tank.t_host_idx]
	}

	// R_PCM_WH6 による伝導は熱移動モデルとは別に働く
	network_only := host_after(0)
	assert.Greater(t, network_only, 50.0)
	assert.Greater(t, host_after(40), network_only)
}
