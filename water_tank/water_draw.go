package water_tank

// **** 給湯による熱移動 ****

/*
給湯によるノードへの熱取得を計算する。

	Returns:
	    状態量 k への熱取得, W, [k]

	Notes:
	    押し出し流れとし、水ノード i には下のノード i+1 の水が、最下部には給水が流入する。
	    水ノード以外（PCM など）の熱取得は 0 とする。
	    1 ステップの給湯量がノードの容量を超える場合は過小評価となる。
*/
func (m *StratifiedWaterModel) update_water_draw() []float64 {
	// 給湯量, L/min
	water_use := m.current_schedule[key_water_use]
	if water_use < 0 {
		water_use = 0
	}

	t_mains, ok := m.current_schedule[key_mains_temp]
	if !ok {
		t_mains = default_mains_temp
	}
	m.t_mains = t_mains

	// 質量流量, kg/s
	m.m_draw = water_use / seconds_per_minute * water_density_liters

	// 比熱, J/kg-K
	cp := water_cp * 1000.0

	heats_to_model := make([]float64, m.rc.NStates())
	t_water := m.water_states()
	for i, k := range m.water_idx {
		var t_from float64
		if i < m.n_nodes-1 {
			t_from = t_water[i+1]
		} else {
			t_from = t_mains
		}
		heats_to_model[k] = m.m_draw * cp * (t_from - t_water[i])
	}

	// 給湯熱量, W
	m.h_delivered = m.m_draw * cp * (t_water[0] - t_mains)

	return heats_to_model
}

const seconds_per_minute = 60.0
