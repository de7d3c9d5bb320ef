package water_tank

// **** 水・PCM の物性値 ****

import "fmt"

// 水の物性値
const (
	water_density        = 1000.0                                   // 密度, kg/m3
	water_density_liters = 1.0                                      // 密度, kg/L
	water_cp             = 4.183                                    // 比熱, kJ/kg-K
	water_conductivity   = 0.6406                                   // 熱伝導率, W/m-K
	water_c              = water_cp * water_density_liters * 1000.0 // 容積比熱, J/K-L
	default_mains_temp   = 10.0                                     // 給水温度の既定値, degree C
)

// PCM の相変化温度（固相・液相で共通）, degree C
const pcm_transition_temp = 53.0

const liters_per_m3 = 1000.0

//---------------------------------------------------------------------------------------------------//

// PCM の相
type Phase int

// PCM の相
const (
	PhaseSolid  Phase = iota // 固相
	PhaseLiquid              // 液相
)

func (p Phase) String() string {
	return [...]string{"solid", "liquid"}[p]
}

func PhaseFromString(s string) (Phase, error) {
	p, ok := map[string]Phase{
		"solid":  PhaseSolid,
		"liquid": PhaseLiquid,
	}[s]
	if !ok {
		return PhaseSolid, fmt.Errorf("%w: phase `%s`", ErrUnknownName, s)
	}
	return p, nil
}

//---------------------------------------------------------------------------------------------------//

// PCM の物性値（メーカー値）
type PhaseProperties struct {
	Density                float64 // 密度, kg/m3
	DensityLiters          float64 // 密度, kg/L
	SpecificHeat           float64 // 比熱, kJ/kg-K
	Conductivity           float64 // 熱伝導率, W/m-K
	VolumetricHeatCapacity float64 // 容積比熱, J/K-L
}

var pcm_properties = [...]PhaseProperties{
	PhaseSolid: {
		Density:                904,
		DensityLiters:          0.904,
		SpecificHeat:           1.9,
		Conductivity:           0.28,
		VolumetricHeatCapacity: 1717.6,
	},
	PhaseLiquid: {
		Density:                829,
		DensityLiters:          0.829,
		SpecificHeat:           2.2,
		Conductivity:           0.16,
		VolumetricHeatCapacity: 1823.8,
	},
}

// GetPhaseProperties は相 p の物性値のコピーを返す。
func GetPhaseProperties(p Phase) PhaseProperties {
	return pcm_properties[p]
}

// PCMTransitionTemperature は固相・液相で共通の相変化温度, degree C
func PCMTransitionTemperature() float64 {
	return pcm_transition_temp
}

// PhaseAt は温度 t における PCM の相を返す。相変化温度ちょうどは液相とする。
func PhaseAt(t float64) Phase {
	if t >= pcm_transition_temp {
		return PhaseLiquid
	}
	return PhaseSolid
}
