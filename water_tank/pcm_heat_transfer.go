package water_tank

import (
	"fmt"
)

// PCMHeatTransfer は PCM ノードと水ノードの間の熱移動量を与える。
//
// 戻り値は PCM から水への熱移動量, W （水側が受け取る向きを正）とする。
// 同じ値を水ノードに加え PCM ノードから引くのは呼び出し側の役割。
type PCMHeatTransfer interface {
	HeatTransferRate(t_water float64, t_pcm float64) float64
}

// 具象モデルが与えられていない場合に使う。呼び出されると panic する。
type UnimplementedPCMHeatTransfer struct{}

func (UnimplementedPCMHeatTransfer) HeatTransferRate(float64, float64) float64 {
	panic(ErrPCMHeatTransferNotImplemented)
}

//---------------------------------------------------------------------------------------------------//

// 熱抵抗のみで熱移動量を求めるモデル
type ResistancePCMHeatTransfer struct {
	r float64 // PCM と水の間の熱抵抗, K/W
}

func NewResistancePCMHeatTransfer(r float64) (*ResistancePCMHeatTransfer, error) {
	if !(r > 0) {
		return nil, fmt.Errorf("%w: pcm heat transfer resistance = %v", ErrInvalidConfig, r)
	}
	return &ResistancePCMHeatTransfer{r: r}, nil
}

func (h *ResistancePCMHeatTransfer) HeatTransferRate(t_water float64, t_pcm float64) float64 {
	return (t_pcm - t_water) / h.r
}

//---------------------------------------------------------------------------------------------------//

/*
エンタルピーを追跡するモデル

熱移動量は ResistancePCMHeatTransfer と同じ式で求め、
PCM が失った熱量を積算してエンタルピー（開始時点からの変化量）とする。
相は PCM 温度と相変化温度から判定する。RC 網の値は変更しない。
*/
type EnthalpyPCMHeatTransfer struct {
	ResistancePCMHeatTransfer
	time_res float64 // 時間間隔, s
	h_pcm    float64 // PCM のエンタルピー（開始時点からの変化量）, J
	phase    Phase   // 直近の PCM の相
}

func NewEnthalpyPCMHeatTransfer(r float64, time_res float64) (*EnthalpyPCMHeatTransfer, error) {
	base, err := NewResistancePCMHeatTransfer(r)
	if err != nil {
		return nil, err
	}
	if !(time_res > 0) {
		return nil, fmt.Errorf("%w: time_res = %v", ErrInvalidConfig, time_res)
	}
	return &EnthalpyPCMHeatTransfer{
		ResistancePCMHeatTransfer: *base,
		time_res:                  time_res,
		phase:                     PhaseSolid,
	}, nil
}

func (h *EnthalpyPCMHeatTransfer) HeatTransferRate(t_water float64, t_pcm float64) float64 {
	q := h.ResistancePCMHeatTransfer.HeatTransferRate(t_water, t_pcm)
	h.h_pcm -= q * h.time_res
	h.phase = PhaseAt(t_pcm)
	return q
}

// Enthalpy は開始時点からの PCM のエンタルピー変化, J
func (h *EnthalpyPCMHeatTransfer) Enthalpy() float64 {
	return h.h_pcm
}

func (h *EnthalpyPCMHeatTransfer) Phase() Phase {
	return h.phase
}
