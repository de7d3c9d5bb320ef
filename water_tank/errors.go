package water_tank

import (
	"errors"
	"fmt"
)

var (
	// PCM が接する水ノードの番号が範囲外
	ErrInvalidWaterNode = errors.New("water_tank: pcm water node out of range")

	// PCM 体積比が [0, 1) の範囲外
	ErrInvalidVolFraction = errors.New("water_tank: pcm volume fraction must be in [0, 1)")

	ErrInvalidRCParameter = errors.New("water_tank: invalid rc parameter")

	// 状態量・入力の名前が登録されていない
	ErrUnknownName = errors.New("water_tank: unknown state or input name")

	ErrDimensionMismatch = errors.New("water_tank: dimension mismatch")

	ErrInvalidConfig = errors.New("water_tank: invalid config")

	ErrInvalidSchedule = errors.New("water_tank: invalid schedule")

	// 具象の PCM 熱移動モデルが与えられていない
	ErrPCMHeatTransferNotImplemented = errors.New("water_tank: pcm heat transfer is not implemented")
)

// StepError はステップ n の計算で発生したエラーを包む。
type StepError struct {
	Step    int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
