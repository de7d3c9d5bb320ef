package water_tank

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// ステップごとに計算する貯湯タンクのモデル
type WaterModel interface {
	Update(schedule map[string]float64) error
	GenerateResults() map[string]float64
	States() []float64
	StateNames() []string
}

// NewWaterModel は設定からモデルを作成する。PCM が無効な場合は水ノードのみのタンクとなる。
func NewWaterModel(cfg *Config) (WaterModel, error) {
	if !cfg.PCM.Enabled {
		m, err := NewStratifiedWaterModel(cfg.WaterTankParams())
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	heat_xfer, err := cfg.NewPCMHeatTransfer()
	if err != nil {
		return nil, err
	}
	t, err := NewTankWithPCM(cfg.WaterTankParams(), cfg.PCMParams(), heat_xfer)
	if err != nil {
		return nil, err
	}
	log.Debugf("pcm heat transfer: %s", cfg.PCM.HeatTransfer)
	return t, nil
}

/*
貯湯タンクの計算を実行する。

	Args:
	    config_path: 設定ファイル（INI）へのパス
	    schedule_path: スケジュール CSV へのパス（空の場合は設定の一定値を用いる）
	    output_data_dir: 出力フォルダへのパス（空の場合は出力しない）
	    plot_path: 温度の図の出力先（空の場合は出力しない）
*/
func Run(
	config_path string,
	schedule_path string,
	output_data_dir string,
	plot_path string,
) error {
	// ---- 事前準備 ----

	log.Infof("Load config `%s`", config_path)
	cfg, err := LoadConfig(config_path)
	if err != nil {
		return err
	}

	var scd *Schedule
	if schedule_path != "" {
		log.Infof("Load schedule `%s`", schedule_path)
		scd, err = LoadSchedule(schedule_path)
	} else {
		scd, err = NewConstantSchedule(
			cfg.Simulation.NStep,
			cfg.Simulation.ZoneTemperature,
			cfg.Simulation.WaterUse,
			cfg.Simulation.MainsTemperature,
		)
	}
	if err != nil {
		return err
	}

	model, err := NewWaterModel(cfg)
	if err != nil {
		return err
	}

	recording := output_data_dir != "" || plot_path != ""

	var result *Recorder
	if recording {
		result = NewRecorder(cfg.Simulation.NStep, model.StateNames(), cfg.Simulation.Start, cfg.Simulation.TimeRes)
	}

	// ---- 計算 ----

	if err := calc(model, scd, cfg.Simulation.NStep, cfg.Simulation.NStepRunUp, result); err != nil {
		return err
	}

	// ---- 計算結果ファイルの保存 ----

	if output_data_dir != "" {
		if err := os.MkdirAll(output_data_dir, 0755); err != nil {
			return err
		}
		if err := _save(filepath.Join(output_data_dir, "result_tank.csv"), result.ExportResults); err != nil {
			return err
		}
		if err := _save(filepath.Join(output_data_dir, "result_nodes.csv"), result.ExportStates); err != nil {
			return err
		}
	}

	if plot_path != "" {
		log.Infof("Save plot to `%s`", plot_path)
		if err := SavePlot(result, plot_path); err != nil {
			return err
		}
	}

	return nil
}

func _save(path string, export func(w io.Writer) error) (err error) {
	log.Infof("Save calculation results to `%s`", path)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create `%s`: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close `%s`: %w", path, cerr)
		}
	}()
	return export(f)
}

/*
助走計算と本計算を行う。

	Args:
	    model: 貯湯タンクのモデル
	    scd: スケジュール
	    n_step_main: 本計算のステップ数
	    n_step_run_up: 助走計算のステップ数
	    result: 記録（nil の場合は記録しない）
*/
func calc(
	model WaterModel,
	scd *Schedule,
	n_step_main int,
	n_step_run_up int,
	result *Recorder,
) error {
	log.Infof("助走計算 (%d steps)", n_step_run_up)
	for n := -n_step_run_up; n < 0; n++ {
		if err := _run_tick(model, scd, n); err != nil {
			return err
		}
	}

	log.Infof("本計算 (%d steps)", n_step_main)
	m := 1
	for n := 0; n < n_step_main; n++ {
		if err := _run_tick(model, scd, n); err != nil {
			return err
		}
		if result != nil {
			result.Record(n, model.GenerateResults(), model.States())
		}
		if n == int(float64(n_step_main)/12*float64(m)) {
			log.Infof("%d / 12 calculated.", m)
			m++
		}
	}
	log.Info("12 / 12 calculated.")

	return nil
}

func _run_tick(model WaterModel, scd *Schedule, n int) error {
	if err := model.Update(scd.Get(n)); err != nil {
		return &StepError{Step: n, Wrapped: err}
	}
	if pcm, ok := model.(*TankWithPCM); ok {
		q := pcm.PCMHeatToWater()
		if math.IsNaN(q) || math.IsInf(q, 0) {
			log.WithField("step", n).Warnf("pcm heat transfer is not finite: %v", q)
		}
	}
	return nil
}
