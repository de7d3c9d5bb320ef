package water_tank

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/ini.v1"
)

var validate = validator.New()

type TankConfig struct {
	Volume             float64 `validate:"gt=0"` // L
	Height             float64 `validate:"gt=0"` // m
	NNodes             int     `validate:"gte=1"`
	UA                 float64 `validate:"gt=0"` // W/K
	InitialTemperature float64 // degree C
}

type PCMConfig struct {
	Enabled      bool
	WaterNode    int     `validate:"gte=0"`
	VolFraction  float64 `validate:"gte=0,lt=1"`
	HeatTransfer string  `validate:"oneof=resistance enthalpy"`
	Resistance   float64 `validate:"gt=0"` // K/W
}

type SimulationConfig struct {
	TimeRes          float64 `validate:"gt=0"` // s
	NStep            int     `validate:"gte=1"`
	NStepRunUp       int     `validate:"gte=0"`
	Verbosity        int     `validate:"gte=0"`
	Start            time.Time
	ZoneTemperature  float64 // 一定スケジュールの周囲空気温度, degree C
	WaterUse         float64 `validate:"gte=0"` // 一定スケジュールの給湯量, L/min
	MainsTemperature float64 // 一定スケジュールの給水温度, degree C
}

type Config struct {
	Tank       TankConfig
	PCM        PCMConfig
	Simulation SimulationConfig
}

func LoadConfig(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return loadCfg(file)
}

// 既定値は 50 ガロン（189.3 L）、12 ノードのタンク
func loadCfg(file *ini.File) (*Config, error) {
	tank := file.Section("tank")
	pcm := file.Section("pcm")
	sim := file.Section("simulation")

	cfg := &Config{
		Tank: TankConfig{
			Volume:             tank.Key("volume").MustFloat64(189.3),
			Height:             tank.Key("height").MustFloat64(1.22),
			NNodes:             tank.Key("n_nodes").MustInt(12),
			UA:                 tank.Key("ua").MustFloat64(2.17),
			InitialTemperature: tank.Key("initial_temperature").MustFloat64(51.7),
		},
		PCM: PCMConfig{
			Enabled:      pcm.Key("enabled").MustBool(true),
			WaterNode:    pcm.Key("water_node").MustInt(5),
			VolFraction:  pcm.Key("vol_fraction").MustFloat64(0.5),
			HeatTransfer: pcm.Key("heat_transfer").MustString("resistance"),
			Resistance:   pcm.Key("resistance").MustFloat64(0.5),
		},
		Simulation: SimulationConfig{
			TimeRes:          sim.Key("time_res").MustFloat64(60),
			NStep:            sim.Key("n_step").MustInt(1440),
			NStepRunUp:       sim.Key("n_step_run_up").MustInt(0),
			Verbosity:        sim.Key("verbosity").MustInt(6),
			Start:            sim.Key("start").MustTime(time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)),
			ZoneTemperature:  sim.Key("zone_temperature").MustFloat64(20),
			WaterUse:         sim.Key("water_use").MustFloat64(0),
			MainsTemperature: sim.Key("mains_temperature").MustFloat64(default_mains_temp),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.PCM.Enabled {
		if err := (PCMParams{WaterNode: c.PCM.WaterNode, VolFraction: c.PCM.VolFraction}).Validate(c.Tank.NNodes); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) WaterTankParams() WaterTankParams {
	return WaterTankParams{
		Volume:             c.Tank.Volume,
		Height:             c.Tank.Height,
		NNodes:             c.Tank.NNodes,
		UA:                 c.Tank.UA,
		InitialTemperature: c.Tank.InitialTemperature,
		TimeRes:            c.Simulation.TimeRes,
		Verbosity:          c.Simulation.Verbosity,
	}
}

func (c *Config) PCMParams() PCMParams {
	return PCMParams{
		WaterNode:   c.PCM.WaterNode,
		VolFraction: c.PCM.VolFraction,
	}
}

// NewPCMHeatTransfer は設定に応じた PCM 熱移動モデルを作成する。
func (c *Config) NewPCMHeatTransfer() (PCMHeatTransfer, error) {
	var heat_xfer PCMHeatTransfer
	switch c.PCM.HeatTransfer {
	case "resistance":
		h, err := NewResistancePCMHeatTransfer(c.PCM.Resistance)
		if err != nil {
			return nil, err
		}
		heat_xfer = h
	case "enthalpy":
		h, err := NewEnthalpyPCMHeatTransfer(c.PCM.Resistance, c.Simulation.TimeRes)
		if err != nil {
			return nil, err
		}
		heat_xfer = h
	default:
		return nil, fmt.Errorf("%w: heat_transfer `%s`", ErrInvalidConfig, c.PCM.HeatTransfer)
	}
	return heat_xfer, nil
}
