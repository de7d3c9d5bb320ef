package water_tank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"
)

func loadTestCfg(t *testing.T, source string) (*Config, error) {
	t.Helper()
	file, err := ini.Load([]byte(source))
	require.NoError(t, err)
	return loadCfg(file)
}

func TestLoadCfg_Defaults(t *testing.T) {
	cfg, err := loadTestCfg(t, "")
	require.NoError(t, err)

	assert.Equal(t, 189.3, cfg.Tank.Volume)
	assert.Equal(t, 12, cfg.Tank.NNodes)
	assert.True(t, cfg.PCM.Enabled)
	assert.Equal(t, 5, cfg.PCM.WaterNode)
	assert.Equal(t, 0.5, cfg.PCM.VolFraction)
	assert.Equal(t, "resistance", cfg.PCM.HeatTransfer)
	assert.Equal(t, 60.0, cfg.Simulation.TimeRes)
	assert.Equal(t, 1440, cfg.Simulation.NStep)
	assert.Equal(t, 6, cfg.Simulation.Verbosity)
	assert.Equal(t, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Simulation.Start)
}

func TestLoadCfg(t *testing.T) {
	cfg, err := loadTestCfg(t, `
[tank]
volume = 100
n_nodes = 10

[pcm]
water_node = 2
vol_fraction = 0.2
heat_transfer = enthalpy
resistance = 1.5

[simulation]
time_res = 300
n_step = 288
start = 2020-07-01T00:00:00Z
`)
	require.NoError(t, err)

	assert.Equal(t, 100.0, cfg.Tank.Volume)
	assert.Equal(t, 2, cfg.PCMParams().WaterNode)
	assert.Equal(t, 0.2, cfg.PCMParams().VolFraction)

	p := cfg.WaterTankParams()
	assert.Equal(t, 10, p.NNodes)
	assert.Equal(t, 300.0, p.TimeRes)

	heat_xfer, err := cfg.NewPCMHeatTransfer()
	require.NoError(t, err)
	assert.IsType(t, &EnthalpyPCMHeatTransfer{}, heat_xfer)
}

func TestLoadCfg_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		source string
		err    error
	}{
		{"vol_fraction of 1", "[pcm]\nvol_fraction = 1\n", ErrInvalidConfig},
		{"negative vol_fraction", "[pcm]\nvol_fraction = -0.1\n", ErrInvalidConfig},
		{"unknown heat transfer", "[pcm]\nheat_transfer = radiation\n", ErrInvalidConfig},
		{"zero volume", "[tank]\nvolume = 0\n", ErrInvalidConfig},
		{"water node out of range", "[tank]\nn_nodes = 4\n[pcm]\nwater_node = 4\n", ErrInvalidWaterNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadTestCfg(t, tt.source)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLoadCfg_DisabledPCMSkipsNodeCheck(t *testing.T) {
	cfg, err := loadTestCfg(t, "[tank]\nn_nodes = 4\n[pcm]\nenabled = false\nwater_node = 4\n")
	require.NoError(t, err)

	model, err := NewWaterModel(cfg)
	require.NoError(t, err)
	assert.IsType(t, &StratifiedWaterModel{}, model)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("does-not-exist.ini")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
