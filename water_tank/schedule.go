package water_tank

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

// スケジュールファイルの1行
type ScheduleRow struct {
	ZoneTemperature  float64 `csv:"Zone Temperature (C)"`
	WaterUse         float64 `csv:"Water Use (L/min)"`
	MainsTemperature float64 `csv:"Mains Temperature (C)"`
}

// ステップごとのスケジュール
type Schedule struct {
	t_zone_ns  []float64 // ステップ n における周囲空気温度, degree C, [n]
	v_draw_ns  []float64 // ステップ n における給湯量, L/min, [n]
	t_mains_ns []float64 // ステップ n における給水温度, degree C, [n]
	has_mains  bool      // 給水温度が与えられているか（false の場合は既定値を用いる）
}

func NewSchedule(rows []*ScheduleRow) (*Schedule, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidSchedule)
	}
	s := &Schedule{
		t_zone_ns:  make([]float64, len(rows)),
		v_draw_ns:  make([]float64, len(rows)),
		t_mains_ns: make([]float64, len(rows)),
		has_mains:  true,
	}
	for n, row := range rows {
		s.t_zone_ns[n] = row.ZoneTemperature
		s.v_draw_ns[n] = row.WaterUse
		s.t_mains_ns[n] = row.MainsTemperature
	}
	return s, nil
}

// NewConstantSchedule は全ステップで同じ値を持つスケジュールを作成する。
func NewConstantSchedule(n_step int, t_zone float64, v_draw float64, t_mains float64) (*Schedule, error) {
	rows := make([]*ScheduleRow, n_step)
	for n := range rows {
		rows[n] = &ScheduleRow{ZoneTemperature: t_zone, WaterUse: v_draw, MainsTemperature: t_mains}
	}
	return NewSchedule(rows)
}

/*
スケジュール CSV を読み込む。

	Notes:
	    周囲空気温度の列は必須。
	    給湯量の列が無い場合は給湯なし、給水温度の列が無い場合は既定値とする。
*/
func ReadSchedule(r io.Reader) (*Schedule, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	header, err := gocsv.DefaultCSVReader(bytes.NewReader(b)).Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	columns := make(map[string]bool, len(header))
	for _, h := range header {
		columns[h] = true
	}
	if !columns[key_zone_temp] {
		return nil, fmt.Errorf("%w: column `%s` is missing", ErrInvalidSchedule, key_zone_temp)
	}

	var rows []*ScheduleRow
	if err := gocsv.UnmarshalBytes(b, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	s, err := NewSchedule(rows)
	if err != nil {
		return nil, err
	}
	s.has_mains = columns[key_mains_temp]
	return s, nil
}

func LoadSchedule(path string) (*Schedule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSchedule(f)
}

// WriteSchedule はスケジュールを CSV で書き出す。
func (s *Schedule) WriteSchedule(w io.Writer) error {
	rows := make([]*ScheduleRow, s.Len())
	for n := range rows {
		rows[n] = &ScheduleRow{
			ZoneTemperature:  s.t_zone_ns[n],
			WaterUse:         s.v_draw_ns[n],
			MainsTemperature: s.mains_at(n),
		}
	}
	return gocsv.Marshal(&rows, w)
}

func (s *Schedule) Len() int {
	return len(s.t_zone_ns)
}

func (s *Schedule) mains_at(n int) float64 {
	if !s.has_mains {
		return default_mains_temp
	}
	return s.t_mains_ns[n]
}

// Get はステップ n のスケジュールを返す。n が負の場合（助走計算）は末尾から数える。
// 給水温度が与えられていない場合はその項目を含めない。
func (s *Schedule) Get(n int) map[string]float64 {
	c := s.Len()
	nn := n % c
	if nn < 0 {
		nn += c
	}
	snapshot := map[string]float64{
		key_zone_temp: s.t_zone_ns[nn],
		key_water_use: s.v_draw_ns[nn],
	}
	if s.has_mains {
		snapshot[key_mains_temp] = s.t_mains_ns[nn]
	}
	return snapshot
}
