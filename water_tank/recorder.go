package water_tank

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/mat"
)

// 冗長度によって出力されない項目は空欄とする。
type OptionalFloat struct {
	Value float64
	Valid bool
}

func optional(results map[string]float64, key string) OptionalFloat {
	v, ok := results[key]
	return OptionalFloat{Value: v, Valid: ok}
}

func (f OptionalFloat) MarshalCSV() (string, error) {
	if !f.Valid {
		return "", nil
	}
	return strconv.FormatFloat(f.Value, 'f', 4, 64), nil
}

func (f *OptionalFloat) UnmarshalCSV(s string) error {
	if s == "" {
		*f = OptionalFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = OptionalFloat{Value: v, Valid: true}
	return nil
}

// 結果（簡易版）の1行
type ResultRow struct {
	Time           string        `csv:"Time"`
	OutletTemp     OptionalFloat `csv:"Hot Water Outlet Temperature (C)"`
	Delivered      OptionalFloat `csv:"Hot Water Delivered (W)"`
	AverageTemp    OptionalFloat `csv:"Hot Water Average Temperature (C)"`
	MaximumTemp    OptionalFloat `csv:"Hot Water Maximum Temperature (C)"`
	MinimumTemp    OptionalFloat `csv:"Hot Water Minimum Temperature (C)"`
	PCMTemp        OptionalFloat `csv:"Water Tank PCM Temperature (C)"`
	PCMHeatToWater OptionalFloat `csv:"Water Tank PCM Heat Injected (W)"`
}

type Recorder struct {
	_start       time.Time    // 本計算の開始時刻
	_time_res    float64      // 時間間隔, s
	_n_step      int          // 行数
	_state_names []string     // 状態量の名前, [k]
	theta_ks_ns  *mat.Dense   // ステップ n 終了時の状態量 k, degree C, [k, n]
	rows         []*ResultRow // ステップ n の結果, [n]
}

func NewRecorder(n_step_main int, state_names []string, start time.Time, time_res float64) *Recorder {
	rows := make([]*ResultRow, n_step_main)
	for n := range rows {
		rows[n] = &ResultRow{}
	}
	return &Recorder{
		_start:       start,
		_time_res:    time_res,
		_n_step:      n_step_main,
		_state_names: append([]string(nil), state_names...),
		theta_ks_ns:  mat.NewDense(len(state_names), n_step_main, nil),
		rows:         rows,
	}
}

// ステップ n の終了時刻
func (r *Recorder) time_at(n int) time.Time {
	return r._start.Add(time.Duration(float64(n+1) * r._time_res * float64(time.Second)))
}

/*
ステップ n の結果を記録する。

	Args:
	    n: ステップ（0 始まり、範囲外は記録しない）
	    results: GenerateResults の結果
	    states: ステップ n 終了時の状態量, degree C, [k]
*/
func (r *Recorder) Record(n int, results map[string]float64, states []float64) {
	if n < 0 || n >= r._n_step {
		return
	}
	r.theta_ks_ns.SetCol(n, states)
	r.rows[n] = &ResultRow{
		Time:           r.time_at(n).Format(time.RFC3339),
		OutletTemp:     optional(results, "Hot Water Outlet Temperature (C)"),
		Delivered:      optional(results, "Hot Water Delivered (W)"),
		AverageTemp:    optional(results, result_average_temp),
		MaximumTemp:    optional(results, result_max_temp),
		MinimumTemp:    optional(results, result_min_temp),
		PCMTemp:        optional(results, result_pcm_temp),
		PCMHeatToWater: optional(results, result_pcm_heat),
	}
}

// ExportResults は結果（簡易版）を CSV で書き出す。
func (r *Recorder) ExportResults(w io.Writer) error {
	return gocsv.Marshal(&r.rows, w)
}

// ExportStates は状態量（ノード温度）を CSV で書き出す。
func (r *Recorder) ExportStates(w io.Writer) error {
	cw := gocsv.NewSafeCSVWriter(csv.NewWriter(w))

	header := append([]string{"Time"}, r._state_names...)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for n := 0; n < r._n_step; n++ {
		record[0] = r.time_at(n).Format(time.RFC3339)
		for k := range r._state_names {
			record[k+1] = strconv.FormatFloat(r.theta_ks_ns.At(k, n), 'f', 4, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// StateSeries は状態量 k の時系列を返す, degree C, [n]
func (r *Recorder) StateSeries(k int) []float64 {
	return mat.Row(nil, k, r.theta_ks_ns)
}

func (r *Recorder) StateNames() []string {
	return append([]string(nil), r._state_names...)
}

func (r *Recorder) Rows() []*ResultRow {
	return r.rows
}
