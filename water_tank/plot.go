package water_tank

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

/*
状態量（ノード温度）の時系列を図に保存する。

	Args:
	    r: 記録
	    path: 出力先（拡張子 .png, .svg, .pdf などで形式を決める）
*/
func SavePlot(r *Recorder, path string) error {
	p := plot.New()
	p.Title.Text = "Water tank temperatures"
	p.X.Label.Text = "Time (h)"
	p.Y.Label.Text = "Temperature (C)"

	for k, name := range r.StateNames() {
		theta_ns := r.StateSeries(k)
		xys := make(plotter.XYs, len(theta_ns))
		for n, theta := range theta_ns {
			xys[n].X = float64(n+1) * r._time_res / 3600.0
			xys[n].Y = theta
		}

		l, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		l.Color = plotutil.Color(k)
		if name == "T_"+pcm_node_name {
			l.Dashes = plotutil.Dashes(1)
		}
		p.Add(l)
		p.Legend.Add(name, l)
	}
	p.Legend.Top = true

	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}
