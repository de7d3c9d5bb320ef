package main

import (
	"flag"
	"os"
	"runtime/pprof"
	"time"

	"github.com/BRI-EES-House/water_tank_pcm_go/water_tank"
	log "github.com/sirupsen/logrus"
)

func main() {
	var config_path string
	flag.StringVar(&config_path, "i", "", "計算条件の設定ファイル（INI）")

	var schedule_path string
	flag.StringVar(&schedule_path, "schedule", "", "スケジュール CSV ファイル。省略時は設定ファイルの一定値を用います。")

	var output_data_dir string
	flag.StringVar(&output_data_dir, "o", "", "出力フォルダ")

	var plot_path string
	flag.StringVar(&plot_path, "plot", "", "温度の図の出力先（.png, .svg など）")

	var verbose bool
	flag.BoolVar(&verbose, "v", false, "詳細なログを出力します。")

	var pprpf_enable bool
	flag.BoolVar(&pprpf_enable, "pprof", false, "プロファイリングを実行し、cpu.prof ファイルに保存します。")

	// 引数を受け取る
	flag.Parse()

	if config_path == "" {
		log.Fatal("-i オプションを指定してください。")
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000000"})
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	if pprpf_enable {
		f, err := os.Create("cpu.prof")
		if err != nil {
			panic(err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				panic(err)
			}
		}()
		if err := pprof.StartCPUProfile(f); err != nil {
			panic(err)
		}
		defer pprof.StopCPUProfile()
	}

	start := time.Now()

	if err := water_tank.Run(
		config_path,
		schedule_path,
		output_data_dir,
		plot_path,
	); err != nil {
		log.Fatal(err)
	}

	elapsedTime := time.Since(start)
	log.Infof("elapsed_time: %v [sec]", elapsedTime)
}
