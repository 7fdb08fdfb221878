// smoothplot renders smoothing kernel shapes and their effect on a sample
// toolpath as an HTML chart page.
//
// Usage:
//
//	smoothplot -out smoothing.html [options]
//
// Options:
//
//	-out string       Output HTML file (default "smoothing.html")
//	-freq float       Target resonance frequency in Hz (default 45)
//	-damping float    Damping ratio (default 0.1)
//	-profiles string  Comma separated profile names (default: all)
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"stepsmooth/pkg/kinematics"
	"stepsmooth/pkg/smoother"
	"stepsmooth/pkg/trapq"
)

const (
	kernelPoints     = 200
	trajectoryPoints = 400
)

func main() {
	out := flag.String("out", "smoothing.html", "Output HTML file")
	freq := flag.Float64("freq", 45., "Target resonance frequency (Hz)")
	damping := flag.Float64("damping", 0.1, "Damping ratio")
	profileList := flag.String("profiles", "", "Comma separated profile names (default: all)")
	flag.Parse()

	profiles, err := selectProfiles(*profileList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	page := components.NewPage()
	kernelChart, err := plotKernels(profiles, *freq, *damping)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	trajChart, err := plotTrajectory(profiles, *freq, *damping)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	page.AddCharts(kernelChart, trajChart)

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering charts: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *out)
}

func selectProfiles(list string) ([]smoother.Profile, error) {
	var names []string
	if list == "" {
		for _, name := range smoother.ProfileNames() {
			if name != smoother.ProfileBox.String() {
				names = append(names, name)
			}
		}
	} else {
		names = strings.Split(list, ",")
	}
	profiles := make([]smoother.Profile, 0, len(names))
	for _, name := range names {
		p, err := smoother.ParseProfile(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// plotKernels charts the weight function of each profile over its support.
func plotKernels(profiles []smoother.Profile, freq, damping float64) (*charts.Line, error) {
	// Shared x axis spanning the widest kernel
	maxHst := 0.
	sms := make([]*smoother.Smoother, len(profiles))
	for i, p := range profiles {
		sm, err := smoother.NewSmoother(p, freq, damping)
		if err != nil {
			return nil, err
		}
		sms[i] = sm
		if sm.HalfSupportTime() > maxHst {
			maxHst = sm.HalfSupportTime()
		}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Smoothing kernels",
			Subtitle: fmt.Sprintf("target %.1f Hz, damping %.2f", freq, damping),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "w(t)"}),
	)

	xs := make([]string, kernelPoints+1)
	for j := 0; j <= kernelPoints; j++ {
		xs[j] = fmt.Sprintf("%.4f", -maxHst+2.*maxHst*float64(j)/kernelPoints)
	}
	line.SetXAxis(xs)
	for i, sm := range sms {
		data := make([]opts.LineData, kernelPoints+1)
		for j := 0; j <= kernelPoints; j++ {
			t := -maxHst + 2.*maxHst*float64(j)/kernelPoints
			data[j] = opts.LineData{Value: sm.Weight(t)}
		}
		line.AddSeries(profiles[i].String(), data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	}
	return line, nil
}

// plotTrajectory charts the raw and smoothed x position of a sample
// accelerate-cruise-decelerate toolpath.
func plotTrajectory(profiles []smoother.Profile, freq, damping float64) (*charts.Line, error) {
	q := trapq.New()
	q.Append(0., 0.05, 0., 0.05, 0.15, 0.05, 0., 0.05,
		trapq.Coord{}, trapq.Coord{X: 1.}, 0., 120., 2400., 6)
	total := 0.25

	raw, err := kinematics.NewCartesian('x')
	if err != nil {
		return nil, err
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Raw vs smoothed toolpath",
			Subtitle: "x axis of an accelerate-cruise-decelerate move",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "print time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "position (mm)"}),
	)

	xs := make([]string, 0, trajectoryPoints)
	times := make([]float64, 0, trajectoryPoints)
	for j := 0; j < trajectoryPoints; j++ {
		t := total * float64(j) / trajectoryPoints
		times = append(times, t)
		xs = append(xs, fmt.Sprintf("%.4f", t))
	}
	line.SetXAxis(xs)

	sample := func(k kinematics.Kinematics) []opts.LineData {
		data := make([]opts.LineData, len(times))
		for j, t := range times {
			ref, localTime, err := q.Find(t)
			if err != nil {
				data[j] = opts.LineData{Value: nil}
				continue
			}
			pos, err := k.CalcPosition(ref, localTime)
			if err != nil {
				// Smoothing window reaches past the queued toolpath
				data[j] = opts.LineData{Value: nil}
				continue
			}
			data[j] = opts.LineData{Value: pos}
		}
		return data
	}

	line.AddSeries("raw", sample(raw))
	for _, p := range profiles {
		sa, err := kinematics.NewSmoothAxis(raw, p)
		if err != nil {
			return nil, err
		}
		if err := sa.SetParams(freq, 0., damping, 0.); err != nil {
			return nil, err
		}
		line.AddSeries(p.String(), sample(sa))
	}
	return line, nil
}
