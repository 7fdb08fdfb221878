// smoothd serves smoothed stepper position reports for a configured set of
// steppers. It loads an ini-style config describing the stepper kinematics,
// axis smoothing and pressure advance, and exposes the motion report API
// over HTTP and websocket.
//
// Usage:
//
//	smoothd -config motion.cfg [options]
//
// Options:
//
//	-config string    Motion configuration file (required)
//	-addr string      Listen address override (default from config)
//	-loglevel string  Log level: debug, info, warn, error (default "info")
//	-logjson          Emit JSON log records
//	-demo             Preload a demonstration toolpath into the move queue
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"stepsmooth/pkg/config"
	"stepsmooth/pkg/kinematics"
	"stepsmooth/pkg/log"
	"stepsmooth/pkg/motionreport"
	"stepsmooth/pkg/trapq"
)

func main() {
	configFile := flag.String("config", "", "Motion configuration file (required)")
	addr := flag.String("addr", "", "Listen address override")
	logLevel := flag.String("loglevel", "info", "Log level: debug, info, warn, error")
	logJSON := flag.Bool("logjson", false, "Emit JSON log records")
	demo := flag.Bool("demo", false, "Preload a demonstration toolpath")
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		flag.Usage()
		os.Exit(1)
	}

	format := log.FormatText
	if *logJSON {
		format = log.FormatJSON
	}
	logger := log.New(os.Stderr, log.ParseLevel(*logLevel), format).Component("smoothd")

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Errorf("loading config: %v", err)
		os.Exit(1)
	}
	mc, err := config.LoadMotion(cfg)
	if err != nil {
		logger.Errorf("invalid config: %v", err)
		os.Exit(1)
	}

	q := trapq.New()
	rep := motionreport.NewReporter(q, logger)
	if err := register(rep, mc, logger); err != nil {
		logger.Errorf("building steppers: %v", err)
		os.Exit(1)
	}

	if *demo {
		loadDemoToolpath(q)
		logger.Infof("demo toolpath loaded: %d moves", q.Len())
	}

	listenAddr := *addr
	if listenAddr == "" {
		listenAddr = fmt.Sprintf("%s:%d", mc.Server.Host, mc.Server.Port)
	}
	srv := motionreport.NewServer(rep, logger)
	if err := srv.ListenAndServe(listenAddr); err != nil {
		logger.Errorf("server: %v", err)
		os.Exit(1)
	}
}

// register builds the configured stepper kinematics, wraps them with axis
// smoothing when a [smooth_axis] section is present, and adds them to the
// reporter.
func register(rep *motionreport.Reporter, mc *config.MotionConfig,
	logger *log.Logger) error {
	for _, st := range mc.Steppers {
		k, err := kinematics.New(st.Kind)
		if err != nil {
			return err
		}
		if mc.SmoothAxis != nil {
			sa, err := kinematics.NewSmoothAxis(k, mc.SmoothAxis.Profile)
			if err != nil {
				// A z-only stepper has nothing to smooth; use it raw
				if !errors.Is(err, kinematics.ErrNoSmoothableAxis) {
					return err
				}
			} else {
				s := mc.SmoothAxis
				if err := sa.SetParams(s.FreqX, s.FreqY, s.DampingX, s.DampingY); err != nil {
					return err
				}
				logger.Infof("stepper %s: %s smoothing at %.1f/%.1f Hz",
					st.Name, s.Profile, s.FreqX, s.FreqY)
				k = sa
			}
		}
		if err := rep.AddStepper("stepper "+st.Name, k); err != nil {
			return err
		}
	}
	for _, ex := range mc.Extruders {
		e := kinematics.NewExtruder()
		if err := e.SetPressureAdvance(ex.PressureAdvance, ex.SmoothTime); err != nil {
			return err
		}
		name := "extruder"
		if ex.Name != "" {
			name += " " + ex.Name
		}
		if err := rep.AddStepper(name, e); err != nil {
			return err
		}
	}
	return nil
}

// loadDemoToolpath queues a short trapezoidal back and forth so the report
// endpoints have motion to show.
func loadDemoToolpath(q *trapq.TrapQ) {
	q.Append(0., 0.1, 0., 0.1, 0.5, 0.1, 0., 0.1,
		trapq.Coord{}, trapq.Coord{X: 1.}, 0., 100., 1000., 2)
	q.Append(0.7, 0.1, 0., 0.1, 0.5, 0.1, 0., 0.1,
		trapq.Coord{X: 60.}, trapq.Coord{X: -0.6, Y: 0.8}, 0., 100., 1000., 6)
}
