package main

import (
	"flag"
	"log"
	"strings"
	"time"

	"github.com/odeproject/ivp"
	"github.com/odeproject/ivp/problems"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

// This code effectively only reads the scenario file and runs the integration.

const (
	defaultScenario = "~~unset~~"
	dateFormat      = "2006-01-02 15:04:05"
)

var (
	scenario string
	verbose  bool
)

func init() {
	flag.StringVar(&scenario, "scenario", defaultScenario, "integration scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
}

func main() {
	flag.Parse()
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	// Read the problem.
	var prob problems.Problem
	switch name := viper.GetString("problem.name"); name {
	case "exponential":
		prob = problems.Exponential(viper.GetFloat64("problem.lambda"))
	case "harmonic":
		prob = problems.HarmonicOscillator(viper.GetFloat64("problem.omega"))
	case "twobody":
		μ := viper.GetFloat64("problem.mu")
		if μ == 0 {
			μ = problems.EarthMu
		}
		prob = problems.TwoBody(μ, viper.GetFloat64("problem.radius"))
	default:
		log.Fatalf("unknown problem `%s`", name)
	}

	// Read the time span: either plain values or epochs (JD or date).
	t0, tCrit := prob.T0, prob.T1
	if viper.IsSet("time.start") {
		t0 = viper.GetFloat64("time.start")
		tCrit = viper.GetFloat64("time.end")
	} else if viper.IsSet("epoch.start") {
		start := confReadJDEorTime("epoch.start")
		end := confReadJDEorTime("epoch.end")
		t0 = 0
		tCrit = end.Sub(start).Seconds()
		if verbose {
			log.Printf("[conf] epoch span: %s -> %s (%.1f s)\n", start, end, tCrit)
		}
	}

	cfg := ivp.Config{
		InitialStep: viper.GetFloat64("integration.initial_step"),
		MaxStep:     viper.GetFloat64("integration.max_step"),
		Rtol:        viper.GetFloat64("integration.rtol"),
	}
	if atol := viper.GetFloat64("integration.atol"); atol > 0 {
		cfg.Atol = []float64{atol}
	}

	var stepper *ivp.RK
	var err error
	switch method := viper.GetString("integration.method"); method {
	case "rk23":
		stepper, err = ivp.NewRK23(prob.Fcn, prob.Y0, t0, tCrit, &cfg)
	case "", "rk45":
		stepper, err = ivp.NewRK45(prob.Fcn, prob.Y0, t0, tCrit, &cfg)
	default:
		log.Fatalf("unknown method `%s`", method)
	}
	if err != nil {
		log.Fatalf("could not initialize %s: %s", prob.Name, err)
	}

	export := ivp.ExportConfig{Filename: viper.GetString("export.path")}
	runner := ivp.NewRunner(stepper, export)
	if err := runner.Run(); err != nil {
		log.Fatalf("%s: %s", prob.Name, err)
	}

	// Optionally resample the continuous extension for plotting.
	if splinePath := viper.GetString("export.spline"); splinePath != "" {
		sample := viper.GetFloat64("export.sample")
		interp, err := runner.Spline()
		if err != nil {
			log.Fatalf("spline: %s", err)
		}
		if err := ivp.ExportSpline(ivp.ExportConfig{Filename: splinePath}, interp, sample); err != nil {
			log.Fatalf("spline export: %s", err)
		}
	}
}

// confReadJDEorTime reads a viper key as either a Julian date or a date string.
func confReadJDEorTime(key string) (dt time.Time) {
	jde := viper.GetFloat64(key)
	if jde == 0 {
		var err error
		dt, err = time.Parse(dateFormat, viper.GetString(key))
		if err != nil {
			log.Fatalf("could not parse `%s`: %s", key, err)
		}
	} else {
		dt = julian.JDToTime(jde)
	}
	return
}
