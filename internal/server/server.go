package server

import (
	"os"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pco2proc/internal/calc"
	"pco2proc/internal/config"
	"pco2proc/internal/monitor"
	"pco2proc/internal/pipeline"
	"pco2proc/internal/reader"
	"pco2proc/internal/writer"
	"pco2proc/pkg/version"
)

type mainApp struct {
	name string
	cmd  *cobra.Command
	args []string
	opt  *config.ProcOpt
}

var app MainApp = nil

func (a *mainApp) GetOpt() *config.ProcOpt {
	return a.opt
}

func (a *mainApp) SetOpt(opt *config.ProcOpt) { a.opt = opt }

func (a *mainApp) newProcessor() *pipeline.Processor {
	return pipeline.New(a.opt.Calibration, a.opt.Model, calc.Bits(a.opt.Sami.Bits))
}

// ProcessFile runs the pipeline over one frame log and writes the record
// table. "-" selects stdin/stdout.
func (a *mainApp) ProcessFile(input, output string) error {
	if err := a.opt.Validate(); err != nil {
		return err
	}

	in := os.Stdin
	if input != "-" {
		f, err := os.Open(input)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		in = f
	}
	out := os.Stdout
	if output != "-" {
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	rw := writer.New(out)
	stats, err := a.newProcessor().Run(reader.New(in), rw.Write)
	if err != nil {
		return err
	}
	if err := rw.Flush(); err != nil {
		return err
	}

	log.Infof("processed %d frames: %d blanks, %d measurements (%d invalid), %d malformed, %d dropped",
		stats.Frames, stats.Blanks, stats.Measurements, stats.Invalid, stats.Malformed, stats.Dropped)
	return nil
}

// Run starts the HTTP surface and blocks.
func (a *mainApp) Run() {
	var once sync.Once
	once.Do(func() {
		app = a
	})

	log.Infoln("version:", version.GitVersion)
	log.Infoln("serve.port:", a.opt.Serve.Port)
	log.Infoln("serve.interface:", a.opt.Serve.Interface)
	log.Infoln("sami.bits:", a.opt.Sami.Bits)
	log.Infoln("debug:", a.opt.Debug)

	if err := a.opt.Validate(); err != nil {
		log.Errorln(err)
		return
	}

	monitor.Register()
	r := a.router()

	addr := a.opt.Serve.Interface + ":" + strconv.Itoa(a.opt.Serve.Port)
	log.Info("start HTTP listen on ", addr)
	if err := r.Run(addr); err != nil {
		log.Errorln("failed to serve...", err)
		return
	}
}

func (a *mainApp) PrepareRun() MainApp {
	desc := config.NewProcDesc()
	err := desc.Parse(a.cmd)
	if err != nil {
		log.Errorln(err)
		os.Exit(1)
		return nil
	}
	desc.PostParse()
	a.opt = &desc.Opt
	a.name = config.DefaultAppName

	return a
}

type MainApp interface {
	Run()
	PrepareRun() MainApp
	ProcessFile(input, output string) error
	GetOpt() *config.ProcOpt
	SetOpt(*config.ProcOpt)
}

func NewMainApp(cmd *cobra.Command, args []string) MainApp {
	return &mainApp{
		cmd:  cmd,
		args: args,
	}
}
