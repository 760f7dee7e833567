package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"pco2proc/internal/config"
	"pco2proc/internal/server"
)

var RootCmd = &cobra.Command{
	Use:   "pco2proc",
	Short: "decode and calibrate SAMI2 pCO2 sensor frame logs",
	Long:  "decode and calibrate SAMI2 pCO2 sensor frame logs",
}

func ServeCmdRunE(cmd *cobra.Command, args []string) error {
	server.NewMainApp(cmd, args).PrepareRun().Run()
	return nil
}

func ServeCmdFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "default configuration path")
	cmd.Flags().Int64P("port", "p", config.DefaultServePort, "port that the processing API listens on")
	cmd.Flags().StringP("interface", "i", config.DefaultServeInterface, "interface that the processing API listens on, default to 0.0.0.0")
	cmd.Flags().Int("bits", config.DefaultSamiBits, "SAMI ADC width, 12 or 14")
	cmd.Flags().Bool("debug", false, "toggle debug logging")
}

var ServeCmd = &cobra.Command{
	Use: "serve",
	SuggestFor: []string{
		"ru", "ser",
	},
	Short: "serve starts the frame-processing HTTP API.",
	Long: `serve starts the frame-processing HTTP API using predefined configs, by the following order:
1. path specified in --config flag
2. path defined PCO2PROC_CONFIG environment variable
3. default location $HOME/.config/pco2proc/config.yaml, /etc/pco2proc/config.yaml, current directory
The parameters in the configuration file will be overwritten by the following order:
1. command line arguments
2. environment variables
`,
	Example: `  pco2proc serve --config=/path/to/config`,
	RunE:    ServeCmdRunE,
}

func ProcessCmdRunE(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("process expects exactly one input file (use - for stdin)")
	}
	output, _ := cmd.Flags().GetString("output")
	return server.NewMainApp(cmd, args).PrepareRun().ProcessFile(args[0], output)
}

func ProcessCmdFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "default configuration path")
	cmd.Flags().StringP("output", "o", "-", "record table output path (- for stdout)")
	cmd.Flags().Int("bits", config.DefaultSamiBits, "SAMI ADC width, 12 or 14")
	cmd.Flags().Bool("debug", false, "toggle debug logging")
}

var ProcessCmd = &cobra.Command{
	Use: "process <input>",
	SuggestFor: []string{
		"pro", "pr", "proc",
	},
	Short: "process converts one frame log into a measurement table.",
	Long: `process reads hex frame records from the input file, pairs each measurement
with the most recent blank, applies the calibration model from the configuration
and writes one tab-separated record per valid measurement.
Malformed and unknown-type frames are skipped with a warning; measurements that
fail a calibration precondition are written as commented error lines.
`,
	Example: `  pco2proc process deployment.log -o deployment.tsv
  cat deployment.log | pco2proc process - --config=/path/to/config`,
	RunE: ProcessCmdRunE,
}

func InitCmdFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("print", false, "print config to stdout")
	cmd.Flags().BoolP("yes", "y", false, "overwrite")
	cmd.Flags().StringP("output", "o", config.DefaultConfig, "specify output directory")
}

var InitCmd = &cobra.Command{
	Use: "init",
	SuggestFor: []string{
		"ini", "in",
	},
	Short: "init create a configuration template",
	Long: `init create a configuration template.
The configuration file holds the deployment calibration (calt/cala/calb/calc),
the photometric model constants and the serve options.
If --print flag is present, the configuration will be printed to stdout.
If --output / -o flag is present, the configuration will be saved to the path specified
Otherwise init will output configuration file to $HOME/.config/pco2proc/config.yaml
If --yes / -y flag is present, the configuration will be overwrite without confirmation
`,
	Example: `  pco2proc init --print
  pco2proc init --output /path/to/config.yaml
  pco2proc init -o /path/to/config.yaml -y`,
	RunE: config.InitCfg,
}

func getRootCmd() *cobra.Command {

	ServeCmdFlags(ServeCmd)
	RootCmd.AddCommand(ServeCmd)

	ProcessCmdFlags(ProcessCmd)
	RootCmd.AddCommand(ProcessCmd)

	InitCmdFlags(InitCmd)
	RootCmd.AddCommand(InitCmd)

	return RootCmd
}

func Execute() {
	rootCmd := getRootCmd()
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
