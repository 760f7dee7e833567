package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pco2proc/internal/calc"
	"pco2proc/internal/utils"
)

const DefaultAppName = "pco2proc"
const DefaultConfigName = "config"
const DefaultServeInterface = "0.0.0.0"
const DefaultServePort = 18890
const DefaultSamiBits = 12

var userHomeDir, _ = os.UserHomeDir()
var DefaultConfig = path.Join(userHomeDir, ".config/"+DefaultAppName+"/"+DefaultConfigName+".yaml")
var DefaultConfigSearchPath0 = path.Join(userHomeDir, ".config", DefaultAppName)

const DefaultConfigSearchPath1 = "/etc/" + DefaultAppName
const DefaultConfigSearchPath2 = "./"
const DefaultConfigSearchPath3 = "/config"

type ServeOpt struct {
	Port      int    `yaml:"port"`
	Interface string `yaml:"interface"`
}

type SamiOpt struct {
	Bits int `yaml:"bits"`
}

type ProcOpt struct {
	Calibration calc.Calibration `yaml:"calibration"`
	Model       calc.Model       `yaml:"model"`
	Sami        SamiOpt          `yaml:"sami"`
	Serve       ServeOpt         `yaml:"serve"`
	Debug       bool             `yaml:"debug"`
}

type ProcDesc struct {
	Opt   ProcOpt
	Viper *viper.Viper
}

func NewProcDesc() ProcDesc {
	return ProcDesc{
		Opt:   NewProcOpt(),
		Viper: nil,
	}
}

func NewProcOpt() ProcOpt {
	return ProcOpt{
		Model: calc.DefaultModel(),
		Sami: SamiOpt{
			Bits: DefaultSamiBits,
		},
		Serve: ServeOpt{
			Port:      DefaultServePort,
			Interface: DefaultServeInterface,
		},
		Debug: false,
	}
}

func (o *ProcDesc) Parse(cmd *cobra.Command) error {
	vipCfg := viper.New()
	vipCfg.SetDefault("serve.port", DefaultServePort)
	vipCfg.SetDefault("serve.interface", DefaultServeInterface)
	vipCfg.SetDefault("sami.bits", DefaultSamiBits)
	vipCfg.SetDefault("model.e1", calc.DefaultModel().E1)
	vipCfg.SetDefault("model.e2", calc.DefaultModel().E2)
	vipCfg.SetDefault("model.e3", calc.DefaultModel().E3)
	vipCfg.SetDefault("debug", false)

	if configFileCmd, err := cmd.Flags().GetString("config"); err == nil && configFileCmd != "" {
		vipCfg.SetConfigFile(configFileCmd)
	} else {
		configFileEnv := os.Getenv("PCO2PROC_CONFIG")
		if configFileEnv != "" {
			vipCfg.SetConfigFile(configFileEnv)
		} else {
			vipCfg.SetConfigName(DefaultConfigName)
			vipCfg.SetConfigType("yaml")
			vipCfg.AddConfigPath(DefaultConfigSearchPath0)
			vipCfg.AddConfigPath(DefaultConfigSearchPath1)
			vipCfg.AddConfigPath(DefaultConfigSearchPath2)
			vipCfg.AddConfigPath(DefaultConfigSearchPath3)
		}
	}

	vipCfg.SetEnvPrefix(DefaultAppName)
	vipCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vipCfg.AutomaticEnv()

	_ = vipCfg.BindPFlag("serve.port", cmd.Flags().Lookup("port"))
	_ = vipCfg.BindPFlag("serve.interface", cmd.Flags().Lookup("interface"))
	_ = vipCfg.BindPFlag("sami.bits", cmd.Flags().Lookup("bits"))
	_ = vipCfg.BindPFlag("debug", cmd.Flags().Lookup("debug"))

	// If a config file is found, read it in.
	if err := vipCfg.ReadInConfig(); err == nil {
		log.Debugln("using config file:", vipCfg.ConfigFileUsed())
	} else {
		log.Warnln(err)
	}

	if err := vipCfg.Unmarshal(&o.Opt); err != nil {
		log.Fatalln("failed to unmarshal config")
		os.Exit(1)
	}

	o.Viper = vipCfg
	return nil
}

func (o *ProcDesc) PostParse() {
	if o.Opt.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// Validate checks the options that processing cannot run without. The model
// constants have factory defaults; the deployment calibration does not.
func (o *ProcOpt) Validate() error {
	c := o.Calibration
	if c.CalA == 0 && c.CalB == 0 && c.CalC == 0 && c.CalT == 0 {
		return errors.New("calibration coefficients are not configured")
	}
	if c.CalA == 0 {
		return errors.New("calibration cala must be non-zero")
	}
	if !calc.Bits(o.Sami.Bits).Valid() {
		return fmt.Errorf("sami.bits must be 12 or 14, got %d", o.Sami.Bits)
	}
	return nil
}

func (o *ProcDesc) SaveConfig() error {
	if o.Viper == nil {
		return errors.New("viper is nil")
	}
	f, err := os.OpenFile(o.Viper.ConfigFileUsed(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	defer func() { _ = f.Close() }()
	if err != nil {
		return err
	}
	s, _ := yaml.Marshal(o.Opt)
	_, err = f.Write(s)
	return err
}

// InitCfg prepares a config template for the application
func InitCfg(cmd *cobra.Command, _ []string) error {
	printFlag, _ := cmd.Flags().GetBool("print")
	outputPath, _ := cmd.Flags().GetString("output")
	overwriteFlag, _ := cmd.Flags().GetBool("yes")

	desc := NewProcDesc()
	err := desc.Parse(cmd)
	if err != nil {
		log.Errorln(err)
		return err
	}

	if printFlag {
		configBuffer, _ := yaml.Marshal(desc.Opt)
		fmt.Println(string(configBuffer))
	} else {
		utils.DumpOption(desc.Opt, outputPath, overwriteFlag)
	}
	return nil
}
