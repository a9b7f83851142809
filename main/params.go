// (c) 2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"flag"
	"fmt"
	"strings"

	log "github.com/inconshreveable/log15"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dharitri/dharitri-wasm-debug/vm"
)

const (
	versionKey      = "version"
	configFileKey   = "config-file"
	logLevelKey     = "log-level"
	serveKey        = "serve"
	httpHostKey     = "http-host"
	httpPortKey     = "http-port"
	scenarioDirKey  = "scenario-dir"
	maxCallDepthKey = "max-call-depth"
	gasLimitKey     = "gas-limit"

	envPrefix = "denali"
)

// Config is the runner configuration, from flags, DENALI_* environment
// variables and an optional config file, in that order of precedence.
type Config struct {
	LogLevel    log.Lvl
	Serve       bool
	HTTPHost    string
	HTTPPort    uint16
	ScenarioDir string
	VM          vm.Config
	Scenarios   []string
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

func buildFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("denali", flag.ContinueOnError)

	fs.Bool(versionKey, false, "If true, prints the version and quits")
	fs.String(configFileKey, "", "Config file to read, in any format viper supports")
	fs.String(logLevelKey, log.LvlInfo.String(), "Log level: crit, eror, warn, info, dbug")
	fs.Bool(serveKey, false, "If true, serves the debugger API after running the scenarios")
	fs.String(httpHostKey, "127.0.0.1", "Address of the API server")
	fs.Uint(httpPortKey, 9650, "Port of the API server")
	fs.String(scenarioDirKey, ".", "Directory relative scenario paths of API calls are resolved against")
	fs.Int(maxCallDepthKey, vm.DefaultConfig.MaxCallDepth, "Maximum depth of nested contract calls")
	fs.Uint64(gasLimitKey, vm.DefaultConfig.GasLimit, "Gas limit reported to contracts")

	return fs
}

// getViper returns the viper environment for the runner binary
func getViper(args []string) (*viper.Viper, *pflag.FlagSet, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := pflag.NewFlagSet("denali", pflag.ContinueOnError)
	fs.AddGoFlagSet(buildFlagSet())
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, nil, err
	}

	if configFile := v.GetString(configFileKey); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("couldn't read config file %s: %w", configFile, err)
		}
	}
	return v, fs, nil
}

// PrintVersion reports whether the version flag is set.
func PrintVersion(v *viper.Viper) bool {
	return v.GetBool(versionKey)
}

func getConfig(v *viper.Viper, fs *pflag.FlagSet) (Config, error) {
	level, err := log.LvlFromString(v.GetString(logLevelKey))
	if err != nil {
		return Config{}, err
	}
	port := v.GetUint(httpPortKey)
	if port > 0xffff {
		return Config{}, fmt.Errorf("invalid %s %d", httpPortKey, port)
	}

	vmConfig := vm.DefaultConfig
	vmConfig.MaxCallDepth = v.GetInt(maxCallDepthKey)
	vmConfig.GasLimit = v.GetUint64(gasLimitKey)
	if vmConfig.MaxCallDepth < 1 {
		return Config{}, fmt.Errorf("invalid %s %d", maxCallDepthKey, vmConfig.MaxCallDepth)
	}

	return Config{
		LogLevel:    level,
		Serve:       v.GetBool(serveKey),
		HTTPHost:    v.GetString(httpHostKey),
		HTTPPort:    uint16(port),
		ScenarioDir: v.GetString(scenarioDirKey),
		VM:          vmConfig,
		Scenarios:   fs.Args(),
	}, nil
}
