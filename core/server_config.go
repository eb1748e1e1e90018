/*
 * Nuts node
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package core

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const defaultConfigFile = "nuts-anchor.yaml"
const configFileFlag = "configfile"

const defaultPrefix = "NUTS_"
const defaultDelimiter = "."
const configValueListSeparator = ","

// ServerConfig has global server settings.
type ServerConfig struct {
	Verbosity    string     `koanf:"verbosity"`
	LoggerFormat string     `koanf:"loggerformat"`
	Strictmode   bool       `koanf:"strictmode"`
	Datadir      string     `koanf:"datadir"`
	HTTP         HTTPConfig `koanf:"http"`
	configMap    *koanf.Koanf
}

// HTTPConfig contains configuration for the HTTP interface, e.g. address.
type HTTPConfig struct {
	// Address holds the interface address the HTTP service must be bound to, in the format of `interface:port` (e.g. localhost:5555).
	Address string `koanf:"address"`
	// CORS holds the configuration for Cross Origin Resource Sharing.
	CORS HTTPCORSConfig `koanf:"cors"`
}

// HTTPCORSConfig contains configuration for Cross Origin Resource Sharing.
type HTTPCORSConfig struct {
	// Origin specifies the AllowOrigin option. If no origins are given CORS is considered to be disabled.
	Origin []string `koanf:"origin"`
}

// Enabled returns whether CORS is enabled according to this configuration.
func (cors HTTPCORSConfig) Enabled() bool {
	return len(cors.Origin) > 0
}

// NewServerConfig creates an initialized empty server config
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		configMap: koanf.New(defaultDelimiter),
	}
}

// loadConfigMap populates the configMap with values from the config file, environment and pFlags
func (ngc *ServerConfig) loadConfigMap(flags *pflag.FlagSet) error {
	if err := loadDefaultsFromFlagset(ngc.configMap, flags); err != nil {
		return err
	}

	if err := loadFromFile(ngc.configMap, resolveConfigFilePath(flags)); err != nil {
		return err
	}

	if err := loadFromEnv(ngc.configMap); err != nil {
		return err
	}

	return loadFromFlagSet(ngc.configMap, flags)
}

// Load loads the server config, following the load order of configfile, env vars and then commandline param
func (ngc *ServerConfig) Load(flags *pflag.FlagSet) (err error) {
	if err := ngc.loadConfigMap(flags); err != nil {
		return err
	}

	if err := ngc.configMap.UnmarshalWithConf("", ngc, koanf.UnmarshalConf{
		FlatPaths: false,
	}); err != nil {
		return err
	}

	return ngc.configureLogger()
}

func (ngc *ServerConfig) configureLogger() error {
	lvl, err := logrus.ParseLevel(ngc.Verbosity)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)

	switch ngc.LoggerFormat {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid formatter: '%s'", ngc.LoggerFormat)
	}
	return nil
}

// FlagSet returns the default server flags
func FlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flagSet.String(configFileFlag, defaultConfigFile, "Nuts anchor config file")
	flagSet.String("verbosity", "info", "Log level (trace, debug, info, warn, error)")
	flagSet.String("loggerformat", "text", "Log format (text, json)")
	flagSet.String("http.address", ":1323", "Address and port the server will be listening to")
	flagSet.StringSlice("http.cors.origin", nil, "When set, enables CORS from the specified origins on the HTTP interface.")
	flagSet.Bool("strictmode", true, "When set, insecure settings are forbidden.")
	flagSet.String("datadir", "./data", "Directory where the node stores its files.")
	return flagSet
}

// PrintConfig return the current config in string form
func (ngc *ServerConfig) PrintConfig() string {
	return ngc.configMap.Sprint()
}

// InjectIntoEngine takes the loaded config and sets the engine's config struct.
// Values already present in the engine's config struct act as defaults.
func (ngc *ServerConfig) InjectIntoEngine(e Injectable) error {
	key := strings.ToLower(e.Name())
	defaults := koanf.New(defaultDelimiter)
	if err := defaults.Load(structs.Provider(e.Config(), "koanf"), nil); err != nil {
		return err
	}
	merged := koanf.New(defaultDelimiter)
	if err := merged.MergeAt(defaults, key); err != nil {
		return err
	}
	if err := merged.Merge(ngc.configMap); err != nil {
		return err
	}
	return unmarshalRecursive([]string{key}, e.Config(), merged)
}

func elemType(ty reflect.Type) (reflect.Type, bool) {
	isPtr := ty.Kind() == reflect.Ptr

	if isPtr {
		return ty.Elem(), true
	}

	return ty, false
}

func unmarshalRecursive(path []string, config interface{}, configMap *koanf.Koanf) error {
	decoderConfig := koanf.UnmarshalConf{
		FlatPaths: false,
	}
	if err := configMap.UnmarshalWithConf(strings.Join(path, "."), config, decoderConfig); err != nil {
		return err
	}

	configType, isPtr := elemType(reflect.TypeOf(config))

	// If `config` is a struct or a pointer to a struct we're iterating its fields to find structs
	if configType.Kind() == reflect.Struct {
		valueOfConfig := reflect.ValueOf(config)

		if isPtr {
			valueOfConfig = valueOfConfig.Elem()
		}

		for i := 0; i < configType.NumField(); i++ {
			field := configType.Field(i)
			fieldType, _ := elemType(field.Type)
			tagValue := field.Tag.Get("koanf")

			// Unmarshal this field if it's a struct, and it has a `koanf` tag
			if fieldType.Kind() == reflect.Struct && tagValue != "" {
				fieldAddr := valueOfConfig.Field(i).Addr()

				if err := unmarshalRecursive(append(path, tagValue), fieldAddr.Interface(), configMap); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
